package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Producer struct {
	w messageWriter

	retries   int
	retryBase time.Duration
}

func NewProducer(brokers []string) *Producer {
	return newProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	})
}

func newProducerWithWriter(w messageWriter) *Producer {
	return &Producer{w: w, retries: 1, retryBase: 150 * time.Millisecond}
}

// WithRetries makes Publish retry a failed write. Kafka is often not ready right after the
// stack comes up.
func (p *Producer) WithRetries(n int, base time.Duration) *Producer {
	if n > 0 {
		p.retries = n
	}
	if base > 0 {
		p.retryBase = base
	}
	return p
}

// Publish writes one message. Keys route all events of a checkout to the same partition.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	var err error
	for i := 0; i < p.retries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "kafka publish")
			case <-time.After(time.Duration(i) * p.retryBase):
			}
		}
		err = p.w.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: value})
		if err == nil {
			return nil
		}
		slog.Warn("kafka publish attempt failed", "topic", topic, "attempt", i+1, "error", err.Error())
	}
	return errors.Wrap(err, "kafka publish")
}

func (p *Producer) Close() error {
	if c, ok := p.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
