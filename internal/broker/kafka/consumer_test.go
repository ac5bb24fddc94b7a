package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs      []kafka.Message
	err       error
	i         int
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.i < len(r.msgs) {
		m := r.msgs[r.i]
		r.i++
		return m, nil
	}
	if r.err != nil {
		return kafka.Message{}, r.err
	}
	return kafka.Message{}, errors.New("eof")
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_Consume_CallsHandlerAndCommits(t *testing.T) {
	fr := &fakeReader{
		msgs: []kafka.Message{{Key: []byte("pay_1"), Value: []byte("v"), Offset: 7}},
		err:  errors.New("stop"),
	}
	c := newConsumerWithReader(fr)

	var gotK, gotV []byte
	err := c.Consume(context.Background(), func(ctx context.Context, k, v []byte) error {
		gotK, gotV = k, v
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetch message")
	require.Equal(t, []byte("pay_1"), gotK)
	require.Equal(t, []byte("v"), gotV)
	require.Len(t, fr.committed, 1)
	require.Equal(t, int64(7), fr.committed[0].Offset)
}

func TestConsumer_Consume_HandlerErrorStopsWithoutCommit(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{{Key: []byte("k"), Value: []byte("v")}}}
	c := newConsumerWithReader(fr)

	want := errors.New("db down")
	err := c.Consume(context.Background(), func(ctx context.Context, k, v []byte) error { return want })
	require.ErrorIs(t, err, want)
	require.Empty(t, fr.committed)
}

func TestConsumer_Consume_SkipCommitsAndContinues(t *testing.T) {
	fr := &fakeReader{
		msgs: []kafka.Message{{Value: []byte("{bad")}, {Value: []byte("{}")}},
		err:  errors.New("stop"),
	}
	c := newConsumerWithReader(fr)

	var handled int
	err := c.Consume(context.Background(), func(ctx context.Context, k, v []byte) error {
		handled++
		if string(v) == "{bad" {
			return fmt.Errorf("decode: %w", ErrSkip)
		}
		return nil
	})
	require.Error(t, err)
	require.Equal(t, 2, handled)
	require.Len(t, fr.committed, 2)
}

func TestNewConsumer_Close(t *testing.T) {
	c := NewConsumer([]string{"localhost:0"}, "checkout.events", "checkout-ledger")
	require.NotNil(t, c)
	require.NoError(t, c.Close())
}
