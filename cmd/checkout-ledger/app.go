package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/config"
	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/kafka"
	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/messages"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/Jaysins/ohship-tenant-sub000/internal/storage/pgcheckout"
	"github.com/pkg/errors"
)

const (
	defaultLedgerHTTPAddr = ":8082"
	defaultConsumerGroup  = "checkout-ledger"
	defaultCheckoutTopic  = "checkout.events"
)

type ledgerRepo interface {
	AppendEvent(ctx context.Context, ev messages.CheckoutEvent) (bool, error)
	ListByPayment(ctx context.Context, paymentID string, limit, offset int) ([]*models.CheckoutEventRecord, error)
	GetCheckout(ctx context.Context, paymentID string) (*models.CheckoutRecord, error)
	Ping(ctx context.Context) error
}

type eventConsumer interface {
	Consume(ctx context.Context, handler kafka.Handler) error
	Close() error
}

type ledgerFactories struct {
	newStorage  func(cfg *config.Config) (repo ledgerRepo, closeFn func(), err error)
	newConsumer func(cfg *config.Config, topic, group string) eventConsumer
}

func defaultLedgerFactories() ledgerFactories {
	return ledgerFactories{
		newStorage: func(cfg *config.Config) (ledgerRepo, func(), error) {
			st, err := openPostgresWithRetry(cfg.Database.DSN(), 60*time.Second, pgcheckout.WithMaxConns(cfg.Database.MaxConns))
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newConsumer: func(cfg *config.Config, topic, group string) eventConsumer {
			return kafka.NewConsumer(cfg.Kafka.Brokers(), topic, group)
		},
	}
}

func openPostgresWithRetry(connString string, wait time.Duration, opts ...pgcheckout.Option) (*pgcheckout.Storage, error) {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		st, err := pgcheckout.Open(ctx, connString, opts...)
		cancel()
		if err == nil {
			return st, nil
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	return nil, errors.Wrapf(lastErr, "postgres is not ready after %s", wait)
}

type ledgerStats struct {
	Recorded   atomic.Int64
	Duplicates atomic.Int64
	Skipped    atomic.Int64
}

// handleCheckoutEvent records one event. Payloads that can never be stored are skipped so
// a single bad message does not wedge the partition.
func handleCheckoutEvent(repo ledgerRepo, stats *ledgerStats) kafka.Handler {
	return func(ctx context.Context, key, value []byte) error {
		var ev messages.CheckoutEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			stats.Skipped.Add(1)
			return errors.Wrapf(kafka.ErrSkip, "decode checkout event: %v", err)
		}
		added, err := repo.AppendEvent(ctx, ev)
		if errors.Is(err, pgcheckout.ErrInvalidEvent) {
			stats.Skipped.Add(1)
			return errors.Wrapf(kafka.ErrSkip, "event %q: %v", ev.EventID, err)
		}
		if err != nil {
			return err
		}
		if !added {
			stats.Duplicates.Add(1)
			slog.Info("duplicate checkout event", "event_id", ev.EventID, "payment_id", ev.PaymentID)
			return nil
		}
		stats.Recorded.Add(1)
		slog.Info("checkout event recorded", "event_id", ev.EventID, "kind", ev.Kind, "payment_id", ev.PaymentID)
		return nil
	}
}

type ledgerOpts struct {
	httpAddr string
	onListen func(httpAddr string)
}

func RunCheckoutLedger(ctx context.Context, cfg *config.Config, f ledgerFactories, opts ledgerOpts) error {
	topic := cfg.Kafka.CheckoutEventsTopicName
	if topic == "" {
		topic = defaultCheckoutTopic
	}
	group := cfg.App.LedgerConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}
	if opts.httpAddr == "" {
		opts.httpAddr = cfg.App.LedgerHTTPAddr
	}
	if opts.httpAddr == "" {
		opts.httpAddr = defaultLedgerHTTPAddr
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	consumer := f.newConsumer(cfg, topic, group)
	defer func() { _ = consumer.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stats := &ledgerStats{}
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runLedgerHTTPServer(ctx, ledgerHTTPOpts{
			httpAddr: opts.httpAddr,
			onListen: opts.onListen,
			repo:     repo,
			stats:    stats,
		})
	}()

	slog.Info("kafka consumer started", "topic", topic, "group", group)
	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- consumer.Consume(ctx, handleCheckoutEvent(repo, stats))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-consumeErr:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	case err := <-httpErr:
		return err
	}
}
