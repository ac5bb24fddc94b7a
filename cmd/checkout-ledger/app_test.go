package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/config"
	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/kafka"
	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/messages"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/Jaysins/ohship-tenant-sub000/internal/storage/pgcheckout"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu     sync.Mutex
	seen   map[string]bool
	events map[string][]*models.CheckoutEventRecord
}

func newMemRepo() *memRepo {
	return &memRepo{seen: map[string]bool{}, events: map[string][]*models.CheckoutEventRecord{}}
}

func (r *memRepo) AppendEvent(ctx context.Context, ev messages.CheckoutEvent) (bool, error) {
	if ev.EventID == "" || ev.PaymentID == "" || ev.Kind == "" {
		return false, pgcheckout.ErrInvalidEvent
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[ev.EventID] {
		return false, nil
	}
	r.seen[ev.EventID] = true
	r.events[ev.PaymentID] = append(r.events[ev.PaymentID], &models.CheckoutEventRecord{
		EventID: ev.EventID, PaymentID: ev.PaymentID, Kind: ev.Kind, OccurredAt: ev.OccurredAt,
	})
	return true, nil
}

func (r *memRepo) ListByPayment(ctx context.Context, paymentID string, limit, offset int) ([]*models.CheckoutEventRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.CheckoutEventRecord{}, r.events[paymentID]...), nil
}

func (r *memRepo) GetCheckout(ctx context.Context, paymentID string) (*models.CheckoutRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.events[paymentID]
	if len(evs) == 0 {
		return nil, pgcheckout.ErrNotFound
	}
	return &models.CheckoutRecord{PaymentID: paymentID, Status: evs[len(evs)-1].Kind, EventCount: len(evs)}, nil
}

func (r *memRepo) Ping(ctx context.Context) error { return nil }

// chanConsumer hands queued payloads to the handler, then waits for cancellation.
type chanConsumer struct {
	payloads [][]byte
	closed   bool
}

func (c *chanConsumer) Consume(ctx context.Context, handler kafka.Handler) error {
	for _, p := range c.payloads {
		if err := handler(ctx, nil, p); err != nil && !errors.Is(err, kafka.ErrSkip) {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *chanConsumer) Close() error {
	c.closed = true
	return nil
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleCheckoutEvent(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	stats := &ledgerStats{}
	h := handleCheckoutEvent(repo, stats)

	ev := messages.NewCheckoutEvent(messages.CheckoutSucceeded, "pay_1", time.Now())
	require.NoError(t, h(ctx, []byte("pay_1"), mustJSON(t, ev)))
	require.NoError(t, h(ctx, []byte("pay_1"), mustJSON(t, ev)))

	require.ErrorIs(t, h(ctx, nil, []byte("{not json")), kafka.ErrSkip)
	require.ErrorIs(t, h(ctx, nil, mustJSON(t, messages.CheckoutEvent{Kind: messages.CheckoutFailed})), kafka.ErrSkip)

	require.EqualValues(t, 1, stats.Recorded.Load())
	require.EqualValues(t, 1, stats.Duplicates.Load())
	require.EqualValues(t, 2, stats.Skipped.Load())
}

func TestRunCheckoutLedger_RecordsAndServes(t *testing.T) {
	repo := newMemRepo()
	initiated := messages.NewCheckoutEvent(messages.CheckoutInitiated, "pay_1", time.Now())
	expired := messages.NewCheckoutEvent(messages.CheckoutExpired, "pay_1", time.Now().Add(time.Minute))
	cons := &chanConsumer{payloads: [][]byte{
		mustJSON(t, initiated),
		[]byte("garbage"),
		mustJSON(t, expired),
	}}

	closedDB := false
	var gotTopic, gotGroup string
	f := ledgerFactories{
		newStorage: func(cfg *config.Config) (ledgerRepo, func(), error) {
			return repo, func() { closedDB = true }, nil
		},
		newConsumer: func(cfg *config.Config, topic, group string) eventConsumer {
			gotTopic, gotGroup = topic, group
			return cons
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunCheckoutLedger(ctx, &config.Config{}, f, ledgerOpts{
			httpAddr: "127.0.0.1:0",
			onListen: func(addr string) { addrCh <- addr },
		})
	}()
	base := "http://" + <-addrCh

	require.Eventually(t, func() bool {
		evs, _ := repo.ListByPayment(context.Background(), "pay_1", 10, 0)
		return len(evs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(base + "/payments/pay_1/events?limit=10")
	require.NoError(t, err)
	var out struct {
		Events []models.CheckoutEventRecord `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.Len(t, out.Events, 2)

	resp, err = http.Get(base + "/payments/pay_1")
	require.NoError(t, err)
	var rec models.CheckoutRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	resp.Body.Close()
	require.Equal(t, messages.CheckoutExpired, rec.Status)

	resp, err = http.Get(base + "/payments/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(base + "/stats")
	require.NoError(t, err)
	var stats map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	require.EqualValues(t, 2, stats["recorded"])
	require.EqualValues(t, 1, stats["skipped"])

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	require.True(t, closedDB)
	require.True(t, cons.closed)
	require.Equal(t, "checkout.events", gotTopic)
	require.Equal(t, "checkout-ledger", gotGroup)
}
