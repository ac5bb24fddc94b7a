package pgcheckout

import (
	"context"
	"testing"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/messages"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "ledger_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/ledger_test?sslmode=disable"
	st, err := Open(ctx, dsn, WithMaxConns(4))
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestPGCheckout_LedgerFlow(t *testing.T) {
	ctx := context.Background()
	st := startStorage(t)
	require.NoError(t, st.Ping(ctx))

	t0 := time.Now().UTC().Truncate(time.Millisecond)

	initiated := messages.NewCheckoutEvent(messages.CheckoutInitiated, "pay_1", t0)
	initiated.ShipmentID = "shp_1"
	initiated.TenantID = "tenant_a"
	initiated.Method = "bank_transfer"
	initiated.TransactionID = "txn_1"
	initiated.Amount = 110
	initiated.Currency = "NGN"

	added, err := st.AppendEvent(ctx, initiated)
	require.NoError(t, err)
	require.True(t, added)

	// replayed delivery
	added, err = st.AppendEvent(ctx, initiated)
	require.NoError(t, err)
	require.False(t, added)

	pending := messages.NewCheckoutEvent(messages.CheckoutPendingVerification, "pay_1", t0.Add(time.Minute))
	_, err = st.AppendEvent(ctx, pending)
	require.NoError(t, err)

	// late event from before the latest one keeps the newer status
	late := messages.NewCheckoutEvent(messages.CheckoutPriceChanged, "pay_1", t0.Add(-time.Minute))
	_, err = st.AppendEvent(ctx, late)
	require.NoError(t, err)

	c, err := st.GetCheckout(ctx, "pay_1")
	require.NoError(t, err)
	require.Equal(t, models.LedgerStatusPendingVerification, c.Status)
	require.Equal(t, "shp_1", c.ShipmentID)
	require.Equal(t, "txn_1", c.TransactionID)
	require.InDelta(t, 110.0, c.Amount, 0.001)
	require.Equal(t, 3, c.EventCount)
	require.WithinDuration(t, t0.Add(time.Minute), c.LastEventAt, time.Second)

	evs, err := st.ListByPayment(ctx, "pay_1", 10, 0)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	require.Equal(t, messages.CheckoutPendingVerification, evs[0].Kind)
	require.Equal(t, messages.CheckoutPriceChanged, evs[2].Kind)
	require.Contains(t, string(evs[1].Payload), `"transaction_id":"txn_1"`)

	page, err := st.ListByPayment(ctx, "pay_1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, messages.CheckoutInitiated, page[0].Kind)
}

func TestPGCheckout_Errors(t *testing.T) {
	ctx := context.Background()
	st := startStorage(t)

	_, err := st.AppendEvent(ctx, messages.CheckoutEvent{Kind: messages.CheckoutFailed})
	require.ErrorIs(t, err, ErrInvalidEvent)

	_, err = st.GetCheckout(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	evs, err := st.ListByPayment(ctx, "missing", 0, -1)
	require.NoError(t, err)
	require.Empty(t, evs)
}
