package pgcheckout

import (
	"context"
	"encoding/json"

	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/messages"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

var ErrInvalidEvent = errors.New("checkout event needs event_id, payment_id and kind")

// statusFor maps an event kind to the ledger status it leaves the checkout in.
func statusFor(kind string) string {
	switch kind {
	case messages.CheckoutInitiated:
		return models.LedgerStatusInitiated
	case messages.CheckoutPriceChanged:
		return models.LedgerStatusPriceChanged
	case messages.CheckoutSucceeded:
		return models.LedgerStatusSucceeded
	case messages.CheckoutFailed:
		return models.LedgerStatusFailed
	case messages.CheckoutExpired:
		return models.LedgerStatusExpired
	case messages.CheckoutPendingVerification:
		return models.LedgerStatusPendingVerification
	}
	return kind
}

// AppendEvent records ev and folds it into the payment's summary row. It reports false
// when the event was already recorded.
func (s *Storage) AppendEvent(ctx context.Context, ev messages.CheckoutEvent) (bool, error) {
	if ev.EventID == "" || ev.PaymentID == "" || ev.Kind == "" {
		return false, ErrInvalidEvent
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return false, errors.Wrap(err, "marshal payload")
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	occurred := ev.OccurredAt.UTC()
	_, err = tx.Exec(ctx, `
INSERT INTO checkouts (
  payment_id, shipment_id, tenant_id, status, method, transaction_id, amount, currency,
  event_count, last_event_at, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8, 0, $9, now(), now())
ON CONFLICT (payment_id) DO NOTHING
`, ev.PaymentID, ev.ShipmentID, ev.TenantID, statusFor(ev.Kind), ev.Method, ev.TransactionID, ev.Amount, ev.Currency, occurred)
	if err != nil {
		return false, errors.Wrap(err, "insert checkout")
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO checkout_events (event_id, payment_id, kind, occurred_at, error, payload, created_at)
VALUES ($1,$2,$3,$4,$5,$6, now())
ON CONFLICT (event_id) DO NOTHING
`, ev.EventID, ev.PaymentID, ev.Kind, occurred, ev.Error, payload)
	if err != nil {
		return false, errors.Wrap(err, "insert checkout event")
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	// Events can arrive out of order; only a newer event moves the status.
	_, err = tx.Exec(ctx, `
UPDATE checkouts
SET
  status = CASE WHEN $2::timestamptz >= last_event_at THEN $3::text ELSE status END,
  last_event_at = GREATEST(last_event_at, $2::timestamptz),
  shipment_id = CASE WHEN $4::text <> '' THEN $4 ELSE shipment_id END,
  method = CASE WHEN $5::text <> '' THEN $5 ELSE method END,
  transaction_id = CASE WHEN $6::text <> '' THEN $6 ELSE transaction_id END,
  amount = CASE WHEN $7::numeric > 0 THEN $7::numeric ELSE amount END,
  currency = CASE WHEN $8::text <> '' THEN $8 ELSE currency END,
  event_count = event_count + 1,
  updated_at = now()
WHERE payment_id = $1
`, ev.PaymentID, occurred, statusFor(ev.Kind), ev.ShipmentID, ev.Method, ev.TransactionID, ev.Amount, ev.Currency)
	if err != nil {
		return false, errors.Wrap(err, "update checkout")
	}

	if err := tx.Commit(ctx); err != nil {
		return false, errors.Wrap(err, "commit tx")
	}
	return true, nil
}

func (s *Storage) ListByPayment(ctx context.Context, paymentID string, limit, offset int) ([]*models.CheckoutEventRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx, `
SELECT id, event_id, payment_id, kind, occurred_at, error, payload, created_at
FROM checkout_events
WHERE payment_id = $1
ORDER BY occurred_at DESC, id DESC
LIMIT $2 OFFSET $3
`, paymentID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select checkout events")
	}
	defer rows.Close()

	out := []*models.CheckoutEventRecord{}
	for rows.Next() {
		var e models.CheckoutEventRecord
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventID, &e.PaymentID, &e.Kind, &e.OccurredAt, &e.Error, &payload, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan checkout event")
		}
		e.Payload = payload
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

var ErrNotFound = errors.New("checkout not found")

func (s *Storage) GetCheckout(ctx context.Context, paymentID string) (*models.CheckoutRecord, error) {
	var c models.CheckoutRecord
	err := s.db.QueryRow(ctx, `
SELECT
  payment_id, shipment_id, tenant_id, status, method, transaction_id,
  amount::float8, currency, event_count, last_event_at, created_at, updated_at
FROM checkouts
WHERE payment_id = $1
`, paymentID).Scan(
		&c.PaymentID, &c.ShipmentID, &c.TenantID, &c.Status, &c.Method, &c.TransactionID,
		&c.Amount, &c.Currency, &c.EventCount, &c.LastEventAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select checkout")
	}
	return &c, nil
}
