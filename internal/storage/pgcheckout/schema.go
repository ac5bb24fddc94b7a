package pgcheckout

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS checkouts (
  payment_id TEXT PRIMARY KEY,
  shipment_id TEXT NOT NULL DEFAULT '',
  tenant_id TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  method TEXT NOT NULL DEFAULT '',
  transaction_id TEXT NOT NULL DEFAULT '',
  amount NUMERIC(14,2) NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT '',
  event_count INT NOT NULL DEFAULT 0,
  last_event_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_checkouts_tenant_status ON checkouts(tenant_id, status)`,
		`
CREATE TABLE IF NOT EXISTS checkout_events (
  id BIGSERIAL PRIMARY KEY,
  event_id TEXT NOT NULL,
  payment_id TEXT NOT NULL REFERENCES checkouts(payment_id) ON DELETE CASCADE,
  kind TEXT NOT NULL,
  occurred_at TIMESTAMPTZ NOT NULL,
  error TEXT NULL,
  payload JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		// Kafka delivers at least once; the producer's event id makes replays harmless.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_checkout_events_event_id ON checkout_events(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_checkout_events_payment_occurred ON checkout_events(payment_id, occurred_at DESC)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
