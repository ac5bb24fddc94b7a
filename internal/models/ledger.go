package models

import (
	"encoding/json"
	"time"
)

// Ledger statuses of a checkout, derived from the last lifecycle event recorded.
const (
	LedgerStatusInitiated           = "initiated"
	LedgerStatusPriceChanged        = "price_changed"
	LedgerStatusSucceeded           = "succeeded"
	LedgerStatusFailed              = "failed"
	LedgerStatusExpired             = "expired"
	LedgerStatusPendingVerification = "pending_verification"
)

// CheckoutRecord is the ledger's summary row for one payment.
type CheckoutRecord struct {
	PaymentID     string    `json:"payment_id"`
	ShipmentID    string    `json:"shipment_id"`
	TenantID      string    `json:"tenant_id"`
	Status        string    `json:"status"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	EventCount    int       `json:"event_count"`
	LastEventAt   time.Time `json:"last_event_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CheckoutEventRecord struct {
	ID         uint64          `json:"id"`
	EventID    string          `json:"event_id"`
	PaymentID  string          `json:"payment_id"`
	Kind       string          `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
	Error      *string         `json:"error,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}
