package messages

import (
	"time"

	"github.com/google/uuid"
)

// Kinds of checkout lifecycle events.
const (
	CheckoutInitiated           = "checkout.initiated"
	CheckoutPriceChanged        = "checkout.price_changed"
	CheckoutSucceeded           = "checkout.succeeded"
	CheckoutFailed              = "checkout.failed"
	CheckoutExpired             = "checkout.expired"
	CheckoutPendingVerification = "checkout.pending_verification"
)

type CheckoutEvent struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	PaymentID  string    `json:"payment_id"`
	ShipmentID string    `json:"shipment_id,omitempty"`
	TenantID   string    `json:"tenant_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	Method        string     `json:"method,omitempty"`
	Mode          string     `json:"mode,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Amount        float64    `json:"amount,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`

	Error *string `json:"error,omitempty"`
}

func NewCheckoutEvent(kind, paymentID string, at time.Time) CheckoutEvent {
	return CheckoutEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		PaymentID:  paymentID,
		OccurredAt: at.UTC(),
	}
}
