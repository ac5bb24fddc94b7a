package models

import "time"

type PaymentMethodType string

const (
	PaymentMethodWallet         PaymentMethodType = "wallet"
	PaymentMethodBankTransfer   PaymentMethodType = "bank_transfer"
	PaymentMethodVirtualAccount PaymentMethodType = "virtual_account"
	PaymentMethodCard           PaymentMethodType = "card"
)

type PaymentMethod struct {
	ID          string            `json:"id"`
	Type        PaymentMethodType `json:"type"`
	Name        string            `json:"name"`
	Provider    string            `json:"provider"`
	Description string            `json:"description,omitempty"`
	Enabled     bool              `json:"enabled"`
}

type PayerInfo struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// Pages a provider can ask the client to render for an initiated payment.
const (
	PageUploadProof = "upload_proof"
	PageRedirect    = "redirect"
)

type TransactionData struct {
	Page          string  `json:"page"`
	TransactionID string  `json:"transaction_id"`
	Reference     string  `json:"reference,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	AccountNumber string  `json:"account_number,omitempty"`
	AccountName   string  `json:"account_name,omitempty"`
	BankName      string  `json:"bank_name,omitempty"`
	RedirectURL   string  `json:"redirect_url,omitempty"`
	Instructions  string  `json:"instructions,omitempty"`
}

type PayResult struct {
	TransactionData              TransactionData `json:"transaction_data"`
	CheckoutExpiresAt            time.Time       `json:"checkout_expires_at"`
	CheckoutValidDurationMinutes int             `json:"checkout_valid_duration_minutes"`
}

type CheckoutStatus string

const (
	CheckoutStatusPending CheckoutStatus = "pending"
	CheckoutStatusSuccess CheckoutStatus = "success"
	CheckoutStatusFailed  CheckoutStatus = "failed"
	CheckoutStatusExpired CheckoutStatus = "expired"
)

func (s CheckoutStatus) Terminal() bool {
	return s == CheckoutStatusSuccess || s == CheckoutStatusFailed || s == CheckoutStatusExpired
}

type ValidateResult struct {
	Status  CheckoutStatus `json:"status"`
	Message string         `json:"message,omitempty"`
}

// CheckoutSession lives only as long as the payment flow that created it.
type CheckoutSession struct {
	PaymentID         string          `json:"payment_id"`
	TransactionData   TransactionData `json:"transaction_data"`
	CheckoutExpiresAt time.Time       `json:"checkout_expires_at"`
	SelectedMethod    PaymentMethod   `json:"selected_method"`
}

type Transaction struct {
	ID         string    `json:"id"`
	Reference  string    `json:"reference"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	Method     string    `json:"method"`
	ShipmentID string    `json:"shipment_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Wallet struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}
