package payment

import (
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

type Phase string

const (
	PhaseMethodSelection     Phase = "method_selection"
	PhaseConfirmation        Phase = "confirmation"
	PhasePriceChanged        Phase = "price_changed"
	PhaseProcessing          Phase = "processing"
	PhaseSuccess             Phase = "success"
	PhaseFailed              Phase = "failed"
	PhaseExpired             Phase = "expired"
	PhasePendingVerification Phase = "pending_verification"
)

func (p Phase) Terminal() bool {
	switch p {
	case PhaseSuccess, PhaseFailed, PhaseExpired, PhasePendingVerification:
		return true
	}
	return false
}

// Mode is the provider-specific screen shown while processing.
type Mode string

const (
	ModeUploadProof Mode = models.PageUploadProof
	ModeRedirect    Mode = models.PageRedirect
)

// ModeFor picks the processing screen from the provider's page hint, falling back to the
// method type when the hint is missing or unknown.
func ModeFor(td models.TransactionData, method models.PaymentMethodType) Mode {
	switch td.Page {
	case models.PageUploadProof:
		return ModeUploadProof
	case models.PageRedirect:
		return ModeRedirect
	}
	if method == models.PaymentMethodBankTransfer {
		return ModeUploadProof
	}
	return ModeRedirect
}

// Checkout identifies what is being paid for.
type Checkout struct {
	PaymentID  string  `json:"payment_id"`
	ShipmentID string  `json:"shipment_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

type State struct {
	Phase    Phase    `json:"phase"`
	Checkout Checkout `json:"checkout"`

	Methods             []models.PaymentMethod `json:"methods"`
	Selected            *models.PaymentMethod  `json:"selected,omitempty"`
	Payer               models.PayerInfo       `json:"payer"`
	Wallet              *models.Wallet         `json:"wallet,omitempty"`
	InsufficientBalance bool                   `json:"insufficient_balance"`

	CandidateQuotes []models.Quote `json:"candidate_quotes,omitempty"`

	Session   *models.CheckoutSession `json:"session,omitempty"`
	Mode      Mode                    `json:"mode,omitempty"`
	Remaining time.Duration           `json:"-"`
	Seconds   int64                   `json:"remaining_seconds"`
	Warning   bool                    `json:"warning"`
	WarnAt    time.Duration           `json:"-"`
	ProofName string                  `json:"proof_name,omitempty"`

	Busy    bool             `json:"busy"`
	Error   string           `json:"error,omitempty"`
	Invalid *ValidationError `json:"invalid,omitempty"`
}

func NewState(co Checkout) State {
	return State{Phase: PhaseMethodSelection, Checkout: co}
}

func (s State) payRequest() portal.PayRequest {
	req := portal.PayRequest{Payer: s.Payer}
	if s.Selected != nil {
		req.PaymentMethodID = s.Selected.ID
		req.PaymentMethodType = s.Selected.Type
	}
	return req
}

func (s State) clone() State {
	out := s
	out.Methods = append([]models.PaymentMethod(nil), s.Methods...)
	out.CandidateQuotes = append([]models.Quote(nil), s.CandidateQuotes...)
	if s.Selected != nil {
		m := *s.Selected
		out.Selected = &m
	}
	if s.Wallet != nil {
		w := *s.Wallet
		out.Wallet = &w
	}
	if s.Session != nil {
		sess := *s.Session
		out.Session = &sess
	}
	return out
}
