package payment

import (
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

type Event interface{ isEvent() }

type (
	MethodsLoaded struct {
		Methods []models.PaymentMethod
		Wallet  *models.Wallet
	}
	LoadFailed   struct{ Message string }
	SelectMethod struct{ MethodID string }
	UpdatePayer  struct{ Payer models.PayerInfo }
	Proceed      struct{}
	EditDetails  struct{}
	Confirm      struct{}

	Initiated      struct{ Result models.PayResult }
	InitiateFailed struct{ Err error }

	PickQuote         struct{ QuoteID string }
	CancelPriceChange struct{}

	Tick          struct{ Remaining time.Duration }
	Expire        struct{}
	StatusChanged struct{ Status models.CheckoutStatus }

	SubmitProof struct {
		Filename string
		Data     []byte
	}
	ProofAccepted struct{}
	ProofFailed   struct{ Message string }

	DismissError struct{}
)

func (MethodsLoaded) isEvent()     {}
func (LoadFailed) isEvent()        {}
func (SelectMethod) isEvent()      {}
func (UpdatePayer) isEvent()       {}
func (Proceed) isEvent()           {}
func (EditDetails) isEvent()       {}
func (Confirm) isEvent()           {}
func (Initiated) isEvent()         {}
func (InitiateFailed) isEvent()    {}
func (PickQuote) isEvent()         {}
func (CancelPriceChange) isEvent() {}
func (Tick) isEvent()              {}
func (Expire) isEvent()            {}
func (StatusChanged) isEvent()     {}
func (SubmitProof) isEvent()       {}
func (ProofAccepted) isEvent()     {}
func (ProofFailed) isEvent()       {}
func (DismissError) isEvent()      {}

type Effect interface{ isEffect() }

type (
	InitiatePayment struct {
		PaymentID string
		Request   portal.PayRequest
	}
	// Reprice moves the shipment onto the chosen quote and retries initiation.
	Reprice struct {
		PaymentID  string
		ShipmentID string
		Quote      models.Quote
		Request    portal.PayRequest
	}
	StartCountdown struct{ ExpiresAt time.Time }
	StopCountdown  struct{}
	StartPolling   struct{ PaymentID string }
	StopPolling    struct{ PaymentID string }
	UploadProof    struct {
		TransactionID string
		Filename      string
		Data          []byte
	}
	// Notify records a lifecycle transition on the event bus.
	Notify struct {
		Kind  string
		Error string
	}
)

func (InitiatePayment) isEffect() {}
func (Reprice) isEffect()         {}
func (StartCountdown) isEffect()  {}
func (StopCountdown) isEffect()   {}
func (StartPolling) isEffect()    {}
func (StopPolling) isEffect()     {}
func (UploadProof) isEffect()     {}
func (Notify) isEffect()          {}
