package wizard

import "github.com/Jaysins/ohship-tenant-sub000/internal/models"

// Event is anything the reducer accepts.
type Event interface{ isEvent() }

type (
	UpdateOrigin      struct{ Address models.Address }
	UpdateDestination struct{ Address models.Address }
	AddItem           struct{ Item models.Item }
	UpdateItem        struct {
		Index int
		Item  models.Item
	}
	RemoveItem    struct{ Index int }
	UpdateOptions struct{ Options models.ShipmentOptions }

	Next struct{}
	Back struct{}
	GoTo struct{ Step Step }

	QuotesLoaded struct {
		Generation uint64
		Quotes     []models.Quote
	}
	QuotesFailed struct {
		Generation uint64
		Message    string
	}
	RetryQuotes struct{}
	SelectQuote struct{ QuoteID string }

	Submit       struct{}
	Submitted    struct{ Shipment models.Shipment }
	SubmitFailed struct{ Message string }
	DismissError struct{}
)

func (UpdateOrigin) isEvent()      {}
func (UpdateDestination) isEvent() {}
func (AddItem) isEvent()           {}
func (UpdateItem) isEvent()        {}
func (RemoveItem) isEvent()        {}
func (UpdateOptions) isEvent()     {}
func (Next) isEvent()              {}
func (Back) isEvent()              {}
func (GoTo) isEvent()              {}
func (QuotesLoaded) isEvent()      {}
func (QuotesFailed) isEvent()      {}
func (RetryQuotes) isEvent()       {}
func (SelectQuote) isEvent()       {}
func (Submit) isEvent()            {}
func (Submitted) isEvent()         {}
func (SubmitFailed) isEvent()      {}
func (DismissError) isEvent()      {}

// Effect is work the reducer asks its owner to perform. Its outcome comes back as an Event.
type Effect interface{ isEffect() }

type FetchQuotes struct {
	Generation uint64
	Request    models.QuoteRequest
}

type CreateShipment struct {
	Request models.CreateShipmentRequest
}

func (FetchQuotes) isEffect()    {}
func (CreateShipment) isEffect() {}
