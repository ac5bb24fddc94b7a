package wizard

import (
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

type Step int

const (
	StepAddresses Step = iota
	StepItems
	StepOptions
	StepServiceQuotes
	StepReview
)

var stepNames = [...]string{"addresses", "items", "options", "service_quotes", "review"}

func (s Step) String() string {
	if s < StepAddresses || s > StepReview {
		return "unknown"
	}
	return stepNames[s]
}

func (s Step) Valid() bool { return s >= StepAddresses && s <= StepReview }

func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Step) UnmarshalText(b []byte) error {
	for i, n := range stepNames {
		if n == string(b) {
			*s = Step(i)
			return nil
		}
	}
	return ErrUnknownStep
}

// FormData is the mutable aggregate the wizard steps edit.
type FormData struct {
	Origin        models.Address         `json:"origin"`
	Destination   models.Address         `json:"destination"`
	Items         []models.Item          `json:"items"`
	Options       models.ShipmentOptions `json:"options"`
	Quotes        []models.Quote         `json:"quotes"`
	SelectedQuote *models.Quote          `json:"selected_quote,omitempty"`
}

// Prefill carries what a prior quote flow already collected.
type Prefill struct {
	Origin      models.Address `json:"origin"`
	Destination models.Address `json:"destination"`
	Items       []models.Item  `json:"items"`
	Insurance   bool           `json:"insurance"`
}

type State struct {
	Step Step     `json:"step"`
	Form FormData `json:"form"`

	// Generation identifies the latest quote request; results carrying another value are dropped.
	Generation    uint64 `json:"generation"`
	QuotesFetched bool   `json:"quotes_fetched"`
	LoadingQuotes bool   `json:"loading_quotes"`
	QuoteError    string `json:"quote_error,omitempty"`

	Submitting  bool             `json:"submitting"`
	SubmitError string           `json:"submit_error,omitempty"`
	Created     *models.Shipment `json:"created,omitempty"`

	Invalid *ValidationError `json:"invalid,omitempty"`
}

func NewState(prefill *Prefill) State {
	st := State{
		Step: StepAddresses,
		Form: FormData{
			Items:   []models.Item{},
			Options: models.ShipmentOptions{PickupType: models.PickupTypePickup},
		},
	}
	if prefill != nil {
		st.Form.Origin = prefill.Origin
		st.Form.Destination = prefill.Destination
		st.Form.Items = append(st.Form.Items, prefill.Items...)
		st.Form.Options.Insurance = prefill.Insurance
	}
	return st
}

// Done reports that the shipment was created and the wizard has been left.
func (s State) Done() bool { return s.Created != nil }

func (s State) QuoteRequest() models.QuoteRequest {
	return models.QuoteRequest{
		Origin:      s.Form.Origin,
		Destination: s.Form.Destination,
		Items:       append([]models.Item(nil), s.Form.Items...),
		Insurance:   s.Form.Options.Insurance,
	}
}

func (s State) clone() State {
	out := s
	out.Form.Items = append([]models.Item(nil), s.Form.Items...)
	if out.Form.Items == nil {
		out.Form.Items = []models.Item{}
	}
	out.Form.Quotes = append([]models.Quote(nil), s.Form.Quotes...)
	if s.Form.SelectedQuote != nil {
		q := *s.Form.SelectedQuote
		out.Form.SelectedQuote = &q
	}
	return out
}
