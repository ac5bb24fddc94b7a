package wizard

import (
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

// Reduce applies ev to st and returns the next state plus the effect to run, if any.
// It never mutates st.
func Reduce(st State, ev Event) (State, Effect) {
	next := st.clone()
	next.Invalid = nil
	if st.Done() {
		return next, nil
	}

	switch e := ev.(type) {
	case UpdateOrigin:
		if next.Form.Origin != e.Address {
			next.Form.Origin = e.Address
			return next.invalidateQuotes()
		}
	case UpdateDestination:
		if next.Form.Destination != e.Address {
			next.Form.Destination = e.Address
			return next.invalidateQuotes()
		}
	case AddItem:
		next.Form.Items = append(next.Form.Items, e.Item)
		return next.invalidateQuotes()
	case UpdateItem:
		if e.Index < 0 || e.Index >= len(next.Form.Items) {
			next.Invalid = invalid(ErrItemIndex, nil)
			return next, nil
		}
		if next.Form.Items[e.Index] != e.Item {
			next.Form.Items[e.Index] = e.Item
			return next.invalidateQuotes()
		}
	case RemoveItem:
		if e.Index < 0 || e.Index >= len(next.Form.Items) {
			next.Invalid = invalid(ErrItemIndex, nil)
			return next, nil
		}
		next.Form.Items = append(next.Form.Items[:e.Index], next.Form.Items[e.Index+1:]...)
		return next.invalidateQuotes()
	case UpdateOptions:
		insuranceChanged := next.Form.Options.Insurance != e.Options.Insurance
		next.Form.Options = e.Options
		if insuranceChanged {
			return next.invalidateQuotes()
		}

	case Next:
		if next.Step == StepReview {
			return next, nil
		}
		if next.Step == StepServiceQuotes && next.LoadingQuotes {
			next.Invalid = invalid(ErrQuotesLoading, nil)
			return next, nil
		}
		if v := checkStep(next.Step, next.Form); v != nil {
			next.Invalid = v
			return next, nil
		}
		return next.enter(next.Step + 1)
	case Back:
		if next.Step == StepAddresses {
			return next, nil
		}
		return next.enter(next.Step - 1)
	case GoTo:
		if !e.Step.Valid() {
			next.Invalid = invalid(ErrUnknownStep, nil)
			return next, nil
		}
		if e.Step > next.Step {
			next.Invalid = invalid(ErrStepNotVisited, nil)
			return next, nil
		}
		if e.Step == next.Step {
			return next, nil
		}
		return next.enter(e.Step)

	case QuotesLoaded:
		if e.Generation != next.Generation || !next.LoadingQuotes {
			return next, nil
		}
		next.LoadingQuotes = false
		next.QuotesFetched = true
		next.QuoteError = ""
		next.Form.Quotes = append([]models.Quote(nil), e.Quotes...)
		next.Form.SelectedQuote = reselect(next.Form.SelectedQuote, next.Form.Quotes)
	case QuotesFailed:
		if e.Generation != next.Generation || !next.LoadingQuotes {
			return next, nil
		}
		next.LoadingQuotes = false
		next.QuoteError = e.Message
	case RetryQuotes:
		if next.Step != StepServiceQuotes || next.LoadingQuotes {
			return next, nil
		}
		return next.fetchQuotes()
	case SelectQuote:
		for i := range next.Form.Quotes {
			if next.Form.Quotes[i].QuoteID == e.QuoteID {
				q := next.Form.Quotes[i]
				next.Form.SelectedQuote = &q
				return next, nil
			}
		}
		next.Invalid = invalid(ErrQuoteNotFound, nil)

	case Submit:
		if next.Step != StepReview || next.Submitting {
			return next, nil
		}
		for s := StepAddresses; s <= StepReview; s++ {
			if v := checkStep(s, next.Form); v != nil {
				next.Invalid = v
				return next, nil
			}
		}
		next.Submitting = true
		next.SubmitError = ""
		return next, CreateShipment{Request: next.createRequest()}
	case Submitted:
		if !next.Submitting {
			return next, nil
		}
		shipment := e.Shipment
		next.Submitting = false
		next.Created = &shipment
	case SubmitFailed:
		if !next.Submitting {
			return next, nil
		}
		next.Submitting = false
		next.SubmitError = e.Message
	case DismissError:
		next.SubmitError = ""
	}
	return next, nil
}

func (s State) enter(step Step) (State, Effect) {
	s.Step = step
	if step == StepServiceQuotes {
		return s.fetchQuotes()
	}
	return s, nil
}

func (s State) fetchQuotes() (State, Effect) {
	s.Generation++
	s.LoadingQuotes = true
	s.QuoteError = ""
	return s, FetchQuotes{Generation: s.Generation, Request: s.QuoteRequest()}
}

// invalidateQuotes drops quotes computed from inputs that no longer hold. Any request in
// flight is superseded by bumping the generation.
func (s State) invalidateQuotes() (State, Effect) {
	if !s.QuotesFetched && !s.LoadingQuotes {
		return s, nil
	}
	s.Form.Quotes = nil
	s.Form.SelectedQuote = nil
	s.QuotesFetched = false
	s.LoadingQuotes = false
	s.QuoteError = ""
	s.Generation++
	if s.Step == StepServiceQuotes {
		return s.fetchQuotes()
	}
	return s, nil
}

func (s State) createRequest() models.CreateShipmentRequest {
	q := s.Form.SelectedQuote
	return models.CreateShipmentRequest{
		Origin:      s.Form.Origin,
		Destination: s.Form.Destination,
		Items:       append([]models.Item(nil), s.Form.Items...),
		Options:     s.Form.Options,
		QuoteID:     q.QuoteID,
		CarrierCode: q.CarrierCode,
		ServiceCode: q.ServiceCode,
	}
}

// reselect keeps a prior selection only if the refreshed list still offers it.
func reselect(prev *models.Quote, quotes []models.Quote) *models.Quote {
	if prev == nil {
		return nil
	}
	for i := range quotes {
		if quotes[i].QuoteID == prev.QuoteID {
			q := quotes[i]
			return &q
		}
	}
	return nil
}
