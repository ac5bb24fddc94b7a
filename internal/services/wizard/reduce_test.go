package wizard

import (
	"errors"
	"testing"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/stretchr/testify/require"
)

func addr(name string) models.Address {
	return models.Address{
		Name:         name,
		AddressLine1: "1 Marina Rd",
		City:         "Lagos",
		State:        "LA",
		PostalCode:   "100001",
		Country:      "NG",
		Phone:        "+2348000000000",
	}
}

func item() models.Item {
	return models.Item{Category: "documents", Description: "Contracts", PackageType: "envelope", Quantity: 1, Weight: 0.5}
}

func quotes() []models.Quote {
	return []models.Quote{
		{QuoteID: "q1", CarrierCode: "DHL", ServiceCode: "EXP", BaseRate: 100, TotalAmount: 100},
		{QuoteID: "q2", CarrierCode: "UPS", ServiceCode: "STD", BaseRate: 80, TotalAmount: 80},
	}
}

func mustReduce(t *testing.T, st State, ev Event) (State, Effect) {
	t.Helper()
	next, eff := Reduce(st, ev)
	require.Nil(t, next.Invalid, "unexpected validation error for %T", ev)
	return next, eff
}

// atQuotes walks a complete form to ServiceQuotes with quotes loaded and q1 selected.
func atQuotes(t *testing.T) State {
	t.Helper()
	st := NewState(&Prefill{Origin: addr("Ada"), Destination: addr("Bayo"), Items: []models.Item{item()}})
	st, _ = mustReduce(t, st, Next{})
	st, _ = mustReduce(t, st, Next{})
	st, eff := mustReduce(t, st, Next{})
	require.Equal(t, StepServiceQuotes, st.Step)
	fetch := eff.(FetchQuotes)
	st, _ = mustReduce(t, st, QuotesLoaded{Generation: fetch.Generation, Quotes: quotes()})
	st, _ = mustReduce(t, st, SelectQuote{QuoteID: "q1"})
	return st
}

func TestStepGating_Addresses(t *testing.T) {
	st := NewState(nil)
	st, _ = Reduce(st, UpdateOrigin{Address: addr("Ada")})
	incomplete := addr("Bayo")
	incomplete.PostalCode = ""
	st, _ = Reduce(st, UpdateDestination{Address: incomplete})

	blocked, eff := Reduce(st, Next{})
	require.Nil(t, eff)
	require.Equal(t, StepAddresses, blocked.Step)
	require.NotNil(t, blocked.Invalid)
	require.True(t, errors.Is(blocked.Invalid, ErrStepIncomplete))
	require.Equal(t, map[string]string{"destination.postal_code": "is required"}, blocked.Invalid.Fields)

	st, _ = Reduce(st, UpdateDestination{Address: addr("Bayo")})
	st, eff = mustReduce(t, st, Next{})
	require.Nil(t, eff)
	require.Equal(t, StepItems, st.Step)
}

func TestStepGating_EachRequiredAddressField(t *testing.T) {
	clear := map[string]func(*models.Address){
		"name":           func(a *models.Address) { a.Name = "" },
		"address_line_1": func(a *models.Address) { a.AddressLine1 = "" },
		"city":           func(a *models.Address) { a.City = "" },
		"state":          func(a *models.Address) { a.State = "" },
		"postal_code":    func(a *models.Address) { a.PostalCode = "" },
		"country":        func(a *models.Address) { a.Country = "" },
		"phone":          func(a *models.Address) { a.Phone = "" },
	}
	for field, fn := range clear {
		t.Run(field, func(t *testing.T) {
			origin := addr("Ada")
			fn(&origin)
			st := NewState(&Prefill{Origin: origin, Destination: addr("Bayo")})
			next, _ := Reduce(st, Next{})
			require.Equal(t, StepAddresses, next.Step)
			require.Contains(t, next.Invalid.Fields, "origin."+field)
			require.False(t, AddressComplete(origin))
		})
	}
}

func TestStepGating_ItemsAndOptions(t *testing.T) {
	st := NewState(&Prefill{Origin: addr("Ada"), Destination: addr("Bayo")})
	st, _ = mustReduce(t, st, Next{})

	next, _ := Reduce(st, Next{})
	require.True(t, errors.Is(next.Invalid, ErrNoItems))

	bad := item()
	bad.Weight = 0
	st, _ = mustReduce(t, st, AddItem{Item: bad})
	next, _ = Reduce(st, Next{})
	require.Equal(t, "must be greater than 0", next.Invalid.Fields["items[0].weight"])

	st, _ = mustReduce(t, st, UpdateItem{Index: 0, Item: item()})
	st, _ = mustReduce(t, st, Next{})
	require.Equal(t, StepOptions, st.Step)

	st, _ = mustReduce(t, st, UpdateOptions{Options: models.ShipmentOptions{PickupType: models.PickupTypeScheduled}})
	next, _ = Reduce(st, Next{})
	require.Contains(t, next.Invalid.Fields, "options.scheduled_date")
}

func TestEnteringServiceQuotes_AlwaysFetches(t *testing.T) {
	st := atQuotes(t)
	gen := st.Generation

	st, eff := mustReduce(t, st, Next{})
	require.Equal(t, StepReview, st.Step)
	require.Nil(t, eff)

	st, eff = mustReduce(t, st, Back{})
	require.Equal(t, StepServiceQuotes, st.Step)
	fetch, ok := eff.(FetchQuotes)
	require.True(t, ok)
	require.Equal(t, gen+1, fetch.Generation)
	require.True(t, st.LoadingQuotes)

	// Same quote offered again: the selection survives the refresh.
	st, _ = mustReduce(t, st, QuotesLoaded{Generation: fetch.Generation, Quotes: quotes()})
	require.NotNil(t, st.Form.SelectedQuote)
	require.Equal(t, "q1", st.Form.SelectedQuote.QuoteID)
}

func TestDirtyInvalidation(t *testing.T) {
	cases := map[string]Event{
		"origin field":      UpdateOrigin{Address: func() models.Address { a := addr("Ada"); a.City = "Abuja"; return a }()},
		"destination field": UpdateDestination{Address: func() models.Address { a := addr("Bayo"); a.Phone = "+2349999"; return a }()},
		"item field":        UpdateItem{Index: 0, Item: func() models.Item { i := item(); i.Quantity = 3; return i }()},
		"add item":          AddItem{Item: item()},
		"remove item":       RemoveItem{Index: 0},
		"insurance flag":    UpdateOptions{Options: models.ShipmentOptions{PickupType: models.PickupTypePickup, Insurance: true}},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			st := atQuotes(t)
			st, _ = mustReduce(t, st, Back{})
			st, _ = mustReduce(t, st, Back{})
			require.Equal(t, StepItems, st.Step)
			require.NotEmpty(t, st.Form.Quotes)

			st, eff := mustReduce(t, st, ev)
			require.Nil(t, eff)
			require.Empty(t, st.Form.Quotes)
			require.Nil(t, st.Form.SelectedQuote)
		})
	}
}

func TestNonQuoteInputs_KeepQuotes(t *testing.T) {
	st := atQuotes(t)
	st, _ = mustReduce(t, st, UpdateOptions{Options: models.ShipmentOptions{PickupType: models.PickupTypeDropoff, Notes: "fragile"}})
	require.Len(t, st.Form.Quotes, 2)
	require.NotNil(t, st.Form.SelectedQuote)

	st, _ = mustReduce(t, st, UpdateOrigin{Address: addr("Ada")})
	require.NotNil(t, st.Form.SelectedQuote)
}

func TestStaleQuoteResponse_Discarded(t *testing.T) {
	st := NewState(&Prefill{Origin: addr("Ada"), Destination: addr("Bayo"), Items: []models.Item{item()}})
	st, _ = mustReduce(t, st, Next{})
	st, _ = mustReduce(t, st, Next{})
	st, eff := mustReduce(t, st, Next{})
	first := eff.(FetchQuotes)

	// Inputs change while the first request is in flight.
	st, eff = mustReduce(t, st, UpdateOptions{Options: models.ShipmentOptions{PickupType: models.PickupTypePickup, Insurance: true}})
	second := eff.(FetchQuotes)
	require.Greater(t, second.Generation, first.Generation)
	require.True(t, second.Request.Insurance)

	st, _ = mustReduce(t, st, QuotesLoaded{Generation: first.Generation, Quotes: quotes()})
	require.Empty(t, st.Form.Quotes)
	require.True(t, st.LoadingQuotes)

	st, _ = mustReduce(t, st, QuotesFailed{Generation: first.Generation, Message: "late"})
	require.Empty(t, st.QuoteError)

	st, _ = mustReduce(t, st, QuotesLoaded{Generation: second.Generation, Quotes: quotes()[:1]})
	require.Len(t, st.Form.Quotes, 1)
	require.False(t, st.LoadingQuotes)
}

func TestQuoteFailure_RetryKeepsForm(t *testing.T) {
	st := NewState(&Prefill{Origin: addr("Ada"), Destination: addr("Bayo"), Items: []models.Item{item()}})
	st, _ = mustReduce(t, st, Next{})
	st, _ = mustReduce(t, st, Next{})
	st, eff := mustReduce(t, st, Next{})

	st, _ = mustReduce(t, st, QuotesFailed{Generation: eff.(FetchQuotes).Generation, Message: "Network error"})
	require.Equal(t, "Network error", st.QuoteError)
	require.False(t, st.LoadingQuotes)
	require.Equal(t, addr("Ada"), st.Form.Origin)
	require.Len(t, st.Form.Items, 1)

	next, _ := Reduce(st, Next{})
	require.True(t, errors.Is(next.Invalid, ErrNoQuoteSelected))

	st, eff = mustReduce(t, st, RetryQuotes{})
	require.IsType(t, FetchQuotes{}, eff)
	require.Empty(t, st.QuoteError)
}

func TestGoTo_OnlyBackwards(t *testing.T) {
	st := NewState(&Prefill{Origin: addr("Ada"), Destination: addr("Bayo")})
	st, _ = mustReduce(t, st, Next{})

	next, _ := Reduce(st, GoTo{Step: StepReview})
	require.Equal(t, StepItems, next.Step)
	require.True(t, errors.Is(next.Invalid, ErrStepNotVisited))

	next, _ = mustReduce(t, st, GoTo{Step: StepAddresses})
	require.Equal(t, StepAddresses, next.Step)

	next, _ = Reduce(st, GoTo{Step: Step(42)})
	require.True(t, errors.Is(next.Invalid, ErrUnknownStep))
}

func TestSubmit(t *testing.T) {
	st := atQuotes(t)
	st, _ = mustReduce(t, st, Next{})

	st, eff := mustReduce(t, st, Submit{})
	create, ok := eff.(CreateShipment)
	require.True(t, ok)
	require.Equal(t, "q1", create.Request.QuoteID)
	require.Equal(t, "DHL", create.Request.CarrierCode)
	require.True(t, st.Submitting)

	// Duplicate submission while one is pending is ignored.
	_, eff = mustReduce(t, st, Submit{})
	require.Nil(t, eff)

	failed, _ := mustReduce(t, st, SubmitFailed{Message: "Carrier unavailable"})
	require.Equal(t, StepReview, failed.Step)
	require.Equal(t, "Carrier unavailable", failed.SubmitError)
	require.NotNil(t, failed.Form.SelectedQuote)
	dismissed, _ := mustReduce(t, failed, DismissError{})
	require.Empty(t, dismissed.SubmitError)

	done, _ := mustReduce(t, st, Submitted{Shipment: models.Shipment{ID: "sh_1", PaymentID: "pay_1"}})
	require.True(t, done.Done())
	require.Equal(t, "pay_1", done.Created.PaymentID)
}

func TestSubmit_WithoutSelectedQuote(t *testing.T) {
	st := atQuotes(t)
	st, _ = mustReduce(t, st, Next{})
	st.Form.SelectedQuote = nil

	next, eff := Reduce(st, Submit{})
	require.Nil(t, eff)
	require.False(t, next.Submitting)
	require.True(t, errors.Is(next.Invalid, ErrNoQuoteSelected))
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	st := atQuotes(t)
	before := st.clone()
	_, _ = Reduce(st, RemoveItem{Index: 0})
	_, _ = Reduce(st, UpdateItem{Index: 0, Item: models.Item{Category: "x"}})
	require.Equal(t, before, st)
}

func TestStepText(t *testing.T) {
	b, err := StepServiceQuotes.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "service_quotes", string(b))

	var s Step
	require.NoError(t, s.UnmarshalText([]byte("review")))
	require.Equal(t, StepReview, s)
	require.ErrorIs(t, s.UnmarshalText([]byte("payment")), ErrUnknownStep)
}
