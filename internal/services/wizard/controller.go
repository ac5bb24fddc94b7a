package wizard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

type QuoteAPI interface {
	GetQuotes(ctx context.Context, req models.QuoteRequest) ([]models.Quote, error)
}

type ShipmentAPI interface {
	CreateShipment(ctx context.Context, req models.CreateShipmentRequest) (models.Shipment, error)
}

// Controller owns one wizard's state and runs the effects the reducer asks for.
// Effects run outside the lock so a slow quote request never blocks edits; a result that
// arrives after the inputs changed is dropped by generation.
type Controller struct {
	mu    sync.Mutex
	state State

	quotes    QuoteAPI
	shipments ShipmentAPI
}

func NewController(initial State, quotes QuoteAPI, shipments ShipmentAPI) *Controller {
	return &Controller{state: initial, quotes: quotes, shipments: shipments}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Dispatch applies ev and drives any resulting effect to completion. The returned error is
// the local validation failure of ev, if any; remote failures land in the state.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (State, error) {
	st, eff := c.apply(ev)
	var verr error
	if st.Invalid != nil {
		verr = st.Invalid
	}
	for eff != nil {
		st, eff = c.apply(c.run(ctx, eff))
	}
	return st, verr
}

func (c *Controller) apply(ev Event) (State, Effect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, eff := Reduce(c.state, ev)
	c.state = next
	return next.clone(), eff
}

func (c *Controller) run(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case FetchQuotes:
		quotes, err := c.quotes.GetQuotes(ctx, e.Request)
		if err != nil {
			slog.Error("fetch quotes", "generation", e.Generation, "error", err.Error())
			return QuotesFailed{Generation: e.Generation, Message: portal.ErrorMessage(err)}
		}
		return QuotesLoaded{Generation: e.Generation, Quotes: quotes}
	case CreateShipment:
		sh, err := c.shipments.CreateShipment(ctx, e.Request)
		if err != nil {
			slog.Error("create shipment", "quote_id", e.Request.QuoteID, "error", err.Error())
			return SubmitFailed{Message: portal.ErrorMessage(err)}
		}
		slog.Info("shipment created", "shipment_id", sh.ID, "payment_id", sh.PaymentID)
		return Submitted{Shipment: sh}
	}
	return nil
}
