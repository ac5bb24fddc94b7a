package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/messages"
	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/pkg/errors"
)

type API interface {
	ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	GetWallet(ctx context.Context) (models.Wallet, error)
	InitiatePayment(ctx context.Context, paymentID string, req portal.PayRequest) (models.PayResult, error)
	UpdateShipment(ctx context.Context, id string, req models.UpdateShipmentRequest) (models.Shipment, error)
	UploadProof(ctx context.Context, transactionID, filename string, r io.Reader) error
}

// StatusWatcher polls the checkout status on the controller's behalf. Watch must not call fn
// before it returns.
type StatusWatcher interface {
	Watch(paymentID string, fn func(models.CheckoutStatus))
	Unwatch(paymentID string)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Option func(*Controller)

func WithWatcher(w StatusWatcher) Option {
	return func(c *Controller) { c.watcher = w }
}

func WithPublisher(p Publisher, topic string) Option {
	return func(c *Controller) { c.publisher, c.topic = p, topic }
}

func WithTenant(id string) Option {
	return func(c *Controller) { c.tenantID = id }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) { c.tick = d }
}

func WithWarning(d time.Duration) Option {
	return func(c *Controller) { c.state.WarnAt = d }
}

// Controller owns one checkout. It runs the reducer's effects, owns the countdown and the
// status watch, and releases both on every way out, including Close.
type Controller struct {
	mu        sync.Mutex
	state     State
	countdown *Countdown
	closed    bool

	api       API
	watcher   StatusWatcher
	publisher Publisher
	topic     string
	tenantID  string
	now       func() time.Time
	tick      time.Duration
}

func NewController(co Checkout, api API, opts ...Option) *Controller {
	c := &Controller{state: NewState(co), api: api, now: time.Now, tick: TickInterval}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Load fetches the tenant's payment methods and, when a wallet method is offered, the
// wallet balance. A wallet lookup failure only hides the balance warning.
func (c *Controller) Load(ctx context.Context) (State, error) {
	methods, err := c.api.ListPaymentMethods(ctx)
	if err != nil {
		slog.Error("list payment methods", "payment_id", c.PaymentID(), "error", err.Error())
		st, _ := c.Dispatch(ctx, LoadFailed{Message: portal.ErrorMessage(err)})
		return st, err
	}
	var wallet *models.Wallet
	for _, m := range methods {
		if m.Type != models.PaymentMethodWallet {
			continue
		}
		w, err := c.api.GetWallet(ctx)
		if err != nil {
			slog.Warn("wallet balance unavailable", "error", err.Error())
			break
		}
		wallet = &w
		break
	}
	return c.Dispatch(ctx, MethodsLoaded{Methods: methods, Wallet: wallet})
}

// Dispatch applies ev and runs every resulting effect. The returned error is the local
// validation failure of ev; remote failures are reported through the state.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (State, error) {
	st, queue, ok := c.apply(ev)
	if !ok {
		return st, ErrClosed
	}
	var verr error
	if st.Invalid != nil {
		verr = st.Invalid
	}
	for len(queue) > 0 {
		eff := queue[0]
		queue = queue[1:]
		out := c.run(ctx, eff)
		if out == nil {
			continue
		}
		_, more, ok := c.apply(out)
		if !ok {
			break
		}
		queue = append(queue, more...)
	}
	return c.State(), verr
}

// SubmitProof reads at most one byte past the size limit, enough to reject oversized files
// without buffering them whole.
func (c *Controller) SubmitProof(ctx context.Context, filename string, r io.Reader) (State, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxProofSize+1))
	if err != nil {
		return c.State(), errors.Wrap(err, "read proof")
	}
	return c.Dispatch(ctx, SubmitProof{Filename: filename, Data: data})
}

// Close tears down the countdown and the status watch. Later events are rejected.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cd := c.countdown
	c.countdown = nil
	pid := c.state.Checkout.PaymentID
	c.mu.Unlock()

	if cd != nil {
		cd.Stop()
	}
	if c.watcher != nil {
		c.watcher.Unwatch(pid)
	}
}

var ErrClosed = errors.New("checkout is closed")

func (c *Controller) apply(ev Event) (State, []Effect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state.clone(), nil, false
	}
	next, effs := Reduce(c.state, ev)
	c.state = next
	return next.clone(), effs, true
}

func (c *Controller) run(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case InitiatePayment:
		return c.initiate(ctx, e.PaymentID, e.Request)
	case Reprice:
		_, err := c.api.UpdateShipment(ctx, e.ShipmentID, models.UpdateShipmentRequest{
			QuoteID:     e.Quote.QuoteID,
			CarrierCode: e.Quote.CarrierCode,
			ServiceCode: e.Quote.ServiceCode,
		})
		if err != nil {
			slog.Error("update shipment quote", "shipment_id", e.ShipmentID, "quote_id", e.Quote.QuoteID, "error", err.Error())
			return InitiateFailed{Err: err}
		}
		return c.initiate(ctx, e.PaymentID, e.Request)
	case StartCountdown:
		c.startCountdown(e.ExpiresAt)
	case StopCountdown:
		c.stopCountdown()
	case StartPolling:
		c.startPolling(e.PaymentID)
	case StopPolling:
		if c.watcher != nil {
			c.watcher.Unwatch(e.PaymentID)
		}
	case UploadProof:
		if err := c.api.UploadProof(ctx, e.TransactionID, e.Filename, bytes.NewReader(e.Data)); err != nil {
			slog.Error("upload proof", "transaction_id", e.TransactionID, "error", err.Error())
			return ProofFailed{Message: portal.ErrorMessage(err)}
		}
		slog.Info("proof uploaded", "transaction_id", e.TransactionID, "size", len(e.Data))
		return ProofAccepted{}
	case Notify:
		c.publish(ctx, e)
	}
	return nil
}

func (c *Controller) initiate(ctx context.Context, paymentID string, req portal.PayRequest) Event {
	res, err := c.api.InitiatePayment(ctx, paymentID, req)
	if err != nil {
		if portal.IsCode(err, portal.CodeQuotePriceChanged) {
			slog.Info("quote price changed", "payment_id", paymentID)
		} else {
			slog.Error("initiate payment", "payment_id", paymentID, "error", err.Error())
		}
		return InitiateFailed{Err: err}
	}
	slog.Info("payment initiated", "payment_id", paymentID, "page", res.TransactionData.Page, "expires_at", res.CheckoutExpiresAt)
	return Initiated{Result: res}
}

// startPolling registers the status watch while holding c.mu. A finish that races with it
// either runs first, and no watch is registered, or runs after and removes it.
func (c *Controller) startPolling(paymentID string) {
	if c.watcher == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Phase != PhaseProcessing {
		return
	}
	c.watcher.Watch(paymentID, func(status models.CheckoutStatus) {
		if _, err := c.Dispatch(context.Background(), StatusChanged{Status: status}); err != nil && !errors.Is(err, ErrClosed) {
			slog.Warn("apply checkout status", "payment_id", paymentID, "error", err.Error())
		}
	})
}

func (c *Controller) startCountdown(expiresAt time.Time) {
	cd := NewCountdown(expiresAt,
		func(rem time.Duration) { _, _ = c.Dispatch(context.Background(), Tick{Remaining: rem}) },
		func() { _, _ = c.Dispatch(context.Background(), Expire{}) },
	).WithClock(c.now).WithInterval(c.tick)

	c.mu.Lock()
	if c.closed || c.state.Phase != PhaseProcessing {
		c.mu.Unlock()
		return
	}
	prev := c.countdown
	c.countdown = cd
	c.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	cd.Start()
}

func (c *Controller) stopCountdown() {
	c.mu.Lock()
	cd := c.countdown
	c.countdown = nil
	c.mu.Unlock()
	if cd != nil {
		cd.Stop()
	}
}

// Countdown exposes the running timer, nil when none is active.
func (c *Controller) Countdown() *Countdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countdown
}

func (c *Controller) publish(ctx context.Context, n Notify) {
	if c.publisher == nil {
		return
	}
	st := c.State()
	ev := messages.NewCheckoutEvent(n.Kind, st.Checkout.PaymentID, c.now())
	ev.ShipmentID = st.Checkout.ShipmentID
	ev.TenantID = c.tenantID
	ev.Amount = st.Checkout.Amount
	ev.Currency = st.Checkout.Currency
	ev.Mode = string(st.Mode)
	if st.Selected != nil {
		ev.Method = string(st.Selected.Type)
	}
	if st.Session != nil {
		ev.TransactionID = st.Session.TransactionData.TransactionID
		exp := st.Session.CheckoutExpiresAt
		ev.ExpiresAt = &exp
	}
	if n.Error != "" {
		reason := n.Error
		ev.Error = &reason
	}

	b, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal checkout event", "error", err.Error())
		return
	}
	if err := c.publisher.Publish(ctx, c.topic, []byte(ev.PaymentID), b); err != nil {
		slog.Error("publish checkout event", "kind", n.Kind, "payment_id", ev.PaymentID, "error", err.Error())
	}
}

func (c *Controller) PaymentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Checkout.PaymentID
}
