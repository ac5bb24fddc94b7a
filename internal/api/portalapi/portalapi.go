package portalapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/payment"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/theme"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/wizard"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ThemeService interface {
	ConfigOrDefault(ctx context.Context) models.TenantConfig
	ClearThemeCache(ctx context.Context) error
	GetCacheInfo(ctx context.Context) theme.CacheInfo
}

// PaymentBackend is everything a checkout needs from the portal API.
type PaymentBackend = payment.API

// PortalAPI dispatches HTTP requests onto the theme cache and onto per-session wizard and
// checkout controllers. Sessions live in memory until deleted or Close.
type PortalAPI struct {
	theme     ThemeService
	auth      AuthService
	records   RecordsAPI
	quotes    wizard.QuoteAPI
	shipments wizard.ShipmentAPI
	payments  PaymentBackend
	checkout  []payment.Option

	mu        sync.Mutex
	wizards   map[string]*wizard.Controller
	checkouts map[string]*payment.Controller
	// byPayment maps a payment id to its checkout session. The status watch is keyed by
	// payment, so a payment never has more than one open controller.
	byPayment map[string]string
}

type Deps struct {
	Theme     ThemeService
	Auth      AuthService
	Records   RecordsAPI
	Quotes    wizard.QuoteAPI
	Shipments wizard.ShipmentAPI
	Payments  PaymentBackend
	// CheckoutOptions are applied to every checkout controller (watcher, publisher, tenant).
	CheckoutOptions []payment.Option
}

func New(d Deps) *PortalAPI {
	return &PortalAPI{
		theme:     d.Theme,
		auth:      d.Auth,
		records:   d.Records,
		quotes:    d.Quotes,
		shipments: d.Shipments,
		payments:  d.Payments,
		checkout:  d.CheckoutOptions,
		wizards:   make(map[string]*wizard.Controller),
		checkouts: make(map[string]*payment.Controller),
		byPayment: make(map[string]string),
	}
}

func (a *PortalAPI) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// A rejected login is a wrong password, not an expired session.
	if a.auth != nil {
		r.Post("/auth/login", a.login)
		r.Post("/auth/signup", a.signup)
	}

	r.Group(func(r chi.Router) {
		r.Use(sessionGuard)

		if a.auth != nil {
			r.Post("/auth/logout", a.logout)
			r.Get("/auth/me", a.currentUser)
		}

		r.Route("/theme", func(r chi.Router) {
			r.Get("/", a.getTheme)
			r.Get("/info", a.getThemeInfo)
			r.Get("/css", a.getThemeCSS)
			r.Delete("/cache", a.clearThemeCache)
		})

		if a.records != nil {
			r.Get("/shipments", a.listShipments)
			r.Get("/shipments/{id}", a.getShipment)
			r.Get("/transactions", a.listTransactions)
		}

		r.Route("/wizards", func(r chi.Router) {
			r.Post("/", a.createWizard)
			r.Get("/{id}", a.getWizard)
			r.Delete("/{id}", a.deleteWizard)
			r.Post("/{id}/events", a.wizardEvent)
			r.Post("/{id}/checkout", a.checkoutFromWizard)
		})

		r.Route("/checkouts", func(r chi.Router) {
			r.Post("/", a.createCheckout)
			r.Get("/{id}", a.getCheckout)
			r.Delete("/{id}", a.deleteCheckout)
			r.Post("/{id}/events", a.checkoutEvent)
			r.Post("/{id}/proof", a.uploadProof)
		})
	})

	return r
}

// Close releases every open checkout's countdown and status watch.
func (a *PortalAPI) Close() {
	a.mu.Lock()
	open := make([]*payment.Controller, 0, len(a.checkouts))
	for id, c := range a.checkouts {
		open = append(open, c)
		delete(a.checkouts, id)
	}
	a.byPayment = make(map[string]string)
	a.wizards = make(map[string]*wizard.Controller)
	a.mu.Unlock()

	for _, c := range open {
		c.Close()
	}
	slog.Info("portal sessions closed", "checkouts", len(open))
}

func (a *PortalAPI) addWizard(c *wizard.Controller) string {
	id := uuid.NewString()
	a.mu.Lock()
	a.wizards[id] = c
	a.mu.Unlock()
	return id
}

func (a *PortalAPI) wizardByID(id string) (*wizard.Controller, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.wizards[id]
	return c, ok
}

// checkoutFor returns the open checkout for co.PaymentID, registering a new controller only
// when there is none.
func (a *PortalAPI) checkoutFor(co payment.Checkout) (id string, c *payment.Controller, created bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.byPayment[co.PaymentID]; ok {
		return id, a.checkouts[id], false
	}
	c = payment.NewController(co, a.payments, a.checkout...)
	id = uuid.NewString()
	a.checkouts[id] = c
	a.byPayment[co.PaymentID] = id
	return id, c, true
}

func (a *PortalAPI) checkoutByID(id string) (*payment.Controller, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.checkouts[id]
	return c, ok
}

func (a *PortalAPI) removeCheckout(id string) (*payment.Controller, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.checkouts[id]
	if !ok {
		return nil, false
	}
	delete(a.checkouts, id)
	if pid := c.PaymentID(); a.byPayment[pid] == id {
		delete(a.byPayment, pid)
	}
	return c, true
}

// Sessions reports how many wizards and checkouts are open.
func (a *PortalAPI) Sessions() (wizards, checkouts int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.wizards), len(a.checkouts)
}
