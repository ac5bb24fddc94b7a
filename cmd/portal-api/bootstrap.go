package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/config"
	"github.com/Jaysins/ohship-tenant-sub000/internal/api/portalapi"
	"github.com/Jaysins/ohship-tenant-sub000/internal/auth"
	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/kafka"
	"github.com/Jaysins/ohship-tenant-sub000/internal/cache"
	"github.com/Jaysins/ohship-tenant-sub000/internal/cache/memcache"
	"github.com/Jaysins/ohship-tenant-sub000/internal/cache/rediscache"
	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/payment"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/poller"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/theme"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultCheckoutTopic  = "checkout.events"
	defaultPublishRetries = 3
)

type portalFactories struct {
	newStore       func(cfg *config.Config) (store cache.Store, closeFn func(), err error)
	newPublisher   func(cfg *config.Config) (pub payment.Publisher, closeFn func())
	newRateLimiter func(cfg *config.Config) (rl poller.RateLimiter, closeFn func())
}

func defaultPortalFactories() portalFactories {
	return portalFactories{
		newStore: func(cfg *config.Config) (cache.Store, func(), error) {
			if cfg.App.Store != "redis" {
				return memcache.New(), nil, nil
			}
			rs := rediscache.New(cfg.Redis.Addr(), cfg.Redis.Prefix)
			return rs, func() { _ = rs.Close() }, nil
		},
		newPublisher: func(cfg *config.Config) (payment.Publisher, func()) {
			if cfg.Kafka.Host == "" {
				return nil, nil
			}
			retries := cfg.Kafka.PublishRetries
			if retries <= 0 {
				retries = defaultPublishRetries
			}
			p := kafka.NewProducer(cfg.Kafka.Brokers()).WithRetries(retries, 0)
			return p, func() { _ = p.Close() }
		},
		newRateLimiter: func(cfg *config.Config) (poller.RateLimiter, func()) {
			if cfg.Redis.Host == "" {
				return nil, nil
			}
			rl := rediscache.NewRateLimiter(cfg.Redis.Addr(), cfg.Redis.Prefix)
			return rl, func() { _ = rl.Close() }
		},
	}
}

// portalApp is the wired BFF: the HTTP dispatcher plus the checkout status poller it feeds.
type portalApp struct {
	api    *portalapi.PortalAPI
	poller *poller.Poller
	opts   portalAPIOpts

	closers []func()
}

func (a *portalApp) Close() {
	a.api.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildPortalApp(cfg *config.Config, f portalFactories) (*portalApp, error) {
	app := &portalApp{}

	store, closeStore, err := f.newStore(cfg)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	tokens := auth.NewTokenStore(store)
	client := portal.New(cfg.Portal.BaseURL, cfg.Portal.TenantID,
		portal.WithTokenSource(tokens),
		portal.WithTimeout(time.Duration(cfg.Portal.RequestTimeoutSeconds)*time.Second),
		portal.WithUnauthorizedHandler(func(ctx context.Context, redirect string) {
			slog.Warn("portal session expired", "redirect", redirect)
			portalapi.SessionExpired(ctx, redirect)
		}),
	)

	freshness := time.Duration(cfg.App.ThemeFreshnessMinutes) * time.Minute
	themes := theme.New(store, client, freshness)

	pollInterval := time.Duration(cfg.App.ValidatePollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	concurrency := cfg.App.ValidateConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	rlPerMin := int64(cfg.App.ValidateRateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 120
	}
	plan := poller.DefaultPlannerConfig()
	if s := cfg.App.ValidatePendingSeconds; s > 0 {
		plan.PendingMinDelay = time.Duration(s) * time.Second
		plan.PendingMaxDelay = time.Duration(s) * time.Second
	}
	rl, closeRL := f.newRateLimiter(cfg)
	if closeRL != nil {
		app.closers = append(app.closers, closeRL)
	}
	app.poller = poller.New(client, rl).
		WithSettings(pollInterval, concurrency, rlPerMin).
		WithPlanner(plan)

	opts := []payment.Option{
		payment.WithWatcher(app.poller),
		payment.WithTenant(cfg.Portal.TenantID),
	}
	if m := cfg.App.CheckoutWarningMinutes; m > 0 {
		opts = append(opts, payment.WithWarning(time.Duration(m)*time.Minute))
	}
	if pub, closePub := f.newPublisher(cfg); pub != nil {
		topic := cfg.Kafka.CheckoutEventsTopicName
		if topic == "" {
			topic = defaultCheckoutTopic
		}
		opts = append(opts, payment.WithPublisher(pub, topic))
		if closePub != nil {
			app.closers = append(app.closers, closePub)
		}
	}

	app.api = portalapi.New(portalapi.Deps{
		Theme:           themes,
		Auth:            auth.New(client, tokens),
		Records:         client,
		Quotes:          client,
		Shipments:       client,
		Payments:        client,
		CheckoutOptions: opts,
	})

	httpAddr := cfg.App.HTTPAddr
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}
	app.opts = portalAPIOpts{httpAddr: httpAddr, swaggerPath: cfg.App.SwaggerPath}
	return app, nil
}
