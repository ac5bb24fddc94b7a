package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/api/portalapi"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/poller"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type portalAPIOpts struct {
	httpAddr    string
	swaggerPath string
	onListen    func(httpAddr string)
}

func newRouter(api *portalapi.PortalAPI, p *poller.Poller, swaggerPath string) chi.Router {
	r := chi.NewRouter()

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		wizards, checkouts := api.Sessions()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"wizards":   wizards,
			"checkouts": checkouts,
			"poller":    p.Stats(),
		})
	})

	if swaggerPath != "" {
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, swaggerPath)
		})
		swaggerURL := "/swagger.json"
		if fi, err := os.Stat(swaggerPath); err == nil {
			swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
		}
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))
	}

	r.Mount("/", api.Routes())
	return r
}

// runPortalAPI serves the BFF and drives the checkout status poller until ctx ends.
func runPortalAPI(ctx context.Context, opts portalAPIOpts, api *portalapi.PortalAPI, p *poller.Poller) error {
	if opts.swaggerPath != "" {
		if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
			return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
		}
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	pollErr := make(chan error, 1)
	go func() {
		pollErr <- p.Run(ctx)
	}()

	srv := &http.Server{Handler: newRouter(api, p, opts.swaggerPath), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	httpErr := make(chan error, 1)
	go func() {
		slog.Info("portal api listening", "addr", lis.Addr().String())
		httpErr <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-pollErr:
		return err
	case err := <-httpErr:
		if errors.Is(err, http.ErrServerClosed) {
			return ctx.Err()
		}
		return err
	}
}
