package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jaysins/ohship-tenant-sub000/config"
)

func main() {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("config parse error, %v", err))
	}
	if p := os.Getenv("swaggerPath"); p != "" {
		cfg.App.SwaggerPath = p
	}

	app, err := buildPortalApp(cfg, defaultPortalFactories())
	if err != nil {
		panic(err)
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("portal api starting", "tenant", cfg.Portal.TenantID, "store", cfg.App.Store)
	if err := runPortalAPI(ctx, app.opts, app.api, app.poller); err != nil && err != context.Canceled {
		panic(err)
	}
}
