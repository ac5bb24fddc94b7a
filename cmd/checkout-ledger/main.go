package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jaysins/ohship-tenant-sub000/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("config parse error, %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := RunCheckoutLedger(ctx, cfg, defaultLedgerFactories(), ledgerOpts{}); err != nil && err != context.Canceled {
		panic(err)
	}
}
