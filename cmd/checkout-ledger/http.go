package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/storage/pgcheckout"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type ledgerHTTPOpts struct {
	httpAddr string
	onListen func(httpAddr string)

	repo  ledgerRepo
	stats *ledgerStats
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func newLedgerRouter(opts ledgerHTTPOpts) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := opts.repo.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int64{
			"recorded":   opts.stats.Recorded.Load(),
			"duplicates": opts.stats.Duplicates.Load(),
			"skipped":    opts.stats.Skipped.Load(),
		})
	})

	r.Get("/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, err := opts.repo.GetCheckout(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, pgcheckout.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, c)
	})

	r.Get("/payments/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		evs, err := opts.repo.ListByPayment(r.Context(), chi.URLParam(r, "id"), queryInt(r, "limit"), queryInt(r, "offset"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": evs})
	})

	return r
}

func runLedgerHTTPServer(ctx context.Context, opts ledgerHTTPOpts) error {
	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	srv := &http.Server{Handler: newLedgerRouter(opts), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
