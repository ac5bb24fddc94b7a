package portalapi

import (
	"context"
	"net/http"
	"sync"
)

const (
	loginRedirect         = "/login"
	sessionExpiredMessage = "Your session has expired. Please log in again."
)

type sessionKey struct{}

type sessionFlag struct {
	mu       sync.Mutex
	redirect string
}

func (f *sessionFlag) expired() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect, f.redirect != ""
}

// SessionExpired marks the request carried by ctx as rejected by the backend. Its response
// becomes a 401 pointing at redirect, whatever the handler answers. Contexts that do not
// come from a guarded request are ignored, so it is safe as the portal client's 401 hook.
func SessionExpired(ctx context.Context, redirect string) {
	f, ok := ctx.Value(sessionKey{}).(*sessionFlag)
	if !ok {
		return
	}
	if redirect == "" {
		redirect = loginRedirect
	}
	f.mu.Lock()
	if f.redirect == "" {
		f.redirect = redirect
	}
	f.mu.Unlock()
}

type unauthorizedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

func writeUnauthorized(w http.ResponseWriter, msg, redirect string) {
	writeJSON(w, http.StatusUnauthorized, unauthorizedResponse{Error: msg, Redirect: redirect})
}

// sessionGuard answers 401 with a redirect when a backend call made while serving the
// request found the session expired.
func sessionGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flag := &sessionFlag{}
		ctx := context.WithValue(r.Context(), sessionKey{}, flag)
		next.ServeHTTP(&sessionWriter{ResponseWriter: w, flag: flag}, r.WithContext(ctx))
	})
}

type sessionWriter struct {
	http.ResponseWriter
	flag     *sessionFlag
	wrote    bool
	replaced bool
}

func (w *sessionWriter) WriteHeader(status int) {
	if w.wrote {
		return
	}
	w.wrote = true
	if redirect, ok := w.flag.expired(); ok {
		w.replaced = true
		writeUnauthorized(w.ResponseWriter, sessionExpiredMessage, redirect)
		return
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	if w.replaced {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}
