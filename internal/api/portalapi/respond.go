package portalapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/pkg/errors"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON treats an empty body as the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "decode body")
	}
	return nil
}

// writeRemoteError passes backend client errors through and reports everything else,
// including an unreachable backend, as 502.
func writeRemoteError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if apiErr, ok := portal.AsAPIError(err); ok && apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}
	writeError(w, status, portal.ErrorMessage(err))
}
