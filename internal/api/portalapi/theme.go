package portalapi

import (
	"net/http"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/theme"
)

type themeResponse struct {
	Config   models.TenantConfig `json:"config"`
	Document theme.Document     `json:"document"`
}

// getTheme never fails: without a cached or remote config the defaults are served.
func (a *PortalAPI) getTheme(w http.ResponseWriter, r *http.Request) {
	cfg := a.theme.ConfigOrDefault(r.Context())
	writeJSON(w, http.StatusOK, themeResponse{Config: cfg, Document: theme.DocumentFor(cfg)})
}

func (a *PortalAPI) getThemeInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.theme.GetCacheInfo(r.Context()))
}

func (a *PortalAPI) getThemeCSS(w http.ResponseWriter, r *http.Request) {
	cfg := a.theme.ConfigOrDefault(r.Context())
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(theme.Stylesheet(cfg)))
}

func (a *PortalAPI) clearThemeCache(w http.ResponseWriter, r *http.Request) {
	if err := a.theme.ClearThemeCache(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
