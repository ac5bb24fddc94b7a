package theme

import (
	"log/slog"

	"dario.cat/mergo"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

// MergeWithDefaults overlays a possibly partial server payload on the hardcoded defaults.
// Empty strings count as missing. Feature flags are merged key by key so an explicit false
// from the server survives.
func MergeWithDefaults(raw models.TenantConfig) models.TenantConfig {
	def := models.DefaultTenantConfig()
	features := def.Features
	def.Features = nil

	out := raw
	out.Features = nil
	if err := mergo.Merge(&out, def); err != nil {
		slog.Error("merge theme defaults", "error", err.Error())
		out = def
	}

	for k, v := range raw.Features {
		features[k] = v
	}
	out.Features = features
	return out
}
