package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

// CSSVariables maps the theme onto the custom properties the front end reads.
func CSSVariables(cfg models.TenantConfig) map[string]string {
	t := cfg.Theme
	return map[string]string{
		"--color-primary":       t.Colors.Primary,
		"--color-secondary":     t.Colors.Secondary,
		"--color-accent":        t.Colors.Accent,
		"--color-success":       t.Colors.Success,
		"--color-warning":       t.Colors.Warning,
		"--color-error":         t.Colors.Error,
		"--bg-primary":          t.Background.Primary,
		"--bg-secondary":        t.Background.Secondary,
		"--bg-card":             t.Background.Card,
		"--text-primary":        t.Text.Primary,
		"--text-secondary":      t.Text.Secondary,
		"--text-muted":          t.Text.Muted,
		"--border-default":      t.Border.Default,
		"--border-focus":        t.Border.Focus,
		"--font-family":         t.Font.Family,
		"--font-family-heading": t.Font.HeadingFamily,
	}
}

// Stylesheet renders a :root block with the variables in stable order.
func Stylesheet(cfg models.TenantConfig) string {
	vars := CSSVariables(cfg)
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s;\n", k, vars[k])
	}
	b.WriteString("}\n")
	return b.String()
}

type Document struct {
	Title   string `json:"title"`
	Favicon string `json:"favicon"`
}

func DocumentFor(cfg models.TenantConfig) Document {
	return Document{Title: cfg.Content.SiteTitle, Favicon: cfg.Branding.FaviconURL}
}
