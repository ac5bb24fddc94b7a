package models

type Branding struct {
	CompanyName string `json:"company_name"`
	LogoURL     string `json:"logo_url"`
	FaviconURL  string `json:"favicon_url"`
	Tagline     string `json:"tagline"`
}

type ThemeColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Success   string `json:"success"`
	Warning   string `json:"warning"`
	Error     string `json:"error"`
}

type ThemeBackground struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Card      string `json:"card"`
}

type ThemeText struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Muted     string `json:"muted"`
}

type ThemeBorder struct {
	Default string `json:"default"`
	Focus   string `json:"focus"`
}

type ThemeFont struct {
	Family        string `json:"family"`
	HeadingFamily string `json:"heading_family"`
}

type Theme struct {
	Colors     ThemeColors     `json:"colors"`
	Background ThemeBackground `json:"background"`
	Text       ThemeText       `json:"text"`
	Border     ThemeBorder     `json:"border"`
	Font       ThemeFont       `json:"font"`
}

type Content struct {
	SiteTitle    string `json:"site_title"`
	HeroTitle    string `json:"hero_title"`
	HeroSubtitle string `json:"hero_subtitle"`
	FooterText   string `json:"footer_text"`
	SupportEmail string `json:"support_email"`
	SupportPhone string `json:"support_phone"`
}

type Links struct {
	Website string `json:"website"`
	Support string `json:"support"`
	Terms   string `json:"terms"`
	Privacy string `json:"privacy"`
}

// TenantConfig is the branding/theme/content bundle a tenant admin controls.
type TenantConfig struct {
	Branding Branding        `json:"branding"`
	Theme    Theme           `json:"theme"`
	Content  Content         `json:"content"`
	Links    Links           `json:"links"`
	Features map[string]bool `json:"features"`
}

// Feature flags known to the portal.
const (
	FeatureWallet        = "wallet"
	FeatureBankTransfer  = "bank_transfer"
	FeatureInsurance     = "insurance"
	FeatureScheduledPick = "scheduled_pickup"
	FeatureSignup        = "signup"
)

// DefaultTenantConfig returns the hardcoded fallback used whenever the server omits a field
// or cannot be reached at all.
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		Branding: Branding{
			CompanyName: "OhShip",
			LogoURL:     "/static/logo.svg",
			FaviconURL:  "/favicon.ico",
			Tagline:     "Ship anything, anywhere",
		},
		Theme: Theme{
			Colors: ThemeColors{
				Primary:   "#2563eb",
				Secondary: "#1e293b",
				Accent:    "#f59e0b",
				Success:   "#16a34a",
				Warning:   "#d97706",
				Error:     "#dc2626",
			},
			Background: ThemeBackground{
				Primary:   "#ffffff",
				Secondary: "#f8fafc",
				Card:      "#ffffff",
			},
			Text: ThemeText{
				Primary:   "#0f172a",
				Secondary: "#475569",
				Muted:     "#94a3b8",
			},
			Border: ThemeBorder{
				Default: "#e2e8f0",
				Focus:   "#2563eb",
			},
			Font: ThemeFont{
				Family:        "Inter, sans-serif",
				HeadingFamily: "Inter, sans-serif",
			},
		},
		Content: Content{
			SiteTitle:    "OhShip Portal",
			HeroTitle:    "Fast, reliable shipping",
			HeroSubtitle: "Compare rates and ship in minutes",
			FooterText:   "All rights reserved.",
			SupportEmail: "support@ohship.com",
			SupportPhone: "+2340000000000",
		},
		Links: Links{
			Website: "https://ohship.com",
			Support: "https://ohship.com/support",
			Terms:   "https://ohship.com/terms",
			Privacy: "https://ohship.com/privacy",
		},
		Features: map[string]bool{
			FeatureWallet:        true,
			FeatureBankTransfer:  true,
			FeatureInsurance:     true,
			FeatureScheduledPick: true,
			FeatureSignup:        true,
		},
	}
}

type ThemeVersion struct {
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updated_at"`
}
