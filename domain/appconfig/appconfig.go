// Package appconfig provides the app-wide configuration values loaded once
// per user session.
package appconfig

// SettingLineage is the settings type holding lineage preferences.
const SettingLineage = "lineageSettings"

// RTLLanguage is the one UI language laid out right to left.
const RTLLanguage = "pr-PR"

// SidebarWidth is the collapsed sidebar column width in pixels.
const SidebarWidth = 60

// Limits is the server's usage-limit configuration.
type Limits struct {
	Enable bool    `json:"enable"`
	Banner *Banner `json:"banner,omitempty"`
}

// Banner is a usage-limit notice shown above the layout.
type Banner struct {
	Header    string `json:"header"`
	Subheader string `json:"subheader,omitempty"`
	Type      string `json:"type,omitempty"` // "warning" or "danger"
	SoftLimit bool   `json:"softLimitExceed,omitempty"`
	HardLimit bool   `json:"hardLimitExceed,omitempty"`
}

// LineageSettings holds the default lineage traversal preferences.
type LineageSettings struct {
	UpstreamDepth   int    `json:"upstreamDepth"`
	DownstreamDepth int    `json:"downstreamDepth"`
	LineageLayer    string `json:"lineageLayer,omitempty"`
}

// Preferences are per-session UI preferences derived from server settings.
type Preferences struct {
	Lineage *LineageSettings `json:"lineageConfig,omitempty"`
}

// Config is the session configuration context.
type Config struct {
	Limits      Limits      `json:"limits"`
	Preferences Preferences `json:"preferences"`
}

// Clone returns a copy that shares no pointers with c.
func (c Config) Clone() Config {
	out := c
	if c.Limits.Banner != nil {
		b := *c.Limits.Banner
		out.Limits.Banner = &b
	}
	if c.Preferences.Lineage != nil {
		l := *c.Preferences.Lineage
		out.Preferences.Lineage = &l
	}
	return out
}

// BannerDetails returns the banner to show, if any.
func (c Config) BannerDetails() (Banner, bool) {
	if c.Limits.Banner == nil {
		return Banner{}, false
	}
	return *c.Limits.Banner, true
}

// User identifies the signed-in user for session scoping.
type User struct {
	ID         string
	Name       string
	PersonaFQN string
	Language   string
}

// Layout describes the composed app shell independently of rendering.
type Layout struct {
	Banner       bool
	ExtraBanner  bool // content shifted down to make room for the banner
	RTL          bool
	SidebarWidth int
	Header       bool
	Sidebar      bool
	Content      bool
}

// Compose builds the layout for cfg in the given UI language.
func Compose(cfg Config, language string) Layout {
	_, banner := cfg.BannerDetails()
	return Layout{
		Banner:       banner,
		ExtraBanner:  banner,
		RTL:          language == RTLLanguage,
		SidebarWidth: SidebarWidth,
		Header:       true,
		Sidebar:      true,
		Content:      true,
	}
}
