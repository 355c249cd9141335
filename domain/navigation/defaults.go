package navigation

// Sidebar keys. Keys double as route paths.
const (
	KeyExplore       = "/explore"
	KeyObservability = "/observability"
	KeyDataQuality   = "/data-quality"
	KeyIncidents     = "/incident-manager"
	KeyAlerts        = "/observability/alerts"
	KeyInsights      = "/data-insights"
	KeyDomains       = "/domain"
	KeyGovernance    = "/governance"
	KeyGlossary      = "/glossary"
	KeyTags          = "/tags"
	KeyMetrics       = "/metrics"
	KeySettings      = "/settings"
	KeyLogout        = "logout"
)

// DefaultItems returns the full static sidebar tree.
func DefaultItems() []Item {
	return []Item{
		{Key: KeyExplore, Label: "Explore"},
		{Key: KeyObservability, Label: "Observability", Children: []Item{
			{Key: KeyDataQuality, Label: "Data Quality"},
			{Key: KeyIncidents, Label: "Incident Manager"},
			{Key: KeyAlerts, Label: "Alerts"},
		}},
		{Key: KeyInsights, Label: "Insights"},
		{Key: KeyDomains, Label: "Domains"},
		{Key: KeyGovernance, Label: "Govern", Children: []Item{
			{Key: KeyGlossary, Label: "Glossary"},
			{Key: KeyTags, Label: "Classification"},
			{Key: KeyMetrics, Label: "Metrics"},
		}},
	}
}

// LowerItems returns the fixed bottom menu.
func LowerItems() []Item {
	return []Item{
		{Key: KeySettings, Label: "Settings"},
		{Key: KeyLogout, Label: "Logout"},
	}
}

// DefaultNestedKeys lists the three-segment routes that own a menu entry.
func DefaultNestedKeys() map[string]bool {
	return map[string]bool{
		KeyAlerts: true,
	}
}
