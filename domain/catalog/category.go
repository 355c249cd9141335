// Package catalog provides value types for catalog services and entities.
// This package has NO dependencies on I/O or external packages.
package catalog

// Category identifies a service category as listed under the catalog settings.
// The set is closed; anything outside it resolves to the database arm.
type Category string

const (
	CategoryDatabase  Category = "databases"
	CategoryMessaging Category = "messaging"
	CategoryDashboard Category = "dashboards"
	CategoryPipeline  Category = "pipelines"
	CategoryMLModel   Category = "mlmodels"
	CategoryStorage   Category = "storages"
	CategorySearch    Category = "search"
	CategoryAPI       Category = "apis"
)

// categoryArm is the resolved variant for a category.
type categoryArm struct {
	category  Category
	endpoint  string // entity-type endpoint, e.g. "searchServices"
	fieldName string // service category field, e.g. "searchService"
}

// resolve maps a category to its arm. Unlisted categories fall through to
// the database arm rather than failing.
func (c Category) resolve() categoryArm {
	switch c {
	case CategoryDashboard:
		return categoryArm{CategoryDashboard, "dashboardServices", "dashboardService"}
	case CategoryDatabase:
		return categoryArm{CategoryDatabase, "databaseServices", "databaseService"}
	case CategoryStorage:
		return categoryArm{CategoryStorage, "storageServices", "storageService"}
	case CategoryMessaging:
		return categoryArm{CategoryMessaging, "messagingServices", "messagingService"}
	case CategorySearch:
		return categoryArm{CategorySearch, "searchServices", "searchService"}
	case CategoryMLModel:
		return categoryArm{CategoryMLModel, "mlmodelServices", "mlmodelService"}
	case CategoryPipeline:
		return categoryArm{CategoryPipeline, "pipelineServices", "pipelineService"}
	case CategoryAPI:
		return categoryArm{CategoryAPI, "apiServices", "apiService"}
	default:
		return categoryArm{CategoryDatabase, "databaseServices", "databaseService"}
	}
}

// Endpoint returns the entity-type endpoint for the category's services.
func (c Category) Endpoint() string {
	return c.resolve().endpoint
}

// FieldName returns the JSON field name used for the category's services.
func (c Category) FieldName() string {
	return c.resolve().fieldName
}

// CollectionPath returns the REST collection for the category's services.
func (c Category) CollectionPath() string {
	return "/api/v1/services/" + c.Endpoint()
}

// Canonical returns the category the value resolves to.
func (c Category) Canonical() Category {
	return c.resolve().category
}

// IsKnown reports whether c is one of the enumerated categories.
func (c Category) IsKnown() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Categories returns every enumerated category.
func Categories() []Category {
	return []Category{
		CategoryDatabase,
		CategoryMessaging,
		CategoryDashboard,
		CategoryPipeline,
		CategoryMLModel,
		CategoryStorage,
		CategorySearch,
		CategoryAPI,
	}
}

// CategoryForEndpoint finds the category whose services live under endpoint.
func CategoryForEndpoint(endpoint string) (Category, bool) {
	for _, c := range Categories() {
		if c.Endpoint() == endpoint {
			return c, true
		}
	}
	return "", false
}
