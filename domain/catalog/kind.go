package catalog

// Kind identifies an entity type that lives directly under a service.
type Kind string

const (
	KindSearchIndex Kind = "searchIndexes"
	KindTopic       Kind = "topics"
	KindDashboard   Kind = "dashboards"
	KindPipeline    Kind = "pipelines"
	KindMLModel     Kind = "mlmodels"
	KindContainer   Kind = "containers"
)

type kindInfo struct {
	typeName   string
	category   Category
	childField string // JSON key holding the child fields, "" if none
	childTab   string // UI tab listing the children
}

var kinds = map[Kind]kindInfo{
	KindSearchIndex: {"SearchIndex", CategorySearch, "fields", "fields"},
	KindTopic:       {"Topic", CategoryMessaging, "", "schema"},
	KindDashboard:   {"Dashboard", CategoryDashboard, "", "details"},
	KindPipeline:    {"Pipeline", CategoryPipeline, "", "tasks"},
	KindMLModel:     {"MlModel", CategoryMLModel, "mlFeatures", "features"},
	KindContainer:   {"Container", CategoryStorage, "", "children"},
}

// Endpoint returns the plural REST endpoint for the kind.
func (k Kind) Endpoint() string {
	return string(k)
}

// CollectionPath returns the REST collection for entities of this kind.
func (k Kind) CollectionPath() string {
	return "/api/v1/" + k.Endpoint()
}

// TypeName returns the display type, e.g. "SearchIndex".
func (k Kind) TypeName() string {
	return kinds[k].typeName
}

// Category returns the service category that owns entities of this kind.
func (k Kind) Category() Category {
	if info, ok := kinds[k]; ok {
		return info.category
	}
	return CategoryDatabase
}

// ChildField returns the JSON key under which child fields are sent.
func (k Kind) ChildField() string {
	return kinds[k].childField
}

// ChildrenTab returns the UI tab id that lists the entity's children.
func (k Kind) ChildrenTab() string {
	return kinds[k].childTab
}

// IsKnown reports whether k is a supported kind.
func (k Kind) IsKnown() bool {
	_, ok := kinds[k]
	return ok
}

// Kinds returns all supported kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindSearchIndex, KindTopic, KindDashboard, KindPipeline, KindMLModel, KindContainer}
}
