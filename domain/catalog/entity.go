package catalog

import (
	"encoding/json"
	"strings"
)

// Service is the create request body for a catalog service (immutable value type).
type Service struct {
	Name        string     `json:"name"`
	ServiceType string     `json:"serviceType"`
	Connection  Connection `json:"connection"`
}

// Connection wraps the opaque, connector-specific configuration.
type Connection struct {
	Config map[string]any `json:"config"`
}

// DataType is the data type of an entity field.
type DataType string

const (
	DataTypeText    DataType = "TEXT"
	DataTypeKeyword DataType = "KEYWORD"
	DataTypeLong    DataType = "LONG"
	DataTypeInteger DataType = "INTEGER"
	DataTypeDouble  DataType = "DOUBLE"
	DataTypeBoolean DataType = "BOOLEAN"
	DataTypeDate    DataType = "DATE"
	DataTypeNested  DataType = "NESTED"
	DataTypeObject  DataType = "OBJECT"
	DataTypeArray   DataType = "ARRAY"
)

// Display returns the lower-case display form of the type.
func (d DataType) Display() string {
	return strings.ToLower(string(d))
}

// TagLabel attaches a classification tag or glossary term to a field.
type TagLabel struct {
	TagFQN    string `json:"tagFQN"`
	Source    string `json:"source,omitempty"`
	LabelType string `json:"labelType,omitempty"`
	State     string `json:"state,omitempty"`
}

// TagSet is a set of tag labels keyed by TagFQN, kept in insertion order.
type TagSet []TagLabel

// Add returns a set containing label. A label already present is not duplicated.
func (s TagSet) Add(label TagLabel) TagSet {
	if s.Has(label.TagFQN) {
		return s
	}
	out := make(TagSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, label)
}

// Has reports whether the set holds a label with the given fqn.
func (s TagSet) Has(tagFQN string) bool {
	for _, t := range s {
		if t.TagFQN == tagFQN {
			return true
		}
	}
	return false
}

// MarshalJSON always renders an array, never null.
func (s TagSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]TagLabel(s))
}

// Field describes one (possibly nested) field of an entity.
type Field struct {
	Name               string   `json:"name"`
	DataType           DataType `json:"dataType"`
	DataTypeDisplay    string   `json:"dataTypeDisplay,omitempty"`
	Description        string   `json:"description,omitempty"`
	FullyQualifiedName string   `json:"fullyQualifiedName,omitempty"`
	Tags               TagSet   `json:"tags"`
	Children           []Field  `json:"children,omitempty"`
}

// NewField creates a leaf field. The display type is derived from dt.
func NewField(name string, dt DataType, description string) Field {
	return Field{
		Name:            name,
		DataType:        dt,
		DataTypeDisplay: dt.Display(),
		Description:     description,
	}
}

// WithChildren returns a copy of f holding the given children.
func (f Field) WithChildren(children ...Field) Field {
	f.Children = append([]Field(nil), children...)
	return f
}

// WithTags returns a copy of f with the labels added.
func (f Field) WithTags(labels ...TagLabel) Field {
	for _, l := range labels {
		f.Tags = f.Tags.Add(l)
	}
	return f
}

// Entity is the create request body for an entity owned by a service.
type Entity struct {
	Kind        Kind
	Name        string
	DisplayName string
	Service     string // owning service name
	Description string
	Fields      []Field
}

// FullyQualifiedName derives service.entity from the descriptor.
func (e Entity) FullyQualifiedName() string {
	return JoinFQN(e.Service, e.Name)
}

// Qualified returns a copy of e whose fields carry fully qualified names
// rooted at the entity's fqn.
func (e Entity) Qualified() Entity {
	e.Fields = QualifyFields(e.FullyQualifiedName(), e.Fields)
	return e
}

// MarshalJSON renders the entity with its fields under the kind's child key.
func (e Entity) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"name":    e.Name,
		"service": e.Service,
	}
	if e.DisplayName != "" {
		body["displayName"] = e.DisplayName
	}
	if e.Description != "" {
		body["description"] = e.Description
	}
	if key := e.Kind.ChildField(); key != "" {
		fields := e.Fields
		if fields == nil {
			fields = []Field{}
		}
		body[key] = fields
	}
	return json.Marshal(body)
}

// QualifyFields returns deep copies of fields with fqns derived from parent.
func QualifyFields(parent string, fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.FullyQualifiedName = JoinFQN(parent, f.Name)
		f.Tags = append(TagSet(nil), f.Tags...)
		f.Children = QualifyFields(f.FullyQualifiedName, f.Children)
		out[i] = f
	}
	return out
}

// WalkFields visits every field depth-first, parents before children.
func WalkFields(fields []Field, fn func(Field)) {
	for _, f := range fields {
		fn(f)
		WalkFields(f.Children, fn)
	}
}
