package catalog

import (
	"encoding/json"
	"fmt"
)

// Document is a decoded JSON response describing a service or entity.
// A nil Document is the empty placeholder returned before anything is created.
type Document map[string]any

// ParseDocument decodes a JSON object. An empty body yields an empty document.
func ParseDocument(body []byte) (Document, error) {
	doc := Document{}
	if len(body) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// String returns the string value at key, or "".
func (d Document) String(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// FQN returns the server-assigned fully qualified name.
func (d Document) FQN() string {
	return d.String("fullyQualifiedName")
}

// ID returns the server-assigned id.
func (d Document) ID() string {
	return d.String("id")
}

// Name returns the resource name.
func (d Document) Name() string {
	return d.String("name")
}

// Description returns the resource description.
func (d Document) Description() string {
	return d.String("description")
}

// IsEmpty reports whether the document holds no fields.
func (d Document) IsEmpty() bool {
	return len(d) == 0
}

// Clone returns a deep copy made through a JSON round trip.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return Document{}
	}
	out := Document{}
	_ = json.Unmarshal(data, &out)
	return out
}
