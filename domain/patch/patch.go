// Package patch provides JSON-Patch (RFC 6902) operation values.
// Operations are built client-side and applied by the server.
package patch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentType is the media type for a JSON-Patch request body.
const ContentType = "application/json-patch+json"

// Op is a JSON-Patch operation name.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpMove    Op = "move"
	OpCopy    Op = "copy"
	OpTest    Op = "test"
)

// takesValue reports whether the op carries a "value" member.
func (op Op) takesValue() bool {
	return op == OpAdd || op == OpReplace || op == OpTest
}

// Operation is a single JSON-Patch edit. A nil Value on add, replace or
// test is sent as null.
type Operation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value"`
}

type wireOp struct {
	Op   Op     `json:"op"`
	Path string `json:"path"`
	From string `json:"from,omitempty"`
}

// MarshalJSON writes "value" only for ops that take one.
func (o Operation) MarshalJSON() ([]byte, error) {
	w := wireOp{Op: o.Op, Path: o.Path, From: o.From}
	if !o.Op.takesValue() {
		return json.Marshal(w)
	}
	return json.Marshal(struct {
		wireOp
		Value any `json:"value"`
	}{w, o.Value})
}

// Patch is an ordered sequence of operations applied atomically.
type Patch []Operation

// Add adds value at path.
func Add(path string, value any) Operation {
	return Operation{Op: OpAdd, Path: path, Value: value}
}

// Replace replaces the value at path.
func Replace(path string, value any) Operation {
	return Operation{Op: OpReplace, Path: path, Value: value}
}

// Remove removes the value at path.
func Remove(path string) Operation {
	return Operation{Op: OpRemove, Path: path}
}

// Move moves the value at from to path.
func Move(from, path string) Operation {
	return Operation{Op: OpMove, From: from, Path: path}
}

// Test asserts the value at path equals value.
func Test(path string, value any) Operation {
	return Operation{Op: OpTest, Path: path, Value: value}
}

// Pointer builds a JSON pointer from raw segments, escaping "~" and "/".
func Pointer(segments ...string) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString(s)
	}
	return b.String()
}

// Validate checks every operation is well formed.
func (p Patch) Validate() error {
	for i, op := range p {
		if err := op.validate(); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

func (o Operation) validate() error {
	switch o.Op {
	case OpAdd, OpReplace, OpTest, OpRemove:
	case OpMove, OpCopy:
		if !strings.HasPrefix(o.From, "/") {
			return fmt.Errorf("%s requires from", o.Op)
		}
	default:
		return fmt.Errorf("unknown op %q", o.Op)
	}
	if !strings.HasPrefix(o.Path, "/") {
		return fmt.Errorf("path %q must start with /", o.Path)
	}
	return nil
}

// MarshalJSON renders an empty patch as [] so servers never see null.
func (p Patch) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Operation(p))
}
