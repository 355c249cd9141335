package patch_test

import (
	"encoding/json"
	"testing"

	"github.com/artpar/catalogctl/domain/patch"
)

func TestPointer(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{nil, ""},
		{[]string{"description"}, "/description"},
		{[]string{"fields", "0", "tags", "-"}, "/fields/0/tags/-"},
		{[]string{"a/b", "c~d"}, "/a~1b/c~0d"},
	}
	for _, tt := range tests {
		if got := patch.Pointer(tt.segments...); got != tt.want {
			t.Errorf("Pointer(%v) = %q, want %q", tt.segments, got, tt.want)
		}
	}
}

func TestPatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       patch.Patch
		wantErr bool
	}{
		{"replace ok", patch.Patch{patch.Replace("/description", "x")}, false},
		{"remove ok", patch.Patch{patch.Remove("/tags/0")}, false},
		{"move ok", patch.Patch{patch.Move("/a", "/b")}, false},
		{"replace with null", patch.Patch{patch.Replace("/description", nil)}, false},
		{"relative path", patch.Patch{patch.Replace("description", "x")}, true},
		{"unknown op", patch.Patch{{Op: "merge", Path: "/a", Value: 1}}, true},
		{"move without from", patch.Patch{{Op: patch.OpMove, Path: "/a"}}, true},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatch_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(patch.Patch{patch.Replace("/description", "x"), patch.Remove("/owner")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `[{"op":"replace","path":"/description","value":"x"},{"op":"remove","path":"/owner"}]`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	cleared, err := json.Marshal(patch.Patch{patch.Replace("/owner", nil), patch.Move("/a", "/b")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want = `[{"op":"replace","path":"/owner","value":null},{"op":"move","path":"/b","from":"/a"}]`
	if string(cleared) != want {
		t.Errorf("Marshal = %s, want %s", cleared, want)
	}

	empty, _ := json.Marshal(patch.Patch(nil))
	if string(empty) != "[]" {
		t.Errorf("nil patch = %s, want []", empty)
	}
}
