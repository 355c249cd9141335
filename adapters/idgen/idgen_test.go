package idgen

import (
	"regexp"
	"testing"
)

func TestShort(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := Short{}.New()
		if !re.MatchString(id) {
			t.Fatalf("Short id %q does not look like a uuid group", id)
		}
		seen[id] = true
	}
	if len(seen) < 99 {
		t.Errorf("only %d distinct ids out of 100", len(seen))
	}
}

func TestUUID(t *testing.T) {
	if len(UUID{}.New()) != 36 {
		t.Error("UUID is not 36 characters")
	}
}

func TestSequential(t *testing.T) {
	s := NewSequential("id-")
	if got := s.New(); got != "id-1" {
		t.Errorf("first = %q", got)
	}
	if got := s.New(); got != "id-2" {
		t.Errorf("second = %q", got)
	}
}

func TestNamer(t *testing.T) {
	n := NewNamer(NewSequential(""))
	if got := n.Name("pw-search-service"); got != "pw-search-service-1" {
		t.Errorf("Name = %q", got)
	}

	def := NewNamer(nil)
	if got := def.Name("x"); !regexp.MustCompile(`^x-[0-9a-f]{8}$`).MatchString(got) {
		t.Errorf("default Name = %q", got)
	}
}
