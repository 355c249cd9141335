// Package idgen provides ID and resource-name generation.
package idgen

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/artpar/catalogctl/ports"
	"github.com/google/uuid"
)

// UUID generates full UUIDs, used for server-side resource ids.
type UUID struct{}

// New generates a new UUID v4.
func (UUID) New() string {
	return uuid.New().String()
}

// Short generates the first group of a UUID v4. Collisions are unlikely
// enough for naming throwaway test resources.
type Short struct{}

// New generates an 8 hex character id.
func (Short) New() string {
	s := uuid.New().String()
	return s[:strings.IndexByte(s, '-')]
}

// Sequential generates sequential IDs (for testing).
type Sequential struct {
	prefix  string
	counter uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next sequential ID.
func (s *Sequential) New() string {
	n := atomic.AddUint64(&s.counter, 1)
	return s.prefix + strconv.FormatUint(n, 10)
}

// Namer builds unique resource names from a prefix.
type Namer struct {
	ids ports.IDGenerator
}

// NewNamer creates a namer backed by ids.
func NewNamer(ids ports.IDGenerator) Namer {
	if ids == nil {
		ids = Short{}
	}
	return Namer{ids: ids}
}

// Name returns prefix-<id>.
func (n Namer) Name(prefix string) string {
	return prefix + "-" + n.ids.New()
}

// Ensure interface compliance.
var (
	_ ports.IDGenerator = UUID{}
	_ ports.IDGenerator = Short{}
	_ ports.IDGenerator = (*Sequential)(nil)
)
