// Package journal provides value types for the scenario journal, the record
// of services a scenario created on the remote catalog.
package journal

import (
	"time"

	"github.com/artpar/catalogctl/domain/catalog"
)

// Entry records one created service (value type).
type Entry struct {
	ID         int64
	ScenarioID string
	Category   catalog.Category
	ServiceFQN string
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

// Pending reports whether the service still needs deleting.
func (e Entry) Pending() bool {
	return e.DeletedAt == nil
}

// SweepResult summarizes a sweep over pending entries.
type SweepResult struct {
	Deleted []Entry
	Missing []Entry // already gone on the server
	Failed  map[string]error
}

// Total returns the number of entries the sweep looked at.
func (r SweepResult) Total() int {
	return len(r.Deleted) + len(r.Missing) + len(r.Failed)
}
