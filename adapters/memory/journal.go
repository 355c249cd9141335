package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/artpar/catalogctl/domain/journal"
	"github.com/artpar/catalogctl/ports"
)

// Journal is an in-memory implementation of ports.Journal.
type Journal struct {
	mu      sync.RWMutex
	nextID  int64
	entries []journal.Entry
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Record stores a newly created service.
func (j *Journal) Record(ctx context.Context, e journal.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.nextID++
	e.ID = j.nextID
	j.entries = append(j.entries, e)
	return nil
}

// MarkDeleted marks every pending entry for the service as deleted.
func (j *Journal) MarkDeleted(ctx context.Context, serviceFQN string, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := range j.entries {
		if j.entries[i].ServiceFQN == serviceFQN && j.entries[i].Pending() {
			deletedAt := at
			j.entries[i].DeletedAt = &deletedAt
		}
	}
	return nil
}

// Pending returns entries not yet deleted, oldest first.
func (j *Journal) Pending(ctx context.Context) ([]journal.Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []journal.Entry
	for _, e := range j.entries {
		if e.Pending() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

// Ensure interface compliance.
var _ ports.Journal = (*Journal)(nil)
