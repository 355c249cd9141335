package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/catalogctl/adapters/clock"
	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/journal"
	"github.com/artpar/catalogctl/ports"
)

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	j := &fakeJournal{}
	for _, fqn := range []string{"svc-ok", "svc-gone", "svc-broken"} {
		j.Record(ctx, journal.Entry{ScenarioID: "s", Category: catalog.CategorySearch, ServiceFQN: fqn, CreatedAt: time.Unix(1, 0)})
	}
	boom := errors.New("boom")
	client := &fakeCatalog{deleteErr: map[string]error{
		"svc-gone":   fmt.Errorf("delete: %w", ports.ErrNotFound),
		"svc-broken": boom,
	}}

	s := app.NewSweeper(j, client, clock.NewFake(time.Unix(100, 0)), zerolog.Nop())
	result, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if len(result.Deleted) != 1 || result.Deleted[0].ServiceFQN != "svc-ok" {
		t.Errorf("Deleted = %+v", result.Deleted)
	}
	if len(result.Missing) != 1 || result.Missing[0].ServiceFQN != "svc-gone" {
		t.Errorf("Missing = %+v", result.Missing)
	}
	if !errors.Is(result.Failed["svc-broken"], boom) || len(result.Failed) != 1 {
		t.Errorf("Failed = %v", result.Failed)
	}
	if result.Total() != 3 {
		t.Errorf("Total = %d, want 3", result.Total())
	}

	// only the failed entry is still pending
	pending, _ := j.Pending(ctx)
	if len(pending) != 1 || pending[0].ServiceFQN != "svc-broken" {
		t.Errorf("pending = %+v", pending)
	}
}

func TestSweeper_PendingError(t *testing.T) {
	boom := errors.New("boom")
	s := app.NewSweeper(&fakeJournal{pendingErr: boom}, &fakeCatalog{}, nil, zerolog.Nop())
	if _, err := s.Sweep(context.Background()); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}

func TestSweeper_Empty(t *testing.T) {
	s := app.NewSweeper(&fakeJournal{}, &fakeCatalog{}, nil, zerolog.Nop())
	result, err := s.Sweep(context.Background())
	if err != nil || result.Total() != 0 {
		t.Errorf("Sweep = %+v, %v", result, err)
	}
}
