package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/catalogctl/domain/journal"
	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
)

// Sweeper deletes services that scenarios created but never cleaned up.
type Sweeper struct {
	journal ports.Journal
	client  ports.Catalog
	clock   ports.Clock
	logger  zerolog.Logger
}

// NewSweeper creates a sweeper. A nil clock uses the system clock.
func NewSweeper(j ports.Journal, client ports.Catalog, clock ports.Clock, logger zerolog.Logger) *Sweeper {
	if clock == nil {
		clock = systemClock{}
	}
	return &Sweeper{
		journal: j,
		client:  client,
		clock:   clock,
		logger:  logger.With().Str("component", "sweeper").Logger(),
	}
}

// Sweep hard-deletes every pending journal entry. Services already gone
// count as missing. Per-entry failures are collected and the sweep goes on.
func (s *Sweeper) Sweep(ctx context.Context) (journal.SweepResult, error) {
	result := journal.SweepResult{Failed: map[string]error{}}

	pending, err := s.journal.Pending(ctx)
	if err != nil {
		return result, fmt.Errorf("list pending: %w", err)
	}

	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, err := s.client.DeleteService(ctx, entry.Category, entry.ServiceFQN, ports.DeleteOptions{Recursive: true, HardDelete: true})
		switch {
		case err == nil:
			result.Deleted = append(result.Deleted, entry)
		case errors.Is(err, ports.ErrNotFound):
			result.Missing = append(result.Missing, entry)
		default:
			s.logger.Warn().Err(err).Str("service", entry.ServiceFQN).Msg("sweep delete failed")
			result.Failed[entry.ServiceFQN] = err
			continue
		}

		if err := s.journal.MarkDeleted(ctx, entry.ServiceFQN, s.clock.Now()); err != nil {
			s.logger.Warn().Err(err).Str("service", entry.ServiceFQN).Msg("journal update failed")
		}
	}

	s.logger.Info().
		Int("deleted", len(result.Deleted)).
		Int("missing", len(result.Missing)).
		Int("failed", len(result.Failed)).
		Msg("sweep finished")
	return result, nil
}
