package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/journal"
	"github.com/artpar/catalogctl/ports"
)

// JournalStore implements ports.Journal using SQLite.
type JournalStore struct {
	db *DB
}

// NewJournalStore creates a new SQLite journal.
func NewJournalStore(db *DB) *JournalStore {
	return &JournalStore{db: db}
}

// Record stores a newly created service.
func (s *JournalStore) Record(ctx context.Context, e journal.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (scenario_id, category, service_fqn, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ScenarioID, string(e.Category), e.ServiceFQN, e.CreatedAt.UTC(), nullTime(e.DeletedAt))
	if err != nil {
		return fmt.Errorf("record %s: %w", e.ServiceFQN, err)
	}
	return nil
}

// MarkDeleted marks every pending entry for the service as deleted.
func (s *JournalStore) MarkDeleted(ctx context.Context, serviceFQN string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE journal_entries SET deleted_at = ?
		WHERE service_fqn = ? AND deleted_at IS NULL
	`, at.UTC(), serviceFQN)
	if err != nil {
		return fmt.Errorf("mark %s deleted: %w", serviceFQN, err)
	}
	return nil
}

// Pending returns entries not yet deleted, oldest first.
func (s *JournalStore) Pending(ctx context.Context) ([]journal.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario_id, category, service_fqn, created_at, deleted_at
		FROM journal_entries
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one entry by id.
func (s *JournalStore) Get(ctx context.Context, id int64) (journal.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scenario_id, category, service_fqn, created_at, deleted_at
		FROM journal_entries WHERE id = ?
	`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return journal.Entry{}, ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (journal.Entry, error) {
	var e journal.Entry
	var category string
	var deletedAt sql.NullTime
	if err := row.Scan(&e.ID, &e.ScenarioID, &category, &e.ServiceFQN, &e.CreatedAt, &deletedAt); err != nil {
		return journal.Entry{}, err
	}
	e.Category = catalog.Category(category)
	if deletedAt.Valid {
		t := deletedAt.Time
		e.DeletedAt = &t
	}
	return e, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Ensure interface compliance.
var _ ports.Journal = (*JournalStore)(nil)
