package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/movinv/movinv/internal/domain"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = `id, name, safety_factor, total_items, total_volume, total_weight, totals_stale, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*domain.Session, error) {
	s := &domain.Session{}
	err := row.Scan(&s.ID, &s.Name, &s.SafetyFactor, &s.TotalItems, &s.TotalVolume,
		&s.TotalWeight, &s.TotalsStale, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SessionStore) Create(ctx context.Context, name string) (*domain.Session, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (name) VALUES (?)
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SessionStore) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) List(ctx context.Context) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

func (s *SessionStore) UpdateSafetyFactor(ctx context.Context, id int64, factor float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET safety_factor = ?, totals_stale = 1, updated_at = datetime('now') WHERE id = ?
	`, factor, id)
	if err != nil {
		return fmt.Errorf("failed to update safety factor: %w", err)
	}
	return requireRow(result, "session")
}

// MarkTotalsStale flags the cached totals as out of date without touching them.
func (s *SessionStore) MarkTotalsStale(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET totals_stale = 1, updated_at = datetime('now') WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark totals stale: %w", err)
	}
	return requireRow(result, "session")
}

// SaveTotals writes freshly computed totals and clears the stale flag.
func (s *SessionStore) SaveTotals(ctx context.Context, id int64, totals domain.Totals) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET total_items = ?, total_volume = ?, total_weight = ?, totals_stale = 0, updated_at = datetime('now')
		WHERE id = ?
	`, totals.TotalItems, totals.TotalVolume, totals.TotalWeight, id)
	if err != nil {
		return fmt.Errorf("failed to save totals: %w", err)
	}
	return requireRow(result, "session")
}

func (s *SessionStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireRow(result, "session")
}

// requireRow converts a zero-rows-affected result into a not-found error.
func requireRow(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %w", entity, domain.ErrNotFound)
	}
	return nil
}
