package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/movinv/movinv/internal/domain"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, session_id, photo_id, name, quantity, volume, weight, room, found_in_image, is_going, ai_generated, estimated, created_at`

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.SessionID, &item.PhotoID, &item.Name, &item.Quantity,
		&item.Volume, &item.Weight, &item.Room, &item.FoundInImage, &item.IsGoing,
		&item.AIGenerated, &item.Estimated, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Create inserts the item and returns the stored row. ID and CreatedAt on the
// argument are ignored.
func (s *ItemStore) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO items (session_id, photo_id, name, quantity, volume, weight, room, found_in_image, is_going, ai_generated, estimated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.SessionID, item.PhotoID, item.Name, item.Quantity, item.Volume, item.Weight,
		item.Room, item.FoundInImage, item.IsGoing, item.AIGenerated, item.Estimated)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListBySessionID returns the session's items ordered by room, then name, so
// callers can group per room without re-sorting.
func (s *ItemStore) ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE session_id = ? ORDER BY room ASC, name ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// Update replaces the user-editable fields. Last write wins; there is no
// version check.
func (s *ItemStore) Update(ctx context.Context, id int64, name string, quantity int, volume, weight float64, room string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, quantity = ?, volume = ?, weight = ?, room = ? WHERE id = ?
	`, name, quantity, volume, weight, room, id)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireRow(result, "item")
}

// SetGoing toggles whether the item counts toward totals. The row is kept
// either way.
func (s *ItemStore) SetGoing(ctx context.Context, id int64, going bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET is_going = ? WHERE id = ?
	`, going, id)
	if err != nil {
		return fmt.Errorf("failed to set item going: %w", err)
	}
	return requireRow(result, "item")
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM items WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return requireRow(result, "item")
}

func (s *ItemStore) DeleteBySessionID(ctx context.Context, sessionID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM items WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	return nil
}
