package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/movinv/movinv/internal/domain"
)

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

// Create appends a photo to the session's batch, assigning the next 1-based
// index. Index assignment happens in the INSERT itself so two uploads cannot
// claim the same slot.
func (s *PhotoStore) Create(ctx context.Context, sessionID int64, storageKey, mimeType string) (*domain.Photo, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (session_id, idx, storage_key, mime_type)
		VALUES (?, (SELECT COALESCE(MAX(idx), 0) + 1 FROM photos WHERE session_id = ?), ?, ?)
	`, sessionID, sessionID, storageKey, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PhotoStore) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	photo := &domain.Photo{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, idx, storage_key, mime_type, uploaded_at FROM photos WHERE id = ?
	`, id).Scan(&photo.ID, &photo.SessionID, &photo.Idx, &photo.StorageKey, &photo.MimeType, &photo.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

func (s *PhotoStore) GetByIdx(ctx context.Context, sessionID int64, idx int) (*domain.Photo, error) {
	photo := &domain.Photo{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, idx, storage_key, mime_type, uploaded_at FROM photos
		WHERE session_id = ? AND idx = ?
	`, sessionID, idx).Scan(&photo.ID, &photo.SessionID, &photo.Idx, &photo.StorageKey, &photo.MimeType, &photo.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

// ListBySessionID returns the session's photos in batch order.
func (s *PhotoStore) ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, idx, storage_key, mime_type, uploaded_at FROM photos
		WHERE session_id = ? ORDER BY idx ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var photos []*domain.Photo
	for rows.Next() {
		photo := &domain.Photo{}
		if err := rows.Scan(&photo.ID, &photo.SessionID, &photo.Idx, &photo.StorageKey, &photo.MimeType, &photo.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

func (s *PhotoStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM photos WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return requireRow(result, "photo")
}
