package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/movinv/movinv/internal/domain"
)

type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

const tokenColumns = `id, session_id, token, access_level, recipient_name, recipient_email, access_count, active, created_at`

func scanToken(row interface{ Scan(...any) error }) (*domain.ShareToken, error) {
	t := &domain.ShareToken{}
	err := row.Scan(&t.ID, &t.SessionID, &t.Token, &t.AccessLevel, &t.RecipientName,
		&t.RecipientEmail, &t.AccessCount, &t.Active, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create mints a new share token for the session. The token value is a random
// UUID; guessing one is not feasible, which is the whole access-control story
// for shared links.
func (s *TokenStore) Create(ctx context.Context, sessionID int64, level domain.AccessLevel, recipientName, recipientEmail string) (*domain.ShareToken, error) {
	token := uuid.NewString()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO share_tokens (session_id, token, access_level, recipient_name, recipient_email)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, token, string(level), recipientName, recipientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create share token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+tokenColumns+` FROM share_tokens WHERE id = ?
	`, id)
	created, err := scanToken(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get share token: %w", err)
	}
	return created, nil
}

func (s *TokenStore) GetByToken(ctx context.Context, token string) (*domain.ShareToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tokenColumns+` FROM share_tokens WHERE token = ?
	`, token)

	t, err := scanToken(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share token: %w", err)
	}
	return t, nil
}

func (s *TokenStore) ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.ShareToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tokenColumns+` FROM share_tokens WHERE session_id = ? ORDER BY created_at DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list share tokens: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var tokens []*domain.ShareToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share token: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share tokens: %w", err)
	}

	return tokens, nil
}

func (s *TokenStore) IncrementAccessCount(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE share_tokens SET access_count = access_count + 1 WHERE token = ?
	`, token)
	if err != nil {
		return fmt.Errorf("failed to increment access count: %w", err)
	}
	return requireRow(result, "share token")
}

func (s *TokenStore) Deactivate(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE share_tokens SET active = 0 WHERE token = ?
	`, token)
	if err != nil {
		return fmt.Errorf("failed to deactivate share token: %w", err)
	}
	return requireRow(result, "share token")
}
