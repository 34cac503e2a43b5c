package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/movinv/movinv/internal/domain"
	"github.com/movinv/movinv/internal/metrics"
	"github.com/movinv/movinv/internal/photostore"
	"github.com/movinv/movinv/internal/pipeline"
	"github.com/movinv/movinv/internal/vision"
)

var (
	// ErrNotFound aliases the domain sentinel so store errors wrapping it
	// match here too.
	ErrNotFound            = domain.ErrNotFound
	ErrNoPhotos            = errors.New("session has no photos")
	ErrInvalidSafetyFactor = errors.New("safety factor not in allowed set")
	ErrShareInactive       = errors.New("share token inactive")
)

// sessionRepository is the subset of store.SessionStore that SessionService requires.
type sessionRepository interface {
	Create(ctx context.Context, name string) (*domain.Session, error)
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
	UpdateSafetyFactor(ctx context.Context, id int64, factor float64) error
	MarkTotalsStale(ctx context.Context, id int64) error
	SaveTotals(ctx context.Context, id int64, totals domain.Totals) error
	Delete(ctx context.Context, id int64) error
}

// photoRepository is the subset of store.PhotoStore that SessionService requires.
type photoRepository interface {
	Create(ctx context.Context, sessionID int64, storageKey, mimeType string) (*domain.Photo, error)
	GetByIdx(ctx context.Context, sessionID int64, idx int) (*domain.Photo, error)
	ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.Photo, error)
	Delete(ctx context.Context, id int64) error
}

// itemRepository is the subset of store.ItemStore that SessionService requires.
type itemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.Item, error)
	Update(ctx context.Context, id int64, name string, quantity int, volume, weight float64, room string) error
	SetGoing(ctx context.Context, id int64, going bool) error
	Delete(ctx context.Context, id int64) error
}

// tokenRepository is the subset of store.TokenStore that SessionService requires.
type tokenRepository interface {
	Create(ctx context.Context, sessionID int64, level domain.AccessLevel, recipientName, recipientEmail string) (*domain.ShareToken, error)
	GetByToken(ctx context.Context, token string) (*domain.ShareToken, error)
	ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.ShareToken, error)
	IncrementAccessCount(ctx context.Context, token string) error
	Deactivate(ctx context.Context, token string) error
}

type SessionService struct {
	sessions sessionRepository
	photos   photoRepository
	items    itemRepository
	tokens   tokenRepository
	photoStg photostore.PhotoStore
	analyzer vision.Analyzer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	drafts   *draftBuffer
}

func NewSessionService(
	sessions sessionRepository,
	photos photoRepository,
	items itemRepository,
	tokens tokenRepository,
	photoStg photostore.PhotoStore,
	analyzer vision.Analyzer,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		photos:   photos,
		items:    items,
		tokens:   tokens,
		photoStg: photoStg,
		analyzer: analyzer,
		metrics:  m,
		logger:   logger,
		drafts:   newDraftBuffer(),
	}
}

func (s *SessionService) CreateSession(ctx context.Context, name string) (*domain.Session, error) {
	return s.sessions.Create(ctx, name)
}

func (s *SessionService) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *SessionService) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	return s.sessions.List(ctx)
}

func (s *SessionService) DeleteSession(ctx context.Context, id int64) error {
	photos, err := s.photos.ListBySessionID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list photos for delete: %w", err)
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	// Records cascade with the session row; files are best-effort cleanup.
	for _, photo := range photos {
		if err := s.photoStg.Delete(ctx, photo.StorageKey); err != nil {
			s.logger.Error("failed to delete photo file", "storage_key", photo.StorageKey, "error", err)
		}
	}
	return nil
}

// UpdateSafetyFactor changes the packing-overhead multiplier. Only the fixed
// discrete set of factors is accepted; the cached totals go stale because the
// multiplier feeds the volume and weight formulas.
func (s *SessionService) UpdateSafetyFactor(ctx context.Context, sessionID int64, factor float64) error {
	if !domain.ValidSafetyFactor(factor) {
		return ErrInvalidSafetyFactor
	}
	return s.sessions.UpdateSafetyFactor(ctx, sessionID, factor)
}

// AddPhoto stores the image bytes and appends a photo record to the session's
// batch, returning the record with its assigned index.
func (s *SessionService) AddPhoto(ctx context.Context, sessionID int64, imageData []byte, mimeType string) (*domain.Photo, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}

	storageKey, err := s.photoStg.Save(ctx, fmt.Sprintf("session_%d", sessionID), mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	photo, err := s.photos.Create(ctx, sessionID, storageKey, mimeType)
	if err != nil {
		_ = s.photoStg.Delete(ctx, storageKey)
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	s.logger.Info("photo added", "session_id", sessionID, "idx", photo.Idx, "bytes", len(imageData))
	return photo, nil
}

// GetPhoto returns the stored image bytes for the given batch index.
func (s *SessionService) GetPhoto(ctx context.Context, sessionID int64, idx int) (io.ReadCloser, string, error) {
	photo, err := s.photos.GetByIdx(ctx, sessionID, idx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get photo record: %w", err)
	}
	if photo == nil {
		return nil, "", ErrNotFound
	}
	return s.photoStg.Get(ctx, photo.StorageKey)
}

// ProgressEvent reports per-photo analysis progress. Exactly one event with
// Done set closes each analysis stream.
type ProgressEvent struct {
	PhotoIdx   int    `json:"photoIdx,omitempty"`
	ItemsAdded int    `json:"itemsAdded"`
	Error      string `json:"error,omitempty"`
	Done       bool   `json:"done,omitempty"`
	TotalItems int    `json:"totalItems,omitempty"`
}

// Analyze runs the two-pass pipeline over the session's photo batch: one
// batch room-detection call, then a strictly sequential per-photo extraction
// loop threading the already-found ledger forward. Each photo's accepted items
// are persisted before the next photo starts, so an interrupted run keeps what
// it committed. Events are delivered on the returned channel, which is closed
// after a final Done event.
func (s *SessionService) Analyze(ctx context.Context, sessionID int64) (<-chan ProgressEvent, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}

	photos, err := s.photos.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}

	images, err := s.loadImages(ctx, photos)
	if err != nil {
		return nil, err
	}

	photoIDByIdx := make(map[int]int64, len(photos))
	for _, p := range photos {
		photoIDByIdx[p.Idx] = p.ID
	}

	// Buffer one event per photo plus the Done event so the pipeline never
	// blocks on a slow consumer.
	events := make(chan ProgressEvent, len(images)+1)

	go func() {
		defer close(events)

		s.logger.Info("analysis started", "session_id", sessionID, "photos", len(images))

		resolver := pipeline.NewRoomResolver(s.analyzer, s.logger)
		rooms, degraded := resolver.Resolve(ctx, images)
		if degraded {
			s.metrics.VisionRequests.WithLabelValues("detect_rooms", "error").Inc()
		} else {
			s.metrics.VisionRequests.WithLabelValues("detect_rooms", "ok").Inc()
		}
		s.logger.Info("rooms resolved", "session_id", sessionID, "rooms", rooms.RoomsDetected, "degraded", degraded)

		aggregator := pipeline.NewAggregator(s.analyzer, s.logger)
		ledger := aggregator.Run(ctx, images, rooms, func(result pipeline.PhotoResult) {
			s.metrics.PhotosAnalyzed.Inc()
			if result.Err != nil {
				s.metrics.VisionRequests.WithLabelValues("extract_items", "error").Inc()
				events <- ProgressEvent{PhotoIdx: result.PhotoIdx, Error: result.Err.Error()}
				return
			}
			s.metrics.VisionRequests.WithLabelValues("extract_items", "ok").Inc()
			s.metrics.ItemsDetected.Add(float64(len(result.Items)))

			stored := s.persistPhotoItems(ctx, sessionID, photoIDByIdx[result.PhotoIdx], result)
			events <- ProgressEvent{PhotoIdx: result.PhotoIdx, ItemsAdded: stored}
		})

		totals, err := s.RecomputeTotals(ctx, sessionID)
		if err != nil {
			s.logger.Error("failed to recompute totals after analysis", "session_id", sessionID, "error", err)
		}

		s.logger.Info("analysis complete", "session_id", sessionID, "items", len(ledger))
		events <- ProgressEvent{Done: true, TotalItems: totals.TotalItems}
	}()

	return events, nil
}

func (s *SessionService) loadImages(ctx context.Context, photos []*domain.Photo) ([]vision.Image, error) {
	images := make([]vision.Image, 0, len(photos))
	for _, photo := range photos {
		reader, mimeType, err := s.photoStg.Get(ctx, photo.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo %d: %w", photo.Idx, err)
		}
		data, err := io.ReadAll(reader)
		if cerr := reader.Close(); cerr != nil {
			s.logger.Error("failed to close photo reader", "storage_key", photo.StorageKey, "error", cerr)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read photo %d: %w", photo.Idx, err)
		}
		images = append(images, vision.Image{Idx: photo.Idx, Data: data, MimeType: mimeType})
	}
	return images, nil
}

// persistPhotoItems commits one photo's accepted items and returns how many
// were stored. A failed insert is logged and skipped; the in-memory ledger and
// the persisted list may diverge until the user retries.
func (s *SessionService) persistPhotoItems(ctx context.Context, sessionID, photoID int64, result pipeline.PhotoResult) int {
	stored := 0
	for _, detected := range result.Items {
		item := &domain.Item{
			SessionID:    sessionID,
			PhotoID:      &photoID,
			Name:         detected.Name,
			Quantity:     detected.Quantity,
			Volume:       detected.Volume,
			Weight:       detected.Weight,
			Room:         detected.Room,
			FoundInImage: result.PhotoIdx,
			IsGoing:      true,
			AIGenerated:  true,
			Estimated:    domain.IsEstimatedName(detected.Name),
		}
		if _, err := s.items.Create(ctx, item); err != nil {
			s.logger.Error("failed to persist item", "session_id", sessionID, "name", detected.Name, "error", err)
			continue
		}
		stored++
	}

	if stored > 0 {
		if err := s.sessions.MarkTotalsStale(ctx, sessionID); err != nil {
			s.logger.Error("failed to mark totals stale", "session_id", sessionID, "error", err)
		}
	}
	return stored
}

func (s *SessionService) ListItems(ctx context.Context, sessionID int64) ([]*domain.Item, error) {
	return s.items.ListBySessionID(ctx, sessionID)
}

// AddItem creates a manually entered item. Manual items share the Item shape
// and downstream handling with AI-generated ones.
func (s *SessionService) AddItem(ctx context.Context, sessionID int64, name string, quantity int, volume, weight float64, room string) (*domain.Item, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if quantity < 1 {
		quantity = 1
	}

	item, err := s.items.Create(ctx, &domain.Item{
		SessionID: sessionID,
		Name:      name,
		Quantity:  quantity,
		Volume:    volume,
		Weight:    weight,
		Room:      room,
		IsGoing:   true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.MarkTotalsStale(ctx, sessionID); err != nil {
		s.logger.Error("failed to mark totals stale", "session_id", sessionID, "error", err)
	}
	return item, nil
}

func (s *SessionService) UpdateItem(ctx context.Context, sessionID, itemID int64, name string, quantity int, volume, weight float64, room string) (*domain.Item, error) {
	if err := s.items.Update(ctx, itemID, name, quantity, volume, weight, room); err != nil {
		return nil, err
	}
	if err := s.sessions.MarkTotalsStale(ctx, sessionID); err != nil {
		s.logger.Error("failed to mark totals stale", "session_id", sessionID, "error", err)
	}
	return s.items.GetByID(ctx, itemID)
}

// SetItemGoing toggles whether the item counts toward totals, without
// deleting it.
func (s *SessionService) SetItemGoing(ctx context.Context, sessionID, itemID int64, going bool) error {
	if err := s.items.SetGoing(ctx, itemID, going); err != nil {
		return err
	}
	if err := s.sessions.MarkTotalsStale(ctx, sessionID); err != nil {
		s.logger.Error("failed to mark totals stale", "session_id", sessionID, "error", err)
	}
	return nil
}

func (s *SessionService) DeleteItem(ctx context.Context, sessionID, itemID int64) error {
	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}
	if err := s.sessions.MarkTotalsStale(ctx, sessionID); err != nil {
		s.logger.Error("failed to mark totals stale", "session_id", sessionID, "error", err)
	}
	return nil
}

// StageItemEdit buffers an edit in memory. Nothing is persisted and the totals
// cache is untouched until CommitDrafts.
func (s *SessionService) StageItemEdit(sessionID int64, draft ItemDraft) {
	s.drafts.stage(sessionID, draft)
}

func (s *SessionService) ListDrafts(sessionID int64) []ItemDraft {
	return s.drafts.list(sessionID)
}

func (s *SessionService) DiscardDrafts(sessionID int64) {
	s.drafts.discard(sessionID)
}

// CommitDrafts merges staged edits into the authoritative item records and
// invalidates the totals cache once for the whole batch. Returns the number of
// drafts applied.
func (s *SessionService) CommitDrafts(ctx context.Context, sessionID int64) (int, error) {
	drafts := s.drafts.take(sessionID)
	if len(drafts) == 0 {
		return 0, nil
	}

	applied := 0
	for _, d := range drafts {
		if err := s.items.Update(ctx, d.ItemID, d.Name, d.Quantity, d.Volume, d.Weight, d.Room); err != nil {
			s.logger.Error("failed to apply draft", "session_id", sessionID, "item_id", d.ItemID, "error", err)
			continue
		}
		if err := s.items.SetGoing(ctx, d.ItemID, d.IsGoing); err != nil {
			s.logger.Error("failed to apply draft going flag", "session_id", sessionID, "item_id", d.ItemID, "error", err)
			continue
		}
		applied++
	}

	if applied > 0 {
		if err := s.sessions.MarkTotalsStale(ctx, sessionID); err != nil {
			return applied, fmt.Errorf("failed to mark totals stale: %w", err)
		}
	}
	return applied, nil
}

// Totals returns the cached totals and whether they are stale. Callers wanting
// fresh figures use RecomputeTotals; reads never trigger recomputation.
func (s *SessionService) Totals(ctx context.Context, sessionID int64) (domain.Totals, bool, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return domain.Totals{}, false, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return domain.Totals{}, false, ErrNotFound
	}
	totals := domain.Totals{
		TotalItems:  session.TotalItems,
		TotalVolume: session.TotalVolume,
		TotalWeight: session.TotalWeight,
	}
	return totals, session.TotalsStale, nil
}

// RecomputeTotals rebuilds the cached totals from the item list. Calling it
// again with no intervening edits yields the same result.
func (s *SessionService) RecomputeTotals(ctx context.Context, sessionID int64) (domain.Totals, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return domain.Totals{}, ErrNotFound
	}

	items, err := s.items.ListBySessionID(ctx, sessionID)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("failed to list items: %w", err)
	}

	totals := pipeline.ComputeTotals(items, session.SafetyFactor)
	if err := s.sessions.SaveTotals(ctx, sessionID, totals); err != nil {
		return domain.Totals{}, err
	}
	return totals, nil
}

func (s *SessionService) CreateShare(ctx context.Context, sessionID int64, level domain.AccessLevel, recipientName, recipientEmail string) (*domain.ShareToken, error) {
	if level != domain.AccessView && level != domain.AccessEdit {
		return nil, fmt.Errorf("invalid access level %q", level)
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return s.tokens.Create(ctx, sessionID, level, recipientName, recipientEmail)
}

func (s *SessionService) ListShares(ctx context.Context, sessionID int64) ([]*domain.ShareToken, error) {
	return s.tokens.ListBySessionID(ctx, sessionID)
}

// ResolveShare validates a share token and records the access. Inactive tokens
// are rejected before any session data is exposed.
func (s *SessionService) ResolveShare(ctx context.Context, token string) (*domain.ShareToken, error) {
	t, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get share token: %w", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if !t.Active {
		return nil, ErrShareInactive
	}
	if err := s.tokens.IncrementAccessCount(ctx, token); err != nil {
		s.logger.Error("failed to increment share access count", "token_id", t.ID, "error", err)
	}
	return t, nil
}

func (s *SessionService) RevokeShare(ctx context.Context, token string) error {
	return s.tokens.Deactivate(ctx, token)
}
