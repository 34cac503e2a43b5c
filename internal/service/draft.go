package service

import "sync"

// ItemDraft is an uncommitted edit to one item. Drafts buffer rapid-fire field
// edits in memory; nothing touches the database or the totals cache until the
// drafts are committed in one batch.
type ItemDraft struct {
	ItemID   int64   `json:"itemId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Volume   float64 `json:"volume"`
	Weight   float64 `json:"weight"`
	Room     string  `json:"room"`
	IsGoing  bool    `json:"isGoing"`
}

// draftBuffer holds staged edits per session, keyed by item so re-editing the
// same field replaces the earlier draft rather than queueing both.
type draftBuffer struct {
	mu        sync.Mutex
	bySession map[int64]map[int64]ItemDraft
}

func newDraftBuffer() *draftBuffer {
	return &draftBuffer{bySession: make(map[int64]map[int64]ItemDraft)}
}

func (b *draftBuffer) stage(sessionID int64, draft ItemDraft) {
	b.mu.Lock()
	defer b.mu.Unlock()
	drafts, ok := b.bySession[sessionID]
	if !ok {
		drafts = make(map[int64]ItemDraft)
		b.bySession[sessionID] = drafts
	}
	drafts[draft.ItemID] = draft
}

func (b *draftBuffer) list(sessionID int64) []ItemDraft {
	b.mu.Lock()
	defer b.mu.Unlock()
	drafts := make([]ItemDraft, 0, len(b.bySession[sessionID]))
	for _, d := range b.bySession[sessionID] {
		drafts = append(drafts, d)
	}
	return drafts
}

// take removes and returns the session's staged drafts.
func (b *draftBuffer) take(sessionID int64) []ItemDraft {
	b.mu.Lock()
	defer b.mu.Unlock()
	drafts := make([]ItemDraft, 0, len(b.bySession[sessionID]))
	for _, d := range b.bySession[sessionID] {
		drafts = append(drafts, d)
	}
	delete(b.bySession, sessionID)
	return drafts
}

func (b *draftBuffer) discard(sessionID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bySession, sessionID)
}
