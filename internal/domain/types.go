package domain

import (
	"errors"
	"time"
)

// ErrNotFound marks a lookup or mutation that targeted a record that does not
// exist. Stores wrap it so callers can match with errors.Is across layers.
var ErrNotFound = errors.New("not found")

// AccessLevel controls what a share-token holder may do with a session.
type AccessLevel string

const (
	AccessView AccessLevel = "view"
	AccessEdit AccessLevel = "edit"
)

type Session struct {
	ID           int64
	Name         string
	SafetyFactor float64
	TotalItems   int
	TotalVolume  float64
	TotalWeight  float64
	TotalsStale  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Photo is one uploaded image in a session's batch. Idx is the stable 1-based
// position within the batch; analysis processes photos in Idx order.
type Photo struct {
	ID         int64
	SessionID  int64
	Idx        int
	StorageKey string
	MimeType   string
	UploadedAt time.Time
}

// Item is a single inventory line. Volume and Weight are per-unit figures;
// Quantity is the multiplier. FoundInImage is the photo index the item was
// first seen in, or 0 for manually entered items.
type Item struct {
	ID           int64
	SessionID    int64
	PhotoID      *int64
	Name         string
	Quantity     int
	Volume       float64
	Weight       float64
	Room         string
	FoundInImage int
	IsGoing      bool
	AIGenerated  bool
	Estimated    bool
	CreatedAt    time.Time
}

type ShareToken struct {
	ID             int64
	SessionID      int64
	Token          string
	AccessLevel    AccessLevel
	RecipientName  string
	RecipientEmail string
	AccessCount    int
	Active         bool
	CreatedAt      time.Time
}

// Totals is derived data, always recomputed from items; never edited directly.
type Totals struct {
	TotalItems  int
	TotalVolume float64
	TotalWeight float64
}
