package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"github.com/movinv/movinv/internal/domain"
	"github.com/movinv/movinv/internal/vision"
)

// PhotoResult reports the outcome of one photo's extraction step. Err set
// means the photo contributed zero items; the batch continued regardless.
type PhotoResult struct {
	PhotoIdx int
	Items    []vision.DetectedItem
	Err      error
}

// Aggregator drives the per-photo extraction loop. Photos are processed
// strictly in index order because the already-found ledger is causally
// threaded: each step must observe the committed output of the one before it,
// or cross-photo dedup silently breaks. That rules out fanning the batch out.
type Aggregator struct {
	extractor vision.ItemExtractor
	logger    *slog.Logger
}

func NewAggregator(extractor vision.ItemExtractor, logger *slog.Logger) *Aggregator {
	return &Aggregator{extractor: extractor, logger: logger}
}

// Run extracts items from each photo in turn, threading the growing ledger
// forward, and calls emit after every photo so the caller can persist results
// and report progress incrementally. Returns the full ledger.
//
// A failed photo is logged, reported via emit, and skipped; cancellation stops
// the loop between photos, leaving already-emitted results intact.
func (a *Aggregator) Run(ctx context.Context, images []vision.Image, rooms *vision.RoomDetection, emit func(PhotoResult)) []vision.DetectedItem {
	ordered := make([]vision.Image, len(images))
	copy(ordered, images)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Idx < ordered[j].Idx })

	ledger := make([]vision.DetectedItem, 0)

	for _, img := range ordered {
		if ctx.Err() != nil {
			a.logger.Info("aggregation cancelled", "completed_photos", img.Idx-1)
			break
		}

		roomsFor := rooms.ImageRooms[img.Idx]

		extracted, err := a.extractor.ExtractItems(ctx, img, roomsFor, ledger)
		if err != nil {
			a.logger.Error("item extraction failed for photo", "photo", img.Idx, "error", err)
			emit(PhotoResult{PhotoIdx: img.Idx, Err: err})
			continue
		}

		accepted := make([]vision.DetectedItem, 0, len(extracted))
		for _, item := range extracted {
			if item.Name == "" {
				continue
			}
			accepted = append(accepted, sanitize(item, roomsFor))
		}

		// The ledger only ever grows; dedup against earlier photos is the
		// extractor's job, and its misses are accepted as-is.
		ledger = append(ledger, accepted...)

		a.logger.Info("photo extracted", "photo", img.Idx, "items", len(accepted), "ledger_size", len(ledger))
		emit(PhotoResult{PhotoIdx: img.Idx, Items: accepted})
	}

	return ledger
}

// sanitize enforces the two output invariants the extractor is instructed to
// follow but cannot be trusted with: the room must come from the photo's
// mapped set, and box lines must carry the fixed per-box volume and weight.
func sanitize(item vision.DetectedItem, roomsFor []string) vision.DetectedItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if !containsRoom(roomsFor, item.Room) {
		if len(roomsFor) > 0 {
			item.Room = roomsFor[0]
		} else {
			item.Room = domain.FallbackRoom
		}
	}

	if size, ok := domain.BoxSizeFromName(item.Name); ok {
		spec := domain.BoxSpecs[size]
		item.Volume = spec.CuFt
		item.Weight = spec.Lb
	}

	return item
}

func containsRoom(rooms []string, name string) bool {
	for _, r := range rooms {
		if r == name {
			return true
		}
	}
	return false
}
