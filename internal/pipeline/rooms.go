package pipeline

import (
	"context"
	"log/slog"

	"github.com/movinv/movinv/internal/domain"
	"github.com/movinv/movinv/internal/vision"
)

// RoomResolver turns the raw per-image room guesses from the vision backend
// into a canonical, deduplicated room list plus an image-to-rooms mapping that
// every downstream step respects. The mapping is produced once per batch and
// never mutated afterwards; numbered variants like "Bedroom 1" are assigned by
// the detector, not patched in later.
type RoomResolver struct {
	detector vision.RoomDetector
	logger   *slog.Logger
}

func NewRoomResolver(detector vision.RoomDetector, logger *slog.Logger) *RoomResolver {
	return &RoomResolver{detector: detector, logger: logger}
}

// Resolve classifies the whole batch. It never fails: if detection errors or
// returns a malformed payload, every photo is assigned a single fallback room
// and the batch proceeds in degraded one-room mode. The degraded return tells
// callers which of the two happened.
func (r *RoomResolver) Resolve(ctx context.Context, images []vision.Image) (det *vision.RoomDetection, degraded bool) {
	raw, err := r.detector.DetectRooms(ctx, images)
	if err != nil {
		r.logger.Warn("room detection failed, falling back to single room",
			"photos", len(images), "fallback", domain.FallbackRoom, "error", err)
		return fallbackDetection(images), true
	}

	return r.normalize(raw, images), false
}

// normalize enforces the mapping invariants: every room name referenced by a
// photo appears in the canonical list, and every photo maps to at least one
// room.
func (r *RoomResolver) normalize(det *vision.RoomDetection, images []vision.Image) *vision.RoomDetection {
	out := &vision.RoomDetection{
		RoomsDetected: make([]string, 0, len(det.RoomsDetected)),
		ImageRooms:    make(map[int][]string, len(images)),
	}

	canonical := make(map[string]bool)
	addRoom := func(name string) {
		if !canonical[name] {
			canonical[name] = true
			out.RoomsDetected = append(out.RoomsDetected, name)
		}
	}
	for _, name := range det.RoomsDetected {
		addRoom(name)
	}
	if len(out.RoomsDetected) == 0 {
		addRoom(domain.FallbackRoom)
	}

	for _, img := range images {
		rooms := det.ImageRooms[img.Idx]
		if len(rooms) == 0 {
			// The detector skipped this photo; assign the first canonical room
			// rather than inventing a new one mid-pipeline.
			r.logger.Debug("photo missing from room mapping", "photo", img.Idx)
			rooms = out.RoomsDetected[:1]
		}
		mapped := make([]string, 0, len(rooms))
		seen := make(map[string]bool, len(rooms))
		for _, name := range rooms {
			if seen[name] {
				continue
			}
			seen[name] = true
			addRoom(name)
			mapped = append(mapped, name)
		}
		out.ImageRooms[img.Idx] = mapped
	}

	return out
}

func fallbackDetection(images []vision.Image) *vision.RoomDetection {
	det := &vision.RoomDetection{
		RoomsDetected: []string{domain.FallbackRoom},
		ImageRooms:    make(map[int][]string, len(images)),
	}
	for _, img := range images {
		det.ImageRooms[img.Idx] = []string{domain.FallbackRoom}
	}
	return det
}
