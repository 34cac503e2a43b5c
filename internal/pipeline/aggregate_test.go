package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movinv/movinv/internal/domain"
	"github.com/movinv/movinv/internal/vision"
)

// fakeExtractor replays scripted items per photo index and records the ledger
// it was handed on each call.
type fakeExtractor struct {
	items   map[int][]vision.DetectedItem
	errs    map[int]error
	calls   []int
	ledgers [][]vision.DetectedItem
}

func (f *fakeExtractor) ExtractItems(ctx context.Context, img vision.Image, roomsForImage []string, alreadyFound []vision.DetectedItem) ([]vision.DetectedItem, error) {
	f.calls = append(f.calls, img.Idx)
	snapshot := make([]vision.DetectedItem, len(alreadyFound))
	copy(snapshot, alreadyFound)
	f.ledgers = append(f.ledgers, snapshot)
	if err := f.errs[img.Idx]; err != nil {
		return nil, err
	}
	return f.items[img.Idx], nil
}

func twoRoomDetection() *vision.RoomDetection {
	return &vision.RoomDetection{
		RoomsDetected: []string{"Living Room", "Kitchen"},
		ImageRooms: map[int][]string{
			1: {"Living Room"},
			2: {"Kitchen"},
		},
	}
}

func TestRunProcessesPhotosInOrder(t *testing.T) {
	extractor := &fakeExtractor{items: map[int][]vision.DetectedItem{}}
	a := NewAggregator(extractor, discardLogger())

	// Images handed over out of order; the loop must still go 1, 2, 3.
	images := []vision.Image{{Idx: 3}, {Idx: 1}, {Idx: 2}}
	rooms := &vision.RoomDetection{
		RoomsDetected: []string{"Living Room"},
		ImageRooms:    map[int][]string{1: {"Living Room"}, 2: {"Living Room"}, 3: {"Living Room"}},
	}

	a.Run(context.Background(), images, rooms, func(PhotoResult) {})

	assert.Equal(t, []int{1, 2, 3}, extractor.calls)
}

func TestRunThreadsLedgerForward(t *testing.T) {
	extractor := &fakeExtractor{items: map[int][]vision.DetectedItem{
		1: {{Name: "Sofa", Quantity: 1, Volume: 50, Weight: 120, Room: "Living Room"}},
		2: {{Name: "Fridge", Quantity: 1, Volume: 30, Weight: 250, Room: "Kitchen"}},
	}}
	a := NewAggregator(extractor, discardLogger())

	ledger := a.Run(context.Background(), batch(2), twoRoomDetection(), func(PhotoResult) {})

	require.Len(t, extractor.ledgers, 2)
	assert.Empty(t, extractor.ledgers[0])
	require.Len(t, extractor.ledgers[1], 1)
	assert.Equal(t, "Sofa", extractor.ledgers[1][0].Name)

	require.Len(t, ledger, 2)
	assert.Equal(t, "Sofa", ledger[0].Name)
	assert.Equal(t, "Fridge", ledger[1].Name)
}

func TestRunContinuesPastFailedPhoto(t *testing.T) {
	extractor := &fakeExtractor{
		items: map[int][]vision.DetectedItem{
			2: {{Name: "Fridge", Quantity: 1, Volume: 30, Weight: 250, Room: "Kitchen"}},
		},
		errs: map[int]error{1: errors.New("backend unavailable")},
	}
	a := NewAggregator(extractor, discardLogger())

	var results []PhotoResult
	ledger := a.Run(context.Background(), batch(2), twoRoomDetection(), func(r PhotoResult) {
		results = append(results, r)
	})

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Empty(t, results[0].Items)
	assert.NoError(t, results[1].Err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "Fridge", ledger[0].Name)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	extractor := &fakeExtractor{items: map[int][]vision.DetectedItem{}}
	a := NewAggregator(extractor, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a.Run(ctx, batch(3), twoRoomDetection(), func(PhotoResult) {
		t.Fatal("no photo should be emitted after cancellation")
	})

	assert.Empty(t, extractor.calls)
}

func TestSanitizeCoercesInventedRoom(t *testing.T) {
	item := sanitize(vision.DetectedItem{
		Name: "Sofa", Quantity: 1, Volume: 50, Weight: 120, Room: "Solarium",
	}, []string{"Living Room", "Kitchen"})

	assert.Equal(t, "Living Room", item.Room)
}

func TestSanitizeKeepsMappedRoom(t *testing.T) {
	item := sanitize(vision.DetectedItem{
		Name: "Fridge", Quantity: 1, Volume: 30, Weight: 250, Room: "Kitchen",
	}, []string{"Living Room", "Kitchen"})

	assert.Equal(t, "Kitchen", item.Room)
}

func TestSanitizeFallbackRoomWhenNoneMapped(t *testing.T) {
	item := sanitize(vision.DetectedItem{Name: "Sofa", Quantity: 1, Room: "Anywhere"}, nil)
	assert.Equal(t, domain.FallbackRoom, item.Room)
}

func TestSanitizeSnapsBoxConstants(t *testing.T) {
	tests := []struct {
		name     string
		wantCuFt float64
		wantLb   float64
	}{
		{"Small boxes", 1.5, 15},
		{"Medium boxes (est.)", 3, 25},
		{"Large boxes", 4.5, 30},
		{"Extra-large boxes", 6, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := sanitize(vision.DetectedItem{
				Name: tt.name, Quantity: 2, Volume: 99, Weight: 99, Room: "Living Room",
			}, []string{"Living Room"})

			assert.Equal(t, tt.wantCuFt, item.Volume)
			assert.Equal(t, tt.wantLb, item.Weight)
			assert.Equal(t, 2, item.Quantity)
		})
	}
}

func TestSanitizeKeepsMeasuredFiguresForBoxLikeNames(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		weight float64
	}{
		{"Large toolbox", 2, 20},
		{"Box spring", 25, 60},
		{"Small box of tools", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := sanitize(vision.DetectedItem{
				Name: tt.name, Quantity: 1, Volume: tt.volume, Weight: tt.weight, Room: "Garage",
			}, []string{"Garage"})

			assert.Equal(t, tt.volume, item.Volume)
			assert.Equal(t, tt.weight, item.Weight)
		})
	}
}

func TestSanitizeClampsQuantity(t *testing.T) {
	item := sanitize(vision.DetectedItem{Name: "Chair", Quantity: 0, Room: "Living Room"}, []string{"Living Room"})
	assert.Equal(t, 1, item.Quantity)
}

func TestRunDropsNamelessItems(t *testing.T) {
	extractor := &fakeExtractor{items: map[int][]vision.DetectedItem{
		1: {{Name: "", Quantity: 1}, {Name: "Sofa", Quantity: 1, Room: "Living Room"}},
	}}
	a := NewAggregator(extractor, discardLogger())

	ledger := a.Run(context.Background(), batch(1), twoRoomDetection(), func(PhotoResult) {})

	require.Len(t, ledger, 1)
	assert.Equal(t, "Sofa", ledger[0].Name)
}
