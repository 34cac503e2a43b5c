package vision

import "context"

// Image is one photo handed to the vision backend. Idx is the 1-based position
// within the session's batch.
type Image struct {
	Idx      int
	Data     []byte
	MimeType string
}

// RoomDetection is the raw result of the batch room-classification pass.
// ImageRooms maps photo index to the room names that photo depicts; a photo
// may show more than one room and a room may span several photos.
type RoomDetection struct {
	RoomsDetected []string
	ImageRooms    map[int][]string
}

// DetectedItem is one inventory line as reported by the vision backend.
// Volume (cubic feet) and Weight (pounds) are per-unit; Quantity multiplies.
type DetectedItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Volume   float64 `json:"volume"`
	Weight   float64 `json:"weight"`
	Room     string  `json:"room"`
}

// RoomDetector classifies a whole photo batch into rooms in a single call.
// Room identity can only be judged by comparing photos against each other, so
// the batch is required, not incidental.
type RoomDetector interface {
	DetectRooms(ctx context.Context, images []Image) (*RoomDetection, error)
}

// ItemExtractor lists the movable items visible in one photo. alreadyFound is
// the ledger of items accepted from earlier photos; the backend is instructed
// to skip anything already on it unless strictly additional units are visible.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, img Image, roomsForImage []string, alreadyFound []DetectedItem) ([]DetectedItem, error)
}

// Analyzer is the full vision capability the pipeline consumes.
type Analyzer interface {
	RoomDetector
	ItemExtractor
}
