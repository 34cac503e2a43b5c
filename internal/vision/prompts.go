package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/movinv/movinv/internal/domain"
)

// RoomDetectionPrompt builds the instruction for the batch room-classification
// pass over n photos.
func RoomDetectionPrompt(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are looking at %d photos of a household, numbered 1 to %d in order.\n", n, n)
	b.WriteString(`Identify which room each photo shows.

Rules:
- Photos of the same room taken from different angles are the SAME room. If two
  photos share architectural features, furniture layout, or fixed fittings,
  treat them as one room. When unsure, merge; prefer too few rooms over too many.
- Only use numbered names like "Bedroom 1" and "Bedroom 2" when the photos show
  genuinely distinct spaces (different layout, floor, or purpose).
- A single photo may show more than one room (open floor plan, visible doorway).
- Prefer these names: `)
	b.WriteString(strings.Join(domain.RoomVocabulary, ", "))
	b.WriteString(`. Use "Other" for anything unrecognizable.

Respond with ONLY a JSON object, no prose:
{"roomsDetected": ["Kitchen", "Bedroom 1"], "imageRoomMapping": {"1": ["Kitchen"], "2": ["Kitchen", "Bedroom 1"]}}`)
	return b.String()
}

// ExtractionPrompt builds the per-photo item-extraction instruction. rooms is
// the set of room names the photo was mapped to; alreadyFound is the running
// ledger from earlier photos.
func ExtractionPrompt(imageIdx int, rooms []string, alreadyFound []DetectedItem) string {
	if len(rooms) == 0 {
		rooms = []string{"Other"}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "This is photo %d of a household move. It shows: %s.\n", imageIdx, strings.Join(rooms, ", "))
	b.WriteString(`List every movable item visible in this photo for a moving inventory.

For each item give: name, quantity, volume (cubic feet per single unit),
weight (pounds per single unit), and room. The room MUST be one of: `)
	b.WriteString(strings.Join(rooms, ", "))
	b.WriteString(".\n")

	if len(alreadyFound) > 0 {
		b.WriteString("\nItems already recorded from earlier photos (this may be the same room from another angle):\n")
		if ledger, err := json.Marshal(alreadyFound); err == nil {
			b.Write(ledger)
			b.WriteString("\n")
		}
		b.WriteString("Do NOT list any of these again unless you can see strictly additional units in this photo; then report only the additional count.\n")
	}

	b.WriteString(`
Packing rules:
- Fold small loose items (books, kitchenware, linens, decor) into box counts
  instead of individual lines. Use exactly these box lines: "Small boxes"
  (1.5 cu ft, 15 lb each), "Medium boxes" (3 cu ft, 25 lb each), "Large boxes"
  (4.5 cu ft, 30 lb each), "Extra-large boxes" (6 cu ft, 35 lb each).
- Estimate the unseen contents of closed storage (cabinets, closets, dressers,
  pantries, bookcases) as box counts. A typical closet holds 3-5 medium boxes.
  Suffix estimated lines with "(est.)", e.g. "Medium boxes (est.)".
- Skip fixtures that stay with the property: built-ins, countertops, light
  fixtures.
- When an item is ambiguous or barely visible, leave it out. A missed item is
  better than a duplicate or a false positive.

Respond with ONLY a JSON array, no prose:
[{"name": "Sofa", "quantity": 1, "volume": 50, "weight": 120, "room": "` + rooms[0] + `"}]`)
	return b.String()
}
