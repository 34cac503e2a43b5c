package domain

import "strings"

// BoxSpec is the fixed per-unit volume (cubic feet) and weight (pounds) of a
// standardized packing box. The box count varies per inventory; these figures
// never do.
type BoxSpec struct {
	CuFt float64
	Lb   float64
}

const (
	BoxSmall      = "small"
	BoxMedium     = "medium"
	BoxLarge      = "large"
	BoxExtraLarge = "extra-large"
)

var BoxSpecs = map[string]BoxSpec{
	BoxSmall:      {CuFt: 1.5, Lb: 15},
	BoxMedium:     {CuFt: 3, Lb: 25},
	BoxLarge:      {CuFt: 4.5, Lb: 30},
	BoxExtraLarge: {CuFt: 6, Lb: 35},
}

// boxLineNames are the canonical box line names the extraction prompt
// mandates, plus singular and spelling variants, in lowercase.
var boxLineNames = map[string]string{
	"small box":         BoxSmall,
	"small boxes":       BoxSmall,
	"medium box":        BoxMedium,
	"medium boxes":      BoxMedium,
	"large box":         BoxLarge,
	"large boxes":       BoxLarge,
	"extra-large box":   BoxExtraLarge,
	"extra-large boxes": BoxExtraLarge,
	"extra large box":   BoxExtraLarge,
	"extra large boxes": BoxExtraLarge,
	"xl box":            BoxExtraLarge,
	"xl boxes":          BoxExtraLarge,
}

// BoxSizeFromName reports the box size an item name refers to, if any.
// Only the canonical box lines match, e.g. "Small boxes", "Medium boxes
// (est.)", "extra-large box". Items that merely mention boxes ("Large
// toolbox", "Box spring") keep their own measured volume and weight.
func BoxSizeFromName(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSpace(strings.TrimSuffix(n, EstimatedMarker))
	size, ok := boxLineNames[n]
	return size, ok
}

// EstimatedMarker tags box entries inferred from closed storage (cabinets,
// closets) rather than directly observed. The report surfaces it so readers
// know the count is a guess.
const EstimatedMarker = "(est.)"

// IsEstimatedName reports whether an item name carries the estimated marker.
func IsEstimatedName(name string) bool {
	return strings.Contains(name, EstimatedMarker)
}

// SafetyFactors is the discrete set of packing-overhead multipliers a session
// may use. Stored per session and shared with the report so the two never
// disagree.
var SafetyFactors = []float64{-0.10, 0, 0.10, 0.20, 0.30, 0.40}

// ValidSafetyFactor reports whether f is one of the allowed safety factors.
func ValidSafetyFactor(f float64) bool {
	for _, v := range SafetyFactors {
		// Factors arrive over JSON; tolerate float wobble.
		if f > v-1e-9 && f < v+1e-9 {
			return true
		}
	}
	return false
}

// RoomVocabulary is the preferred set of room names for classification. The
// vision model may go off-list for unusual spaces; "Other" is the fallback.
var RoomVocabulary = []string{
	"Living Room", "Kitchen", "Bedroom", "Bathroom", "Office", "Dining Room",
	"Garage", "Basement", "Attic", "Closet", "Laundry Room", "Hallway",
	"Patio", "Shed", "Storage Unit", "Other",
}

// FallbackRoom is applied to every photo when room detection fails outright.
const FallbackRoom = "Living Room"
