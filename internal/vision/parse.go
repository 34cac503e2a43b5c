package vision

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vision models wrap JSON in prose and markdown fences more often than not.
// The helpers here dig the payload out of a noisy response instead of trusting
// the model to follow the "JSON only" instruction.

// extractJSON returns the first balanced JSON value in raw that starts with
// open ('[' or '{'), with any markdown code fences stripped first.
func extractJSON(raw string, open, close byte) (string, bool) {
	raw = stripFences(raw)

	start := strings.IndexByte(raw, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

func stripFences(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	return strings.ReplaceAll(raw, "```", "")
}

// ParseRoomDetection parses the room-classification response. Room names are
// trimmed and de-duplicated preserving order; mapping keys must be integers.
// Returns an error on anything it cannot recover, leaving the fallback
// decision to the caller.
func ParseRoomDetection(raw string) (*RoomDetection, error) {
	payload, ok := extractJSON(raw, '{', '}')
	if !ok {
		return nil, fmt.Errorf("no JSON object in room detection response")
	}

	var decoded struct {
		RoomsDetected    []string            `json:"roomsDetected"`
		ImageRoomMapping map[string][]string `json:"imageRoomMapping"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse room detection response: %w", err)
	}

	det := &RoomDetection{ImageRooms: make(map[int][]string)}
	seen := make(map[string]bool)
	for _, name := range decoded.RoomsDetected {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		det.RoomsDetected = append(det.RoomsDetected, name)
	}

	for key, rooms := range decoded.ImageRoomMapping {
		idx, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || idx < 1 {
			continue
		}
		var cleaned []string
		for _, name := range rooms {
			if name = strings.TrimSpace(name); name != "" {
				cleaned = append(cleaned, name)
			}
		}
		if len(cleaned) > 0 {
			det.ImageRooms[idx] = cleaned
		}
	}

	if len(det.RoomsDetected) == 0 {
		return nil, fmt.Errorf("room detection response listed no rooms")
	}
	return det, nil
}

// ParseItems parses an item-extraction response. It is deliberately forgiving:
// quantities and measures arrive as numbers or strings depending on the
// model's mood, and an unrecoverable response yields an empty slice, never an
// error. A bad photo must not sink the batch.
func ParseItems(raw string) []DetectedItem {
	payload, ok := extractJSON(raw, '[', ']')
	if !ok {
		return []DetectedItem{}
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return []DetectedItem{}
	}

	items := make([]DetectedItem, 0, len(decoded))
	for _, entry := range decoded {
		item := DetectedItem{
			Name:     strings.TrimSpace(asString(entry["name"])),
			Quantity: asInt(entry["quantity"]),
			Volume:   asFloat(entry["volume"]),
			Weight:   asFloat(entry["weight"]),
			Room:     strings.TrimSpace(asString(entry["room"])),
		}
		if item.Name == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.Volume < 0 {
			item.Volume = 0
		}
		if item.Weight < 0 {
			item.Weight = 0
		}
		items = append(items, item)
	}
	return items
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		// "2 boxes" and friends: take the leading number if there is one.
		if f, err := strconv.ParseFloat(strings.Fields(s)[0], 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}
