package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/movinv/movinv/internal/domain"
	"github.com/movinv/movinv/internal/pipeline"
)

//go:embed templates/report.html
var templatesFS embed.FS

// RoomGroup is one room's slice of the inventory. Subtotal is the raw per-room
// figure without the safety factor; the factor applies once, on the grand
// totals, so the report and on-screen totals agree.
type RoomGroup struct {
	Room     string
	Items    []*domain.Item
	Subtotal domain.Totals
}

type Data struct {
	Session     *domain.Session
	Rooms       []RoomGroup
	Totals      domain.Totals
	GeneratedAt time.Time
}

// Build groups the session's items per room and computes the same totals the
// session page shows. Items marked not going are listed but excluded from all
// figures.
func Build(session *domain.Session, items []*domain.Item) *Data {
	byRoom := make(map[string][]*domain.Item)
	var roomOrder []string
	for _, item := range items {
		room := item.Room
		if room == "" {
			room = "Unassigned"
		}
		if _, seen := byRoom[room]; !seen {
			roomOrder = append(roomOrder, room)
		}
		byRoom[room] = append(byRoom[room], item)
	}
	sort.Strings(roomOrder)

	rooms := make([]RoomGroup, 0, len(roomOrder))
	for _, room := range roomOrder {
		rooms = append(rooms, RoomGroup{
			Room:     room,
			Items:    byRoom[room],
			Subtotal: pipeline.ComputeTotals(byRoom[room], 0),
		})
	}

	return &Data{
		Session:     session,
		Rooms:       rooms,
		Totals:      pipeline.ComputeTotals(items, session.SafetyFactor),
		GeneratedAt: time.Now(),
	}
}

var tmplFuncs = template.FuncMap{
	"cuft": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"lbs":  func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"pct":  func(v float64) string { return fmt.Sprintf("%+.0f%%", v*100) },
	"mulf": func(v float64, q int) float64 { return v * float64(q) },
}

// RenderHTML writes the printable inventory report.
func RenderHTML(w io.Writer, data *Data) error {
	tmpl, err := template.New("report.html").Funcs(tmplFuncs).ParseFS(templatesFS, "templates/report.html")
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
