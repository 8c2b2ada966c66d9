// Package mapview describes what the tracker needs from the map and from the
// side panel (form + workout list), and ships an implementation that streams
// those calls to the browser as JSON commands.
package mapview

import (
	"strconv"

	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

// Map is the mapping library as seen by the tracker.
type Map interface {
	Render(center geo.Coords, zoom int)
	AddMarker(coords geo.Coords, label string)
	Recenter(coords geo.Coords, zoom int)
}

// Panel is the form and workout list next to the map.
type Panel interface {
	ShowForm(coords geo.Coords)
	HideForm()
	RenderListItem(item ListItem)
	ClearList()
	Warn(message string)
}

// View is a Map and a Panel together.
type View interface {
	Map
	Panel
}

// ListItem carries what one workout list entry displays.
type ListItem struct {
	ID          string       `json:"id"`
	Type        workout.Type `json:"type"`
	Title       string       `json:"title"`
	Icon        string       `json:"icon"`
	Distance    string       `json:"distance"`
	Duration    string       `json:"duration"`
	Metric      string       `json:"metric"`
	MetricUnit  string       `json:"metric_unit"`
	Extra       string       `json:"extra"`
	ExtraUnit   string       `json:"extra_unit"`
	Coordinates geo.Coords   `json:"coords"`
}

// NewListItem formats a workout for the list. The metric is shown with one
// decimal; distance, duration and the extra field as entered.
func NewListItem(w workout.Workout) ListItem {
	return ListItem{
		ID:          w.ID,
		Type:        w.Type,
		Title:       w.Description,
		Icon:        w.Icon(),
		Distance:    workout.FormatNumber(w.Distance),
		Duration:    workout.FormatNumber(w.Duration),
		Metric:      strconv.FormatFloat(w.Metric(), 'f', 1, 64),
		MetricUnit:  w.MetricUnit(),
		Extra:       workout.FormatNumber(w.Extra()),
		ExtraUnit:   w.ExtraUnit(),
		Coordinates: w.Coords,
	}
}
