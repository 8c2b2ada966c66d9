// Package workout holds the workout record: a base entry shared by every
// kind of session plus a kind-specific payload carrying the derived metric.
package workout

import (
	"time"

	"backend-mapty/internal/shared/geo"
)

type Type string

const (
	TypeRunning Type = "running"
	TypeCycling Type = "cycling"
)

func (t Type) Valid() bool {
	return t == TypeRunning || t == TypeCycling
}

// Workout is one logged session. Exactly one of RunningStats or CyclingStats
// is set and it always matches Type. Records are values; nothing mutates
// them after construction.
type Workout struct {
	Type        Type       `json:"type"`
	ID          string     `json:"id"`
	Date        time.Time  `json:"date"`
	Coords      geo.Coords `json:"coords"`
	Distance    float64    `json:"distance"`
	Duration    float64    `json:"duration"`
	Description string     `json:"description"`

	*RunningStats
	*CyclingStats
}

// RunningStats: cadence in steps/min, pace in min/km.
type RunningStats struct {
	Cadence float64 `json:"cadence"`
	Pace    float64 `json:"pace"`
}

// CyclingStats: elevation gain in meters, speed in km/h.
type CyclingStats struct {
	Elevation float64 `json:"elevation"`
	Speed     float64 `json:"speed"`
}

// Submission is the raw form input for a new workout.
type Submission struct {
	Type      Type    `json:"type"`
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"`
	Cadence   float64 `json:"cadence"`
	Elevation float64 `json:"elevation"`
}
