package workout

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"backend-mapty/internal/shared/geo"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrInvalidInput = errors.New("invalid workout input")
	ErrUnknownType  = errors.New("unknown workout type")
	ErrMalformed    = errors.New("malformed workout record")
)

// Factory builds workouts. Clock and NewID are swappable for tests.
type Factory struct {
	Clock func() time.Time
	NewID func() string
}

func NewFactory() *Factory {
	return &Factory{Clock: time.Now, NewID: uuid.NewString}
}

var defaultFactory = NewFactory()

// NewRunning builds a running workout. Inputs are trusted; see Validate.
func NewRunning(coords geo.Coords, distance, duration, cadence float64) Workout {
	return defaultFactory.Running(coords, distance, duration, cadence)
}

// NewCycling builds a cycling workout. Inputs are trusted; see Validate.
func NewCycling(coords geo.Coords, distance, duration, elevation float64) Workout {
	return defaultFactory.Cycling(coords, distance, duration, elevation)
}

func (f *Factory) Running(coords geo.Coords, distance, duration, cadence float64) Workout {
	w := f.base(TypeRunning, coords, distance, duration)
	w.RunningStats = &RunningStats{
		Cadence: cadence,
		Pace:    duration / distance,
	}
	return w
}

func (f *Factory) Cycling(coords geo.Coords, distance, duration, elevation float64) Workout {
	w := f.base(TypeCycling, coords, distance, duration)
	w.CyclingStats = &CyclingStats{
		Elevation: elevation,
		Speed:     distance / (duration / 60),
	}
	return w
}

// Build validates a submission and constructs the matching variant.
func (f *Factory) Build(sub Submission, coords geo.Coords) (Workout, error) {
	if err := Validate(sub); err != nil {
		return Workout{}, err
	}
	switch sub.Type {
	case TypeRunning:
		return f.Running(coords, sub.Distance, sub.Duration, sub.Cadence), nil
	default:
		return f.Cycling(coords, sub.Distance, sub.Duration, sub.Elevation), nil
	}
}

func (f *Factory) base(t Type, coords geo.Coords, distance, duration float64) Workout {
	date := f.Clock()
	return Workout{
		Type:        t,
		ID:          f.NewID(),
		Date:        date,
		Coords:      coords,
		Distance:    distance,
		Duration:    duration,
		Description: Describe(t, date),
	}
}

// Describe renders "Running - 5 March  2024". The double space before the
// year is part of the stored format.
func Describe(t Type, date time.Time) string {
	title := cases.Title(language.English).String(string(t))
	return fmt.Sprintf("%s - %d %s  %d", title, date.Day(), date.Month(), date.Year())
}

// Metric is pace for running and speed for cycling.
func (w Workout) Metric() float64 {
	switch {
	case w.Type == TypeRunning && w.RunningStats != nil:
		return w.Pace
	case w.Type == TypeCycling && w.CyclingStats != nil:
		return w.Speed
	}
	return 0
}

func (w Workout) MetricUnit() string {
	if w.Type == TypeRunning {
		return "min/km"
	}
	return "km/h"
}

// Extra is cadence for running and elevation gain for cycling.
func (w Workout) Extra() float64 {
	switch {
	case w.Type == TypeRunning && w.RunningStats != nil:
		return w.Cadence
	case w.Type == TypeCycling && w.CyclingStats != nil:
		return w.Elevation
	}
	return 0
}

func (w Workout) ExtraUnit() string {
	if w.Type == TypeRunning {
		return "step"
	}
	return "m"
}

func (w Workout) Icon() string {
	if w.Type == TypeRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Label is the marker popup text, e.g. "🏃‍♂️ running - 5 km".
func (w Workout) Label() string {
	return fmt.Sprintf("%s %s - %s km", w.Icon(), w.Type, FormatNumber(w.Distance))
}

// Check reports whether a decoded record is internally consistent: known
// type and a payload matching it. Derived values are not re-checked.
func (w Workout) Check() error {
	if !w.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
	if w.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if w.Type == TypeRunning && (w.RunningStats == nil || w.CyclingStats != nil) {
		return fmt.Errorf("%w: running record %s without running payload", ErrMalformed, w.ID)
	}
	if w.Type == TypeCycling && (w.CyclingStats == nil || w.RunningStats != nil) {
		return fmt.Errorf("%w: cycling record %s without cycling payload", ErrMalformed, w.ID)
	}
	return nil
}

// FormatNumber prints a float the shortest way, so 5 renders as "5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
