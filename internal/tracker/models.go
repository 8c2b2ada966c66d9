package tracker

import (
	"errors"

	"backend-mapty/internal/mapview"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseMapReady Phase = "map_ready"
	PhaseIdle     Phase = "idle"
	PhaseFormOpen Phase = "form_open"
)

var (
	// ErrIgnored means the event does not apply in the current phase.
	ErrIgnored        = errors.New("event not applicable in current phase")
	ErrUnknownWorkout = errors.New("unknown workout")
	ErrStopped        = errors.New("tracker is not running")
)

const (
	warnInvalidInput = "Please enter a positive number!"
	warnGeolocation  = "Please provide access to your geolocation!"
	warnPersistence  = "Your workout could not be saved."
	warnClearFailed  = "Your workouts could not be deleted."
)

// State is everything the tracker owns. Workouts is never mutated in place;
// each change produces a new slice.
type State struct {
	Phase    Phase
	Workouts []workout.Workout
	Pending  *geo.Coords
	Center   geo.Coords
}

func (s State) find(id string) (workout.Workout, bool) {
	for _, w := range s.Workouts {
		if w.ID == id {
			return w, true
		}
	}
	return workout.Workout{}, false
}

// Event is an input to the tracker.
type Event interface {
	event()
}

// Loaded carries the collection read from storage at start-up or after a
// reset. PositionAcquired and PositionUnavailable are the two continuations
// of a geolocation request.
type (
	Loaded              struct{ Workouts []workout.Workout }
	PositionAcquired    struct{ Coords geo.Coords }
	PositionUnavailable struct{}
	MapClicked          struct{ Coords geo.Coords }
	FormSubmitted       struct{ Submission workout.Submission }
	FormCancelled       struct{}
	ListItemClicked     struct{ ID string }
	ResetRequested      struct{}
)

func (Loaded) event()              {}
func (PositionAcquired) event()    {}
func (PositionUnavailable) event() {}
func (MapClicked) event()          {}
func (FormSubmitted) event()       {}
func (FormCancelled) event()       {}
func (ListItemClicked) event()     {}
func (ResetRequested) event()      {}

// Effect is work the controller performs after a transition.
type Effect interface {
	effect()
}

type WarnReason string

const (
	ReasonValidation  WarnReason = "validation"
	ReasonGeolocation WarnReason = "geolocation"
	ReasonPersistence WarnReason = "persistence"
)

type (
	LoadStorage     struct{}
	ClearStorage    struct{}
	Persist         struct{ Workouts []workout.Workout }
	RequestPosition struct{}
	RenderMap       struct {
		Center geo.Coords
		Zoom   int
	}
	AddMarker struct {
		Coords geo.Coords
		Label  string
	}
	Recenter struct {
		Coords geo.Coords
		Zoom   int
	}
	ShowForm       struct{ Coords geo.Coords }
	HideForm       struct{}
	RenderListItem struct{ Item mapview.ListItem }
	ClearList      struct{}
	Warn           struct {
		Reason  WarnReason
		Message string
	}
	WorkoutRecorded struct{ Workout workout.Workout }
)

func (LoadStorage) effect()     {}
func (ClearStorage) effect()    {}
func (Persist) effect()         {}
func (RequestPosition) effect() {}
func (RenderMap) effect()       {}
func (AddMarker) effect()       {}
func (Recenter) effect()        {}
func (ShowForm) effect()        {}
func (HideForm) effect()        {}
func (RenderListItem) effect()  {}
func (ClearList) effect()       {}
func (Warn) effect()            {}
func (WorkoutRecorded) effect() {}

// Outcome is what a dispatched event produced.
type Outcome struct {
	Phase   Phase            `json:"phase"`
	Workout *workout.Workout `json:"workout,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	Phase    Phase             `json:"phase"`
	Pending  *geo.Coords       `json:"pending,omitempty"`
	Center   geo.Coords        `json:"center"`
	Workouts []workout.Workout `json:"workouts"`
}
