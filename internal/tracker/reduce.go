package tracker

import (
	"fmt"
	"slices"

	"backend-mapty/internal/mapview"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

// Reducer computes transitions. It performs no I/O; everything observable
// is returned as effects.
type Reducer struct {
	Factory  *workout.Factory
	Fallback geo.Coords
	Zoom     int
}

// Reduce applies ev to s. A non-nil error means the event was rejected; the
// returned state is then s unchanged, though effects (a warning) may still be
// present.
func (r *Reducer) Reduce(s State, ev Event) (State, []Effect, error) {
	switch ev := ev.(type) {
	case Loaded:
		return r.loaded(s, ev)
	case PositionAcquired:
		return r.mapReady(s, ev.Coords, nil)
	case PositionUnavailable:
		return r.mapReady(s, r.Fallback, []Effect{Warn{Reason: ReasonGeolocation, Message: warnGeolocation}})
	case MapClicked:
		return r.mapClicked(s, ev)
	case FormSubmitted:
		return r.submit(s, ev.Submission)
	case FormCancelled:
		if s.Phase != PhaseFormOpen {
			return s, nil, ErrIgnored
		}
		next := s
		next.Phase = PhaseIdle
		next.Pending = nil
		return next, []Effect{HideForm{}}, nil
	case ListItemClicked:
		return r.focus(s, ev.ID)
	case ResetRequested:
		return State{Phase: PhaseInit}, []Effect{ClearStorage{}, HideForm{}, ClearList{}, LoadStorage{}}, nil
	}
	return s, nil, fmt.Errorf("%w: %T", ErrIgnored, ev)
}

func (r *Reducer) loaded(s State, ev Loaded) (State, []Effect, error) {
	if s.Phase != PhaseInit {
		return s, nil, ErrIgnored
	}
	next := s
	next.Workouts = slices.Clone(ev.Workouts)
	effects := make([]Effect, 0, len(next.Workouts)+1)
	for _, w := range next.Workouts {
		effects = append(effects, RenderListItem{Item: mapview.NewListItem(w)})
	}
	effects = append(effects, RequestPosition{})
	return next, effects, nil
}

// mapReady renders the map at center followed by a marker per stored
// workout, then settles in Idle.
func (r *Reducer) mapReady(s State, center geo.Coords, effects []Effect) (State, []Effect, error) {
	if s.Phase != PhaseInit {
		return s, nil, ErrIgnored
	}
	next := s
	next.Phase = PhaseMapReady
	next.Center = center
	effects = append(effects, RenderMap{Center: center, Zoom: r.Zoom})
	for _, w := range next.Workouts {
		effects = append(effects, AddMarker{Coords: w.Coords, Label: w.Label()})
	}
	next.Phase = PhaseIdle
	return next, effects, nil
}

func (r *Reducer) mapClicked(s State, ev MapClicked) (State, []Effect, error) {
	if s.Phase != PhaseIdle && s.Phase != PhaseFormOpen {
		return s, nil, ErrIgnored
	}
	if err := geo.ValidateCoords(ev.Coords); err != nil {
		return s, nil, err
	}
	next := s
	next.Phase = PhaseFormOpen
	coords := ev.Coords
	next.Pending = &coords
	return next, []Effect{ShowForm{Coords: coords}}, nil
}

func (r *Reducer) submit(s State, sub workout.Submission) (State, []Effect, error) {
	if s.Phase != PhaseFormOpen || s.Pending == nil {
		return s, nil, ErrIgnored
	}
	w, err := r.Factory.Build(sub, *s.Pending)
	if err != nil {
		return s, []Effect{Warn{Reason: ReasonValidation, Message: warnInvalidInput}}, err
	}

	next := s
	next.Workouts = append(slices.Clip(s.Workouts), w)
	next.Pending = nil
	next.Phase = PhaseIdle
	return next, []Effect{
		WorkoutRecorded{Workout: w},
		AddMarker{Coords: w.Coords, Label: w.Label()},
		RenderListItem{Item: mapview.NewListItem(w)},
		Persist{Workouts: next.Workouts},
		HideForm{},
	}, nil
}

func (r *Reducer) focus(s State, id string) (State, []Effect, error) {
	if s.Phase != PhaseIdle && s.Phase != PhaseFormOpen {
		return s, nil, ErrIgnored
	}
	w, ok := s.find(id)
	if !ok {
		return s, nil, fmt.Errorf("%w: %s", ErrUnknownWorkout, id)
	}
	return s, []Effect{Recenter{Coords: w.Coords, Zoom: r.Zoom}}, nil
}
