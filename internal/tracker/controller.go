package tracker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"backend-mapty/internal/mapview"
	"backend-mapty/internal/observability"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

// Store is the persistence adapter the controller writes through.
type Store interface {
	Save(ctx context.Context, workouts []workout.Workout) error
	Load(ctx context.Context) []workout.Workout
	Clear(ctx context.Context) error
}

// staleDiscarder is implemented by locators that can hold an answer nobody
// asked for, e.g. a report sent before a reset.
type staleDiscarder interface {
	Discard()
}

// PositionPrompter is implemented by views that must ask the client for a
// position before a Locator can answer.
type PositionPrompter interface {
	RequestPosition()
}

type Options struct {
	View     mapview.View
	Locator  geo.Locator
	Store    Store
	Factory  *workout.Factory
	Fallback geo.Coords
	Zoom     int
	Logger   *slog.Logger
}

// Controller owns the tracker state. Run processes events one at a time on a
// single goroutine; everything else talks to it through Dispatch.
type Controller struct {
	reducer *Reducer
	view    mapview.View
	locator geo.Locator
	store   Store
	logger  *slog.Logger

	events chan request
	done   chan struct{}

	// owned by the Run goroutine
	state         State
	cancelLocator context.CancelFunc

	mu       sync.RWMutex
	snapshot Snapshot
}

type request struct {
	event Event
	reply chan result
}

type result struct {
	outcome Outcome
	err     error
}

func NewController(opts Options) *Controller {
	if opts.Factory == nil {
		opts.Factory = workout.NewFactory()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Zoom == 0 {
		opts.Zoom = 13
	}
	if opts.Locator == nil {
		opts.Locator = geo.UnavailableLocator{}
	}
	c := &Controller{
		reducer: &Reducer{Factory: opts.Factory, Fallback: opts.Fallback, Zoom: opts.Zoom},
		view:    opts.View,
		locator: opts.Locator,
		store:   opts.Store,
		logger:  opts.Logger,
		events:  make(chan request),
		done:    make(chan struct{}),
		state:   State{Phase: PhaseInit},
	}
	c.publish()
	return c
}

// Run loads the stored collection, asks for a position and then serves
// events until ctx ends.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer func() {
		if c.cancelLocator != nil {
			c.cancelLocator()
		}
	}()

	var out Outcome
	c.execute(ctx, LoadStorage{}, &out)
	c.publish()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-c.events:
			outcome, err := c.apply(ctx, req.event)
			if req.reply != nil {
				req.reply <- result{outcome: outcome, err: err}
			}
		}
	}
}

// Dispatch hands ev to the Run loop and waits for it to be processed.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	reply := make(chan result, 1)
	select {
	case c.events <- request{event: ev, reply: reply}:
	case <-c.done:
		return Outcome{}, ErrStopped
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res.outcome, res.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Snapshot returns a copy of the current state, safe to call from any
// goroutine.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.snapshot
	s.Workouts = slices.Clone(s.Workouts)
	return s
}

func (c *Controller) Workouts() []workout.Workout {
	return c.Snapshot().Workouts
}

func (c *Controller) Phase() Phase {
	return c.Snapshot().Phase
}

func (c *Controller) apply(ctx context.Context, ev Event) (Outcome, error) {
	next, effects, err := c.reducer.Reduce(c.state, ev)
	c.state = next

	out := Outcome{}
	for _, eff := range effects {
		c.execute(ctx, eff, &out)
	}
	out.Phase = c.state.Phase
	c.publish()

	if err != nil && !errors.Is(err, ErrIgnored) {
		c.logger.Info("event rejected", "event", eventName(ev), "error", err)
	}
	return out, err
}

func (c *Controller) execute(ctx context.Context, eff Effect, out *Outcome) {
	switch eff := eff.(type) {
	case LoadStorage:
		workouts := c.store.Load(ctx)
		c.logger.Info("workouts loaded", "count", len(workouts))
		if _, err := c.apply(ctx, Loaded{Workouts: workouts}); err != nil {
			c.logger.Warn("apply loaded workouts", "error", err)
		}
	case ClearStorage:
		if err := c.store.Clear(ctx); err != nil {
			observability.RecordPersistenceFailure("clear")
			c.logger.Error("clear workouts", "error", err)
			// the reload that follows brings the stored collection back
			c.execute(ctx, Warn{Reason: ReasonPersistence, Message: warnClearFailed}, out)
		}
	case Persist:
		if err := c.store.Save(ctx, eff.Workouts); err != nil {
			observability.RecordPersistenceFailure("save")
			c.logger.Error("save workouts", "count", len(eff.Workouts), "error", err)
			c.execute(ctx, Warn{Reason: ReasonPersistence, Message: warnPersistence}, out)
		}
	case RequestPosition:
		c.requestPosition(ctx)
	case RenderMap:
		c.view.Render(eff.Center, eff.Zoom)
	case AddMarker:
		c.view.AddMarker(eff.Coords, eff.Label)
	case Recenter:
		c.view.Recenter(eff.Coords, eff.Zoom)
	case ShowForm:
		c.view.ShowForm(eff.Coords)
	case HideForm:
		c.view.HideForm()
	case RenderListItem:
		c.view.RenderListItem(eff.Item)
	case ClearList:
		c.view.ClearList()
	case Warn:
		switch eff.Reason {
		case ReasonValidation:
			observability.RecordValidationRejection()
		case ReasonGeolocation:
			observability.RecordGeolocationFallback()
		}
		c.view.Warn(eff.Message)
		out.Warning = eff.Message
	case WorkoutRecorded:
		w := eff.Workout
		observability.RecordWorkout(string(w.Type))
		c.logger.Info("workout recorded",
			"id", w.ID,
			"type", w.Type,
			"distance_km", w.Distance,
			"duration_min", w.Duration,
			"from_center_km", geo.HaversineKm(c.state.Center.Lat(), c.state.Center.Lng(), w.Coords.Lat(), w.Coords.Lng()),
		)
		out.Workout = &w
	}
}

// requestPosition asks the locator in the background; the answer comes back
// through the event queue. A newer request cancels an older one.
func (c *Controller) requestPosition(ctx context.Context) {
	if c.cancelLocator != nil {
		c.cancelLocator()
	}
	lctx, cancel := context.WithCancel(ctx)
	c.cancelLocator = cancel

	if d, ok := c.locator.(staleDiscarder); ok {
		d.Discard()
	}
	if p, ok := c.view.(PositionPrompter); ok {
		p.RequestPosition()
	}

	go func() {
		coords, err := c.locator.CurrentPosition(lctx)
		if lctx.Err() != nil {
			return
		}
		var ev Event = PositionAcquired{Coords: coords}
		if err != nil {
			c.logger.Warn("geolocation unavailable, using fallback", "error", err)
			ev = PositionUnavailable{}
		}
		select {
		case c.events <- request{event: ev}:
		case <-lctx.Done():
		}
	}()
}

func (c *Controller) publish() {
	var pending *geo.Coords
	if c.state.Pending != nil {
		p := *c.state.Pending
		pending = &p
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = Snapshot{
		Phase:    c.state.Phase,
		Pending:  pending,
		Center:   c.state.Center,
		Workouts: c.state.Workouts,
	}
}

func eventName(ev Event) string {
	switch ev.(type) {
	case Loaded:
		return "loaded"
	case PositionAcquired:
		return "position_acquired"
	case PositionUnavailable:
		return "position_unavailable"
	case MapClicked:
		return "map_clicked"
	case FormSubmitted:
		return "form_submitted"
	case FormCancelled:
		return "form_cancelled"
	case ListItemClicked:
		return "list_item_clicked"
	case ResetRequested:
		return "reset_requested"
	}
	return "unknown"
}
