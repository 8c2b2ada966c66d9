package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"backend-mapty/internal/workout"
)

const DefaultKey = "workouts"

// Repository saves and restores the whole ordered workout collection under a
// single key.
//
// Restored records are history: pace, speed and description come back exactly
// as stored and are never recomputed. The type discriminant is persisted so
// each record still decodes into its own payload.
type Repository struct {
	kv     KV
	key    string
	logger *slog.Logger
}

func NewRepository(kv KV, key string, logger *slog.Logger) *Repository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{kv: kv, key: key, logger: logger}
}

func (r *Repository) Key() string {
	return r.key
}

func (r *Repository) Save(ctx context.Context, workouts []workout.Workout) error {
	if workouts == nil {
		workouts = []workout.Workout{}
	}
	payload, err := json.Marshal(workouts)
	if err != nil {
		return fmt.Errorf("encode workouts: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, string(payload)); err != nil {
		return fmt.Errorf("save workouts: %w", err)
	}
	return nil
}

// Load never fails: a missing, unreadable or corrupt value is an empty
// collection.
func (r *Repository) Load(ctx context.Context) []workout.Workout {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		r.logger.Warn("read stored workouts", "key", r.key, "error", err)
		return []workout.Workout{}
	}
	if !ok {
		return []workout.Workout{}
	}

	workouts, err := Decode(raw)
	if err != nil {
		r.logger.Warn("discard stored workouts", "key", r.key, "error", err)
		return []workout.Workout{}
	}
	return workouts
}

func (r *Repository) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("clear workouts: %w", err)
	}
	return nil
}

// Decode parses a stored collection. Any record with an unknown type or a
// payload that does not match its type rejects the whole value.
func Decode(raw string) ([]workout.Workout, error) {
	var workouts []workout.Workout
	if err := json.Unmarshal([]byte(raw), &workouts); err != nil {
		return nil, fmt.Errorf("decode workouts: %w", err)
	}
	for i, w := range workouts {
		if err := w.Check(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if workouts == nil {
		workouts = []workout.Workout{}
	}
	return workouts, nil
}
