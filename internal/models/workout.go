// ABOUTME: Workout, Round and Activity models for round-based workout tracking.
// ABOUTME: A workout owns numbered rounds; each round owns rep-counted activities.
package models

import (
	"strings"
	"time"
)

// Workout is a named exercise session of a declared type.
type Workout struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Type      WorkoutType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewWorkout creates a Workout stamped with the current time.
// The ID is assigned by the store on insert.
func NewWorkout(name string, workoutType WorkoutType) *Workout {
	return &Workout{
		Name:      strings.TrimSpace(name),
		Type:      workoutType,
		CreatedAt: time.Now(),
	}
}

// Label renders the workout the way the catalog lists it, e.g. "5k Run — FORTIME".
func (w *Workout) Label() string {
	return w.Name + " — " + w.Type.Display()
}

// Round is one numbered repetition cycle of a workout's activity set.
type Round struct {
	ID          int64 `json:"id"`
	WorkoutID   int64 `json:"workout_id"`
	RoundNumber int   `json:"round_number"`
}

// NewRound creates a Round for the given workout.
func NewRound(workoutID int64, number int) *Round {
	return &Round{WorkoutID: workoutID, RoundNumber: number}
}

// Activity is a named exercise within a round, tracked by a repetition counter.
// Reps is deliberately unbounded in both directions.
type Activity struct {
	ID      int64  `json:"id"`
	RoundID int64  `json:"round_id"`
	Name    string `json:"name"`
	Reps    int    `json:"reps"`
}

// NewActivity creates an Activity with zero reps.
func NewActivity(roundID int64, name string) *Activity {
	return &Activity{RoundID: roundID, Name: strings.TrimSpace(name)}
}

// WithReps sets the repetition count.
func (a *Activity) WithReps(reps int) *Activity {
	a.Reps = reps
	return a
}
