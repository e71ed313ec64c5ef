// ABOUTME: Repository interface for workout, round and activity storage.
// ABOUTME: Typed rendition of the insert/update/delete/get/query-by-index contract.
package storage

import (
	"context"

	"github.com/harperreed/reps/internal/models"
)

// Queries is the record-level contract shared by a Repository and by the
// handle passed into Repository.Atomic.
type Queries interface {
	// Workouts
	CreateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, id int64) (*models.Workout, error)
	ListWorkouts(ctx context.Context) ([]*models.Workout, error)
	DeleteWorkout(ctx context.Context, id int64) error

	// Rounds, indexed by workout_id
	CreateRound(ctx context.Context, r *models.Round) error
	GetRound(ctx context.Context, id int64) (*models.Round, error)
	ListRounds(ctx context.Context, workoutID int64) ([]*models.Round, error)
	DeleteRounds(ctx context.Context, ids []int64) error

	// Activities, indexed by round_id
	CreateActivity(ctx context.Context, a *models.Activity) error
	GetActivity(ctx context.Context, id int64) (*models.Activity, error)
	ListActivities(ctx context.Context, roundID int64) ([]*models.Activity, error)
	UpdateActivityReps(ctx context.Context, id int64, reps int) error
	DeleteActivity(ctx context.Context, id int64) error
	DeleteActivities(ctx context.Context, ids []int64) error
}

// Repository defines the storage interface for workout data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	Queries

	// Atomic runs fn against a transactional handle. Every write made through
	// the handle is committed together, or none is when fn returns an error.
	Atomic(ctx context.Context, fn func(q Queries) error) error

	// Lifecycle
	Close() error
}
