// ABOUTME: Workout catalog: list, search, create and delete workouts.
// ABOUTME: Creation and cascade deletion run as single storage transactions.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/storage"
	"go.uber.org/zap"
)

// Catalog manages top-level workout records.
type Catalog struct {
	repo storage.Repository
	log  *zap.Logger
	now  func() time.Time
}

// New creates a Catalog over repo. A nil logger disables logging.
func New(repo storage.Repository, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{repo: repo, log: log.Named("catalog"), now: time.Now}
}

// List returns the workouts whose name contains query (case-insensitive),
// most recently created first. An empty query matches everything.
func (c *Catalog) List(ctx context.Context, query string) ([]*models.Workout, error) {
	all, err := c.repo.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var workouts []*models.Workout
	for _, w := range all {
		if needle != "" && !strings.Contains(strings.ToLower(w.Name), needle) {
			continue
		}
		workouts = append(workouts, w)
	}

	sort.SliceStable(workouts, func(i, j int) bool {
		if workouts[i].CreatedAt.Equal(workouts[j].CreatedAt) {
			return workouts[i].ID > workouts[j].ID
		}
		return workouts[i].CreatedAt.After(workouts[j].CreatedAt)
	})
	return workouts, nil
}

// Get returns a single workout.
func (c *Catalog) Get(ctx context.Context, id int64) (*models.Workout, error) {
	w, err := c.repo.GetWorkout(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// Create persists a workout together with its first round.
func (c *Catalog) Create(ctx context.Context, name string, workoutType models.WorkoutType) (*models.Workout, error) {
	return c.create(ctx, name, workoutType, nil)
}

// CreateFromTemplate persists a workout whose first round is seeded with the
// template's activities at zero reps.
func (c *Catalog) CreateFromTemplate(ctx context.Context, tmpl *Template) (*models.Workout, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	workoutType, err := models.ParseWorkoutType(tmpl.typeOrDefault())
	if err != nil {
		return nil, err
	}
	return c.create(ctx, tmpl.Name, workoutType, tmpl.Activities)
}

func (c *Catalog) create(ctx context.Context, name string, workoutType models.WorkoutType, activities []string) (*models.Workout, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: workout name is required", models.ErrValidation)
	}
	if !workoutType.IsValid() {
		return nil, fmt.Errorf("%w: unknown workout type %q", models.ErrValidation, workoutType)
	}

	w := models.NewWorkout(name, workoutType)
	w.CreatedAt = c.now()

	err := c.repo.Atomic(ctx, func(q storage.Queries) error {
		if err := q.CreateWorkout(ctx, w); err != nil {
			return err
		}
		r := models.NewRound(w.ID, 1)
		if err := q.CreateRound(ctx, r); err != nil {
			return err
		}
		for _, name := range activities {
			if strings.TrimSpace(name) == "" {
				continue
			}
			if err := q.CreateActivity(ctx, models.NewActivity(r.ID, name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.log.Error("create workout failed", zap.String("name", w.Name), zap.Error(err))
		return nil, fmt.Errorf("create workout: %w", err)
	}

	c.log.Info("workout created",
		zap.Int64("workout_id", w.ID),
		zap.String("type", string(w.Type)),
		zap.Int("activities", len(activities)),
	)
	return w, nil
}

// Delete removes a workout, its rounds and their activities. The cascade is
// a single transaction, so a failure part way leaves everything in place.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	var rounds, activities int
	err := c.repo.Atomic(ctx, func(q storage.Queries) error {
		if _, err := q.GetWorkout(ctx, id); err != nil {
			return err
		}

		rs, err := q.ListRounds(ctx, id)
		if err != nil {
			return err
		}
		roundIDs := make([]int64, 0, len(rs))
		var activityIDs []int64
		for _, r := range rs {
			roundIDs = append(roundIDs, r.ID)
			acts, err := q.ListActivities(ctx, r.ID)
			if err != nil {
				return err
			}
			for _, a := range acts {
				activityIDs = append(activityIDs, a.ID)
			}
		}

		if err := q.DeleteActivities(ctx, activityIDs); err != nil {
			return err
		}
		if err := q.DeleteRounds(ctx, roundIDs); err != nil {
			return err
		}
		if err := q.DeleteWorkout(ctx, id); err != nil {
			return err
		}
		rounds, activities = len(roundIDs), len(activityIDs)
		return nil
	})
	if err != nil {
		c.log.Error("delete workout failed", zap.Int64("workout_id", id), zap.Error(err))
		return fmt.Errorf("delete workout: %w", err)
	}

	c.log.Info("workout deleted",
		zap.Int64("workout_id", id),
		zap.Int("rounds", rounds),
		zap.Int("activities", activities),
	)
	return nil
}
