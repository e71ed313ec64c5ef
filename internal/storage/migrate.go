// ABOUTME: Data migration between reps storage backends.
// ABOUTME: Copies workouts, rounds and activities from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/reps/internal/models"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Workouts   int
	Rounds     int
	Activities int
}

// MigrateData copies all data from src to dst storage.
// Identifiers are assigned by the destination, so round and activity
// references are remapped as they are copied. Everything is written inside
// one destination transaction: a failed migration leaves dst untouched.
// The destination should be empty before calling this function.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	workouts, err := src.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source workouts: %w", err)
	}

	summary := &MigrateSummary{}
	err = dst.Atomic(ctx, func(q Queries) error {
		for _, w := range workouts {
			srcWorkoutID := w.ID
			rounds, err := src.ListRounds(ctx, srcWorkoutID)
			if err != nil {
				return fmt.Errorf("list rounds of workout %d: %w", srcWorkoutID, err)
			}

			if err := q.CreateWorkout(ctx, w); err != nil {
				return fmt.Errorf("create workout %d: %w", srcWorkoutID, err)
			}
			summary.Workouts++

			for _, r := range rounds {
				srcRoundID := r.ID
				activities, err := src.ListActivities(ctx, srcRoundID)
				if err != nil {
					return fmt.Errorf("list activities of round %d: %w", srcRoundID, err)
				}

				r.WorkoutID = w.ID
				if err := q.CreateRound(ctx, r); err != nil {
					return fmt.Errorf("create round %d: %w", srcRoundID, err)
				}
				summary.Rounds++

				for _, a := range activities {
					copied := models.NewActivity(r.ID, a.Name).WithReps(a.Reps)
					if err := q.CreateActivity(ctx, copied); err != nil {
						return fmt.Errorf("create activity %d: %w", a.ID, err)
					}
					summary.Activities++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
