// ABOUTME: Contract tests for Repository implementations.
// ABOUTME: Verifies CRUD, index queries and Atomic rollback on SQLite and Badger.
package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/reps/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetWorkout(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w := models.NewWorkout("5k Run", models.WorkoutForTime)

		require.NoError(t, repo.CreateWorkout(ctx, w))
		assert.NotZero(t, w.ID, "ID should be assigned on insert")

		got, err := repo.GetWorkout(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "5k Run", got.Name)
		assert.Equal(t, models.WorkoutForTime, got.Type)
		assert.WithinDuration(t, w.CreatedAt, got.CreatedAt, time.Millisecond)
	})
}

func TestGetWorkoutNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		_, err := repo.GetWorkout(context.Background(), 999)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NotErrorIs(t, err, models.ErrStore)
	})
}

func TestIDsAreSequentialAndNotReused(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w1 := models.NewWorkout("A", models.WorkoutAMRAP)
		w2 := models.NewWorkout("B", models.WorkoutAMRAP)
		require.NoError(t, repo.CreateWorkout(ctx, w1))
		require.NoError(t, repo.CreateWorkout(ctx, w2))
		assert.Greater(t, w2.ID, w1.ID)

		require.NoError(t, repo.DeleteWorkout(ctx, w2.ID))
		w3 := models.NewWorkout("C", models.WorkoutAMRAP)
		require.NoError(t, repo.CreateWorkout(ctx, w3))
		assert.Greater(t, w3.ID, w2.ID, "deleted IDs must not be handed out again")
	})
}

func TestListWorkouts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		for _, name := range []string{"Fran", "Cindy", "Murph"} {
			require.NoError(t, repo.CreateWorkout(ctx, models.NewWorkout(name, models.WorkoutEMOM)))
		}

		all, err := repo.ListWorkouts(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestListRoundsOrderedByNumber(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w := models.NewWorkout("Fran", models.WorkoutForTime)
		other := models.NewWorkout("Other", models.WorkoutForTime)
		require.NoError(t, repo.CreateWorkout(ctx, w))
		require.NoError(t, repo.CreateWorkout(ctx, other))

		// Insert out of order to prove the query sorts.
		for _, n := range []int{2, 1, 3} {
			require.NoError(t, repo.CreateRound(ctx, models.NewRound(w.ID, n)))
		}
		require.NoError(t, repo.CreateRound(ctx, models.NewRound(other.ID, 1)))

		rounds, err := repo.ListRounds(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, rounds, 3)
		for i, r := range rounds {
			assert.Equal(t, i+1, r.RoundNumber)
			assert.Equal(t, w.ID, r.WorkoutID)
		}
	})
}

func TestDuplicateRoundNumberRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w := models.NewWorkout("Fran", models.WorkoutForTime)
		require.NoError(t, repo.CreateWorkout(ctx, w))
		require.NoError(t, repo.CreateRound(ctx, models.NewRound(w.ID, 1)))

		err := repo.CreateRound(ctx, models.NewRound(w.ID, 1))
		assert.ErrorIs(t, err, models.ErrStore)
	})
}

func TestActivityLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w := models.NewWorkout("Cindy", models.WorkoutAMRAP)
		require.NoError(t, repo.CreateWorkout(ctx, w))
		r := models.NewRound(w.ID, 1)
		require.NoError(t, repo.CreateRound(ctx, r))

		pullups := models.NewActivity(r.ID, "Pull-ups")
		pushups := models.NewActivity(r.ID, "Push-ups")
		require.NoError(t, repo.CreateActivity(ctx, pullups))
		require.NoError(t, repo.CreateActivity(ctx, pushups))

		require.NoError(t, repo.UpdateActivityReps(ctx, pullups.ID, -4))
		got, err := repo.GetActivity(ctx, pullups.ID)
		require.NoError(t, err)
		assert.Equal(t, -4, got.Reps, "reps are not clamped")

		list, err := repo.ListActivities(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Pull-ups", list[0].Name)
		assert.Equal(t, "Push-ups", list[1].Name)

		require.NoError(t, repo.DeleteActivity(ctx, pullups.ID))
		_, err = repo.GetActivity(ctx, pullups.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		list, err = repo.ListActivities(ctx, r.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestUpdateAndDeleteMissingActivity(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		assert.ErrorIs(t, repo.UpdateActivityReps(ctx, 42, 1), models.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteActivity(ctx, 42), models.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteWorkout(ctx, 42), models.ErrNotFound)
	})
}

func TestDeleteManyIgnoresUnknownIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w := models.NewWorkout("Grace", models.WorkoutForTime)
		require.NoError(t, repo.CreateWorkout(ctx, w))
		r := models.NewRound(w.ID, 1)
		require.NoError(t, repo.CreateRound(ctx, r))
		a := models.NewActivity(r.ID, "Clean and jerk")
		require.NoError(t, repo.CreateActivity(ctx, a))

		require.NoError(t, repo.DeleteActivities(ctx, []int64{a.ID, 777}))
		require.NoError(t, repo.DeleteRounds(ctx, []int64{r.ID, 778}))
		require.NoError(t, repo.DeleteActivities(ctx, nil))

		rounds, err := repo.ListRounds(ctx, w.ID)
		require.NoError(t, err)
		assert.Empty(t, rounds)
		acts, err := repo.ListActivities(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, acts)
	})
}

func TestAtomicCommits(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w := models.NewWorkout("Helen", models.WorkoutForTime)

		err := repo.Atomic(ctx, func(q Queries) error {
			if err := q.CreateWorkout(ctx, w); err != nil {
				return err
			}
			return q.CreateRound(ctx, models.NewRound(w.ID, 1))
		})
		require.NoError(t, err)

		rounds, err := repo.ListRounds(ctx, w.ID)
		require.NoError(t, err)
		assert.Len(t, rounds, 1)
	})
}

func TestAtomicRollsBackOnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		boom := errors.New("boom")
		w := models.NewWorkout("Diane", models.WorkoutForTime)

		err := repo.Atomic(ctx, func(q Queries) error {
			if err := q.CreateWorkout(ctx, w); err != nil {
				return err
			}
			if err := q.CreateRound(ctx, models.NewRound(w.ID, 1)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = repo.GetWorkout(ctx, w.ID)
		assert.ErrorIs(t, err, models.ErrNotFound, "workout insert should be rolled back")
		rounds, err := repo.ListRounds(ctx, w.ID)
		require.NoError(t, err)
		assert.Empty(t, rounds, "round insert should be rolled back")
	})
}

func TestAtomicSeesOwnWrites(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		w := models.NewWorkout("Karen", models.WorkoutForTime)

		err := repo.Atomic(ctx, func(q Queries) error {
			if err := q.CreateWorkout(ctx, w); err != nil {
				return err
			}
			r := models.NewRound(w.ID, 1)
			if err := q.CreateRound(ctx, r); err != nil {
				return err
			}
			if err := q.CreateActivity(ctx, models.NewActivity(r.ID, "Wall balls")); err != nil {
				return err
			}
			acts, err := q.ListActivities(ctx, r.ID)
			if err != nil {
				return err
			}
			if len(acts) != 1 {
				t.Errorf("expected 1 activity inside the transaction, got %d", len(acts))
			}
			return nil
		})
		require.NoError(t, err)
	})
}
