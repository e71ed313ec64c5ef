// ABOUTME: Tests for the workout catalog.
// ABOUTME: Covers listing, search, creation with round one and cascade deletes.
package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errInjected = errors.New("injected failure")

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "reps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupTestKV(t *testing.T) *storage.KV {
	t.Helper()
	kv, err := storage.OpenKV("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo storage.Repository)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("badger", func(t *testing.T) { fn(t, setupTestKV(t)) })
}

// faultyRepo fails the named Queries method inside Atomic.
type faultyRepo struct {
	storage.Repository
	failOn string
}

func (f *faultyRepo) Atomic(ctx context.Context, fn func(q storage.Queries) error) error {
	return f.Repository.Atomic(ctx, func(q storage.Queries) error {
		return fn(&faultyQueries{Queries: q, failOn: f.failOn})
	})
}

type faultyQueries struct {
	storage.Queries
	failOn string
}

func (f *faultyQueries) CreateRound(ctx context.Context, r *models.Round) error {
	if f.failOn == "CreateRound" {
		return errInjected
	}
	return f.Queries.CreateRound(ctx, r)
}

func (f *faultyQueries) DeleteActivities(ctx context.Context, ids []int64) error {
	if f.failOn == "DeleteActivities" {
		return errInjected
	}
	return f.Queries.DeleteActivities(ctx, ids)
}

func (f *faultyQueries) DeleteRounds(ctx context.Context, ids []int64) error {
	if f.failOn == "DeleteRounds" {
		return errInjected
	}
	return f.Queries.DeleteRounds(ctx, ids)
}

func (f *faultyQueries) DeleteWorkout(ctx context.Context, id int64) error {
	if f.failOn == "DeleteWorkout" {
		return errInjected
	}
	return f.Queries.DeleteWorkout(ctx, id)
}

func TestCreateWorkoutHasExactlyOneRound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		c := New(repo, zaptest.NewLogger(t))

		w, err := c.Create(ctx, "5k Run", models.WorkoutForTime)
		require.NoError(t, err)

		rounds, err := repo.ListRounds(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, rounds, 1)
		assert.Equal(t, 1, rounds[0].RoundNumber)

		list, err := c.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "5k Run — FORTIME", list[0].Label())
	})
}

func TestCreateWorkoutRejectsBlankName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		c := New(repo, nil)

		for _, name := range []string{"", "   ", "\t\n"} {
			_, err := c.Create(context.Background(), name, models.WorkoutAMRAP)
			assert.ErrorIs(t, err, models.ErrValidation, "name %q", name)
		}

		all, err := repo.ListWorkouts(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all, "nothing should be persisted on validation failure")
	})
}

func TestCreateWorkoutRejectsUnknownType(t *testing.T) {
	c := New(setupTestDB(t), nil)
	_, err := c.Create(context.Background(), "Tabata", models.WorkoutType("tabata"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateWorkoutRollsBackWhenRoundFails(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		c := New(&faultyRepo{Repository: repo, failOn: "CreateRound"}, nil)

		_, err := c.Create(ctx, "Fran", models.WorkoutForTime)
		require.ErrorIs(t, err, errInjected)

		all, err := repo.ListWorkouts(ctx)
		require.NoError(t, err)
		assert.Empty(t, all, "a workout without its first round must not survive")
	})
}

func TestListSortsNewestFirstAndFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		c := New(repo, nil)
		base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
		step := 0
		c.now = func() time.Time {
			step++
			return base.Add(time.Duration(step) * time.Hour)
		}

		for _, name := range []string{"Morning Run", "Fran", "Evening RUN"} {
			_, err := c.Create(ctx, name, models.WorkoutAMRAP)
			require.NoError(t, err)
		}

		all, err := c.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Evening RUN", all[0].Name)
		assert.Equal(t, "Fran", all[1].Name)
		assert.Equal(t, "Morning Run", all[2].Name)

		runs, err := c.List(ctx, "run")
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "Evening RUN", runs[0].Name)
		assert.Equal(t, "Morning Run", runs[1].Name)

		none, err := c.List(ctx, "swim")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestDeleteWorkoutCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		c := New(repo, nil)

		keep, err := c.Create(ctx, "Keep", models.WorkoutEMOM)
		require.NoError(t, err)
		gone, err := c.CreateFromTemplate(ctx, &Template{Name: "Cindy", Activities: []string{"Pull-ups", "Push-ups"}})
		require.NoError(t, err)

		goneRounds, err := repo.ListRounds(ctx, gone.ID)
		require.NoError(t, err)
		r2 := models.NewRound(gone.ID, 2)
		require.NoError(t, repo.CreateRound(ctx, r2))
		require.NoError(t, repo.CreateActivity(ctx, models.NewActivity(r2.ID, "Pull-ups")))

		require.NoError(t, c.Delete(ctx, gone.ID))

		_, err = repo.GetWorkout(ctx, gone.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		rounds, err := repo.ListRounds(ctx, gone.ID)
		require.NoError(t, err)
		assert.Empty(t, rounds)
		for _, r := range append(goneRounds, r2) {
			acts, err := repo.ListActivities(ctx, r.ID)
			require.NoError(t, err)
			assert.Empty(t, acts, "activities of round %d should be deleted", r.ID)
		}

		keepRounds, err := repo.ListRounds(ctx, keep.ID)
		require.NoError(t, err)
		assert.Len(t, keepRounds, 1, "other workouts are untouched")
	})
}

func TestDeleteWorkoutNotFound(t *testing.T) {
	c := New(setupTestDB(t), nil)
	err := c.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteWorkoutLeavesNoOrphansUnderFailure(t *testing.T) {
	for _, step := range []string{"DeleteActivities", "DeleteRounds", "DeleteWorkout"} {
		t.Run(step, func(t *testing.T) {
			forEachBackend(t, func(t *testing.T, repo storage.Repository) {
				ctx := context.Background()
				w, err := New(repo, nil).CreateFromTemplate(ctx, &Template{
					Name:       "Helen",
					Type:       "fortime",
					Activities: []string{"Run", "Swings"},
				})
				require.NoError(t, err)

				err = New(&faultyRepo{Repository: repo, failOn: step}, nil).Delete(ctx, w.ID)
				require.ErrorIs(t, err, errInjected)

				// The whole cascade rolled back: workout, round and activities are intact.
				_, err = repo.GetWorkout(ctx, w.ID)
				require.NoError(t, err)
				rounds, err := repo.ListRounds(ctx, w.ID)
				require.NoError(t, err)
				require.Len(t, rounds, 1)
				acts, err := repo.ListActivities(ctx, rounds[0].ID)
				require.NoError(t, err)
				assert.Len(t, acts, 2)

				// A retry without the fault completes the cascade.
				require.NoError(t, New(repo, nil).Delete(ctx, w.ID))
				acts, err = repo.ListActivities(ctx, rounds[0].ID)
				require.NoError(t, err)
				assert.Empty(t, acts)
			})
		})
	}
}
