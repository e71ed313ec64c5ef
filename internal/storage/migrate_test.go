// ABOUTME: Tests for data migration between storage backends.
// ABOUTME: Covers sqlite-to-badger and badger-to-sqlite with ID remapping.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/reps/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedWorkout creates a workout with the given rounds, each holding the named activities.
func seedWorkout(t *testing.T, repo Repository, name string, rounds int, activities ...string) *models.Workout {
	t.Helper()
	ctx := context.Background()
	w := models.NewWorkout(name, models.WorkoutAMRAP)
	require.NoError(t, repo.CreateWorkout(ctx, w))
	for n := 1; n <= rounds; n++ {
		r := models.NewRound(w.ID, n)
		require.NoError(t, repo.CreateRound(ctx, r))
		for i, act := range activities {
			a := models.NewActivity(r.ID, act).WithReps(n*10 + i)
			require.NoError(t, repo.CreateActivity(ctx, a))
		}
	}
	return w
}

func TestMigrateDataSQLiteToBadger(t *testing.T) {
	src := setupTestDB(t)
	dst := setupTestKV(t)
	ctx := context.Background()

	// Burn a few IDs on the destination so remapping is exercised.
	burn := models.NewWorkout("burn", models.WorkoutEMOM)
	require.NoError(t, dst.CreateWorkout(ctx, burn))
	require.NoError(t, dst.DeleteWorkout(ctx, burn.ID))

	seedWorkout(t, src, "Cindy", 2, "Pull-ups", "Push-ups", "Squats")
	seedWorkout(t, src, "Fran", 1, "Thrusters")

	summary, err := MigrateData(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Workouts)
	assert.Equal(t, 3, summary.Rounds)
	assert.Equal(t, 7, summary.Activities)

	workouts, err := dst.ListWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, workouts, 2)

	for _, w := range workouts {
		rounds, err := dst.ListRounds(ctx, w.ID)
		require.NoError(t, err)
		for _, r := range rounds {
			acts, err := dst.ListActivities(ctx, r.ID)
			require.NoError(t, err)
			for i, a := range acts {
				assert.Equal(t, r.RoundNumber*10+i, a.Reps, "reps should survive migration")
			}
			if w.Name == "Cindy" {
				assert.Len(t, acts, 3)
			}
		}
	}
}

func TestMigrateDataBadgerToSQLite(t *testing.T) {
	src := setupTestKV(t)
	dst := setupTestDB(t)
	ctx := context.Background()

	seedWorkout(t, src, "Helen", 3, "Run", "Swings", "Pull-ups")

	summary, err := MigrateData(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, &MigrateSummary{Workouts: 1, Rounds: 3, Activities: 9}, summary)

	workouts, err := dst.ListWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	rounds, err := dst.ListRounds(ctx, workouts[0].ID)
	require.NoError(t, err)
	assert.Len(t, rounds, 3)
}

func TestMigrateDataEmptySource(t *testing.T) {
	summary, err := MigrateData(context.Background(), setupTestDB(t), setupTestKV(t))
	require.NoError(t, err)
	assert.Equal(t, &MigrateSummary{}, summary)
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()

	empty, err := IsDirNonEmpty(dir)
	require.NoError(t, err)
	assert.False(t, empty)

	missing, err := IsDirNonEmpty(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, missing)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "reps.db"), []byte("x"), 0600))
	full, err := IsDirNonEmpty(dir)
	require.NoError(t, err)
	assert.True(t, full)
}
