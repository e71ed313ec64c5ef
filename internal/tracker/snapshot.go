// ABOUTME: Immutable view of a loaded workout: rounds and per-round activities.
// ABOUTME: Changes produce a new Snapshot; readers never see partial updates.
package tracker

import (
	"slices"

	"github.com/harperreed/reps/internal/models"
)

// Snapshot is the manager's view of one workout. It is never modified after
// construction; the manager swaps in a new one instead.
type Snapshot struct {
	Workout    models.Workout
	Rounds     []models.Round              // ordered by RoundNumber
	Activities map[int64][]models.Activity // keyed by round ID, creation order
}

// ActivitiesOf returns a copy of the activities of the given round.
func (s *Snapshot) ActivitiesOf(roundID int64) []models.Activity {
	return slices.Clone(s.Activities[roundID])
}

// RoundIndex returns the position of the round with the given ID, or -1.
func (s *Snapshot) RoundIndex(roundID int64) int {
	for i, r := range s.Rounds {
		if r.ID == roundID {
			return i
		}
	}
	return -1
}

// Find looks an activity up by ID across all rounds.
func (s *Snapshot) Find(activityID int64) (models.Activity, bool) {
	for _, acts := range s.Activities {
		for _, a := range acts {
			if a.ID == activityID {
				return a, true
			}
		}
	}
	return models.Activity{}, false
}

// withReps returns a copy of s in which one activity carries reps. Only the
// affected round's slice is copied.
func (s *Snapshot) withReps(a models.Activity, reps int) *Snapshot {
	activities := make(map[int64][]models.Activity, len(s.Activities))
	for roundID, acts := range s.Activities {
		activities[roundID] = acts
	}

	acts := slices.Clone(s.Activities[a.RoundID])
	for i := range acts {
		if acts[i].ID == a.ID {
			acts[i].Reps = reps
		}
	}
	activities[a.RoundID] = acts

	return &Snapshot{Workout: s.Workout, Rounds: s.Rounds, Activities: activities}
}
