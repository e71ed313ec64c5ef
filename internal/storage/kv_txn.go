// ABOUTME: Transaction-bound record operations for the Badger store.
// ABOUTME: Maintains the workout_id and round_id marker indexes alongside records.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/reps/internal/models"
)

// kvTxn implements Queries inside one Badger transaction.
type kvTxn struct {
	kv  *KV
	txn *badger.Txn
}

// idKey renders an ID as fixed-width hex so keys sort numerically.
func idKey(id int64) string {
	return fmt.Sprintf("%016x", id)
}

func recordKey(prefix string, id int64) []byte {
	return []byte(prefix + idKey(id))
}

func indexKey(prefix string, parent, child int64) []byte {
	return []byte(prefix + idKey(parent) + "/" + idKey(child))
}

func (t *kvTxn) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := t.kv.nextID(workoutPrefix)
	if err != nil {
		return err
	}
	w.ID = id
	if err := t.put(recordKey(workoutPrefix, id), w); err != nil {
		return models.NewStoreError("create workout", err)
	}
	return nil
}

func (t *kvTxn) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var w models.Workout
	if err := t.get(recordKey(workoutPrefix, id), &w); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, models.NotFound("workout", id)
		}
		return nil, models.NewStoreError("get workout", err)
	}
	return &w, nil
}

func (t *kvTxn) ListWorkouts(ctx context.Context) ([]*models.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(workoutPrefix)
	it := t.txn.NewIterator(opts)
	defer it.Close()

	var workouts []*models.Workout
	for it.Rewind(); it.Valid(); it.Next() {
		var w models.Workout
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &w)
		})
		if err != nil {
			return nil, models.NewStoreError("list workouts", err)
		}
		workouts = append(workouts, &w)
	}
	return workouts, nil
}

func (t *kvTxn) DeleteWorkout(ctx context.Context, id int64) error {
	if _, err := t.GetWorkout(ctx, id); err != nil {
		return err
	}
	if err := t.txn.Delete(recordKey(workoutPrefix, id)); err != nil {
		return models.NewStoreError("delete workout", err)
	}
	return nil
}

func (t *kvTxn) CreateRound(ctx context.Context, r *models.Round) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.requireAbsentRoundNumber(r.WorkoutID, r.RoundNumber); err != nil {
		return err
	}
	id, err := t.kv.nextID(roundPrefix)
	if err != nil {
		return err
	}
	r.ID = id
	if err := t.put(recordKey(roundPrefix, id), r); err != nil {
		return models.NewStoreError("create round", err)
	}
	if err := t.txn.Set(indexKey(roundIndexPrefix, r.WorkoutID, id), []byte{}); err != nil {
		return models.NewStoreError("index round", err)
	}
	return nil
}

// requireAbsentRoundNumber mirrors the SQLite UNIQUE(workout_id, round_number).
func (t *kvTxn) requireAbsentRoundNumber(workoutID int64, number int) error {
	rounds, err := t.ListRounds(context.Background(), workoutID)
	if err != nil {
		return err
	}
	for _, r := range rounds {
		if r.RoundNumber == number {
			return models.NewStoreError("create round",
				fmt.Errorf("round %d already exists for workout %d", number, workoutID))
		}
	}
	return nil
}

func (t *kvTxn) GetRound(ctx context.Context, id int64) (*models.Round, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var r models.Round
	if err := t.get(recordKey(roundPrefix, id), &r); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, models.NotFound("round", id)
		}
		return nil, models.NewStoreError("get round", err)
	}
	return &r, nil
}

func (t *kvTxn) ListRounds(ctx context.Context, workoutID int64) ([]*models.Round, error) {
	ids, err := t.indexed(ctx, roundIndexPrefix, workoutID)
	if err != nil {
		return nil, models.NewStoreError("list rounds", err)
	}

	rounds := make([]*models.Round, 0, len(ids))
	for _, id := range ids {
		r, err := t.GetRound(ctx, id)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].RoundNumber < rounds[j].RoundNumber
	})
	return rounds, nil
}

func (t *kvTxn) DeleteRounds(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		r, err := t.GetRound(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := t.txn.Delete(indexKey(roundIndexPrefix, r.WorkoutID, id)); err != nil {
			return models.NewStoreError("delete rounds", err)
		}
		if err := t.txn.Delete(recordKey(roundPrefix, id)); err != nil {
			return models.NewStoreError("delete rounds", err)
		}
	}
	return nil
}

func (t *kvTxn) CreateActivity(ctx context.Context, a *models.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := t.kv.nextID(activityPrefix)
	if err != nil {
		return err
	}
	a.ID = id
	if err := t.put(recordKey(activityPrefix, id), a); err != nil {
		return models.NewStoreError("create activity", err)
	}
	if err := t.txn.Set(indexKey(activityIndexPrefix, a.RoundID, id), []byte{}); err != nil {
		return models.NewStoreError("index activity", err)
	}
	return nil
}

func (t *kvTxn) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var a models.Activity
	if err := t.get(recordKey(activityPrefix, id), &a); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, models.NotFound("activity", id)
		}
		return nil, models.NewStoreError("get activity", err)
	}
	return &a, nil
}

func (t *kvTxn) ListActivities(ctx context.Context, roundID int64) ([]*models.Activity, error) {
	ids, err := t.indexed(ctx, activityIndexPrefix, roundID)
	if err != nil {
		return nil, models.NewStoreError("list activities", err)
	}

	activities := make([]*models.Activity, 0, len(ids))
	for _, id := range ids {
		a, err := t.GetActivity(ctx, id)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

func (t *kvTxn) UpdateActivityReps(ctx context.Context, id int64, reps int) error {
	a, err := t.GetActivity(ctx, id)
	if err != nil {
		return err
	}
	a.Reps = reps
	if err := t.put(recordKey(activityPrefix, id), a); err != nil {
		return models.NewStoreError("update activity reps", err)
	}
	return nil
}

func (t *kvTxn) DeleteActivity(ctx context.Context, id int64) error {
	a, err := t.GetActivity(ctx, id)
	if err != nil {
		return err
	}
	return t.deleteActivity(a)
}

func (t *kvTxn) DeleteActivities(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		a, err := t.GetActivity(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := t.deleteActivity(a); err != nil {
			return err
		}
	}
	return nil
}

func (t *kvTxn) deleteActivity(a *models.Activity) error {
	if err := t.txn.Delete(indexKey(activityIndexPrefix, a.RoundID, a.ID)); err != nil {
		return models.NewStoreError("delete activity", err)
	}
	if err := t.txn.Delete(recordKey(activityPrefix, a.ID)); err != nil {
		return models.NewStoreError("delete activity", err)
	}
	return nil
}

// indexed returns the child IDs stored under an index prefix for parent,
// in ascending order.
func (t *kvTxn) indexed(ctx context.Context, prefix string, parent int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scan := prefix + idKey(parent) + "/"
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(scan)
	it := t.txn.NewIterator(opts)
	defer it.Close()

	var ids []int64
	for it.Rewind(); it.Valid(); it.Next() {
		key := string(it.Item().Key())
		id, err := strconv.ParseInt(strings.TrimPrefix(key, scan), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse index key %q: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (t *kvTxn) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return t.txn.Set(key, data)
}

func (t *kvTxn) get(key []byte, v any) error {
	item, err := t.txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
