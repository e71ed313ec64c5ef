// ABOUTME: Badger-backed key/value implementation of the Repository.
// ABOUTME: Records are JSON values; secondary indexes are empty marker keys.
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/reps/internal/models"
)

const (
	workoutPrefix  = "w/"
	roundPrefix    = "r/"
	activityPrefix = "a/"

	roundIndexPrefix    = "ix/r/" // ix/r/<workoutID>/<roundID>
	activityIndexPrefix = "ix/a/" // ix/a/<roundID>/<activityID>

	seqBandwidth = 100
)

// KV stores workout data in an embedded Badger database.
type KV struct {
	db   *badger.DB
	seqs map[string]*badger.Sequence
}

// Compile-time check that KV implements Repository.
var _ Repository = (*KV)(nil)

// OpenKV opens or creates a Badger database in dir. An empty dir opens an
// in-memory database, which is what the tests use.
func OpenKV(dir string) (*KV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	k := &KV{db: db, seqs: make(map[string]*badger.Sequence)}
	for _, prefix := range []string{workoutPrefix, roundPrefix, activityPrefix} {
		seq, err := db.GetSequence([]byte("seq/"+prefix), seqBandwidth)
		if err != nil {
			_ = k.Close()
			return nil, fmt.Errorf("open id sequence %s: %w", prefix, err)
		}
		k.seqs[prefix] = seq
	}
	return k, nil
}

// Close releases the ID sequences and closes the database.
func (k *KV) Close() error {
	for _, seq := range k.seqs {
		_ = seq.Release()
	}
	if k.db != nil {
		return k.db.Close()
	}
	return nil
}

// nextID returns the next identifier for a collection. Identifiers start at 1
// and are never reused, even when the surrounding transaction is discarded.
func (k *KV) nextID(prefix string) (int64, error) {
	n, err := k.seqs[prefix].Next()
	if err != nil {
		return 0, models.NewStoreError("next id", err)
	}
	return int64(n) + 1, nil
}

// Atomic runs fn inside a single Badger read-write transaction.
func (k *KV) Atomic(ctx context.Context, fn func(q Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.update(func(t *kvTxn) error { return fn(t) })
}

func (k *KV) update(fn func(t *kvTxn) error) error {
	txn := k.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(&kvTxn{kv: k, txn: txn}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return models.NewStoreError("commit", err)
	}
	return nil
}

func (k *KV) view(fn func(t *kvTxn) error) error {
	return k.db.View(func(txn *badger.Txn) error {
		return fn(&kvTxn{kv: k, txn: txn})
	})
}

func (k *KV) CreateWorkout(ctx context.Context, w *models.Workout) error {
	return k.update(func(t *kvTxn) error { return t.CreateWorkout(ctx, w) })
}

func (k *KV) GetWorkout(ctx context.Context, id int64) (w *models.Workout, err error) {
	err = k.view(func(t *kvTxn) error {
		w, err = t.GetWorkout(ctx, id)
		return err
	})
	return w, err
}

func (k *KV) ListWorkouts(ctx context.Context) (ws []*models.Workout, err error) {
	err = k.view(func(t *kvTxn) error {
		ws, err = t.ListWorkouts(ctx)
		return err
	})
	return ws, err
}

func (k *KV) DeleteWorkout(ctx context.Context, id int64) error {
	return k.update(func(t *kvTxn) error { return t.DeleteWorkout(ctx, id) })
}

func (k *KV) CreateRound(ctx context.Context, r *models.Round) error {
	return k.update(func(t *kvTxn) error { return t.CreateRound(ctx, r) })
}

func (k *KV) GetRound(ctx context.Context, id int64) (r *models.Round, err error) {
	err = k.view(func(t *kvTxn) error {
		r, err = t.GetRound(ctx, id)
		return err
	})
	return r, err
}

func (k *KV) ListRounds(ctx context.Context, workoutID int64) (rs []*models.Round, err error) {
	err = k.view(func(t *kvTxn) error {
		rs, err = t.ListRounds(ctx, workoutID)
		return err
	})
	return rs, err
}

func (k *KV) DeleteRounds(ctx context.Context, ids []int64) error {
	return k.update(func(t *kvTxn) error { return t.DeleteRounds(ctx, ids) })
}

func (k *KV) CreateActivity(ctx context.Context, a *models.Activity) error {
	return k.update(func(t *kvTxn) error { return t.CreateActivity(ctx, a) })
}

func (k *KV) GetActivity(ctx context.Context, id int64) (a *models.Activity, err error) {
	err = k.view(func(t *kvTxn) error {
		a, err = t.GetActivity(ctx, id)
		return err
	})
	return a, err
}

func (k *KV) ListActivities(ctx context.Context, roundID int64) (as []*models.Activity, err error) {
	err = k.view(func(t *kvTxn) error {
		as, err = t.ListActivities(ctx, roundID)
		return err
	})
	return as, err
}

func (k *KV) UpdateActivityReps(ctx context.Context, id int64, reps int) error {
	return k.update(func(t *kvTxn) error { return t.UpdateActivityReps(ctx, id, reps) })
}

func (k *KV) DeleteActivity(ctx context.Context, id int64) error {
	return k.update(func(t *kvTxn) error { return t.DeleteActivity(ctx, id) })
}

func (k *KV) DeleteActivities(ctx context.Context, ids []int64) error {
	return k.update(func(t *kvTxn) error { return t.DeleteActivities(ctx, ids) })
}
