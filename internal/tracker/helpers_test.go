// ABOUTME: Shared helpers for tracker tests.
// ABOUTME: Opens stores, seeds workouts and wraps repositories with failures.
package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harperreed/reps/internal/catalog"
	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errInjected = errors.New("injected failure")

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo storage.Repository)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		db, err := storage.Open(filepath.Join(t.TempDir(), "reps.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		fn(t, db)
	})
	t.Run("badger", func(t *testing.T) {
		kv, err := storage.OpenKV("")
		require.NoError(t, err)
		t.Cleanup(func() { _ = kv.Close() })
		fn(t, kv)
	})
}

// seedWorkout creates a workout whose first round holds the given activities.
func seedWorkout(t *testing.T, repo storage.Repository, name string, activities ...string) *models.Workout {
	t.Helper()
	w, err := catalog.New(repo, zaptest.NewLogger(t)).CreateFromTemplate(testContext(t), &catalog.Template{
		Name:       name,
		Type:       string(models.WorkoutForTime),
		Activities: activities,
	})
	require.NoError(t, err)
	return w
}

// newTestManager returns a manager closed at test end.
func newTestManager(t *testing.T, repo storage.Repository, metrics *Metrics) *Manager {
	t.Helper()
	m := NewManager(repo, Options{Logger: zaptest.NewLogger(t), Metrics: metrics})
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

// flakyRepo fails rep writes while failing is set and workout reads while
// failingReads is set.
type flakyRepo struct {
	storage.Repository
	failing      atomic.Bool
	failingReads atomic.Bool
}

func (f *flakyRepo) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	if f.failingReads.Load() {
		return nil, errInjected
	}
	return f.Repository.GetWorkout(ctx, id)
}

func (f *flakyRepo) UpdateActivityReps(ctx context.Context, id int64, reps int) error {
	if f.failing.Load() {
		return errInjected
	}
	return f.Repository.UpdateActivityReps(ctx, id, reps)
}

// recordingWriter records writes and can hold them until released.
type recordingWriter struct {
	mu     sync.Mutex
	writes []write
	fail   map[int64]bool
	gate   chan struct{}
}

type write struct {
	ActivityID int64
	Reps       int
}

func (r *recordingWriter) UpdateActivityReps(_ context.Context, id int64, reps int) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[id] {
		return errInjected
	}
	r.writes = append(r.writes, write{ActivityID: id, Reps: reps})
	return nil
}

func (r *recordingWriter) recorded() []write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]write(nil), r.writes...)
}

// pausingRepo holds one ListActivities call, after it has read storage,
// until resume is called. Arm it with pauseNextRead.
type pausingRepo struct {
	storage.Repository
	armed   atomic.Bool
	paused  chan struct{}
	release chan struct{}
	once    sync.Once
}

func newPausingRepo(t *testing.T, repo storage.Repository) *pausingRepo {
	t.Helper()
	p := &pausingRepo{
		Repository: repo,
		paused:     make(chan struct{}),
		release:    make(chan struct{}),
	}
	t.Cleanup(p.resume)
	return p
}

func (p *pausingRepo) pauseNextRead() { p.armed.Store(true) }

func (p *pausingRepo) resume() { p.once.Do(func() { close(p.release) }) }

// waitPaused blocks until the armed read has happened.
func (p *pausingRepo) waitPaused(t *testing.T) {
	t.Helper()
	select {
	case <-p.paused:
	case <-time.After(5 * time.Second):
		t.Fatal("activity read never paused")
	}
}

func (p *pausingRepo) ListActivities(ctx context.Context, roundID int64) ([]*models.Activity, error) {
	acts, err := p.Repository.ListActivities(ctx, roundID)
	if p.armed.CompareAndSwap(true, false) {
		close(p.paused)
		<-p.release
	}
	return acts, err
}
