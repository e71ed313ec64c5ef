// ABOUTME: Round/activity manager: the in-memory state of one loaded workout.
// ABOUTME: Structural changes reload from storage; rep taps update memory first.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/storage"
	"go.uber.org/zap"
)

// Phase is the manager's view state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseErrored:
		return "errored"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Direction moves between rounds.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// Options configures a Manager.
type Options struct {
	Logger  *zap.Logger
	Metrics *Metrics
}

// Manager holds the rounds and activities of one workout.
//
// Rep count changes are applied to memory immediately and persisted through a
// write-behind queue. Until a write completes, memory is ahead of storage;
// a failed write leaves the activity in Unsynced until the next reload.
type Manager struct {
	repo   storage.Repository
	log    *zap.Logger
	writes *WriteBehind

	mu        sync.Mutex
	phase     Phase
	err       error
	workoutID int64
	snap      *Snapshot
	index     int
	editor    *Editor
	unsynced  map[int64]struct{}

	// gen counts rep changes; taps keeps the latest one per activity so a
	// snapshot read while taps were landing can be brought up to date.
	gen  uint64
	taps map[int64]tap

	// fetchSeq numbers fetches as they start; applied is the newest one
	// installed. Older results are dropped.
	fetchSeq uint64
	applied  uint64
}

type tap struct {
	gen  uint64
	reps int
}

// fetchMark identifies a fetch and the rep changes made before it started.
type fetchMark struct {
	seq uint64
	gen uint64
}

// NewManager creates a Manager over repo. Call Close to stop its writer.
func NewManager(repo storage.Repository, opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		repo:     repo,
		log:      log.Named("tracker"),
		unsynced: make(map[int64]struct{}),
		taps:     make(map[int64]tap),
	}
	m.writes = NewWriteBehind(repo, m.log.Named("writebehind"), opts.Metrics, m.writeCompleted)
	return m
}

// Load reads a workout and all its rounds and activities. The current round
// resets to the first one.
func (m *Manager) Load(ctx context.Context, workoutID int64) error {
	m.mu.Lock()
	m.phase = PhaseLoading
	m.err = nil
	m.workoutID = workoutID
	mark := m.markLocked()
	m.mu.Unlock()

	snap, err := m.fetch(ctx, workoutID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.log.Error("load workout failed", zap.Int64("workout_id", workoutID), zap.Error(err))
		m.failLocked(mark, err)
		return err
	}
	if m.swapLocked(mark, snap) {
		m.index = 0
	}
	return nil
}

// reload refreshes the snapshot of the loaded workout, keeping the current
// round when it still exists.
func (m *Manager) reload(ctx context.Context) error {
	m.mu.Lock()
	workoutID := m.workoutID
	mark := m.markLocked()
	m.mu.Unlock()

	snap, err := m.fetch(ctx, workoutID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.log.Error("reload workout failed", zap.Int64("workout_id", workoutID), zap.Error(err))
		m.failLocked(mark, err)
		return err
	}
	if m.swapLocked(mark, snap) {
		m.index = clamp(m.index, len(m.snap.Rounds))
	}
	return nil
}

// markLocked starts a fetch.
func (m *Manager) markLocked() fetchMark {
	m.fetchSeq++
	return fetchMark{seq: m.fetchSeq, gen: m.gen}
}

// fetch builds a fresh snapshot from storage. Pending rep writes are flushed
// first so the snapshot is never older than what memory already showed.
func (m *Manager) fetch(ctx context.Context, workoutID int64) (*Snapshot, error) {
	if err := m.writes.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush pending writes: %w", err)
	}

	w, err := m.repo.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load workout: %w", err)
	}

	rounds, err := m.repo.ListRounds(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load rounds: %w", err)
	}
	if len(rounds) == 0 {
		r := models.NewRound(workoutID, 1)
		if err := m.repo.CreateRound(ctx, r); err != nil {
			return nil, fmt.Errorf("create first round: %w", err)
		}
		m.log.Warn("workout had no rounds, created round 1", zap.Int64("workout_id", workoutID))
		rounds = []*models.Round{r}
	}

	snap := &Snapshot{
		Workout:    *w,
		Rounds:     make([]models.Round, 0, len(rounds)),
		Activities: make(map[int64][]models.Activity, len(rounds)),
	}
	for _, r := range rounds {
		acts, err := m.repo.ListActivities(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("load activities of round %d: %w", r.RoundNumber, err)
		}
		list := make([]models.Activity, 0, len(acts))
		for _, a := range acts {
			list = append(list, *a)
		}
		snap.Rounds = append(snap.Rounds, *r)
		snap.Activities[r.ID] = list
	}
	return snap, nil
}

// swapLocked installs a freshly loaded snapshot and reports whether it did.
// A result older than the installed one is dropped. Rep changes made after
// the fetch started may be missing from what it read, so they are laid over
// the snapshot and keep their unsynced mark; every other activity now matches
// storage.
func (m *Manager) swapLocked(mark fetchMark, snap *Snapshot) bool {
	if mark.seq < m.applied {
		return false
	}
	m.applied = mark.seq

	for id, t := range m.taps {
		a, ok := snap.Find(id)
		if !ok {
			delete(m.taps, id)
			continue
		}
		if t.gen > mark.gen && a.Reps != t.reps {
			snap = snap.withReps(a, t.reps)
		}
	}
	for id := range m.unsynced {
		t, ok := m.taps[id]
		if !ok || t.gen <= mark.gen {
			delete(m.unsynced, id)
		}
	}

	m.snap = snap
	m.phase = PhaseReady
	m.err = nil

	if m.editor != nil {
		if a, ok := snap.Find(m.editor.activity.ID); ok {
			m.editor.activity = a
		} else {
			m.closeEditorLocked()
		}
	}
	return true
}

// failLocked enters PhaseErrored unless a newer fetch already succeeded.
func (m *Manager) failLocked(mark fetchMark, err error) {
	if mark.seq < m.applied {
		return
	}
	m.applied = mark.seq
	m.phase = PhaseErrored
	m.err = err
	m.snap = nil
	m.closeEditorLocked()
}

// requireReadyLocked returns the snapshot or a precondition error.
func (m *Manager) requireReadyLocked() (*Snapshot, error) {
	if m.phase != PhaseReady || m.snap == nil || len(m.snap.Rounds) == 0 {
		return nil, fmt.Errorf("%w: no rounds loaded (phase %s)", models.ErrPrecondition, m.phase)
	}
	return m.snap, nil
}

// AddRound appends a round that copies the names of round one's activities
// with zero reps, then moves to it.
func (m *Manager) AddRound(ctx context.Context) (*models.Round, error) {
	m.mu.Lock()
	snap, err := m.requireReadyLocked()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	template := snap.Activities[snap.Rounds[0].ID]
	r := models.NewRound(snap.Workout.ID, len(snap.Rounds)+1)

	err = m.repo.Atomic(ctx, func(q storage.Queries) error {
		if err := q.CreateRound(ctx, r); err != nil {
			return err
		}
		for _, a := range template {
			if err := q.CreateActivity(ctx, models.NewActivity(r.ID, a.Name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.log.Error("add round failed",
			zap.Int64("workout_id", snap.Workout.ID),
			zap.Int("round_number", r.RoundNumber),
			zap.Error(err),
		)
		return nil, fmt.Errorf("add round: %w", err)
	}

	if err := m.reload(ctx); err != nil {
		return nil, fmt.Errorf("add round: %w", err)
	}

	m.mu.Lock()
	if m.snap != nil {
		if i := m.snap.RoundIndex(r.ID); i >= 0 {
			m.index = i
		}
	}
	m.mu.Unlock()

	m.log.Info("round added",
		zap.Int64("workout_id", r.WorkoutID),
		zap.Int("round_number", r.RoundNumber),
		zap.Int("activities", len(template)),
	)
	return r, nil
}

// AddActivity adds a zero-rep activity to a round. A blank name is ignored
// and returns (nil, nil).
func (m *Manager) AddActivity(ctx context.Context, roundID int64, name string) (*models.Activity, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	m.mu.Lock()
	snap, err := m.requireReadyLocked()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if snap.RoundIndex(roundID) < 0 {
		return nil, models.NotFound("round", roundID)
	}

	a := models.NewActivity(roundID, name)
	if err := m.repo.CreateActivity(ctx, a); err != nil {
		m.log.Error("add activity failed", zap.Int64("round_id", roundID), zap.Error(err))
		return nil, fmt.Errorf("add activity: %w", err)
	}
	if err := m.reload(ctx); err != nil {
		return nil, fmt.Errorf("add activity: %w", err)
	}
	return a, nil
}

// DeleteActivity removes an activity and reloads.
func (m *Manager) DeleteActivity(ctx context.Context, activityID int64) error {
	m.mu.Lock()
	_, err := m.requireReadyLocked()
	m.mu.Unlock()
	if err != nil {
		return err
	}

	// Queued writes for the activity must land before it disappears.
	if err := m.writes.Flush(ctx); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if err := m.repo.DeleteActivity(ctx, activityID); err != nil {
		m.log.Error("delete activity failed", zap.Int64("activity_id", activityID), zap.Error(err))
		return fmt.Errorf("delete activity: %w", err)
	}
	if err := m.reload(ctx); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// UpdateReps adds delta to an activity's in-memory count and queues the new
// value for persistence. It returns without waiting for storage; the Ticket
// reports the outcome. Counts are not clamped.
func (m *Manager) UpdateReps(activityID int64, delta int) (*Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.requireReadyLocked()
	if err != nil {
		return nil, err
	}
	a, ok := snap.Find(activityID)
	if !ok {
		return nil, models.NotFound("activity", activityID)
	}
	return m.setRepsLocked(a, a.Reps+delta), nil
}

// ResetReps sets an activity's count to zero and waits for the write. If the
// write fails the workout is reloaded so memory matches storage again.
func (m *Manager) ResetReps(ctx context.Context, activityID int64) error {
	m.mu.Lock()
	snap, err := m.requireReadyLocked()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	a, ok := snap.Find(activityID)
	if !ok {
		m.mu.Unlock()
		return models.NotFound("activity", activityID)
	}
	t := m.setRepsLocked(a, 0)
	m.mu.Unlock()

	if err := t.Wait(ctx); err != nil {
		m.log.Warn("reset reps failed, reloading", zap.Int64("activity_id", activityID), zap.Error(err))
		return errors.Join(fmt.Errorf("reset reps: %w", err), m.reload(ctx))
	}
	return nil
}

// setRepsLocked swaps in a snapshot carrying the new count, mirrors it into
// an editor focused on the activity and queues the write. Enqueueing under
// the lock keeps writes in the order the changes were made.
func (m *Manager) setRepsLocked(a models.Activity, reps int) *Ticket {
	m.gen++
	m.taps[a.ID] = tap{gen: m.gen, reps: reps}
	m.snap = m.snap.withReps(a, reps)
	if m.editor != nil && m.editor.activity.ID == a.ID {
		m.editor.activity.Reps = reps
	}
	return m.writes.Enqueue(a.ID, reps)
}

// writeCompleted runs on the writer goroutine after each write.
func (m *Manager) writeCompleted(t *Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.err != nil {
		if _, ok := m.taps[t.ActivityID]; ok {
			m.unsynced[t.ActivityID] = struct{}{}
		}
		return
	}
	delete(m.unsynced, t.ActivityID)
}

// NavigateRound moves the current round by one in the given direction.
// Moves past either end are ignored. It reports whether the round changed.
func (m *Manager) NavigateRound(dir Direction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return false
	}

	step := 1
	if dir < 0 {
		step = -1
	}
	next := m.index + step
	if next < 0 || next >= len(m.snap.Rounds) {
		return false
	}
	m.index = next
	return true
}

// Phase returns the current view state.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Err returns the error that moved the manager to PhaseErrored.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// WorkoutID returns the ID passed to the last Load.
func (m *Manager) WorkoutID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workoutID
}

// Snapshot returns the current snapshot, nil unless ready.
func (m *Manager) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// CurrentRoundIndex returns the 0-based index of the round in view.
func (m *Manager) CurrentRoundIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// CurrentRound returns the round in view.
func (m *Manager) CurrentRound() (models.Round, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil || m.index >= len(m.snap.Rounds) {
		return models.Round{}, false
	}
	return m.snap.Rounds[m.index], true
}

// CurrentActivities returns the activities of the round in view.
func (m *Manager) CurrentActivities() []models.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil || m.index >= len(m.snap.Rounds) {
		return nil
	}
	return m.snap.ActivitiesOf(m.snap.Rounds[m.index].ID)
}

// Activity returns the in-memory state of one activity.
func (m *Manager) Activity(id int64) (models.Activity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return models.Activity{}, false
	}
	return m.snap.Find(id)
}

// Unsynced returns the activities whose latest write failed, in ID order.
// Their in-memory count differs from storage until the next reload.
func (m *Manager) Unsynced() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.unsynced))
	for id := range m.unsynced {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Pending returns the number of rep writes not yet applied to storage.
func (m *Manager) Pending() int {
	return m.writes.Pending()
}

// Flush waits for every rep write issued so far.
func (m *Manager) Flush(ctx context.Context) error {
	return m.writes.Flush(ctx)
}

// Close drains pending writes and stops the writer.
func (m *Manager) Close(ctx context.Context) error {
	return m.writes.Close(ctx)
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
