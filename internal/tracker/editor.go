// ABOUTME: Focused activity editor overlaying the manager's round view.
// ABOUTME: Mutations delegate to the manager, which keeps the mirror current.
package tracker

import (
	"context"
	"fmt"
	"slices"

	"github.com/harperreed/reps/internal/models"
)

// Deltas are the increments the focused editor offers.
var Deltas = []int{-10, -5, -1, 1, 5, 10}

// Editor presents one activity for large-step editing. It holds no state of
// its own beyond a mirror of the activity kept in sync by the manager.
type Editor struct {
	m        *Manager
	activity models.Activity
	closed   bool
}

// Focus opens the editor on an activity, replacing any editor already open.
func (m *Manager) Focus(activityID int64) (*Editor, error) {
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

	m.closeEditorLocked()
	m.editor = &Editor{m: m, activity: a}
	return m.editor, nil
}

// Editor returns the open editor, or nil.
func (m *Manager) Editor() *Editor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editor
}

func (m *Manager) closeEditorLocked() {
	if m.editor != nil {
		m.editor.closed = true
		m.editor = nil
	}
}

// Activity returns the mirrored activity.
func (e *Editor) Activity() models.Activity {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return e.activity
}

// Open reports whether the editor is still the manager's focused overlay.
func (e *Editor) Open() bool {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	return !e.closed
}

// Apply adds one of the offered deltas to the activity.
func (e *Editor) Apply(delta int) (*Ticket, error) {
	if !slices.Contains(Deltas, delta) {
		return nil, fmt.Errorf("%w: delta %d is not one of %v", models.ErrValidation, delta, Deltas)
	}
	id, err := e.target()
	if err != nil {
		return nil, err
	}
	return e.m.UpdateReps(id, delta)
}

// Reset sets the activity back to zero.
func (e *Editor) Reset(ctx context.Context) error {
	id, err := e.target()
	if err != nil {
		return err
	}
	return e.m.ResetReps(ctx, id)
}

// Close leaves the focused view. Nothing is persisted here; every change was
// already handed to the manager when it was made.
func (e *Editor) Close() {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.m.editor == e {
		e.m.closeEditorLocked()
	}
	e.closed = true
}

func (e *Editor) target() (int64, error) {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	if e.closed {
		return 0, fmt.Errorf("%w: editor is closed", models.ErrPrecondition)
	}
	return e.activity.ID, nil
}
