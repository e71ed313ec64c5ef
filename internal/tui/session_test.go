// ABOUTME: Tests for the session view model.
// ABOUTME: Drives Update with key messages and runs returned commands by hand.
package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/reps/internal/catalog"
	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/storage"
	"github.com/harperreed/reps/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T, activities ...string) (Model, *tracker.Manager, storage.Repository, int64) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "reps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	w, err := catalog.New(db, nil).CreateFromTemplate(context.Background(), &catalog.Template{
		Name:       "5k Run",
		Type:       "fortime",
		Activities: activities,
	})
	require.NoError(t, err)

	mgr := tracker.NewManager(db, tracker.Options{Logger: zaptest.NewLogger(t)})
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })

	m := New(mgr, w.ID, zaptest.NewLogger(t))
	m = run(t, m, m.Init())
	return m, mgr, db, w.ID
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and returns the updated model and command.
func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestSessionLoadsWorkout(t *testing.T) {
	m, mgr, _, _ := setup(t, "Run", "Stretch")

	assert.Equal(t, tracker.PhaseReady, mgr.Phase())
	view := m.View()
	assert.Contains(t, view, "5k Run — FORTIME")
	assert.Contains(t, view, "Round 1 of 1")
	assert.Contains(t, view, "Run")
	assert.Contains(t, view, "Stretch")
}

func TestSessionTapUpdatesImmediately(t *testing.T) {
	m, mgr, repo, _ := setup(t, "Run", "Stretch")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(t, m, runes("+"))
	m, _ = press(t, m, runes("+"))

	acts := mgr.CurrentActivities()
	assert.Equal(t, 0, acts[0].Reps)
	assert.Equal(t, 2, acts[1].Reps)

	m = run(t, m, cmd)
	assert.False(t, m.statusErr)

	require.NoError(t, mgr.Flush(context.Background()))
	stored, err := repo.GetActivity(context.Background(), acts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Reps)
}

func TestSessionAddRoundAndNavigate(t *testing.T) {
	m, mgr, _, _ := setup(t, "Run")

	m, cmd := press(t, m, runes("a"))
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "Round 2 of 2")
	assert.Equal(t, 1, mgr.CurrentRoundIndex())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, mgr.CurrentRoundIndex())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Contains(t, m.View(), "Round 1 of 2")

	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, mgr.CurrentRoundIndex())
}

func TestSessionAddActivity(t *testing.T) {
	m, mgr, _, _ := setup(t)
	assert.Contains(t, m.View(), "No activities yet")

	m, _ = press(t, m, runes("n"))
	assert.Equal(t, modeInput, m.mode)
	m, _ = press(t, m, runes("Row"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeRounds, m.mode)
	m = run(t, m, cmd)

	acts := mgr.CurrentActivities()
	require.Len(t, acts, 1)
	assert.Equal(t, "Row", acts[0].Name)
	assert.Contains(t, m.View(), "Row")

	// Blank names are ignored without a command.
	m, _ = press(t, m, runes("n"))
	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, mgr.CurrentActivities(), 1)
}

func TestSessionFocusedEditor(t *testing.T) {
	m, mgr, repo, _ := setup(t, "Run")
	run3 := mgr.CurrentActivities()[0]

	for i := 0; i < 3; i++ {
		m, _ = press(t, m, runes("+"))
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeFocus, m.mode)
	assert.Contains(t, m.View(), "3")

	m, _ = press(t, m, runes("5")) // +5
	a, _ := mgr.Activity(run3.ID)
	assert.Equal(t, 8, a.Reps)
	assert.Contains(t, m.View(), "8")

	m, cmd := press(t, m, runes("r"))
	m = run(t, m, cmd)
	a, _ = mgr.Activity(run3.ID)
	assert.Equal(t, 0, a.Reps)
	stored, err := repo.GetActivity(context.Background(), run3.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Reps)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeRounds, m.mode)
	assert.Nil(t, mgr.Editor())
}

func TestSessionDeleteActivityClosesFocus(t *testing.T) {
	m, mgr, _, _ := setup(t, "Run", "Row")

	m, cmd := press(t, m, runes("d"))
	m = run(t, m, cmd)
	acts := mgr.CurrentActivities()
	require.Len(t, acts, 1)
	assert.Equal(t, "Row", acts[0].Name)
	assert.Equal(t, 0, m.selected)
}

func TestSessionErrorStateRetries(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "reps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mgr := tracker.NewManager(db, tracker.Options{})
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })

	m := New(mgr, 77, nil)
	assert.Contains(t, m.View(), "Loading")

	m = run(t, m, m.Init())
	assert.Equal(t, tracker.PhaseErrored, mgr.Phase())
	assert.ErrorIs(t, mgr.Err(), models.ErrNotFound)
	assert.Contains(t, m.View(), "Could not load workout")

	// Taps are ignored while errored.
	_, cmd := press(t, m, runes("+"))
	assert.Nil(t, cmd)

	m, cmd = press(t, m, runes("r"))
	m = run(t, m, cmd)
	assert.Equal(t, tracker.PhaseErrored, mgr.Phase())

	_, cmd = press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
