// ABOUTME: Bubbletea session view for tracking one workout.
// ABOUTME: Round view with per-activity taps and a focused editor overlay.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/tracker"
	"go.uber.org/zap"
)

const opTimeout = 10 * time.Second

type mode int

const (
	modeRounds mode = iota
	modeFocus
	modeInput
)

// focusKeys maps the focused view's number keys to editor deltas.
var focusKeys = map[string]int{"1": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5}

type loadedMsg struct{ err error }

type opMsg struct {
	status string
	err    error
	round  bool // an op that changed the round in view
}

type writeDoneMsg struct{ ticket *tracker.Ticket }

// Model is the bubbletea model of a tracking session.
type Model struct {
	mgr       *tracker.Manager
	workoutID int64
	log       *zap.Logger

	mode      mode
	selected  int
	editor    *tracker.Editor
	input     textinput.Model
	status    string
	statusErr bool
	busy      bool
	quitting  bool
}

// New builds a session model over a manager. The workout is loaded by Init.
func New(mgr *tracker.Manager, workoutID int64, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	input := textinput.New()
	input.Placeholder = "Activity name"
	input.CharLimit = 80
	input.Width = 40

	return Model{
		mgr:       mgr,
		workoutID: workoutID,
		log:       log.Named("tui"),
		input:     input,
	}
}

// Run starts the session in the alternate screen and blocks until it quits.
// The caller owns mgr and closes it afterwards, which drains pending writes.
func Run(mgr *tracker.Manager, workoutID int64, log *zap.Logger) error {
	_, err := tea.NewProgram(New(mgr, workoutID, log), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	mgr, id := m.mgr, m.workoutID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return loadedMsg{err: mgr.Load(ctx, id)}
	}
}

// opCmd runs a blocking manager operation off the update loop.
func opCmd(status string, round bool, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opMsg{status: status, err: fn(ctx), round: round}
	}
}

func waitCmd(t *tracker.Ticket) tea.Cmd {
	return func() tea.Msg {
		<-t.Done()
		return writeDoneMsg{ticket: t}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.busy = false
		m.mode = modeRounds
		m.selected = 0
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.status = ""
		return m, nil

	case opMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(msg.status)
		}
		if msg.round {
			m.selected = 0
		}
		m.syncEditor()
		m.clampSelection()
		return m, nil

	case writeDoneMsg:
		if err := msg.ticket.Err(); err != nil {
			m.setError(fmt.Errorf("reps not saved: %w", err))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode == modeInput {
			return m.updateInput(msg)
		}
		if msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.mgr.Phase() {
		case tracker.PhaseReady:
		case tracker.PhaseErrored:
			if msg.String() == "r" {
				m.busy = true
				return m, m.loadCmd()
			}
			return m, nil
		default:
			return m, nil
		}
		if m.busy {
			return m, nil
		}

		if m.mode == modeFocus {
			return m.updateFocus(msg)
		}
		return m.updateRounds(msg)
	}

	return m, nil
}

func (m Model) updateRounds(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	acts := m.mgr.CurrentActivities()

	switch msg.String() {
	case "left", "h":
		if m.mgr.NavigateRound(tracker.Previous) {
			m.selected = 0
		}
	case "right", "l":
		if m.mgr.NavigateRound(tracker.Next) {
			m.selected = 0
		}
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(acts)-1 {
			m.selected++
		}
	case "+", "=":
		return m.tap(acts, 1)
	case "-", "_":
		return m.tap(acts, -1)
	case "a":
		m.busy = true
		return m, opCmd("Round added", true, func(ctx context.Context) error {
			_, err := m.mgr.AddRound(ctx)
			return err
		})
	case "n":
		m.mode = modeInput
		m.input.Reset()
		return m, m.input.Focus()
	case "d":
		if len(acts) == 0 {
			return m, nil
		}
		a := acts[m.selected]
		m.busy = true
		return m, opCmd("Deleted "+a.Name, false, func(ctx context.Context) error {
			return m.mgr.DeleteActivity(ctx, a.ID)
		})
	case "enter":
		if len(acts) == 0 {
			return m, nil
		}
		ed, err := m.mgr.Focus(acts[m.selected].ID)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.editor = ed
		m.mode = modeFocus
		m.status = ""
	}
	return m, nil
}

func (m Model) tap(acts []models.Activity, delta int) (tea.Model, tea.Cmd) {
	if len(acts) == 0 {
		return m, nil
	}
	t, err := m.mgr.UpdateReps(acts[m.selected].ID, delta)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	return m, waitCmd(t)
}

func (m Model) updateFocus(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editor == nil || !m.editor.Open() {
		m.leaveFocus()
		return m, nil
	}

	key := msg.String()
	if i, ok := focusKeys[key]; ok {
		return m.applyDelta(tracker.Deltas[i])
	}
	switch key {
	case "+", "=":
		return m.applyDelta(1)
	case "-", "_":
		return m.applyDelta(-1)
	case "r":
		ed := m.editor
		m.busy = true
		return m, opCmd("Reset to 0", false, ed.Reset)
	case "esc":
		m.editor.Close()
		m.leaveFocus()
	}
	return m, nil
}

func (m Model) applyDelta(delta int) (tea.Model, tea.Cmd) {
	t, err := m.editor.Apply(delta)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	return m, waitCmd(t)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeRounds
		m.input.Blur()
		return m, nil
	case "enter":
		name := m.input.Value()
		m.mode = modeRounds
		m.input.Blur()
		m.input.Reset()
		if strings.TrimSpace(name) == "" {
			return m, nil
		}
		r, ok := m.mgr.CurrentRound()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, opCmd("Added "+strings.TrimSpace(name), false, func(ctx context.Context) error {
			_, err := m.mgr.AddActivity(ctx, r.ID, name)
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) leaveFocus() {
	m.editor = nil
	m.mode = modeRounds
}

// syncEditor drops the focused view when a reload closed the editor.
func (m *Model) syncEditor() {
	if m.mode == modeFocus && (m.editor == nil || !m.editor.Open()) {
		m.leaveFocus()
	}
}

func (m *Model) clampSelection() {
	n := len(m.mgr.CurrentActivities())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.log.Warn("session error", zap.Int64("workout_id", m.workoutID), zap.Error(err))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mgr.Phase() {
	case tracker.PhaseIdle, tracker.PhaseLoading:
		return "Loading workout…\n"
	case tracker.PhaseErrored:
		var b strings.Builder
		b.WriteString(errorStyle.Render("Could not load workout"))
		b.WriteString("\n\n")
		if err := m.mgr.Err(); err != nil {
			b.WriteString(err.Error())
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("r retry • q quit"))
		return b.String()
	}

	var body string
	if m.mode == modeFocus && m.editor != nil {
		body = m.viewFocus()
	} else {
		body = m.viewRounds()
	}

	parts := []string{body}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, statusStyle.Render(m.status))
		}
	}
	parts = append(parts, helpStyle.Render(m.helpText()))
	return strings.Join(parts, "\n\n") + "\n"
}

func (m Model) viewRounds() string {
	snap := m.mgr.Snapshot()
	if snap == nil {
		return ""
	}
	round, _ := m.mgr.CurrentRound()
	unsynced := make(map[int64]bool)
	for _, id := range m.mgr.Unsynced() {
		unsynced[id] = true
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(snap.Workout.Label()))
	b.WriteString("  ")
	b.WriteString(roundStyle.Render(fmt.Sprintf("Round %d of %d", round.RoundNumber, len(snap.Rounds))))
	b.WriteString("\n\n")

	acts := m.mgr.CurrentActivities()
	if len(acts) == 0 {
		b.WriteString(helpStyle.Render("No activities yet. Press n to add one."))
	}
	for i, a := range acts {
		cursor := "  "
		if i == m.selected {
			cursor = cursorStyle.Render("› ")
		}
		line := fmt.Sprintf("%s%-24s %s", cursor, a.Name, repsStyle.Render(fmt.Sprintf("%4d", a.Reps)))
		if unsynced[a.ID] {
			line += " " + unsyncedStyle.Render("unsaved")
		}
		b.WriteString(line)
		if i < len(acts)-1 {
			b.WriteString("\n")
		}
	}

	if m.mode == modeInput {
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	}
	return b.String()
}

func (m Model) viewFocus() string {
	a := m.editor.Activity()
	labels := make([]string, len(tracker.Deltas))
	for i, d := range tracker.Deltas {
		labels[i] = fmt.Sprintf("%d:%+d", i+1, d)
	}
	content := strings.Join([]string{
		titleStyle.Render(a.Name),
		bigRepsStyle.Render(fmt.Sprintf("%d", a.Reps)),
		helpStyle.Render(strings.Join(labels, "  ")),
	}, "\n\n")
	return focusBox.Render(content)
}

func (m Model) helpText() string {
	switch m.mode {
	case modeFocus:
		return "1-6 add • +/- ±1 • r reset • esc back • q quit"
	case modeInput:
		return "enter add • esc cancel"
	default:
		return "←/→ round • ↑/↓ select • +/- reps • enter focus • a round • n activity • d delete • q quit"
	}
}
