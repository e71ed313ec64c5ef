// ABOUTME: MCP tool implementations for the workout tracker.
// ABOUTME: Catalog operations plus round, activity and rep count editing.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/reps/internal/catalog"
	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List workouts, newest first, optionally filtered by name",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_workout",
		Description: "Create a workout with its first round and optional starting activities",
	}, s.handleCreateWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout with all its rounds and activities",
	}, s.handleDeleteWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "show_workout",
		Description: "Show a workout with every round and activity rep count",
	}, s.handleShowWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_round",
		Description: "Add a round copying the activity names of round 1 with zero reps",
	}, s.handleAddRound)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_activity",
		Description: "Add an activity to a round",
	}, s.handleAddActivity)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_activity",
		Description: "Delete an activity",
	}, s.handleDeleteActivity)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_reps",
		Description: "Add a delta to an activity's rep count",
	}, s.handleUpdateReps)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reset_reps",
		Description: "Set an activity's rep count back to zero",
	}, s.handleResetReps)
}

// Tool input/output types

type listWorkoutsInput struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive name filter"`
}

type createWorkoutInput struct {
	Name       string   `json:"name" jsonschema:"workout name"`
	Type       string   `json:"type,omitempty" jsonschema:"amrap, fortime or emom (default amrap)"`
	Activities []string `json:"activities,omitempty" jsonschema:"activity names for round 1"`
}

type workoutInput struct {
	WorkoutID int64 `json:"workout_id" jsonschema:"workout ID"`
}

type addActivityInput struct {
	WorkoutID   int64  `json:"workout_id" jsonschema:"workout ID"`
	RoundNumber int    `json:"round_number,omitempty" jsonschema:"round number (default 1)"`
	Name        string `json:"name" jsonschema:"activity name"`
}

type activityInput struct {
	WorkoutID  int64 `json:"workout_id" jsonschema:"workout ID"`
	ActivityID int64 `json:"activity_id" jsonschema:"activity ID"`
}

type updateRepsInput struct {
	WorkoutID  int64 `json:"workout_id" jsonschema:"workout ID"`
	ActivityID int64 `json:"activity_id" jsonschema:"activity ID"`
	Delta      int   `json:"delta" jsonschema:"amount to add, may be negative"`
	Wait       bool  `json:"wait,omitempty" jsonschema:"wait until the new count is stored"`
}

type workoutOutput struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Label     string `json:"label"`
	CreatedAt string `json:"created_at"`
}

type listWorkoutsOutput struct {
	Workouts []workoutOutput `json:"workouts"`
	Count    int             `json:"count"`
}

type activityOutput struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Reps     int    `json:"reps"`
	Unsynced bool   `json:"unsynced,omitempty"`
}

type roundOutput struct {
	ID         int64            `json:"id"`
	Number     int              `json:"number"`
	Activities []activityOutput `json:"activities"`
}

type showWorkoutOutput struct {
	Workout workoutOutput `json:"workout"`
	Rounds  []roundOutput `json:"rounds"`
	Pending int           `json:"pending_writes"`
}

type repsOutput struct {
	ActivityID int64  `json:"activity_id"`
	Name       string `json:"name"`
	Reps       int    `json:"reps"`
	Stored     bool   `json:"stored"`
	Message    string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

func toWorkoutOutput(w *models.Workout) workoutOutput {
	return workoutOutput{
		ID:        w.ID,
		Name:      w.Name,
		Type:      string(w.Type),
		Label:     w.Label(),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

// Tool handlers

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, listWorkoutsOutput, error) {
	workouts, err := s.catalog.List(ctx, input.Query)
	if err != nil {
		return nil, listWorkoutsOutput{}, fmt.Errorf("failed to list workouts: %w", err)
	}

	out := listWorkoutsOutput{Workouts: make([]workoutOutput, 0, len(workouts)), Count: len(workouts)}
	for _, w := range workouts {
		out.Workouts = append(out.Workouts, toWorkoutOutput(w))
	}
	return nil, out, nil
}

func (s *Server) handleCreateWorkout(ctx context.Context, req *mcp.CallToolRequest, input createWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	w, err := s.catalog.CreateFromTemplate(ctx, &catalog.Template{
		Name:       input.Name,
		Type:       input.Type,
		Activities: input.Activities,
	})
	if err != nil {
		return nil, workoutOutput{}, fmt.Errorf("failed to create workout: %w", err)
	}
	return nil, toWorkoutOutput(w), nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutInput) (*mcp.CallToolResult, simpleOutput, error) {
	s.evict(ctx, input.WorkoutID)
	if err := s.catalog.Delete(ctx, input.WorkoutID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted workout %d", input.WorkoutID),
	}, nil
}

func (s *Server) handleShowWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutInput) (*mcp.CallToolResult, showWorkoutOutput, error) {
	m, err := s.managerFor(ctx, input.WorkoutID)
	if err != nil {
		return nil, showWorkoutOutput{}, fmt.Errorf("failed to load workout: %w", err)
	}
	return nil, showWorkout(m), nil
}

func showWorkout(m *tracker.Manager) showWorkoutOutput {
	snap := m.Snapshot()
	if snap == nil {
		return showWorkoutOutput{}
	}

	unsynced := make(map[int64]bool)
	for _, id := range m.Unsynced() {
		unsynced[id] = true
	}

	out := showWorkoutOutput{
		Workout: toWorkoutOutput(&snap.Workout),
		Rounds:  make([]roundOutput, 0, len(snap.Rounds)),
		Pending: m.Pending(),
	}
	for _, r := range snap.Rounds {
		ro := roundOutput{ID: r.ID, Number: r.RoundNumber, Activities: []activityOutput{}}
		for _, a := range snap.ActivitiesOf(r.ID) {
			ro.Activities = append(ro.Activities, activityOutput{
				ID:       a.ID,
				Name:     a.Name,
				Reps:     a.Reps,
				Unsynced: unsynced[a.ID],
			})
		}
		out.Rounds = append(out.Rounds, ro)
	}
	return out
}

func (s *Server) handleAddRound(ctx context.Context, req *mcp.CallToolRequest, input workoutInput) (*mcp.CallToolResult, roundOutput, error) {
	m, err := s.managerFor(ctx, input.WorkoutID)
	if err != nil {
		return nil, roundOutput{}, fmt.Errorf("failed to load workout: %w", err)
	}
	r, err := m.AddRound(ctx)
	if err != nil {
		return nil, roundOutput{}, fmt.Errorf("failed to add round: %w", err)
	}

	out := roundOutput{ID: r.ID, Number: r.RoundNumber, Activities: []activityOutput{}}
	for _, a := range m.CurrentActivities() {
		out.Activities = append(out.Activities, activityOutput{ID: a.ID, Name: a.Name, Reps: a.Reps})
	}
	return nil, out, nil
}

func (s *Server) handleAddActivity(ctx context.Context, req *mcp.CallToolRequest, input addActivityInput) (*mcp.CallToolResult, activityOutput, error) {
	m, err := s.managerFor(ctx, input.WorkoutID)
	if err != nil {
		return nil, activityOutput{}, fmt.Errorf("failed to load workout: %w", err)
	}

	number := input.RoundNumber
	if number == 0 {
		number = 1
	}
	roundID, err := roundIDByNumber(m.Snapshot(), number)
	if err != nil {
		return nil, activityOutput{}, err
	}

	a, err := m.AddActivity(ctx, roundID, input.Name)
	if err != nil {
		return nil, activityOutput{}, fmt.Errorf("failed to add activity: %w", err)
	}
	if a == nil {
		return nil, activityOutput{}, fmt.Errorf("%w: activity name is required", models.ErrValidation)
	}
	return nil, activityOutput{ID: a.ID, Name: a.Name, Reps: a.Reps}, nil
}

func roundIDByNumber(snap *tracker.Snapshot, number int) (int64, error) {
	if snap != nil {
		for _, r := range snap.Rounds {
			if r.RoundNumber == number {
				return r.ID, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: round number %d", models.ErrNotFound, number)
}

func (s *Server) handleDeleteActivity(ctx context.Context, req *mcp.CallToolRequest, input activityInput) (*mcp.CallToolResult, simpleOutput, error) {
	m, err := s.managerFor(ctx, input.WorkoutID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to load workout: %w", err)
	}
	if _, ok := m.Activity(input.ActivityID); !ok {
		return nil, simpleOutput{}, models.NotFound("activity", input.ActivityID)
	}
	if err := m.DeleteActivity(ctx, input.ActivityID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted activity %d", input.ActivityID),
	}, nil
}

func (s *Server) handleUpdateReps(ctx context.Context, req *mcp.CallToolRequest, input updateRepsInput) (*mcp.CallToolResult, repsOutput, error) {
	m, err := s.managerFor(ctx, input.WorkoutID)
	if err != nil {
		return nil, repsOutput{}, fmt.Errorf("failed to load workout: %w", err)
	}

	ticket, err := m.UpdateReps(input.ActivityID, input.Delta)
	if err != nil {
		return nil, repsOutput{}, fmt.Errorf("failed to update reps: %w", err)
	}

	stored := false
	if input.Wait {
		if err := ticket.Wait(ctx); err != nil {
			return nil, repsOutput{}, fmt.Errorf("failed to store reps: %w", err)
		}
		stored = true
	}

	a, _ := m.Activity(input.ActivityID)
	return nil, repsOutput{
		ActivityID: a.ID,
		Name:       a.Name,
		Reps:       a.Reps,
		Stored:     stored,
		Message:    fmt.Sprintf("%s: %d reps", a.Name, a.Reps),
	}, nil
}

func (s *Server) handleResetReps(ctx context.Context, req *mcp.CallToolRequest, input activityInput) (*mcp.CallToolResult, repsOutput, error) {
	m, err := s.managerFor(ctx, input.WorkoutID)
	if err != nil {
		return nil, repsOutput{}, fmt.Errorf("failed to load workout: %w", err)
	}
	if err := m.ResetReps(ctx, input.ActivityID); err != nil {
		return nil, repsOutput{}, fmt.Errorf("failed to reset reps: %w", err)
	}

	a, _ := m.Activity(input.ActivityID)
	return nil, repsOutput{
		ActivityID: a.ID,
		Name:       a.Name,
		Reps:       a.Reps,
		Stored:     true,
		Message:    fmt.Sprintf("%s reset to 0", a.Name),
	}, nil
}
