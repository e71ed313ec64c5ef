// ABOUTME: Workout, Round and Activity CRUD operations for SQLite storage.
// ABOUTME: Cascades are left to callers, which run them inside Atomic.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/reps/internal/models"
)

// CreateWorkout stores a new workout and assigns its generated ID.
func (s *sqlQueries) CreateWorkout(ctx context.Context, w *models.Workout) error {
	query := `INSERT INTO workouts (name, type, created_at) VALUES (?, ?, ?)`
	res, err := s.q.ExecContext(ctx, query, w.Name, string(w.Type), w.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return models.NewStoreError("create workout", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.NewStoreError("create workout", err)
	}
	w.ID = id
	return nil
}

// GetWorkout retrieves a workout by ID.
func (s *sqlQueries) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	query := `SELECT id, name, type, created_at FROM workouts WHERE id = ?`
	w, err := scanWorkout(s.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("workout", id)
	}
	if err != nil {
		return nil, models.NewStoreError("get workout", err)
	}
	return w, nil
}

// ListWorkouts retrieves every workout. Ordering is left to the caller.
func (s *sqlQueries) ListWorkouts(ctx context.Context) ([]*models.Workout, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, type, created_at FROM workouts ORDER BY id`)
	if err != nil {
		return nil, models.NewStoreError("list workouts", err)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, models.NewStoreError("scan workout", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("list workouts", err)
	}
	return workouts, nil
}

// DeleteWorkout removes a single workout row. Rounds and activities must be
// removed first by the caller.
func (s *sqlQueries) DeleteWorkout(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return models.NewStoreError("delete workout", err)
	}
	return requireAffected(res, "workout", id)
}

// CreateRound stores a new round and assigns its generated ID.
func (s *sqlQueries) CreateRound(ctx context.Context, r *models.Round) error {
	query := `INSERT INTO rounds (workout_id, round_number) VALUES (?, ?)`
	res, err := s.q.ExecContext(ctx, query, r.WorkoutID, r.RoundNumber)
	if err != nil {
		return models.NewStoreError("create round", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.NewStoreError("create round", err)
	}
	r.ID = id
	return nil
}

// GetRound retrieves a round by ID.
func (s *sqlQueries) GetRound(ctx context.Context, id int64) (*models.Round, error) {
	var r models.Round
	err := s.q.QueryRowContext(ctx, `SELECT id, workout_id, round_number FROM rounds WHERE id = ?`, id).
		Scan(&r.ID, &r.WorkoutID, &r.RoundNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("round", id)
	}
	if err != nil {
		return nil, models.NewStoreError("get round", err)
	}
	return &r, nil
}

// ListRounds retrieves the rounds of a workout ordered by round number.
func (s *sqlQueries) ListRounds(ctx context.Context, workoutID int64) ([]*models.Round, error) {
	query := `
		SELECT id, workout_id, round_number
		FROM rounds
		WHERE workout_id = ?
		ORDER BY round_number ASC
	`
	rows, err := s.q.QueryContext(ctx, query, workoutID)
	if err != nil {
		return nil, models.NewStoreError("list rounds", err)
	}
	defer rows.Close()

	var rounds []*models.Round
	for rows.Next() {
		var r models.Round
		if err := rows.Scan(&r.ID, &r.WorkoutID, &r.RoundNumber); err != nil {
			return nil, models.NewStoreError("scan round", err)
		}
		rounds = append(rounds, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("list rounds", err)
	}
	return rounds, nil
}

// DeleteRounds removes the given rounds. Unknown IDs are ignored.
func (s *sqlQueries) DeleteRounds(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM rounds WHERE id IN (%s)`, placeholders(len(ids)))
	if _, err := s.q.ExecContext(ctx, query, int64Args(ids)...); err != nil {
		return models.NewStoreError("delete rounds", err)
	}
	return nil
}

// CreateActivity stores a new activity and assigns its generated ID.
func (s *sqlQueries) CreateActivity(ctx context.Context, a *models.Activity) error {
	query := `INSERT INTO activities (round_id, name, reps) VALUES (?, ?, ?)`
	res, err := s.q.ExecContext(ctx, query, a.RoundID, a.Name, a.Reps)
	if err != nil {
		return models.NewStoreError("create activity", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.NewStoreError("create activity", err)
	}
	a.ID = id
	return nil
}

// GetActivity retrieves an activity by ID.
func (s *sqlQueries) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	var a models.Activity
	err := s.q.QueryRowContext(ctx, `SELECT id, round_id, name, reps FROM activities WHERE id = ?`, id).
		Scan(&a.ID, &a.RoundID, &a.Name, &a.Reps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("activity", id)
	}
	if err != nil {
		return nil, models.NewStoreError("get activity", err)
	}
	return &a, nil
}

// ListActivities retrieves the activities of a round in creation order.
func (s *sqlQueries) ListActivities(ctx context.Context, roundID int64) ([]*models.Activity, error) {
	query := `
		SELECT id, round_id, name, reps
		FROM activities
		WHERE round_id = ?
		ORDER BY id ASC
	`
	rows, err := s.q.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, models.NewStoreError("list activities", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.RoundID, &a.Name, &a.Reps); err != nil {
			return nil, models.NewStoreError("scan activity", err)
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("list activities", err)
	}
	return activities, nil
}

// UpdateActivityReps overwrites the repetition count of an activity.
func (s *sqlQueries) UpdateActivityReps(ctx context.Context, id int64, reps int) error {
	res, err := s.q.ExecContext(ctx, `UPDATE activities SET reps = ? WHERE id = ?`, reps, id)
	if err != nil {
		return models.NewStoreError("update activity reps", err)
	}
	return requireAffected(res, "activity", id)
}

// DeleteActivity removes a single activity.
func (s *sqlQueries) DeleteActivity(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return models.NewStoreError("delete activity", err)
	}
	return requireAffected(res, "activity", id)
}

// DeleteActivities removes the given activities. Unknown IDs are ignored.
func (s *sqlQueries) DeleteActivities(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM activities WHERE id IN (%s)`, placeholders(len(ids)))
	if _, err := s.q.ExecContext(ctx, query, int64Args(ids)...); err != nil {
		return models.NewStoreError("delete activities", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanWorkout scans a single row into a Workout struct.
func scanWorkout(row rowScanner) (*models.Workout, error) {
	var w models.Workout
	var workoutType, createdAt string

	if err := row.Scan(&w.ID, &w.Name, &workoutType, &createdAt); err != nil {
		return nil, err
	}

	w.Type = models.WorkoutType(workoutType)
	w.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &w, nil
}

// requireAffected turns a zero-row write into a not-found error.
func requireAffected(res sql.Result, kind string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return models.NewStoreError(kind+" rows affected", err)
	}
	if affected == 0 {
		return models.NotFound(kind, id)
	}
	return nil
}
