// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for workouts, rounds and activities with lookup indexes.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workouts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rounds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id INTEGER NOT NULL,
		round_number INTEGER NOT NULL,
		FOREIGN KEY (workout_id) REFERENCES workouts(id),
		UNIQUE (workout_id, round_number)
	);

	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		round_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		reps INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (round_id) REFERENCES rounds(id)
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_created ON workouts(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_rounds_workout ON rounds(workout_id);
	CREATE INDEX IF NOT EXISTS idx_activities_round ON activities(round_id);
	`

	_, err := d.db.Exec(schema)
	return err
}
