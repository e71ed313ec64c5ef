// ABOUTME: Root Cobra command for the reps CLI.
// ABOUTME: Opens config, logger and storage in PersistentPreRunE and closes them after.
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/harperreed/reps/internal/catalog"
	"github.com/harperreed/reps/internal/config"
	"github.com/harperreed/reps/internal/storage"
	"github.com/harperreed/reps/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app holds what every command shares for one invocation.
type app struct {
	backend string
	dataDir string

	cfg     *config.Config
	log     *zap.Logger
	repo    storage.Repository
	catalog *catalog.Catalog
	metrics *tracker.Metrics
}

// skipsStorage lists commands that run without opening the store.
var skipsStorage = map[string]bool{
	"help":          true,
	"version":       true,
	"install-skill": true,
	"completion":    true,
}

// newRootCmd builds the command tree. PersistentPostRunE is skipped when a
// command fails, so callers also close the returned app.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "reps",
		Short: "Round-based workout rep tracker",
		Long: `Reps tracks repetitions for AMRAP, For Time and EMOM workouts.

A workout is a list of rounds; each round has activities with a rep count.
New rounds copy the activity names of round 1 with counts at zero.

QUICK START:

  $ reps workout add "5k Run" --type fortime      # Create a workout
  $ reps activity add 1 1 Run                     # Add an activity to round 1
  $ reps session 1                                # Track it interactively
  $ reps tap 1 1 +5                               # Or tap from the shell

STORAGE:

  Data lives in ~/.local/share/reps. The default backend is SQLite (reps.db);
  set "backend": "badger" in ~/.config/reps/config.json or pass --backend to
  use the embedded Badger store. 'reps migrate --to badger' copies data over.

MCP INTEGRATION:

  Run 'reps mcp' to start the Model Context Protocol server on stdio.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsStorage[cmd.Name()] {
				return nil
			}
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.backend, "backend", "", "storage backend (sqlite or badger)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default ~/.local/share/reps)")

	root.AddCommand(
		newWorkoutCmd(a),
		newRoundCmd(a),
		newActivityCmd(a),
		newTapCmd(a),
		newResetCmd(a),
		newSessionCmd(a),
		newMigrateCmd(a),
		newMCPCmd(a),
		newInstallSkillCmd(),
	)
	return root, a
}

// open loads config, applies flag overrides and opens the logger and store.
func (a *app) open() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg

	log, err := config.NewLogger(cfg.GetLogLevel(), cfg.LogPath())
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	a.log = log

	repo, err := cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	a.repo = repo
	a.catalog = catalog.New(repo, log)
	a.metrics = tracker.NewMetrics(prometheus.NewRegistry())

	log.Debug("storage opened",
		zap.String("backend", cfg.GetBackend()),
		zap.String("data_dir", cfg.GetDataDir()),
	)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.repo != nil {
		errs = append(errs, a.repo.Close())
		a.repo = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
		a.log = nil
	}
	return errors.Join(errs...)
}

// manager loads a workout into a fresh tracker. Callers must Close it so
// queued writes reach storage before the command returns.
func (a *app) manager(cmd *cobra.Command, workoutID int64) (*tracker.Manager, error) {
	m := tracker.NewManager(a.repo, tracker.Options{Logger: a.log, Metrics: a.metrics})
	if err := m.Load(cmd.Context(), workoutID); err != nil {
		_ = m.Close(cmd.Context())
		return nil, fmt.Errorf("failed to load workout: %w", err)
	}
	return m, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
