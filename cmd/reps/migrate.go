// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Reads the configured backend and writes everything to the other one.
package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/harperreed/reps/internal/config"
	"github.com/harperreed/reps/internal/storage"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		to     string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all data to another storage backend",
		Long: `Copy every workout, round and activity from the current backend to another.

The destination must be empty. Identifiers are reassigned by the destination.
Afterwards, switch backends with --backend or the "backend" config key.

USAGE:

  reps migrate --to badger --dry-run   # Count what would be copied
  reps migrate --to badger             # Copy SQLite data into Badger
  reps --backend badger migrate --to sqlite`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if !slices.Contains(config.Backends, to) {
				return fmt.Errorf("--to must be one of %v", config.Backends)
			}
			if to == a.cfg.GetBackend() {
				return fmt.Errorf("data already uses the %s backend", to)
			}

			if dryRun {
				summary, err := countData(cmd, a.repo)
				if err != nil {
					return err
				}
				warn.Fprintln(out(cmd), "Dry run mode - no changes will be made")
				printSummary(cmd, "Would copy", summary)
				return nil
			}

			if to == config.BackendBadger {
				path, err := a.cfg.StoragePath(to)
				if err != nil {
					return err
				}
				nonEmpty, err := storage.IsDirNonEmpty(path)
				if err != nil {
					return err
				}
				if nonEmpty {
					return fmt.Errorf("destination %s already holds data", path)
				}
			}

			dst, err := a.cfg.OpenBackend(to)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", to, err)
			}
			defer func() { err = errors.Join(err, dst.Close()) }()

			existing, err := dst.ListWorkouts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", to, err)
			}
			if len(existing) > 0 {
				return fmt.Errorf("destination %s already holds %d workouts", to, len(existing))
			}

			summary, err := storage.MigrateData(cmd.Context(), a.repo, dst)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			success.Fprintf(out(cmd), "✓ Migrated to %s\n", to)
			printSummary(cmd, "Copied", summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "destination backend (sqlite or badger)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count records without copying")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func countData(cmd *cobra.Command, repo storage.Repository) (*storage.MigrateSummary, error) {
	ctx := cmd.Context()
	workouts, err := repo.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	summary := &storage.MigrateSummary{Workouts: len(workouts)}
	for _, w := range workouts {
		rounds, err := repo.ListRounds(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		summary.Rounds += len(rounds)
		for _, r := range rounds {
			acts, err := repo.ListActivities(ctx, r.ID)
			if err != nil {
				return nil, err
			}
			summary.Activities += len(acts)
		}
	}
	return summary, nil
}

func printSummary(cmd *cobra.Command, verb string, s *storage.MigrateSummary) {
	fmt.Fprintf(out(cmd), "  %s %d workouts, %d rounds, %d activities\n", verb, s.Workouts, s.Rounds, s.Activities)
}
