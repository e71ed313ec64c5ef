// ABOUTME: CLI commands for changing rep counts.
// ABOUTME: tap applies one of the editor deltas, reset sets the count to zero.
package main

import (
	"errors"
	"fmt"

	"github.com/harperreed/reps/internal/models"
	"github.com/harperreed/reps/internal/tracker"
	"github.com/spf13/cobra"
)

func newTapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tap <workout-id> <activity-id> <delta>",
		Short: "Add a delta (±1, ±5 or ±10) to an activity's reps",
		Long: fmt.Sprintf(`Add a delta to an activity's rep count.

The delta must be one of %v.

Examples:
  reps tap 1 3 +5
  reps tap 1 3 -- -1`, tracker.Deltas),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			wid, aid, err := parseActivityArgs(args)
			if err != nil {
				return err
			}
			delta, err := parseDelta(args[2])
			if err != nil {
				return err
			}

			m, err := a.manager(cmd, wid)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, m.Close(cmd.Context())) }()

			ed, err := m.Focus(aid)
			if err != nil {
				return err
			}
			defer ed.Close()

			ticket, err := ed.Apply(delta)
			if err != nil {
				return err
			}
			if err := ticket.Wait(cmd.Context()); err != nil {
				return fmt.Errorf("failed to save reps: %w", err)
			}

			act := ed.Activity()
			fmt.Fprintf(out(cmd), "%s %s\n", act.Name, bold.Sprint(act.Reps))
			return nil
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <workout-id> <activity-id>",
		Short: "Reset an activity's reps to zero",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			wid, aid, err := parseActivityArgs(args)
			if err != nil {
				return err
			}

			m, err := a.manager(cmd, wid)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, m.Close(cmd.Context())) }()

			act, ok := m.Activity(aid)
			if !ok {
				return models.NotFound("activity", aid)
			}
			if err := m.ResetReps(cmd.Context(), aid); err != nil {
				return fmt.Errorf("failed to reset reps: %w", err)
			}
			success.Fprintf(out(cmd), "✓ Reset %s to 0\n", act.Name)
			return nil
		},
	}
}

func parseActivityArgs(args []string) (int64, int64, error) {
	wid, err := parseID("workout", args[0])
	if err != nil {
		return 0, 0, err
	}
	aid, err := parseID("activity", args[1])
	if err != nil {
		return 0, 0, err
	}
	return wid, aid, nil
}
