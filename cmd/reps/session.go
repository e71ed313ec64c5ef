// ABOUTME: CLI command for the interactive tracking session.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/reps/internal/tracker"
	"github.com/harperreed/reps/internal/tui"
	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session <workout-id>",
		Short: "Track a workout interactively",
		Long: `Open the interactive round view for a workout.

KEYS:

  ←/→       previous/next round
  ↑/↓       select activity
  +/-       one rep more/less
  enter     focus the selected activity
  a         add a round
  n         add an activity to this round
  d         delete the selected activity
  q         quit

FOCUSED ACTIVITY:

  1-6       -10, -5, -1, +1, +5, +10
  r         reset to zero
  esc       back to the round view`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workout", args[0])
			if err != nil {
				return err
			}

			m := tracker.NewManager(a.repo, tracker.Options{Logger: a.log, Metrics: a.metrics})
			runErr := tui.Run(m, id, a.log)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return errors.Join(runErr, m.Close(ctx))
		},
	}
}
