// ABOUTME: CLI command for adding rounds to a workout.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRoundCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Manage rounds",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <workout-id>",
		Short: "Add a round copying round 1's activities with zero reps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			m, err := a.manager(cmd, id)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, m.Close(cmd.Context())) }()

			r, err := m.AddRound(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to add round: %w", err)
			}
			success.Fprintf(out(cmd), "✓ Added round %d\n", r.RoundNumber)
			for _, act := range m.CurrentActivities() {
				fmt.Fprintf(out(cmd), "  %s %s\n", faint.Sprint(padRight(fmt.Sprint(act.ID), 4)), act.Name)
			}
			return nil
		},
	})
	return cmd
}
