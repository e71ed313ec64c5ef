// ABOUTME: CLI commands for adding and deleting activities.
// ABOUTME: Activities are addressed by workout, round number and name.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/harperreed/reps/internal/models"
	"github.com/spf13/cobra"
)

func newActivityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"a"},
		Short:   "Manage activities",
	}
	cmd.AddCommand(newActivityAddCmd(a), newActivityDeleteCmd(a))
	return cmd
}

func newActivityAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <workout-id> <round-number> <name>",
		Short: "Add an activity to a round",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: invalid round number %q", models.ErrValidation, args[1])
			}

			m, err := a.manager(cmd, id)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, m.Close(cmd.Context())) }()

			var roundID int64
			for _, r := range m.Snapshot().Rounds {
				if r.RoundNumber == number {
					roundID = r.ID
				}
			}
			if roundID == 0 {
				return fmt.Errorf("%w: round %d of workout %d", models.ErrNotFound, number, id)
			}

			act, err := m.AddActivity(cmd.Context(), roundID, args[2])
			if err != nil {
				return fmt.Errorf("failed to add activity: %w", err)
			}
			if act == nil {
				return fmt.Errorf("%w: activity name is required", models.ErrValidation)
			}
			success.Fprintf(out(cmd), "✓ Added %s to round %d\n", act.Name, number)
			fmt.Fprintf(out(cmd), "  ID: %d\n", act.ID)
			return nil
		},
	}
}

func newActivityDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <workout-id> <activity-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an activity",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			wid, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			aid, err := parseID("activity", args[1])
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
			if err := m.DeleteActivity(cmd.Context(), aid); err != nil {
				return fmt.Errorf("failed to delete activity: %w", err)
			}
			success.Fprintf(out(cmd), "✓ Deleted %s\n", act.Name)
			return nil
		},
	}
}
