// ABOUTME: CLI commands for managing workouts.
// ABOUTME: Supports add, list, show, and delete subcommands.
package main

import (
	"fmt"

	"github.com/harperreed/reps/internal/catalog"
	"github.com/spf13/cobra"
)

func newWorkoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workout",
		Aliases: []string{"w"},
		Short:   "Manage workouts",
		Long: `Create, list, show and delete workouts.

Every workout starts with round 1. Types are amrap, fortime and emom.

COMMANDS:

  add      Create a workout, optionally from a YAML template
  list     List workouts, newest first
  show     Show every round and activity of a workout
  delete   Delete a workout with its rounds and activities`,
	}
	cmd.AddCommand(
		newWorkoutAddCmd(a),
		newWorkoutListCmd(a),
		newWorkoutShowCmd(a),
		newWorkoutDeleteCmd(a),
	)
	return cmd
}

func newWorkoutAddCmd(a *app) *cobra.Command {
	var (
		workoutType string
		from        string
		activities  []string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new workout",
		Long: `Add a new workout with round 1.

Examples:
  reps workout add "Murph" --type fortime -a Run -a Pull-ups
  reps workout add --from cindy.yaml

A template file looks like:

  name: Cindy
  type: amrap
  activities: [Pull-ups, Push-ups, Squats]`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl := &catalog.Template{}
			if from != "" {
				loaded, err := catalog.LoadTemplate(from)
				if err != nil {
					return err
				}
				tmpl = loaded
			}
			if len(args) == 1 {
				tmpl.Name = args[0]
			}
			if workoutType != "" {
				tmpl.Type = workoutType
			}
			tmpl.Activities = append(tmpl.Activities, activities...)

			w, err := a.catalog.CreateFromTemplate(cmd.Context(), tmpl)
			if err != nil {
				return fmt.Errorf("failed to create workout: %w", err)
			}

			success.Fprintf(out(cmd), "✓ Added %s\n", w.Label())
			fmt.Fprintf(out(cmd), "  ID: %d\n", w.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&workoutType, "type", "t", "", "workout type: amrap, fortime or emom (default amrap)")
	cmd.Flags().StringVar(&from, "from", "", "YAML template file")
	cmd.Flags().StringArrayVarP(&activities, "activity", "a", nil, "activity for round 1 (repeatable)")
	return cmd
}

func newWorkoutListCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			workouts, err := a.catalog.List(cmd.Context(), search)
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}

			if len(workouts) == 0 {
				fmt.Fprintln(out(cmd), "No workouts found.")
				return nil
			}

			for _, w := range workouts {
				fmt.Fprintf(out(cmd), "%s %s %s\n",
					faint.Sprint(padRight(fmt.Sprint(w.ID), 4)),
					faint.Sprint(w.CreatedAt.Local().Format("2006-01-02 15:04")),
					w.Label())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	return cmd
}

func newWorkoutShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show workout details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			m, err := a.manager(cmd, id)
			if err != nil {
				return err
			}
			defer m.Close(cmd.Context())

			snap := m.Snapshot()
			bold.Fprintln(out(cmd), snap.Workout.Label())
			fmt.Fprintf(out(cmd), "Created: %s\n", snap.Workout.CreatedAt.Local().Format("2006-01-02 15:04"))
			for _, r := range snap.Rounds {
				fmt.Fprintf(out(cmd), "\nRound %d\n", r.RoundNumber)
				acts := snap.ActivitiesOf(r.ID)
				if len(acts) == 0 {
					faint.Fprintln(out(cmd), "  (no activities)")
				}
				for _, act := range acts {
					fmt.Fprintf(out(cmd), "  %s %s %d\n",
						faint.Sprint(padRight(fmt.Sprint(act.ID), 4)),
						padRight(act.Name, 20),
						act.Reps)
				}
			}
			return nil
		},
	}
}

func newWorkoutDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a workout with its rounds and activities",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			if err := a.catalog.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete workout: %w", err)
			}
			success.Fprintf(out(cmd), "✓ Deleted workout %d\n", id)
			return nil
		},
	}
}
