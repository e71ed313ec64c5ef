// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/reps/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to the reps log file.

CONFIGURATION:

  {
    "mcpServers": {
      "reps": {
        "command": "reps",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_workouts     List workouts, optionally filtered by name
  create_workout    Create a workout with round 1
  delete_workout    Delete a workout and everything in it
  show_workout      Rounds and rep counts of a workout
  add_round         Add a round cloned from round 1
  add_activity      Add an activity to a round
  delete_activity   Delete an activity
  update_reps       Add a delta to a rep count
  reset_reps        Set a rep count to zero

AVAILABLE RESOURCES:

  reps://workouts   Every workout, newest first
  reps://summary    Counts per workout type`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcp.NewServer(a.repo, mcp.Options{
				Logger:  a.log,
				Metrics: a.metrics,
				Version: version,
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Handle shutdown signals
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				cancel()
			}()

			return server.Serve(ctx)
		},
	}
}
