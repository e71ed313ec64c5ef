// ABOUTME: MCP resource implementations for the workout tracker.
// ABOUTME: Provides reps://workouts and reps://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/reps/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	workoutsURI = "reps://workouts"
	summaryURI  = "reps://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         workoutsURI,
		Name:        "Workouts",
		Description: "Every workout, newest first",
		MIMEType:    "application/json",
	}, s.handleWorkoutsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Workout Summary",
		Description: "Workout counts per type and the most recent workout",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleWorkoutsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.catalog.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	out := make([]workoutOutput, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, toWorkoutOutput(w))
	}
	return jsonResource(workoutsURI, out)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.catalog.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	byType := make(map[string]int, len(models.AllWorkoutTypes))
	for _, t := range models.AllWorkoutTypes {
		byType[string(t)] = 0
	}
	for _, w := range workouts {
		byType[string(w.Type)]++
	}

	result := map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"total":        len(workouts),
		"by_type":      byType,
	}
	if len(workouts) > 0 {
		result["latest"] = toWorkoutOutput(workouts[0])
	}
	return jsonResource(summaryURI, result)
}
