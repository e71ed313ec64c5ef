// ABOUTME: MCP server setup for the reps workout tracker.
// ABOUTME: Wraps the MCP server with the catalog and one tracker per open workout.
package mcp

import (
	"context"
	"errors"
	"sync"

	"github.com/harperreed/reps/internal/catalog"
	"github.com/harperreed/reps/internal/storage"
	"github.com/harperreed/reps/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	Logger  *zap.Logger
	Metrics *tracker.Metrics
	Version string
}

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	catalog   *catalog.Catalog
	log       *zap.Logger
	metrics   *tracker.Metrics

	mu       sync.Mutex
	managers map[int64]*tracker.Manager
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "reps",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		catalog:   catalog.New(repo, log),
		log:       log.Named("mcp"),
		metrics:   opts.Metrics,
		managers:  make(map[int64]*tracker.Manager),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport. Pending rep writes are
// drained before it returns.
func (s *Server) Serve(ctx context.Context) error {
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	return errors.Join(err, s.Close(context.Background()))
}

// Close drains and stops every cached tracker.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	managers := s.managers
	s.managers = make(map[int64]*tracker.Manager)
	s.mu.Unlock()

	var errs []error
	for _, m := range managers {
		errs = append(errs, m.Close(ctx))
	}
	return errors.Join(errs...)
}

// managerFor returns the loaded manager of a workout, loading it on first use.
// A manager that failed to load is discarded so the next call retries.
func (s *Server) managerFor(ctx context.Context, workoutID int64) (*tracker.Manager, error) {
	s.mu.Lock()
	m, ok := s.managers[workoutID]
	s.mu.Unlock()
	if ok && m.Phase() == tracker.PhaseReady {
		return m, nil
	}

	if !ok {
		m = tracker.NewManager(s.repo, tracker.Options{Logger: s.log, Metrics: s.metrics})
	}
	if err := m.Load(ctx, workoutID); err != nil {
		s.evict(ctx, workoutID)
		_ = m.Close(ctx)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.managers[workoutID]; ok && existing != m {
		_ = m.Close(ctx)
		return existing, nil
	}
	s.managers[workoutID] = m
	return m, nil
}

// evict drains and forgets a workout's manager.
func (s *Server) evict(ctx context.Context, workoutID int64) {
	s.mu.Lock()
	m, ok := s.managers[workoutID]
	delete(s.managers, workoutID)
	s.mu.Unlock()
	if ok {
		if err := m.Close(ctx); err != nil {
			s.log.Warn("close tracker", zap.Int64("workout_id", workoutID), zap.Error(err))
		}
	}
}
