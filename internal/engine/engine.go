// Package engine orchestrates runs: it compiles each selected node
// fresh, translates the SQL to the target dialect, generates DDL per
// materialization kind and dispatches statements to the execution
// backend. A failing node never aborts the run; every node produces
// exactly one result.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/snowduck-labs/snowduck/internal/adapter"
	"github.com/snowduck-labs/snowduck/internal/catalog"
	"github.com/snowduck-labs/snowduck/internal/compile"
	"github.com/snowduck-labs/snowduck/internal/dag"
	"github.com/snowduck-labs/snowduck/internal/state"
	"github.com/snowduck-labs/snowduck/pkg/core"
)

// Config holds engine configuration.
type Config struct {
	// Target is the connection profile exposed to templates.
	Target *core.Target
	// AdapterConfig overrides the backend connection derived from Target.
	AdapterConfig *adapter.Config
	// StatePath is the run-history database file (":memory:" when empty).
	StatePath string
	// Vars backs var() lookups during compilation.
	Vars map[string]any
	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Engine owns the execution backend, the node catalog and the run
// history store. The backend connection is lazy: it is only opened by
// operations that execute SQL.
type Engine struct {
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	logger  *slog.Logger
	store   *state.Store
	catalog *catalog.Registry
	target  *core.Target
	vars    map[string]any
}

// New creates an engine with a lazy backend connection.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	target := cfg.Target
	if target == nil {
		target = core.DefaultTarget()
	}

	var dbConfig adapter.Config
	if cfg.AdapterConfig != nil {
		dbConfig = *cfg.AdapterConfig
	} else {
		dbConfig = adapter.Config{
			Type:     target.Type,
			Database: target.Database,
			Schema:   target.Schema,
		}
	}
	if dbConfig.Type == "" {
		dbConfig.Type = "duckdb"
	}

	store := state.NewStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}

	logger.Debug("engine initialized", "target", target.Name, "adapter", dbConfig.Type)

	return &Engine{
		dbConfig: dbConfig,
		logger:   logger,
		store:    store,
		catalog:  catalog.New(),
		target:   target,
		vars:     cfg.Vars,
	}, nil
}

// ensureConnected lazily opens the backend connection.
func (e *Engine) ensureConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to backend", "adapter", e.dbConfig.Type)

	db, err := adapter.New(e.dbConfig, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}
	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	e.db = db
	e.dbConnected = true
	return nil
}

// Close releases the backend connection and the history store.
func (e *Engine) Close() error {
	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %v", errs)
	}
	return nil
}

// Catalog returns the node registry for project loading.
func (e *Engine) Catalog() *catalog.Registry {
	return e.catalog
}

// Store returns the run history store.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Target returns the active connection profile.
func (e *Engine) Target() *core.Target {
	return e.target
}

// BuildGraph derives the dependency graph from each model's ref() calls.
// Refs to names missing from the catalog are logged and skipped; they
// resolve at compile time to the default namespace instead of becoming
// edges.
func (e *Engine) BuildGraph() *dag.Graph {
	g := dag.New()
	models := e.catalog.Models()

	for _, m := range models {
		m.DependsOn = compile.ExtractRefs(m.RawSQL)
		g.AddNode(m)
	}
	for _, m := range models {
		for _, dep := range m.DependsOn {
			if _, ok := g.Node(dep); !ok {
				e.logger.Warn("ref to unknown model, no edge recorded", "model", m.Name, "ref", dep)
				continue
			}
			if err := g.AddEdge(dep, m.Name); err != nil {
				e.logger.Warn("skipping dependency edge", "model", m.Name, "ref", dep, "error", err)
			}
		}
	}
	return g
}

// compileContext builds the immutable per-invocation compiler view.
func (e *Engine) compileContext(invocationID string, fullRefresh bool) *compile.Context {
	view := e.catalog.View()
	return &compile.Context{
		Models:          view.Models,
		Sources:         view.Sources,
		Vars:            e.vars,
		Target:          e.target,
		DefaultDatabase: e.target.Database,
		DefaultSchema:   e.target.Schema,
		FullRefresh:     fullRefresh,
		InvocationID:    invocationID,
		RunStartedAt:    nowUTC(),
		Logger:          e.logger,
	}
}
