package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/shapec-dev/shapec/internal/cli/ui"
	"github.com/shapec-dev/shapec/internal/compiler/cache"
	"github.com/shapec-dev/shapec/internal/compiler/overrides"
	"github.com/shapec-dev/shapec/internal/compiler/pipeline"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
	"github.com/shapec-dev/shapec/internal/metrics"
	"github.com/shapec-dev/shapec/internal/store"
)

// Compiler builds a pipeline compiler from the configuration. The returned
// cleanup releases the cache.
func (e *Env) Compiler(m *metrics.Collector) (*pipeline.Compiler, func(), error) {
	cfg := e.Config
	reg, err := overrides.Load(overrides.Options{Path: cfg.OverridesFile, SDKVersion: cfg.SDKVersion})
	if err != nil {
		return nil, nil, err
	}

	c, err := cache.New(cfg.CacheOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache: %w", err)
	}
	cleanup := func() {}
	if closer, ok := c.(interface{ Close() error }); ok {
		cleanup = func() {
			if err := closer.Close(); err != nil {
				e.Log.Warn("failed to close cache", zap.Error(err))
			}
		}
	}

	return pipeline.New(pipeline.Options{
		Overrides:     reg,
		ReservedWords: cfg.ReservedWords,
		Cache:         c,
		CacheTTL:      cfg.Cache.TTL,
		Metrics:       m,
		Logger:        e.Log,
		SDKVersion:    cfg.SDKVersion,
		Workers:       cfg.Workers,
	}), cleanup, nil
}

// Store opens and initializes the snapshot store, or returns nil when the
// store is disabled.
func (e *Env) Store(ctx context.Context) (*store.SnapshotStore, error) {
	if !e.Config.Store.Enabled {
		return nil, nil
	}
	s, err := store.Open(e.Config.Store.Driver, e.Config.Store.DSN)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// SelectServices discovers the services under the data directory and keeps
// the named ones, all of them when names is empty. An unknown name is
// reported to w with suggestions.
func (e *Env) SelectServices(w io.Writer, names []string) ([]schema.ServiceDir, error) {
	dirs, err := schema.Discover(e.Config.DataDir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return dirs, nil
	}

	byName := make(map[string]schema.ServiceDir, len(dirs))
	known := make([]string, len(dirs))
	for i, d := range dirs {
		byName[d.Name] = d
		known[i] = d.Name
	}

	selected := make([]schema.ServiceDir, 0, len(names))
	for _, name := range names {
		d, ok := byName[name]
		if !ok {
			fmt.Fprint(w, ui.ServiceNotFoundError(name, known, e.NoColor))
			return nil, &ExitError{Code: 1}
		}
		selected = append(selected, d)
	}
	return selected, nil
}
