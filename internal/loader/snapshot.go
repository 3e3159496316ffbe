package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapbind/internal/config"
	"github.com/leapstack-labs/leapbind/pkg/adapter"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
)

// Snapshot builds the catalog described by cfg: the catalog file when one is
// set, otherwise the introspected target, otherwise an empty catalog.
func Snapshot(ctx context.Context, cfg *config.ProjectConfig, concurrency int, logger *slog.Logger) (*catalog.RootCatalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg == nil {
		return catalog.New(), nil
	}

	if cfg.Catalog != "" {
		logger.Debug("loading catalog file", "path", cfg.Catalog)
		return LoadFile(cfg.Catalog, logger)
	}

	if cfg.Target == nil || cfg.Target.Type == "" {
		return catalog.New(), nil
	}

	if err := cfg.Target.Validate(); err != nil {
		return nil, err
	}
	a, err := adapter.Open(cfg.Target.AdapterConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg.Target.AdapterConfig()); err != nil {
		return nil, fmt.Errorf("failed to connect to %s target: %w", cfg.Target.Type, err)
	}
	defer func() { _ = a.Close() }()

	cat := catalog.New()
	err = Introspect(ctx, a, cat, IntrospectOptions{
		Schema:      cfg.Target.Schema,
		Tables:      cfg.Tables,
		Concurrency: concurrency,
	}, logger)
	if err != nil {
		return nil, err
	}
	return cat, nil
}
