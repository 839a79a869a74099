// Package store opens the configured core.Store implementation.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/indicators/internal/config"
	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/store/memstore"
	"github.com/JonMunkholm/indicators/internal/store/pgstore"
)

// Handle is an open store together with its lifecycle hooks.
type Handle struct {
	core.Store

	// Ping checks reachability. Nil for stores that cannot be unreachable.
	Ping func(context.Context) error

	// Close releases the store's resources.
	Close func()
}

// Open connects to the store selected by cfg.Driver. The postgres schema is
// applied first when cfg.AutoMigrate is set; the memory store is seeded from
// cfg.SeedFile when one is configured.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Handle, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		pg, err := pgstore.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
			slog.Info("database schema applied")
		}
		return &Handle{Store: pg, Ping: pg.Ping, Close: pg.Close}, nil

	case config.DriverMemory:
		mem := memstore.New()
		if cfg.SeedFile != "" {
			var err error
			if mem, err = memstore.LoadFile(cfg.SeedFile); err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
			slog.Info("memory store seeded", "file", cfg.SeedFile)
		}
		return &Handle{Store: mem, Close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
