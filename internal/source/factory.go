package source

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/database"
	"github.com/case-dashboard/internal/domain"
)

// New builds the configured data source. The returned cleanup releases any
// connections the source holds and is never nil.
func New(ctx context.Context, config *domain.Config, logger *logrus.Logger) (domain.DataSource, func(), error) {
	noop := func() {}

	decoder, err := NewDecoder(config.Source.Columns, config.Source.NAValues)
	if err != nil {
		return nil, noop, fmt.Errorf("building decoder: %w", err)
	}

	switch config.Source.Kind {
	case domain.SourceHTTP:
		cache, cleanup, err := newPayloadCache(ctx, config.Cache, logger)
		if err != nil {
			return nil, noop, err
		}
		src := NewHTTPSource(config.Source, decoder, cache, config.Cache.DefaultTTL, logger)
		return src, cleanup, nil

	case domain.SourceFile:
		return NewFileSource(config.Source.Path, decoder), noop, nil

	case domain.SourceSQLite:
		src, err := OpenSQLite(config.Source.Path, config.Source.Table, decoder)
		if err != nil {
			return nil, noop, err
		}
		return src, func() {
			if err := src.Close(); err != nil {
				logger.WithError(err).Warn("Closing sqlite source failed")
			}
		}, nil

	case domain.SourcePostgres:
		db, err := database.NewConnection(ctx, config.Database, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to database: %w", err)
		}
		return NewPostgresSource(db.Pool, config.Source.Table, decoder), db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown source kind: %q", config.Source.Kind)
	}
}

// newPayloadCache returns nil when caching is disabled. A Redis tier is
// added when a URL is configured and reachable.
func newPayloadCache(ctx context.Context, config domain.CacheConfig, logger *logrus.Logger) (PayloadCache, func(), error) {
	noop := func() {}
	if !config.Enabled {
		return nil, noop, nil
	}

	cleanup := noop
	var tier *TieredCache
	var err error
	if config.RedisURL != "" {
		client, rerr := NewRedisClient(ctx, config)
		if rerr != nil {
			logger.WithError(rerr).Warn("Redis unavailable, using in-memory payload cache only")
		} else {
			cleanup = func() {
				if err := client.Close(); err != nil {
					logger.WithError(err).Warn("Closing redis client failed")
				}
			}
			tier, err = NewTieredCache(config, client, logger)
		}
	}
	if tier == nil && err == nil {
		tier, err = NewTieredCache(config, nil, logger)
	}
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return tier, cleanup, nil
}
