// Package app wires configuration, logging, the data source and the session
// shared by the dashboard binaries.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/config"
	"github.com/case-dashboard/internal/dashboard"
	"github.com/case-dashboard/internal/database"
	"github.com/case-dashboard/internal/domain"
	"github.com/case-dashboard/internal/logging"
	"github.com/case-dashboard/internal/source"
)

// Options tune the bootstrap
type Options struct {
	// Migrate applies the case table migrations before loading a postgres source
	Migrate bool
	// ImportCSV, when set, copies the CSV file into the postgres case table
	ImportCSV string
}

// Runtime is a loaded dashboard ready to be served
type Runtime struct {
	Config  *config.Manager
	Logger  *logrus.Logger
	Session *dashboard.Session
	cleanup func()
}

// Close releases the data source
func (r *Runtime) Close() {
	if r.cleanup != nil {
		r.cleanup()
	}
}

// Bootstrap loads and validates configuration, then builds the session from
// the configured source
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	configManager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	if err := configManager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return BootstrapWith(ctx, configManager, opts)
}

// BootstrapWith builds the runtime from an already loaded configuration
func BootstrapWith(ctx context.Context, configManager *config.Manager, opts Options) (*Runtime, error) {
	cfg := configManager.GetConfig()
	logger := logging.New(cfg.Logging)

	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"source_kind": cfg.Source.Kind,
	}).Info("Starting case dashboard")

	if cfg.Source.Kind == domain.SourcePostgres {
		if err := preparePostgres(ctx, configManager, opts, logger); err != nil {
			return nil, err
		}
	}

	src, cleanup, err := source.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating data source: %w", err)
	}

	session, err := dashboard.NewSession(ctx, src, cfg.Dashboard, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &Runtime{
		Config:  configManager,
		Logger:  logger,
		Session: session,
		cleanup: cleanup,
	}, nil
}

func preparePostgres(ctx context.Context, configManager *config.Manager, opts Options, logger *logrus.Logger) error {
	cfg := configManager.GetConfig()

	if opts.Migrate {
		if err := database.Migrate(configManager.GetDatabaseURL(), cfg.Database.MigrationsPath, logger); err != nil {
			return fmt.Errorf("migrating case table: %w", err)
		}
	}

	if opts.ImportCSV == "" {
		return nil
	}

	decoder, err := source.NewDecoder(cfg.Source.Columns, cfg.Source.NAValues)
	if err != nil {
		return err
	}
	f, err := os.Open(opts.ImportCSV)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	ds, err := decoder.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding import file: %w", err)
	}

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	table := cfg.Source.Table
	if table == "" {
		table = "cases"
	}
	_, err = db.InsertCases(ctx, table, ds.Records())
	return err
}
