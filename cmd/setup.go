package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/lfx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("%s %s\n", r.palette.OK("✓ Config written to"), configPath)
	r.writePlain("%s\n", r.palette.Help(fmt.Sprintf("Set lastfm.api_key or export %s before importing.", shared.APIKeyEnv)))
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.setupConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)

	if _, err := r.openCatalog(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	version, err := shared.CurrentVersion(r.db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s %s (schema version %d)\n", r.palette.OK("✓ Database ready:"), config.Database.Path, version)
	return nil
}

// SetupRollback rolls back the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config, err := r.setupConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	r.config = config

	if r.db == nil {
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db
		r.ownsDB = true
	}

	version, err := shared.RollbackMigration(r.db)
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	r.catalog, r.engine = nil, nil

	r.logger.Info("rolled back migration", "version", version)
	r.writePlain("%s %d\n", r.palette.Warn("Rolled back migration"), version)
	return nil
}

// setupConfig loads configPath, creating it from the template when it does not exist.
// Environment overrides are applied to the result.
func (r *Runner) setupConfig(configPath string) (*shared.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using current config", "error", err)
			return r.config, nil
		}
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	config.ApplyEnv()
	return config, nil
}
