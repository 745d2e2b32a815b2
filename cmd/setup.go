package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/flow/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set vk.client_id to the id of your VK standalone app\n")
	r.writePlain("2. Run 'flow setup database'\n")
	r.writePlain("3. Run 'flow auth login'\n")
	return nil
}

// setupConfig returns the configuration at path, writing the example file first when it is missing.
// Any failure falls back to the runner's configuration.
func (r *Runner) setupConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "path", path, "error", err)
			return r.config
		}
		r.logger.Info("config file created from template", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		return r.config
	}
	return config
}

// SetupDatabase creates the database named by --config and applies pending migrations.
// With --rollback it reverts the most recent migration instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.setupConfig(cmd.String("config"))
	path := config.Database.Path

	r.logger.Info("initializing database", "path", path)
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to prepare database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back: %w", err)
		}
		r.logger.Warn("rolled back latest migration", "path", path)
	}

	applied, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}

	r.logger.Debug("migrations applied", "count", len(applied))
	return r.writePlain("✓ Database ready at %s (%d migrations applied)\n", path, len(applied))
}
