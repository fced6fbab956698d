package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-editor/internal/config"
	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/store"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.EnvConfig
	configErr  error
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.EnvConfig, error) {
	c.configOnce.Do(func() {
		if c.configFlag != nil {
			if path := strings.TrimSpace(*c.configFlag); path != "" {
				os.Setenv(config.EnvConfigFile, path)
			}
		}
		cfg, err := config.New()
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
			c.configErr = fmt.Errorf("failed to create data dir: %w", err)
			return
		}
		c.config = cfg
		c.logger = logging.New(os.Stderr, cfg.LogLevel())
	})
	return c.config, c.configErr
}

// withStore opens the project database for the duration of fn.
func (c *commandContext) withStore(fn func(*store.SQLiteRepository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	database, err := db.New(cfg.DBPath(), c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	return fn(store.NewRepository(database.Conn(), c.logger))
}

// loadModel reads a stored project without opening an editing session.
func (c *commandContext) loadModel(projectID string) (*store.Project, *timeline.Model, error) {
	var (
		project *store.Project
		model   *timeline.Model
	)
	err := c.withStore(func(repo *store.SQLiteRepository) error {
		ctx := context.Background()
		p, err := repo.GetProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("project %s: %w", projectID, err)
		}
		if p == nil {
			return fmt.Errorf("project %s: %w", projectID, store.ErrProjectNotFound)
		}
		snap, err := repo.LoadProject(ctx, projectID)
		if err != nil {
			return err
		}
		m, err := timeline.FromSnapshot(snap)
		if err != nil {
			return fmt.Errorf("stored project %s is invalid: %w", projectID, err)
		}
		project, model = p, m
		return nil
	})
	return project, model, err
}

func (c *commandContext) projectID(flag string) string {
	if flag = strings.TrimSpace(flag); flag != "" {
		return flag
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.ProjectID()
	}
	return config.DefaultProjectID
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
