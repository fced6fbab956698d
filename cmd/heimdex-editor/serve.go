package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-editor/internal/api"
	"github.com/heimdex/heimdex-editor/internal/cloud"
	"github.com/heimdex/heimdex-editor/internal/config"
	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/playback"
	"github.com/heimdex/heimdex-editor/internal/store"
	"github.com/heimdex/heimdex-editor/internal/suggest"
	"github.com/heimdex/heimdex-editor/internal/syncbridge"
	"github.com/heimdex/heimdex-editor/internal/ui"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Open the project and serve the editing API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, headless)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "Run without the system tray")
	return cmd
}

func runServe(parent context.Context, cfg config.Config, headless bool) error {
	startTime := time.Now()

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting heimdex editor",
		"version", Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
		"config_file", cfg.ConfigFile(),
	)

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another heimdex-editor instance is already running")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release editor lock", "error", err)
		}
	}()

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn(), logger)

	authToken, err := ensureAuthToken(parent, repo, cfg.AuthToken())
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                  HEIMDEX EDITOR v%-25s║\n", Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Project:    %-45s ║\n", cfg.ProjectID())
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	session := editor.New(repo, logger, editor.Options{
		UndoLimit:       cfg.UndoLimit(),
		PixelsPerSecond: cfg.PixelsPerSecond(),
		SnapEnabled:     cfg.SnapEnabled(),
		Sync: syncbridge.Options{
			QueueSize: cfg.SyncQueueSize(),
			Timeout:   cfg.SyncTimeout(),
		},
		Remote: remoteFactory(cfg, logger),
	})
	if err := session.Open(ctx, cfg.ProjectID(), ""); err != nil {
		return fmt.Errorf("failed to open project: %w", err)
	}

	suggestions := suggest.NewFileSource(cfg.SuggestionsPath(), logger)
	if err := suggestions.Load(); err != nil {
		logger.Warn("failed to load suggestions", "path", cfg.SuggestionsPath(), "error", err)
	}
	go func() {
		if err := suggestions.Watch(ctx); err != nil {
			logger.Warn("suggestions watcher stopped", "error", err)
		}
	}()

	apiServer := api.NewServer(api.ServerConfig{
		Port:        cfg.Port(),
		Session:     session,
		Repository:  repo,
		Media:       playback.NewServer(cfg.MediaDir(), logger),
		Suggestions: suggestions,
		Logger:      logger,
		StartTime:   startTime,
		Version:     Version,
		FrameRate:   float64(cfg.FrameRate()),
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	var tray *ui.Tray
	if headless {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			Editor:      session,
			Suggestions: suggestions,
			Logger:      logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	if err := session.Close(shutdownCtx); err != nil {
		logger.Error("failed to flush project", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// remoteFactory mirrors edits to the cloud project API when it is configured
// and to a logging stub otherwise.
func remoteFactory(cfg config.Config, logger *slog.Logger) editor.RemoteFactory {
	if cfg.CloudURL() == "" || cfg.CloudToken() == "" {
		return func(projectID string) syncbridge.Persister {
			return cloud.NewStubClient(projectID, logger)
		}
	}
	logger.Info("cloud sync enabled", "base_url", cfg.CloudURL())
	sessionID := uuid.NewString()
	return func(projectID string) syncbridge.Persister {
		client := cloud.NewHTTPClient(cfg.CloudURL(), cfg.CloudToken(), projectID, logger)
		client.SetSessionID(sessionID)
		return client
	}
}

// ensureAuthToken stores the configured token, or keeps the stored one, or
// generates a new one on first run.
func ensureAuthToken(ctx context.Context, repo store.Repository, configured string) (string, error) {
	if configured != "" {
		return configured, repo.SetConfig(ctx, api.AuthTokenKey, configured)
	}

	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	token := uuid.NewString()
	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}
	return token, nil
}
