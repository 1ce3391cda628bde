package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/udisondev/pathtracer/internal/config"
	"github.com/udisondev/pathtracer/internal/db"
	"github.com/udisondev/pathtracer/internal/telemetry"
	"github.com/udisondev/pathtracer/internal/tracer"
)

const ConfigPath = "config/pathtracer.yaml"

// app carries state shared by subcommands after PersistentPreRunE.
type app struct {
	cfg      config.Tracer
	database *db.DB
	cleanup  []func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd, a := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if cerr := a.close(context.WithoutCancel(ctx)); cerr != nil {
		slog.Warn("shutdown", "err", cerr)
	}
	if err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "pathtracer",
		Short:         "Shortest walkable paths on tile collision maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	rootCmd.AddCommand(newFindCmd(a), newBatchCmd(a), newServeCmd(a), newHistoryCmd(a))
	return rootCmd, a
}

func (a *app) setup(ctx context.Context) error {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("loading .env", "err", err)
	}

	cfgPath := ConfigPath
	if p := os.Getenv("PATHTRACER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Debug("config loaded", "path", cfgPath, "scene_dir", cfg.SceneDir, "workers", cfg.Workers)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		a.cleanup = append(a.cleanup, shutdown)
		slog.Info("telemetry enabled")
	}

	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return err
		}
		a.database = database
		a.cleanup = append(a.cleanup, func(context.Context) error {
			database.Close()
			return nil
		})

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("route history enabled", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	}
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, a.cleanup[i](ctx))
	}
	a.cleanup = nil
	return errors.Join(errs...)
}

// tracerOptions returns options shared by every command.
func (a *app) tracerOptions() []tracer.Option {
	opts := []tracer.Option{tracer.WithCacheSize(a.cfg.CacheSize)}
	if a.database != nil {
		opts = append(opts, tracer.WithRecorder(a.database.Routes()))
	}
	return opts
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
