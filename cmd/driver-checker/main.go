// The driver-checker command runs the Driver Checker backend: an HTTP
// API that forwards driver-licence lookups to the UPKI registry as
// mutually authenticated, WS-Security signed SOAP calls.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Lukasz5660/Driver-checker/internal/config"
	"github.com/Lukasz5660/Driver-checker/internal/server"
	"github.com/Lukasz5660/Driver-checker/internal/storage"
	"github.com/Lukasz5660/Driver-checker/internal/storage/mongodb"
)

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Value: "",
		Usage: "path to the YAML configuration file",
	},
	&cli.StringFlag{
		Name:  "listen",
		Value: "",
		Usage: "listen address, overrides the configuration file",
	},
	&cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	},
	&cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	},
}

func main() {
	app := &cli.App{
		Name:  "driver-checker",
		Usage: "driver-licence lookup backend for the UPKI registry",
		Flags: flags,
		Action: func(cCtx *cli.Context) error {
			return run(cCtx)
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cCtx *cli.Context) error {
	cfg := config.Default()
	if path := cCtx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if addr := cCtx.String("listen"); addr != "" {
		cfg.Server.Listen = addr
	}
	if cCtx.Bool("log-debug") {
		cfg.Logging.Level = "debug"
	}
	if cCtx.Bool("log-json") {
		cfg.Logging.JSON = true
	}

	logger := newLogger(&cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(cfg, nil, store, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	if cfg.Audit.MongoDB.URI == "" {
		logger.Info("lookup auditing disabled, no MongoDB URI configured")
		return storage.Noop{}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := mongodb.NewStore(connectCtx, &mongodb.Config{
		URI:        cfg.Audit.MongoDB.URI,
		Database:   cfg.Audit.MongoDB.Database,
		Collection: cfg.Audit.MongoDB.Collection,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("lookup auditing enabled", "database", cfg.Audit.MongoDB.Database)
	return store, nil
}
