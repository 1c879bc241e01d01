package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/colsplit/internal/config"
	"github.com/JonMunkholm/colsplit/internal/core"
	"github.com/JonMunkholm/colsplit/internal/export"
	"github.com/JonMunkholm/colsplit/internal/logging"
	"github.com/JonMunkholm/colsplit/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []web.Option

	if cfg.Export.PostgresEnabled() {
		pool, err := openPool(ctx, cfg.Export)
		if err != nil {
			return err
		}
		defer pool.Close()
		opts = append(opts, web.WithSink("postgres", export.PostgresSink{DB: pool}))
	}

	if cfg.Export.SQLitePath != "" {
		sink, err := export.OpenSQLite(cfg.Export.SQLitePath)
		if err != nil {
			return err
		}
		defer sink.Close()
		slog.Info("sqlite export enabled", "path", cfg.Export.SQLitePath)
		opts = append(opts, web.WithSink("sqlite", sink))
	}

	limiter := core.NewParseLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	service := core.NewService(core.OptionsFromConfig(cfg), limiter)
	server := web.NewServer(service, cfg, opts...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		service.StartSweeper(gctx, cfg.Session.SweepInterval)
		return nil
	})

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if n := limiter.Active(); n > 0 {
			slog.Info("waiting for uploads to finish parsing", "active", n)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not finish in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openPool(ctx context.Context, cfg config.ExportConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("postgres export enabled", "host", poolConfig.ConnConfig.Host, "database", poolConfig.ConnConfig.Database)
	return pool, nil
}
