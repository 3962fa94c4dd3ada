package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cesargomez89/strume/internal/app"
	"github.com/cesargomez89/strume/internal/config"
	"github.com/cesargomez89/strume/internal/deps"
	httpapp "github.com/cesargomez89/strume/internal/http"
	"github.com/cesargomez89/strume/internal/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "strume: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	binaries := deps.CheckBinaries(deps.Requirements(cfg))
	for _, s := range binaries {
		if s.Available {
			continue
		}
		if s.Optional {
			appLogger.Warn("Optional dependency unavailable", "name", s.Name, "detail", s.Detail)
		} else {
			appLogger.Error("Required dependency unavailable", "name", s.Name, "detail", s.Detail)
		}
	}

	svc, err := app.NewServices(cfg, nil, appLogger)
	if err != nil {
		return err
	}

	if _, err := svc.Jobs.RecoverInterrupted(); err != nil {
		appLogger.Warn("Failed to recover interrupted jobs", "error", err)
	}
	if n, err := svc.DB.PruneCache(); err != nil {
		appLogger.Warn("Failed to prune lookup cache", "error", err)
	} else if n > 0 {
		appLogger.Info("Pruned lookup cache", "entries", n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go svc.Registry.Run(ctx)

	h := httpapp.NewHandler(httpapp.Options{
		Separations:    svc.Separations,
		Library:        svc.Files,
		Detector:       svc.Detector,
		Jobs:           svc.Jobs,
		Registry:       svc.Registry,
		Pool:           svc.Pool,
		Logger:         appLogger,
		PublicBaseURL:  cfg.PublicBaseURL,
		CORSOrigins:    cfg.CORSOrigins,
		Binaries:       binaries,
		PollInterval:   cfg.PollInterval(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapp.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr, "model", svc.Model.Name(), "workers", svc.Pool.Size())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			_ = svc.Close(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	if err := svc.Close(shutdownCtx); err != nil {
		appLogger.Error("Failed to stop cleanly", "error", err)
	}

	appLogger.Info("Server exiting")
	return nil
}
