// Package app wires configuration, storage, the inventory service and the
// web server together for the binaries in cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/partsbin/internal/config"
	"github.com/JonMunkholm/partsbin/internal/core"
	_ "github.com/JonMunkholm/partsbin/internal/core/vocab" // Register export vocabularies
	"github.com/JonMunkholm/partsbin/internal/storage"
	"github.com/JonMunkholm/partsbin/internal/web"
)

// App holds an open backend and the service built on it.
type App struct {
	Config  *config.Config
	Service *core.Service
	backend storage.Backend
	logger  *slog.Logger
}

// New opens the configured storage and loads the inventory.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	svc := core.NewService(ctx, backend, ServiceConfig(cfg), logger)
	logger.Info("inventory loaded",
		"driver", backend.Driver(),
		"records", len(svc.Records()),
		"vocabularies", len(core.Vocabularies()),
	)

	return &App{Config: cfg, Service: svc, backend: backend, logger: logger}, nil
}

// ServiceConfig derives the service settings from cfg.
func ServiceConfig(cfg *config.Config) core.ServiceConfig {
	return core.ServiceConfig{
		MaxImportBytes:       cfg.Import.MaxFileSize,
		ImportTimeout:        cfg.Import.Timeout,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWaitTime,
		ExportBaseName:       cfg.Export.BaseName,
	}
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.backend.Close()
}

// Serve runs the web server until ctx is cancelled, then drains active
// imports and shuts down within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	server := web.NewServer(a.Service, a.Config, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if status := a.Service.Limiter().Status(); status.Active > 0 {
		a.logger.Info("waiting for imports to complete", "active", status.Active)
		if err := a.Service.Limiter().WaitForDrain(shutdownCtx); err != nil {
			a.logger.Warn("imports did not complete in time", "error", err)
		} else {
			a.logger.Info("all imports completed")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
