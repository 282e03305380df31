// Package storage provides the persistence backends for the inventory.
//
// Every backend mirrors the whole record set: Save replaces what was stored
// before and Load returns it in the saved order. Load returns
// core.ErrStateNotFound when nothing has been saved yet.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/partsbin/internal/config"
	"github.com/JonMunkholm/partsbin/internal/core"
	"github.com/JonMunkholm/partsbin/internal/metrics"
)

// Driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Backend is a core.Persistence that owns resources.
type Backend interface {
	core.Persistence
	Driver() string
	Close() error
}

// Open creates the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		b   Backend
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case DriverFile, "":
		b, err = NewFileStore(cfg.Path)
	case DriverSQLite:
		b, err = OpenSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		b, err = OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("storage opened", "driver", b.Driver())
	return instrumented{Backend: b}, nil
}

// instrumented records save latency and failures per driver.
type instrumented struct {
	Backend
}

func (i instrumented) Save(ctx context.Context, records []core.Record) error {
	start := time.Now()
	err := i.Backend.Save(ctx, records)
	metrics.RecordSave(i.Driver(), time.Since(start), err)
	return err
}
