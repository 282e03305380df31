package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/partsbin/internal/config"
	"github.com/JonMunkholm/partsbin/internal/core"
	"github.com/JonMunkholm/partsbin/internal/logging"
)

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			RequestTimeout:  time.Second,
			ShutdownTimeout: time.Second,
		},
		Storage: config.StorageConfig{Driver: "file", Path: filepath.Join(t.TempDir(), "inventory.json")},
		Import:  config.ImportConfig{MaxFileSize: 1 << 20, MaxConcurrent: 1, MaxWaitTime: time.Second, Timeout: time.Second},
		Export:  config.ExportConfig{BaseName: "test", Vocabulary: core.CanonicalVocabulary},
	}
}

func TestNew_StartsFromSampleAndPersists(t *testing.T) {
	cfg := fileConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	assert.Len(t, a.Service.Records(), 4)

	require.NoError(t, a.Service.Clear(ctx))
	require.NoError(t, a.Close())

	again, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer again.Close()
	assert.Empty(t, again.Service.Records())
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Storage.Driver = "etcd"

	_, err := New(context.Background(), cfg, logging.Discard())
	assert.ErrorContains(t, err, "open storage")
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := fileConfig(t)
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := fileConfig(t)
	sc := ServiceConfig(cfg)
	assert.Equal(t, int64(1<<20), sc.MaxImportBytes)
	assert.Equal(t, 1, sc.MaxConcurrentImports)
	assert.Equal(t, "test", sc.ExportBaseName)
}
