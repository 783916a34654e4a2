package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fitstreak/config"
	"github.com/fitstreak/streak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", browserURL("0.0.0.0", 8080))
	assert.Equal(t, "http://localhost:8080", browserURL("", 8080))
	assert.Equal(t, "http://localhost:9000", browserURL("::", 9000))
	assert.Equal(t, "http://127.0.0.1:8080", browserURL("127.0.0.1", 8080))
	assert.Equal(t, "http://dashboard.local:80", browserURL("dashboard.local", 80))
}

func TestNewStreakStore(t *testing.T) {
	cfg := &config.Config{Store: config.StoreMemory}
	store, closeStore, err := newStreakStore(testContext(t), cfg)
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &streak.MemoryStore{}, store)

	cfg = &config.Config{Store: config.StoreFile, StreakFile: filepath.Join(t.TempDir(), "streak.json")}
	store, closeStore, err = newStreakStore(testContext(t), cfg)
	require.NoError(t, err)
	defer closeStore()
	require.IsType(t, &streak.FileStore{}, store)
	assert.Equal(t, cfg.StreakFile, store.(*streak.FileStore).Path())

	_, _, err = newStreakStore(testContext(t), &config.Config{Store: "sqlite"})
	assert.EqualError(t, err, "unknown store: sqlite")
}

// testContext stands in for testing.T.Context (Go 1.24+): the context is
// cancelled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
