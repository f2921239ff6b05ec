package main

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestCollectMigrations_OnDiskSetParses(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	// this file lives in cmd/migrate/, so repo root is ../..
	dir := filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")

	collected, err := goose.CollectMigrations(filepath.Clean(dir), 0, goose.MaxVersion)
	require.NoError(t, err)
	require.NotEmpty(t, collected)
	require.Equal(t, int64(1), collected[0].Version)
}
