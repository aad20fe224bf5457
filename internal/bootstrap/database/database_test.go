package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"section3/internal/bootstrap/config"
	"section3/internal/errs"
)

func TestOpenCreatesSQLiteDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	dsn := filepath.Join(dir, "section3.sqlite")

	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("sqlite directory not created: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	if !errs.Is(err, errs.KindConfiguration) {
		t.Fatalf("Open() error = %v, want configuration kind", err)
	}
}
