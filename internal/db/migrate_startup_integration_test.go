package db_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dbfs "github.com/garnizeh/empanel/db"
	"github.com/garnizeh/empanel/internal/config"
	"github.com/garnizeh/empanel/internal/db"
)

// TestMigrateOnStart_TempWorkdir walks the same path main takes at startup:
// load config, open the database file, run the embedded migrations. All files
// stay inside a temporary working directory.
func TestMigrateOnStart_TempWorkdir(t *testing.T) {
	ctx := context.Background()

	tmpDir, err := os.MkdirTemp("", "empanel-startup-test-")
	if err != nil {
		t.Fatalf("failed to create tmp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	cfgY := "addr: \":0\"\n" +
		"database_path: '" + dbPath + "'\n" +
		"uploads:\n  dir: '" + filepath.Join(tmpDir, "uploads") + "'\n"

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfgY), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// allow insecure default JWTSecret for this test
	prevEnv := os.Getenv("EMPANEL_ENV")
	_ = os.Setenv("EMPANEL_ENV", "development")
	defer func() {
		_ = os.Setenv("EMPANEL_ENV", prevEnv)
	}()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, cfg.APITimeout)
	defer dbCancel()

	d, err := db.New(dbCtx, cfg.DatabasePath, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(dbCtx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	// verify schema_migrations has at least one entry
	var count int
	row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count == 0 {
		t.Fatalf("expected migrations recorded, got 0")
	}
}
