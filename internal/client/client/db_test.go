package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func TestInitDatabase_CreatesCacheTables(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "supplies-storage.db")

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		t.Fatalf("InitDatabase error: %v", err)
	}
	defer db.Close()

	for _, name := range []string{"goose_db_version", "metadata", "supplies"} {
		if !tableExists(t, db, name) {
			t.Fatalf("expected table %s after migrations", name)
		}
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "supplies-storage.db")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations (first) error: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations (second) should be idempotent, got error: %v", err)
	}
}

func TestInitDatabase_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "supplies-storage.db")

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		t.Fatalf("InitDatabase error: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO supplies(position, product_code) VALUES (0, 'A-1')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	_ = db.Close()

	db, err = InitDatabase(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close()

	var code string
	if err := db.QueryRowContext(ctx, `SELECT product_code FROM supplies`).Scan(&code); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if code != "A-1" {
		t.Fatalf("unexpected code %q", code)
	}
}
