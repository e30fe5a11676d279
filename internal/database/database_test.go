package database_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/MichaelKoga/C2C/internal/database"
)

func TestOpenMemoryKeepsState(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO kv (k, v) VALUES ('a', 'b')`); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	var v string
	if err := db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = 'a'`).Scan(&v); err != nil {
		t.Fatalf("selecting: %v", err)
	}
	if v != "b" {
		t.Errorf("v = %q, want %q", v, "b")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "c2c.db")

	db, err := database.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("database directory: %v", err)
	}

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("reading journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestReopenFileRepeatedly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "c2c.db")

	for i := range 20 {
		db, err := database.Open(ctx, path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (n INTEGER)`); err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO runs (n) VALUES (?)`, i); err != nil {
			t.Fatalf("insert #%d: %v", i, err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
	}

	db, err := database.Open(ctx, path)
	if err != nil {
		t.Fatalf("final open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		t.Fatalf("counting: %v", err)
	}
	if n != 20 {
		t.Errorf("rows = %d, want 20", n)
	}
}

func TestOpenWhileAnotherHandleIsOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "c2c.db")

	first, err := database.Open(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	defer first.Close()
	if _, err := first.ExecContext(ctx, `CREATE TABLE kv (k TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := range 10 {
		second, err := database.Open(ctx, path)
		if err != nil {
			t.Fatalf("second open #%d: %v", i, err)
		}
		if _, err := second.ExecContext(ctx, `INSERT INTO kv (k) VALUES (?)`, fmt.Sprint(i)); err != nil {
			t.Fatalf("insert #%d: %v", i, err)
		}
		second.Close()
	}
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "c2c.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	// Hold several connections at once so the pool has to open new ones.
	var conns []*sql.Conn
	for range 4 {
		c, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("conn: %v", err)
		}
		conns = append(conns, c)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	for i, c := range conns {
		var timeout, fk int
		if err := c.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if err := c.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk); err != nil {
			t.Fatalf("conn %d foreign_keys: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d busy_timeout = %d, want 5000", i, timeout)
		}
		if fk != 1 {
			t.Errorf("conn %d foreign_keys = %d, want 1", i, fk)
		}
	}
}
