// Package database opens the libSQL file that backs the document store.
package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/go-libsql"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// pragmas run on every new connection. busy_timeout comes first so the
// others wait for a lock held by another handle instead of failing.
var pragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA journal_mode=WAL",
}

// Open connects to the libSQL database at path, creating its directory when
// needed. File databases run in WAL mode with a 5 s busy timeout so the API
// server and the c2c tool can share one file.
//
// Every connection to Memory gets its own empty database, so in-memory
// databases are limited to a single connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	base, err := openConnector("file:" + path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db := sql.OpenDB(connector{base: base})
	if path == Memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database %s: %w", path, err)
	}
	return db, nil
}

// openConnector asks the registered libsql driver for a connector of dsn.
func openConnector(dsn string) (driver.Connector, error) {
	tmp, err := sql.Open("libsql", Memory)
	if err != nil {
		return nil, err
	}
	drv := tmp.Driver()
	tmp.Close()

	dc, ok := drv.(driver.DriverContext)
	if !ok {
		return nil, errors.New("libsql driver does not provide connectors")
	}
	return dc.OpenConnector(dsn)
}

// connector applies pragmas to each connection the pool opens.
type connector struct {
	base driver.Connector
}

func (c connector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.base.Connect(ctx)
	if err != nil {
		return nil, err
	}
	q, ok := conn.(driver.QueryerContext)
	if !ok {
		conn.Close()
		return nil, errors.New("libsql connection does not support queries")
	}

	// PRAGMAs go through QueryContext: libSQL rejects Exec for the ones that
	// return a row.
	for _, p := range pragmas {
		rows, err := q.QueryContext(ctx, p, nil)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}
	return conn, nil
}

func (c connector) Driver() driver.Driver { return c.base.Driver() }

// Close releases the native database handle when the pool closes.
func (c connector) Close() error {
	if cl, ok := c.base.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
