package store

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/MichaelKoga/C2C/internal/database"
	"github.com/MichaelKoga/C2C/internal/migrations"
)

const (
	BackendLibSQL    = "libsql"
	BackendFirestore = "firestore"
)

// OpenConfig selects and locates a backend.
type OpenConfig struct {
	Backend string

	// DBPath is the libSQL database file.
	DBPath string

	ProjectID       string
	DatabaseID      string
	CredentialsFile string
}

// Open connects to the configured backend. For libSQL it also applies pending
// migrations. The returned func releases the connection.
func Open(ctx context.Context, cfg OpenConfig) (Store, func() error, error) {
	switch cfg.Backend {
	case BackendLibSQL, "":
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Run(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewDocStore(db), db.Close, nil

	case BackendFirestore:
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		fs, err := OpenFirestore(ctx, cfg.ProjectID, cfg.DatabaseID, opts...)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
