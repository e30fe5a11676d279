// Command c2c is the league operator's tool: it migrates the database,
// imports leaderboards, rebuilds weekly handicaps and prints standings.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/MichaelKoga/C2C/internal/config"
	"github.com/MichaelKoga/C2C/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command needs: configuration, a logger and the store.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
}

func newApp(stdout, stderr io.Writer) *cli.App {
	e := &env{stdout: stdout}

	return &cli.App{
		Name:      "c2c",
		Usage:     "manage C2C league leaderboards and handicaps",
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			e.cfg = cfg
			e.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
			return nil
		},
		Commands: []*cli.Command{
			migrateCommand(e),
			importCommand(e),
			handicapsCommand(e),
			listCommand(e),
			standingsCommand(e),
		},
	}
}

func (e *env) openStore(ctx context.Context) (store.Store, func() error, error) {
	st, closeFn, err := store.Open(ctx, e.cfg.Store())
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", e.cfg.StoreBackend, err)
	}
	return st, closeFn, nil
}
