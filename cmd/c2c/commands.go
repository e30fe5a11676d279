package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MichaelKoga/C2C/internal/database"
	"github.com/MichaelKoga/C2C/internal/export"
	"github.com/MichaelKoga/C2C/internal/handicap"
	"github.com/MichaelKoga/C2C/internal/ingest"
	"github.com/MichaelKoga/C2C/internal/league"
	"github.com/MichaelKoga/C2C/internal/migrations"
	"github.com/MichaelKoga/C2C/internal/standings"
	"github.com/MichaelKoga/C2C/internal/store"
)

var now = time.Now

func migrateCommand(e *env) *cli.Command {
	withDB := func(fn func(c *cli.Context, db *sql.DB) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			if e.cfg.StoreBackend != store.BackendLibSQL {
				return fmt.Errorf("migrations apply to the %s backend only", store.BackendLibSQL)
			}
			db, err := database.Open(c.Context, e.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(c, db)
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the libSQL schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: withDB(func(c *cli.Context, db *sql.DB) error {
					if err := migrations.Run(db); err != nil {
						return err
					}
					v, err := migrations.Version(db)
					if err != nil {
						return err
					}
					fmt.Fprintf(e.stdout, "schema at version %d\n", v)
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "roll back the latest migration",
				Action: withDB(func(c *cli.Context, db *sql.DB) error {
					return migrations.Down(db)
				}),
			},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Action: withDB(func(c *cli.Context, db *sql.DB) error {
					v, err := migrations.Version(db)
					if err != nil {
						return err
					}
					fmt.Fprintln(e.stdout, v)
					return nil
				}),
			},
		},
	}
}

func importCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import tournaments from JSON, YAML or saved leaderboard HTML",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Value: string(ingest.StatusOpen), Usage: "list the HTML pages were saved from: open or closed"},
			&cli.StringFlag{Name: "title", Usage: "card title, overriding the page header (HTML only)"},
			&cli.StringFlag{Name: "holes", Usage: "holes label such as \"Front 9\" (HTML only)"},
			&cli.StringFlag{Name: "end-date", Usage: "card end date, YYYY-MM-DD (HTML only)"},
			&cli.BoolFlag{Name: "dry-run", Usage: "parse and print without saving"},
		},
		Action: func(c *cli.Context) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return errors.New("no files given")
			}
			status, err := ingest.ParseStatus(c.String("status"))
			if err != nil {
				return err
			}

			var (
				docs  []league.Tournament
				cards []ingest.Card
			)
			for _, path := range paths {
				switch strings.ToLower(filepath.Ext(path)) {
				case ".html", ".htm":
					card, err := readCard(path, status)
					if err != nil {
						return err
					}
					if err := overrideCard(c, &card); err != nil {
						return err
					}
					cards = append(cards, card)
				case ".json", ".yaml", ".yml":
					ts, err := readDocuments(path)
					if err != nil {
						return err
					}
					docs = append(docs, ts...)
				default:
					return fmt.Errorf("%s: unsupported file type", path)
				}
			}

			merged, err := ingest.Merge(cards)
			if err != nil {
				e.logger.Warn("some leaderboard cards were skipped", "error", err)
			}
			docs = append(docs, merged...)

			if c.Bool("dry-run") {
				for _, t := range docs {
					fmt.Fprintf(e.stdout, "%s\t%s\t%s\t%d players\n", t.Name, t.Format, t.EndDate, len(t.Players))
				}
				return nil
			}

			st, closeStore, err := e.openStore(c.Context)
			if err != nil {
				return err
			}
			defer closeStore()

			existing := map[string]league.TournamentSummary{}
			if status == ingest.StatusClosed && len(cards) > 0 {
				list, err := st.ListTournaments(c.Context)
				if err != nil {
					return err
				}
				for _, s := range list {
					existing[s.Name] = s
				}
			}

			for _, t := range docs {
				// A closed Stonehenge page reports when it was archived, not when
				// play ended. Keep the end date from the original import.
				if prev, ok := existing[t.Name]; ok && t.Format == league.FormatStonehenge {
					t.EndDate = prev.EndDate
				}
				saved, err := st.PutTournament(c.Context, t)
				if err != nil {
					return err
				}
				e.logger.Info("tournament imported",
					"id", saved.ID,
					"name", saved.Name,
					"format", string(saved.Format),
					"players", len(saved.Players),
				)
				fmt.Fprintf(e.stdout, "%s\t%s\n", saved.ID, saved.Name)
			}
			return nil
		},
	}
}

func readCard(path string, status ingest.Status) (ingest.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.Card{}, err
	}
	defer f.Close()

	card, err := ingest.ParseCard(f, status)
	if err != nil {
		return card, fmt.Errorf("%s: %w", path, err)
	}
	return card, nil
}

func overrideCard(c *cli.Context, card *ingest.Card) error {
	if v := c.String("title"); v != "" {
		card.Title = v
	}
	if v := c.String("holes"); v != "" {
		card.Holes = v
	}
	if v := c.String("end-date"); v != "" {
		d, err := league.ParseDate(v)
		if err != nil {
			return fmt.Errorf("--end-date: %w", err)
		}
		card.EndDate = d
	}
	return nil
}

func handicapsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "handicaps",
		Usage: "recompute and store weekly handicap snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Value: handicap.SeriesStart.String(), Usage: "first snapshot date"},
			&cli.StringFlag{Name: "to", Usage: "last date to cover, default today"},
		},
		Action: func(c *cli.Context) error {
			from, err := league.ParseDate(c.String("from"))
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			to := league.NewDate(now())
			if v := c.String("to"); v != "" {
				if to, err = league.ParseDate(v); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			st, closeStore, err := e.openStore(c.Context)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := handicap.NewCalculator().Rebuild(c.Context, st, from, to, e.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "saved %d snapshots\n", n)
			return nil
		},
	}
}

func listCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list tournaments, newest first",
		Action: func(c *cli.Context) error {
			st, closeStore, err := e.openStore(c.Context)
			if err != nil {
				return err
			}
			defer closeStore()

			list, err := st.ListTournaments(c.Context)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFORMAT\tENDS")
			for _, t := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Format, t.EndDate)
			}
			return tw.Flush()
		},
	}
}

func standingsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "standings",
		Usage:     "print or export a tournament's standings",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "segment", Usage: "Stonehenge display segment: F9, B9, F18 or Total"},
			&cli.BoolFlag{Name: "handicap", Usage: "apply handicaps"},
			&cli.StringFlag{Name: "xlsx", Usage: "write the table to this Excel file instead of printing"},
		},
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return errors.New("tournament ID is required")
			}

			st, closeStore, err := e.openStore(c.Context)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := standings.NewService(st, nil, nil, e.logger, standings.Options{
				HandicapSince: e.cfg.HandicapSinceDate(),
				Filter:        e.cfg.Filter(),
			})
			table, err := svc.Standings(c.Context, id, standings.Query{
				Segment:  c.String("segment"),
				Handicap: c.Bool("handicap"),
			})
			if err != nil {
				return err
			}

			if path := c.String("xlsx"); path != "" {
				return writeXLSX(path, table)
			}
			return printTable(e, table)
		},
	}
}

func writeXLSX(path string, table standings.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printTable(e *env, table standings.Table) error {
	mode := "scratch"
	if table.Handicap {
		mode = "handicap"
	}
	fmt.Fprintf(e.stdout, "%s (%s, %s, %s)\n", table.Tournament.Name, table.Tournament.Format, table.Segment, mode)

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "RANK\tPLAYER\tF9\tB9\tF18\tTOTAL\tSCORE\t")
	for _, r := range table.Rows {
		rank := ""
		if r.Rank != nil {
			rank = strconv.Itoa(*r.Rank)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t\n", rank, r.Name, r.F9Total, r.B9Total, r.F18Total, r.Total, r.Score)
	}
	return tw.Flush()
}
