// Package store persists tournaments and handicap snapshots as documents.
package store

import (
	"context"
	"errors"

	"github.com/MichaelKoga/C2C/internal/league"
)

var ErrNotFound = errors.New("not found")

// Default paging used when a caller passes a non-positive page or limit.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Store is the data-access layer behind the API, the CLI and the handicap job.
type Store interface {
	GetTournament(ctx context.Context, id string) (league.Tournament, error)
	// ListTournaments returns every tournament's summary, newest end date first.
	ListTournaments(ctx context.Context) ([]league.TournamentSummary, error)
	PageTournaments(ctx context.Context, page, limit int) (league.Page, error)
	AllTournaments(ctx context.Context) ([]league.Tournament, error)
	// PutTournament inserts t or replaces the tournament with the same name,
	// keeping its ID. It returns the stored record.
	PutTournament(ctx context.Context, t league.Tournament) (league.Tournament, error)

	// HandicapSnapshotAt returns the latest snapshot effective on or before d.
	HandicapSnapshotAt(ctx context.Context, d league.Date) (league.HandicapSnapshot, error)
	PutHandicapSnapshot(ctx context.Context, s league.HandicapSnapshot) error

	Ping(ctx context.Context) error
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}
