// Package standings serves ranked standings tables for stored tournaments.
package standings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MichaelKoga/C2C/internal/cache"
	"github.com/MichaelKoga/C2C/internal/league"
	"github.com/MichaelKoga/C2C/internal/scoring"
	"github.com/MichaelKoga/C2C/internal/store"
)

// Store is the part of store.Store the service reads from.
type Store interface {
	GetTournament(ctx context.Context, id string) (league.Tournament, error)
	HandicapSnapshotAt(ctx context.Context, d league.Date) (league.HandicapSnapshot, error)
}

type Query struct {
	Segment  string
	Handicap bool
}

// Table is a computed standings table plus what the caller needs to render
// its controls.
type Table struct {
	Tournament league.TournamentSummary `json:"tournament"`
	Segment    scoring.Segment          `json:"segment"`

	// Handicap reports whether the rows are handicap-adjusted.
	Handicap bool `json:"handicap"`

	// HandicapAvailable is false when the tournament predates handicaps or
	// no snapshot exists for it; the handicap toggle should be disabled.
	HandicapAvailable bool   `json:"handicapAvailable"`
	SnapshotDate      string `json:"snapshotDate,omitempty"`

	Rows []scoring.Row `json:"rows"`
}

type Options struct {
	// HandicapSince is the earliest end date that offers adjusted standings.
	HandicapSince league.Date
	Filter        scoring.Filter
}

type Service struct {
	store   Store
	cache   cache.Cache
	metrics *Metrics
	logger  *slog.Logger
	opts    Options
}

// NewService wires the service. c and m may be nil.
func NewService(st Store, c cache.Cache, m *Metrics, logger *slog.Logger, opts Options) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if m == nil {
		m = NewMetrics(prometheus.NewRegistry())
	}
	return &Service{store: st, cache: c, metrics: m, logger: logger, opts: opts}
}

// ResolveSegment picks the segment a table is ranked by. Tour tournaments
// always rank by total; Stonehenge falls back to the front nine.
func ResolveSegment(f league.Format, raw string) scoring.Segment {
	if f != league.FormatStonehenge {
		return scoring.SegmentTotal
	}
	seg, ok := scoring.ParseSegment(raw)
	if !ok {
		return scoring.SegmentF9
	}
	return seg
}

// Standings loads tournament id and computes its table. It returns
// store.ErrNotFound for unknown tournaments.
func (s *Service) Standings(ctx context.Context, id string, q Query) (Table, error) {
	t, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return Table{}, fmt.Errorf("loading tournament %s: %w", id, err)
	}
	return s.Compute(ctx, &t, q)
}

// Compute builds the table for an already loaded tournament.
func (s *Service) Compute(ctx context.Context, t *league.Tournament, q Query) (Table, error) {
	table := Table{
		Tournament: t.Summary(),
		Segment:    ResolveSegment(t.Format, q.Segment),
		Rows:       []scoring.Row{},
	}

	snap, err := s.snapshot(ctx, t)
	if err != nil {
		return table, err
	}
	table.HandicapAvailable = snap != nil
	table.Handicap = q.Handicap && snap != nil
	if snap != nil {
		table.SnapshotDate = snap.EffectiveDate.String()
	}

	key := s.key(t, snap, table)
	if key != "" {
		var cached Table
		ok, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			s.metrics.cache.WithLabelValues("error").Inc()
			s.logger.Warn("standings cache read failed", "key", key, "error", err)
		case ok:
			s.metrics.cache.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			s.metrics.cache.WithLabelValues("miss").Inc()
		}
	}

	for _, m := range scoring.MalformedSegments(t) {
		s.logger.Debug("malformed segment scored as not entered",
			"tournament_id", t.ID,
			"player", m.Player,
			"segment", string(m.Segment),
		)
	}

	start := time.Now()
	rows, err := scoring.ComputeStandings(t, snap, scoring.Options{
		Segment:  table.Segment,
		Handicap: table.Handicap,
		Filter:   s.opts.Filter,
	})
	s.metrics.duration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, scoring.ErrUnsupportedFormat):
		s.metrics.unsupported.Inc()
		s.logger.Warn("tournament format cannot be scored",
			"tournament_id", t.ID,
			"format", string(t.Format),
		)
		return table, nil
	case err != nil:
		return table, fmt.Errorf("computing standings: %w", err)
	}

	table.Rows = rows
	s.metrics.computed.WithLabelValues(string(t.Format), mode(table.Handicap)).Inc()

	if key != "" {
		if err := s.cache.Set(ctx, key, table); err != nil {
			s.logger.Warn("standings cache write failed", "key", key, "error", err)
		}
	}
	return table, nil
}

// snapshot returns the handicap snapshot that applies to t, or nil when
// handicaps are not offered for it.
func (s *Service) snapshot(ctx context.Context, t *league.Tournament) (*league.HandicapSnapshot, error) {
	if t.EndDate.IsZero() || t.EndDate.Before(s.opts.HandicapSince) {
		return nil, nil
	}
	snap, err := s.store.HandicapSnapshotAt(ctx, t.EndDate)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading handicap snapshot: %w", err)
	}
	return &snap, nil
}

// key identifies a table by every input that changes its rows, including the
// snapshot's write time so a rebuilt snapshot misses the cache.
func (s *Service) key(t *league.Tournament, snap *league.HandicapSnapshot, table Table) string {
	if t.ID == "" {
		return ""
	}
	var snapVersion string
	if snap != nil {
		snapVersion = snap.EffectiveDate.String() + "@" + snap.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return cache.Key("standings",
		t.ID,
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		snapVersion,
		string(table.Segment),
		mode(table.Handicap),
		string(s.opts.Filter),
	)
}

func mode(handicap bool) string {
	if handicap {
		return "handicap"
	}
	return "scratch"
}
