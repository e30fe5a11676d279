// Package handicap computes the weekly handicap snapshots the standings use
// for adjusted scoring.
package handicap

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/MichaelKoga/C2C/internal/league"
)

const (
	// Baseline is the 18-hole score treated as a zero handicap.
	Baseline = 66
	// MaxRounds caps how many recent rounds feed a player's average.
	MaxRounds = 20
)

var (
	// SeriesStart is the first week a snapshot exists for.
	SeriesStart = league.MustDate("2025-06-29")
	// StonehengeCutoff is the first snapshot date that ignores Stonehenge rounds.
	StonehengeCutoff = league.MustDate("2025-12-31")
)

type Calculator struct {
	Baseline         int
	MaxRounds        int
	StonehengeCutoff league.Date
}

func NewCalculator() Calculator {
	return Calculator{
		Baseline:         Baseline,
		MaxRounds:        MaxRounds,
		StonehengeCutoff: StonehengeCutoff,
	}
}

type round struct {
	score int
	date  league.Date
}

// Snapshot computes every player's average handicap over tournaments that
// ended on or before asOf. Entries are sorted by player name.
func (c Calculator) Snapshot(ts []league.Tournament, asOf league.Date) league.HandicapSnapshot {
	rounds := c.collect(ts, asOf)

	snap := league.HandicapSnapshot{EffectiveDate: asOf, Entries: []league.HandicapEntry{}}
	for name, rs := range rounds {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].date.After(rs[j].date) })
		if len(rs) > c.MaxRounds {
			rs = rs[:c.MaxRounds]
		}

		var diff int
		for _, r := range rs {
			diff += r.score - c.Baseline
		}
		avg := float64(diff) / float64(len(rs))
		snap.Entries = append(snap.Entries, league.HandicapEntry{
			Name:        name,
			AvgHandicap: math.RoundToEven(avg*100) / 100,
		})
	}

	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Name < snap.Entries[j].Name
	})
	return snap
}

func (c Calculator) collect(ts []league.Tournament, asOf league.Date) map[string][]round {
	rounds := make(map[string][]round)
	for _, t := range ts {
		if t.EndDate.IsZero() || t.EndDate.After(asOf) || !c.counts(t.Format, asOf) {
			continue
		}
		for _, p := range t.Players {
			if p.Name == "" {
				continue
			}
			for _, seg := range []struct {
				scores league.Scores
				factor int
			}{
				{p.F9, 2},
				{p.B9, 2},
				{p.F18, 1},
			} {
				for _, v := range values(seg.scores) {
					if n, ok := v.Int(); ok {
						rounds[p.Name] = append(rounds[p.Name], round{score: n * seg.factor, date: t.EndDate})
					}
				}
			}
		}
	}
	return rounds
}

func (c Calculator) counts(f league.Format, asOf league.Date) bool {
	switch f {
	case league.FormatShootout:
		return false
	case league.FormatStonehenge:
		return asOf.Before(c.StonehengeCutoff)
	}
	return true
}

func values(s league.Scores) []league.ScoreValue {
	if s.IsList() {
		return s.List()
	}
	v, _ := s.Scalar()
	return []league.ScoreValue{v}
}

// Weekly returns one snapshot per week from from through to, inclusive.
func (c Calculator) Weekly(ts []league.Tournament, from, to league.Date) []league.HandicapSnapshot {
	var out []league.HandicapSnapshot
	for d := from; !d.After(to); d = d.AddDays(7) {
		out = append(out, c.Snapshot(ts, d))
	}
	return out
}

// Store is the storage the weekly rebuild reads from and writes to.
type Store interface {
	AllTournaments(ctx context.Context) ([]league.Tournament, error)
	PutHandicapSnapshot(ctx context.Context, s league.HandicapSnapshot) error
}

// Rebuild recomputes and upserts every weekly snapshot from from through to.
// It returns the number of snapshots written.
func (c Calculator) Rebuild(ctx context.Context, st Store, from, to league.Date, logger *slog.Logger) (int, error) {
	ts, err := st.AllTournaments(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading tournaments: %w", err)
	}

	snaps := c.Weekly(ts, from, to)
	for i, s := range snaps {
		if err := st.PutHandicapSnapshot(ctx, s); err != nil {
			return i, fmt.Errorf("saving snapshot %s: %w", s.EffectiveDate, err)
		}
		logger.Info("handicap snapshot saved",
			"effective_date", s.EffectiveDate.String(),
			"players", len(s.Entries),
		)
	}
	return len(snaps), nil
}
