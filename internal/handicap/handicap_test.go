package handicap_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MichaelKoga/C2C/internal/handicap"
	"github.com/MichaelKoga/C2C/internal/league"
)

func tourCard(name string, f9, b9, f18 any) league.PlayerScoreEntry {
	return league.PlayerScoreEntry{
		Name: name,
		F9:   league.Single(league.ParseScore(f9)),
		B9:   league.Single(league.ParseScore(b9)),
		F18:  league.Single(league.ParseScore(f18)),
	}
}

func byName(s league.HandicapSnapshot) map[string]float64 { return s.Map() }

func TestSnapshot(t *testing.T) {
	ts := []league.Tournament{
		{
			Name:    "Wk 27 - Summer",
			Format:  league.FormatTour,
			EndDate: league.MustDate("2025-07-06"),
			Players: []league.PlayerScoreEntry{
				// 9-hole rounds count double: 70-66, 72-66, 70-66.
				tourCard("Ana", 35, 36, 70),
				tourCard("Bo", league.NotEnteredText, league.NotEnteredText, 75),
			},
		},
		{
			Name:    "Wk 28 - Summer",
			Format:  league.FormatTour,
			EndDate: league.MustDate("2025-07-13"),
			Players: []league.PlayerScoreEntry{tourCard("Ana", 30, 30, 60)},
		},
		{
			Name:    "Shootout",
			Format:  league.FormatShootout,
			EndDate: league.MustDate("2025-07-05"),
			Players: []league.PlayerScoreEntry{tourCard("Cy", 30, 30, 60)},
		},
	}

	calc := handicap.NewCalculator()

	snap := calc.Snapshot(ts, league.MustDate("2025-07-06"))
	require.Equal(t, "2025-07-06", snap.EffectiveDate.String())
	require.Equal(t, map[string]float64{"Ana": 4.67, "Bo": 9}, byName(snap))
	require.Equal(t, "Ana", snap.Entries[0].Name)

	snap = calc.Snapshot(ts, league.MustDate("2025-07-13"))
	// (4+6+4-6-6-6)/6
	require.InDelta(t, -0.67, byName(snap)["Ana"], 1e-9)

	snap = calc.Snapshot(ts, league.MustDate("2025-07-01"))
	require.Empty(t, snap.Entries)
}

func TestSnapshotStonehengeCutoff(t *testing.T) {
	ts := []league.Tournament{{
		Name:    "June - Pearl",
		Format:  league.FormatStonehenge,
		EndDate: league.MustDate("2025-06-30"),
		Players: []league.PlayerScoreEntry{{
			Name: "Dee",
			F9:   league.Rounds(league.Numeric(34), league.NotEntered("-"), league.Numeric(35), league.Numeric(36)),
			B9:   league.RoundInts(33, 33, 33, 33),
			F18:  league.RoundInts(70, 71, 72, 73),
		}},
	}}

	calc := handicap.NewCalculator()

	before := calc.Snapshot(ts, league.MustDate("2025-12-28"))
	require.Len(t, before.Entries, 1)
	// F9: 68,70,72 B9: 66 x4 F18: 70..73 over 11 rounds.
	want := float64((2+4+6)+0+(4+5+6+7)) / 11
	require.InDelta(t, want, before.Entries[0].AvgHandicap, 0.005)

	after := calc.Snapshot(ts, league.MustDate("2025-12-31"))
	require.Empty(t, after.Entries)
}

func TestSnapshotKeepsMostRecentRounds(t *testing.T) {
	var ts []league.Tournament
	start := league.MustDate("2025-01-05")
	// 25 weeks of 18-hole rounds: old weeks shoot 86, the last 20 weeks shoot 70.
	for i := 0; i < 25; i++ {
		score := 70
		if i < 5 {
			score = 86
		}
		ts = append(ts, league.Tournament{
			Name:    fmt.Sprintf("Wk %d", i+1),
			Format:  league.FormatTour,
			EndDate: start.AddDays(7 * i),
			Players: []league.PlayerScoreEntry{
				tourCard("Eli", league.NotEnteredText, league.NotEnteredText, score),
			},
		})
	}

	snap := handicap.NewCalculator().Snapshot(ts, league.MustDate("2025-12-01"))
	require.Equal(t, 4.0, byName(snap)["Eli"])
}

func TestSnapshotRoundsHalvesToEven(t *testing.T) {
	weeks := func(name string, over int) []league.Tournament {
		var ts []league.Tournament
		start := league.MustDate("2025-03-02")
		for i := 0; i < 8; i++ {
			score := 66
			if i < over {
				score = 67
			}
			ts = append(ts, league.Tournament{
				Name:    fmt.Sprintf("Wk %d - %s", i+1, name),
				Format:  league.FormatTour,
				EndDate: start.AddDays(7 * i),
				Players: []league.PlayerScoreEntry{
					tourCard(name, league.NotEnteredText, league.NotEnteredText, score),
				},
			})
		}
		return ts
	}

	// 1/8 and 3/8 are exact in binary, so the hundredths digit is a true tie.
	ts := append(weeks("Fay", 1), weeks("Gus", 3)...)
	snap := handicap.NewCalculator().Snapshot(ts, league.MustDate("2025-06-01"))
	require.Equal(t, map[string]float64{"Fay": 0.12, "Gus": 0.38}, byName(snap))
}

func TestWeekly(t *testing.T) {
	snaps := handicap.NewCalculator().Weekly(nil, handicap.SeriesStart, league.MustDate("2025-07-20"))

	var dates []string
	for _, s := range snaps {
		dates = append(dates, s.EffectiveDate.String())
	}
	require.Equal(t, []string{"2025-06-29", "2025-07-06", "2025-07-13", "2025-07-20"}, dates)
}

type memStore struct {
	ts    []league.Tournament
	saved []league.HandicapSnapshot
	err   error
}

func (m *memStore) AllTournaments(context.Context) ([]league.Tournament, error) {
	return m.ts, m.err
}

func (m *memStore) PutHandicapSnapshot(_ context.Context, s league.HandicapSnapshot) error {
	m.saved = append(m.saved, s)
	return nil
}

func TestRebuild(t *testing.T) {
	st := &memStore{ts: []league.Tournament{{
		Format:  league.FormatTour,
		EndDate: league.MustDate("2025-07-01"),
		Players: []league.PlayerScoreEntry{tourCard("Ana", 33, 33, 66)},
	}}}

	n, err := handicap.NewCalculator().Rebuild(context.Background(), st, handicap.SeriesStart, league.MustDate("2025-07-13"), slog.Default())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, st.saved, 3)
	require.Empty(t, st.saved[0].Entries)
	require.Equal(t, map[string]float64{"Ana": 0}, byName(st.saved[1]))

	st = &memStore{err: errors.New("boom")}
	_, err = handicap.NewCalculator().Rebuild(context.Background(), st, handicap.SeriesStart, handicap.SeriesStart, slog.Default())
	require.Error(t, err)
}
