package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MichaelKoga/C2C/internal/league"
	"github.com/MichaelKoga/C2C/internal/scoring"
	"github.com/MichaelKoga/C2C/internal/standings"
)

func stonehengeTable(t *testing.T, seg scoring.Segment) standings.Table {
	t.Helper()
	tm := &league.Tournament{
		ID: "ruby", Name: "July - Ruby", Format: league.FormatStonehenge,
		EndDate: league.MustDate("2025-07-31"),
		Players: []league.PlayerScoreEntry{
			{
				Name: "Ana",
				F9:   league.RoundInts(20, 20, 20, 20),
				B9:   league.RoundInts(20, 20, 20, 20),
				F18:  league.RoundInts(30, 30, 30, 30),
			},
			{
				Name: "Bo",
				F9:   league.RoundInts(20, 20, 20, 20),
				B9:   league.RoundInts(20, 20, 20, 20),
				F18:  league.RoundInts(30, 30, 30, 30),
			},
			{
				Name: "Cy",
				F9:   league.Rounds(league.Numeric(19), league.NotEntered(league.NotEnteredText), league.Numeric(20), league.Numeric(21)),
				B9:   league.RoundInts(20, 20, 20, 20),
				F18:  league.RoundInts(30, 30, 30, 30),
			},
		},
	}
	rows, err := scoring.ComputeStandings(tm, nil, scoring.Options{Segment: seg})
	require.NoError(t, err)
	return standings.Table{Tournament: tm.Summary(), Segment: seg, Rows: rows}
}

func TestColumns(t *testing.T) {
	tour := standings.Table{Tournament: league.TournamentSummary{Format: league.FormatTour}, Segment: scoring.SegmentTotal}
	require.Equal(t, []string{"Rank", "Player", "F9", "B9", "F18", "Final"}, Columns(tour))

	require.Equal(t,
		[]string{"Rank", "Player", "B9 R1", "B9 R2", "B9 R3", "B9 R4", "Final"},
		Columns(stonehengeTable(t, scoring.SegmentB9)))

	require.Equal(t,
		[]string{"Rank", "Player", "F9", "B9", "F18", "Final"},
		Columns(stonehengeTable(t, scoring.SegmentTotal)))
}

func TestWriteXLSX(t *testing.T) {
	table := stonehengeTable(t, scoring.SegmentF9)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Rank", "Player", "F9 R1", "F9 R2", "F9 R3", "F9 R4", "Final"},
		{"1", "Ana", "20", "20", "20", "20", "80"},
		{"", "Bo", "20", "20", "20", "20", "80"},
		{"3", "Cy", "19", league.NotEnteredText, "20", "21", "60"},
	}, rows)
}
