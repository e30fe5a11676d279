package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelKoga/C2C/internal/league"
)

// page renders a saved leaderboard page in the platform's markup.
func page(status Status, title, holes, end string, rows ...[]string) string {
	endClass := "ends_in_value"
	if status == StatusClosed {
		endClass = "closed_value"
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><div class="%s_tournament">`, status)
	fmt.Fprintf(&b, `<div class="title">%s</div>`, title)
	fmt.Fprintf(&b, `<div class="field"><span class="holes_value">%s</span></div>`, holes)
	fmt.Fprintf(&b, `<div class="field"><span class="%s"> %s </span></div>`, endClass, end)
	b.WriteString(`</div><table class="datatable leaders"><thead><tr><th>Pos</th><th>Player</th></tr></thead><tbody>`)
	for i, cells := range rows {
		fmt.Fprintf(&b, `<tr data-uid="u%d">`, i)
		for _, c := range cells {
			fmt.Fprintf(&b, "<td>%s</td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

func mustCard(t *testing.T, status Status, html string) Card {
	t.Helper()
	c, err := ParseCard(strings.NewReader(html), status)
	require.NoError(t, err)
	return c
}

func TestParseCard(t *testing.T) {
	html := page(StatusOpen, "C2C Tour - Wk 28 - Lakeside (F9)", "Front 9", "2025-07-13 23:59",
		[]string{"1", " Ana\n", "US", "-2", "34"},
		[]string{"2", "Bo", "CA", "E", "36"},
	)
	c := mustCard(t, StatusOpen, html)

	assert.Equal(t, "C2C Tour - Wk 28 - Lakeside (F9)", c.Title)
	assert.Equal(t, "Front 9", c.Holes)
	assert.Equal(t, "2025-07-13", c.EndDate.String())
	require.Len(t, c.Rows, 2)
	assert.Equal(t, "Ana", c.Rows[0].Name)
	assert.Equal(t, "34", c.Rows[0].cell(4))
	assert.Equal(t, "", c.Rows[0].cell(9))

	_, err := ParseCard(strings.NewReader("<html><body><p>nothing</p></body></html>"), StatusOpen)
	require.ErrorIs(t, err, ErrNoRows)

	_, err = ParseCard(strings.NewReader(page(StatusClosed, "C2C Tour", "Front 9", "soon")), StatusClosed)
	require.Error(t, err)
}

func TestSegmentOf(t *testing.T) {
	tests := []struct {
		title, holes string
		want         string
		ok           bool
	}{
		{"C2C Tour - Wk 1 - Pines (F9)", "Full 18", "F9", true},
		{"C2C Tour - Wk 1 - Pines (B9)", "", "B9", true},
		{"C2C Tour - Wk 1 - Pines (F18)", "", "F18", true},
		{"C2C Tour - Wk 1 - Pines", "Back 9", "B9", true},
		{"C2C Tour - Wk 1 - Pines", "Full 18", "F18", true},
		{"C2C Tour - Wk 1 - Pines", "27 holes", "", false},
	}
	for _, tt := range tests {
		got, ok := SegmentOf(tt.title, tt.holes)
		assert.Equal(t, tt.ok, ok, tt.title)
		assert.Equal(t, tt.want, got, tt.title)
	}
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible("C2C Tour - Wk 3 - Dunes (F9)"))
	assert.True(t, Eligible("C2C Stonehenge - July (B9)"))
	assert.False(t, Eligible("C2C Tour CTTH - Wk 3"))
	assert.False(t, Eligible("Sunday Skins"))
}

func TestMergeTour(t *testing.T) {
	end := "2025-07-13 23:59"
	cards := []Card{
		mustCard(t, StatusOpen, page(StatusOpen, "C2C Tour - Wk 28 - Lakeside (F9)", "Front 9", end,
			[]string{"1", "Ana", "", "", "34"},
			[]string{"2", "Bo", "", "", "36"},
		)),
		mustCard(t, StatusOpen, page(StatusOpen, "C2C Tour - Wk 28 - Lakeside (B9)", "Back 9", end,
			[]string{"1", "Bo", "", "", "35"},
			[]string{"2", "Cy", "", "", "-"},
		)),
		mustCard(t, StatusOpen, page(StatusOpen, "C2C Tour - Wk 28 - Lakeside", "Full 18", end,
			[]string{"1", "Ana", "", "", "70"},
		)),
		mustCard(t, StatusOpen, page(StatusOpen, "C2C Tour CTTH - Wk 28", "Front 9", end,
			[]string{"1", "Ana", "", "", "2"},
		)),
	}

	got, err := Merge(cards)
	require.NoError(t, err)
	require.Len(t, got, 1)

	tm := got[0]
	assert.Equal(t, "Wk 28 - Lakeside", tm.Name)
	assert.Equal(t, league.FormatTour, tm.Format)
	assert.Equal(t, "2025-07-13", tm.EndDate.String())
	require.Len(t, tm.Players, 3)

	ana, bo, cy := tm.Players[0], tm.Players[1], tm.Players[2]
	assert.Equal(t, "Ana", ana.Name)
	assert.True(t, ana.F9.Equal(league.Single(league.Numeric(34))))
	assert.True(t, ana.F18.Equal(league.Single(league.Numeric(70))))
	assert.True(t, ana.B9.Equal(league.Scores{}))
	assert.True(t, bo.B9.Equal(league.Single(league.Numeric(35))))
	v, _ := cy.B9.Scalar()
	assert.False(t, v.IsNumeric())
	assert.Equal(t, "-", v.Raw())
}

func TestMergeClosedStonehenge(t *testing.T) {
	end := "2025-08-01 00:00"
	card := mustCard(t, StatusClosed, page(StatusClosed, "C2C Stonehenge - Peridot (F9)", "Front 9", end,
		[]string{"1", "Ana", "", "-8", "34", "35", "Not Entered", "36"},
	))

	got, err := Merge([]Card{card})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "August - Peridot", got[0].Name)
	assert.Equal(t, league.FormatStonehenge, got[0].Format)

	want := league.Rounds(league.Numeric(34), league.Numeric(35), league.NotEntered(league.NotEnteredText), league.Numeric(36))
	assert.True(t, got[0].Players[0].F9.Equal(want), "F9 = %v", got[0].Players[0].F9.Any())
}

func TestMergeShootout(t *testing.T) {
	card := mustCard(t, StatusOpen, page(StatusOpen, "C2C Tour Summer Shootout (F18)", "", "2025-07-20 18:00",
		[]string{"1", "Ana", "", "", "68"},
	))
	got, err := Merge([]Card{card})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, league.FormatShootout, got[0].Format)
	assert.Equal(t, "Wk 28 - Summer Shootout", got[0].Name)
}

func TestMergeReportsUnnamedGroups(t *testing.T) {
	good := mustCard(t, StatusOpen, page(StatusOpen, "C2C Stonehenge - July (F9)", "Front 9", "2025-07-31 23:59",
		[]string{"1", "Ana", "", "20", "21", "22", "23"},
	))
	bad := mustCard(t, StatusOpen, page(StatusOpen, "C2C Stonehenge - Summer Classic (F9)", "Front 9", "2025-07-31 23:59",
		[]string{"1", "Ana", "", "20", "21", "22", "23"},
	))
	odd := mustCard(t, StatusOpen, page(StatusOpen, "C2C Tour - Wk 5 - Oddball", "Par 3", "2025-02-09 23:59",
		[]string{"1", "Ana", "", "", "27"},
	))

	got, err := Merge([]Card{good, bad, odd})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnnamed)
	require.ErrorIs(t, err, ErrUnknownSegment)
	require.Len(t, got, 1)
	assert.Equal(t, "July - Ruby", got[0].Name)
	assert.True(t, got[0].Players[0].F9.Equal(league.RoundInts(20, 21, 22, 23)))
}

func TestMergeRequiresEndDate(t *testing.T) {
	card := mustCard(t, StatusOpen, page(StatusOpen, "C2C Tour - Wk 2 - Pines (F9)", "", "",
		[]string{"1", "Ana", "", "", "36"},
	))
	_, err := Merge([]Card{card})
	require.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, s)
	s, err = ParseStatus("Closed")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, s)
	_, err = ParseStatus("archived")
	require.Error(t, err)
}
