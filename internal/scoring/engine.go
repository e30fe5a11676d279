// Package scoring turns a tournament's raw score cards into a ranked,
// optionally handicap-adjusted standings table.
//
// ComputeStandings is pure: it performs no I/O, never mutates its inputs and
// returns a freshly allocated table on every call, so it is safe to use from
// concurrent requests.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/MichaelKoga/C2C/internal/league"
)

// ErrUnsupportedFormat is returned for tournaments that are neither Tour nor
// Stonehenge. The accompanying table is always empty.
var ErrUnsupportedFormat = errors.New("unsupported tournament format")

// Segment selects which value the table is sorted and ranked by.
type Segment string

const (
	SegmentF9    Segment = "F9"
	SegmentB9    Segment = "B9"
	SegmentF18   Segment = "F18"
	SegmentTotal Segment = "Total"
)

// ParseSegment reports whether s names a known segment.
func ParseSegment(s string) (Segment, bool) {
	switch seg := Segment(s); seg {
	case SegmentF9, SegmentB9, SegmentF18, SegmentTotal:
		return seg, true
	}
	return "", false
}

// Filter decides which players are left out of the table as "not yet scored".
type Filter string

const (
	// FilterPositiveTotal drops players whose raw aggregate is zero or less.
	FilterPositiveTotal Filter = "positive"
	// FilterAnyEntered keeps every player with at least one entered score.
	FilterAnyEntered Filter = "entered"
)

// ParseFilter maps a configuration value to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterPositiveTotal, FilterAnyEntered:
		return f, nil
	case "":
		return FilterPositiveTotal, nil
	}
	return "", fmt.Errorf("unknown standings filter %q", s)
}

type Options struct {
	// Segment is ignored for Tour tournaments, which always rank by total.
	Segment Segment

	// Handicap requests adjusted scores. It has no effect without a snapshot.
	Handicap bool

	Filter Filter
}

// Row is one player's line in the standings table. The score fields hold the
// (possibly adjusted) values the totals were computed from.
type Row struct {
	Name       string        `json:"name"`
	F9         league.Scores `json:"F9"`
	B9         league.Scores `json:"B9"`
	F18        league.Scores `json:"F18"`
	F9Total    int           `json:"F9Total"`
	B9Total    int           `json:"B9Total"`
	F18Total   int           `json:"F18Total"`
	Total      int           `json:"total"`
	Score      int           `json:"score"`
	NumValid   int           `json:"numValid"`
	IsComplete bool          `json:"isComplete"`

	// Rank is nil when the row ties the row above it.
	Rank *int `json:"rank"`
}

// ComputeStandings scores, filters, adjusts, sorts and ranks the players of t.
// snap may be nil; handicap adjustment then falls back to scratch.
func ComputeStandings(t *league.Tournament, snap *league.HandicapSnapshot, opts Options) ([]Row, error) {
	layout, ok := layoutFor(t.Format)
	if !ok {
		return []Row{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, t.Format)
	}

	rows := make([]Row, 0, len(t.Players))
	for _, p := range t.Players {
		row := Row{
			Name: p.Name,
			F9:   layout.normalize(p.F9),
			B9:   layout.normalize(p.B9),
			F18:  layout.normalize(p.F18),
		}
		aggregate(&row, layout.slots())
		if !keep(row, opts.Filter) {
			continue
		}
		rows = append(rows, row)
	}

	if opts.Handicap && snap != nil {
		handicaps := snap.Map()
		for i := range rows {
			avg := handicaps[rows[i].Name]
			rows[i].F9 = adjust(rows[i].F9, avg/2)
			rows[i].B9 = adjust(rows[i].B9, avg/2)
			rows[i].F18 = adjust(rows[i].F18, avg)
			aggregate(&rows[i], layout.slots())
		}
	}

	seg := layout.segment(opts.Segment)
	for i := range rows {
		rows[i].Score = rows[i].value(seg)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IsComplete != b.IsComplete {
			return a.IsComplete
		}
		if a.NumValid != b.NumValid {
			return a.NumValid > b.NumValid
		}
		return a.Score < b.Score
	})

	assignRanks(rows)
	return rows, nil
}

func keep(r Row, f Filter) bool {
	if f == FilterAnyEntered {
		return r.NumValid > 0
	}
	return r.Total > 0
}

func aggregate(r *Row, slots int) {
	var valid int
	r.F9Total, valid = sum(r.F9)
	r.NumValid = valid
	r.B9Total, valid = sum(r.B9)
	r.NumValid += valid
	r.F18Total, valid = sum(r.F18)
	r.NumValid += valid
	r.Total = r.F9Total + r.B9Total + r.F18Total
	r.IsComplete = r.NumValid == slots
}

func sum(s league.Scores) (total, valid int) {
	if !s.IsList() {
		v, _ := s.Scalar()
		if v.IsNumeric() {
			return v.Value(), 1
		}
		return 0, 0
	}
	for _, v := range s.List() {
		if v.IsNumeric() {
			total += v.Value()
			valid++
		}
	}
	return total, valid
}

func adjust(s league.Scores, by float64) league.Scores {
	if !s.IsList() {
		v, _ := s.Scalar()
		return league.Single(adjustValue(v, by))
	}
	rounds := s.List()
	for i, v := range rounds {
		rounds[i] = adjustValue(v, by)
	}
	return league.Rounds(rounds...)
}

func adjustValue(v league.ScoreValue, by float64) league.ScoreValue {
	n, ok := v.Int()
	if !ok {
		return v
	}
	return league.Numeric(roundHalfUp(float64(n) - by))
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so 34.5 becomes 35 and -0.5 becomes 0.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func (r Row) value(seg Segment) int {
	switch seg {
	case SegmentF9:
		return r.F9Total
	case SegmentB9:
		return r.B9Total
	case SegmentF18:
		return r.F18Total
	default:
		return r.Total
	}
}

func assignRanks(rows []Row) {
	var lastRank, ties int
	for i := range rows {
		switch {
		case i == 0:
			lastRank, ties = 1, 1
			rows[i].Rank = intPtr(lastRank)
		case rows[i].Score == rows[i-1].Score:
			rows[i].Rank = nil
			ties++
		default:
			lastRank += ties
			ties = 1
			rows[i].Rank = intPtr(lastRank)
		}
	}
}

func intPtr(n int) *int { return &n }
