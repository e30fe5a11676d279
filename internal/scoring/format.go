package scoring

import "github.com/MichaelKoga/C2C/internal/league"

// format captures what differs between Tour and Stonehenge scoring.
type format interface {
	// normalize coerces a stored segment to the format's shape. Values of
	// the wrong shape become a zero-contribution default.
	normalize(league.Scores) league.Scores
	wellFormed(league.Scores) bool
	// slots is the number of scores a complete card holds.
	slots() int
	segment(Segment) Segment
}

func layoutFor(f league.Format) (format, bool) {
	switch f {
	case league.FormatTour:
		return tourFormat{}, true
	case league.FormatStonehenge:
		return stonehengeFormat{}, true
	}
	return nil, false
}

type tourFormat struct{}

func (tourFormat) normalize(s league.Scores) league.Scores {
	v, ok := s.Scalar()
	if !ok {
		return league.Single(league.ScoreValue{})
	}
	return league.Single(v)
}

func (tourFormat) wellFormed(s league.Scores) bool { return !s.IsList() }

func (tourFormat) slots() int { return 3 }

func (tourFormat) segment(Segment) Segment { return SegmentTotal }

type stonehengeFormat struct{}

func (f stonehengeFormat) normalize(s league.Scores) league.Scores {
	if !f.wellFormed(s) {
		return league.Rounds(make([]league.ScoreValue, league.RoundsPerSegment)...)
	}
	return league.Rounds(s.List()...)
}

func (stonehengeFormat) wellFormed(s league.Scores) bool {
	return s.IsList() && len(s.List()) == league.RoundsPerSegment
}

func (stonehengeFormat) slots() int { return 3 * league.RoundsPerSegment }

func (stonehengeFormat) segment(s Segment) Segment {
	if _, ok := ParseSegment(string(s)); !ok {
		return SegmentTotal
	}
	return s
}

// Malformed identifies a stored segment whose shape does not fit the
// tournament format.
type Malformed struct {
	Player  string
	Segment Segment
}

// MalformedSegments lists the segments ComputeStandings would replace with a
// zero-contribution default. It returns nil for unsupported formats.
func MalformedSegments(t *league.Tournament) []Malformed {
	layout, ok := layoutFor(t.Format)
	if !ok {
		return nil
	}

	var out []Malformed
	for _, p := range t.Players {
		for _, s := range []struct {
			seg    Segment
			scores league.Scores
		}{
			{SegmentF9, p.F9},
			{SegmentB9, p.B9},
			{SegmentF18, p.F18},
		} {
			if !layout.wellFormed(s.scores) {
				out = append(out, Malformed{Player: p.Name, Segment: s.seg})
			}
		}
	}
	return out
}
