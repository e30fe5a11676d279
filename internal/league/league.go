// Package league defines the core domain types of the C2C league: tournaments,
// player score entries and handicap snapshots. It has zero external
// dependencies so every other package can share it.
package league

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format is the tournament format. It is fixed when the tournament is created.
type Format string

const (
	// FormatTour is the weekly single-round format: one score per segment.
	FormatTour Format = "Tour"
	// FormatStonehenge is the monthly four-round format: four scores per segment.
	FormatStonehenge Format = "Stonehenge"
	// FormatShootout tournaments are recorded by ingest but never scored.
	FormatShootout Format = "Shootout"
)

// RoundsPerSegment is the number of rounds a Stonehenge segment holds.
const RoundsPerSegment = 4

const dateLayout = "2006-01-02"

// Date is a calendar date in UTC with no time of day.
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" and full RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return NewDate(t), nil
}

// MustDate is ParseDate for literals known to be valid.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Compare returns -1, 0 or +1 like cmp.Compare.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PlayerScoreEntry is one player's raw scores as stored. Names are unique
// within a tournament.
type PlayerScoreEntry struct {
	Name string `json:"name"`
	F9   Scores `json:"F9"`
	B9   Scores `json:"B9"`
	F18  Scores `json:"F18"`
}

// Tournament is a stored tournament record.
type Tournament struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Format    Format             `json:"format"`
	EndDate   Date               `json:"endDate"`
	Players   []PlayerScoreEntry `json:"players"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// TournamentSummary is the list projection used by selection menus.
type TournamentSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	EndDate Date   `json:"endDate"`
	Format  Format `json:"format"`
}

func (t *Tournament) Summary() TournamentSummary {
	return TournamentSummary{ID: t.ID, Name: t.Name, EndDate: t.EndDate, Format: t.Format}
}

// Page is one page of tournaments ordered by end date, newest first.
type Page struct {
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Data       []Tournament `json:"data"`
}

// TotalPages mirrors ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// SortByEndDateDesc orders summaries newest first, keeping input order on ties.
func SortByEndDateDesc(ts []TournamentSummary) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].EndDate.After(ts[j].EndDate)
	})
}

// CurrentTournament picks the soonest-ending tournament that has not ended
// before today.
func CurrentTournament(ts []TournamentSummary, today Date) (TournamentSummary, bool) {
	var (
		best  TournamentSummary
		found bool
	)
	for _, t := range ts {
		if t.EndDate.Before(today) {
			continue
		}
		if !found || t.EndDate.Before(best.EndDate) {
			best, found = t, true
		}
	}
	return best, found
}

// HandicapEntry is one player's average handicap in a snapshot.
type HandicapEntry struct {
	Name        string  `json:"name"`
	AvgHandicap float64 `json:"avgHandicap"`
}

// HandicapSnapshot is the set of handicaps recorded on EffectiveDate.
// UpdatedAt changes each time the store rewrites the snapshot.
type HandicapSnapshot struct {
	EffectiveDate Date            `json:"effectiveDate"`
	Entries       []HandicapEntry `json:"handicaps"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Map indexes the snapshot by player name. Later duplicates win.
func (s *HandicapSnapshot) Map() map[string]float64 {
	m := make(map[string]float64, len(s.Entries))
	for _, e := range s.Entries {
		m[e.Name] = e.AvgHandicap
	}
	return m
}

// ApplicableSnapshot returns the most recent snapshot effective on or before d.
func ApplicableSnapshot(snaps []HandicapSnapshot, d Date) (*HandicapSnapshot, bool) {
	var best *HandicapSnapshot
	for i := range snaps {
		s := &snaps[i]
		if s.EffectiveDate.After(d) {
			continue
		}
		if best == nil || s.EffectiveDate.After(best.EffectiveDate) {
			best = s
		}
	}
	return best, best != nil
}
