// Package ingest turns saved leaderboard pages from the league's golf
// platform into tournaments. Each page holds one card (a single segment of a
// tournament); cards that share a base title are merged into one tournament.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/MichaelKoga/C2C/internal/league"
)

// Status says which tournament list a page was saved from. Closed pages carry
// an extra leading column.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen, "":
		return StatusOpen, nil
	case StatusClosed:
		return StatusClosed, nil
	}
	return "", fmt.Errorf("unknown tournament status %q", s)
}

const endLayout = "2006-01-02 15:04"

var (
	ErrNoRows         = errors.New("no leaderboard rows found")
	ErrUnknownSegment = errors.New("unknown card segment")
)

// Card is one leaderboard page.
type Card struct {
	Title   string
	Holes   string
	EndDate league.Date
	Status  Status
	Rows    []CardRow
}

// CardRow holds the trimmed text of every cell in a leaderboard row.
type CardRow struct {
	Name  string
	Cells []string
}

func (r CardRow) cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// ParseCard reads a saved leaderboard page. Title, holes and end date are
// taken from the tournament header when the page has one; callers may fill or
// override them afterwards.
func ParseCard(r io.Reader, status Status) (Card, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Card{}, fmt.Errorf("parsing leaderboard html: %w", err)
	}

	card := Card{
		Title:  text(doc.Find(".title").First()),
		Holes:  text(doc.Find(".holes_value").First()),
		Status: status,
	}

	endSel := ".ends_in_value"
	if status == StatusClosed {
		endSel = ".closed_value"
	}
	if raw := text(doc.Find(endSel).First()); raw != "" {
		d, err := parseEnd(raw)
		if err != nil {
			return Card{}, err
		}
		card.EndDate = d
	}

	doc.Find("table.datatable.leaders tr[data-uid]").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, text(td))
		})
		row := CardRow{Cells: cells}
		row.Name = row.cell(1)
		if row.Name == "" {
			return
		}
		card.Rows = append(card.Rows, row)
	})
	if len(card.Rows) == 0 {
		return card, ErrNoRows
	}
	return card, nil
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func parseEnd(raw string) (league.Date, error) {
	if t, err := time.Parse(endLayout, raw); err == nil {
		return league.NewDate(t), nil
	}
	d, err := league.ParseDate(raw)
	if err != nil {
		return league.Date{}, fmt.Errorf("parsing end date %q: %w", raw, err)
	}
	return d, nil
}

// Eligible reports whether a card title belongs to a league tournament.
// Closest-to-the-hole side games are excluded.
func Eligible(title string) bool {
	if strings.Contains(title, "CTTH") {
		return false
	}
	return strings.Contains(title, "C2C Stonehenge") || strings.Contains(title, "C2C Tour")
}

var segmentMarker = regexp.MustCompile(`\s*\((?:F9|B9|F18)\)`)

// BaseTitle is a card title without its segment marker.
func BaseTitle(title string) string {
	return strings.TrimSpace(segmentMarker.ReplaceAllString(title, ""))
}

// SegmentOf names the score field a card fills: F9, B9 or F18. A marker in the
// title wins over the holes label.
func SegmentOf(title, holes string) (string, bool) {
	for _, seg := range []string{"F9", "B9", "F18"} {
		if strings.Contains(title, seg) {
			return seg, true
		}
	}
	switch holes {
	case "Front 9":
		return "F9", true
	case "Back 9":
		return "B9", true
	case "Full 18":
		return "F18", true
	}
	return "", false
}

func formatOf(title string) league.Format {
	switch {
	case strings.Contains(title, "C2C Stonehenge"):
		return league.FormatStonehenge
	case strings.Contains(title, "Shootout"):
		return league.FormatShootout
	}
	return league.FormatTour
}

// scores extracts the card's value for one row: one cell for Tour-style
// cards, four round cells for Stonehenge.
func (c Card) scores(format league.Format, row CardRow) league.Scores {
	offset := 0
	if c.Status == StatusClosed {
		offset = 1
	}
	if format != league.FormatStonehenge {
		return league.Single(league.ParseScore(row.cell(4 + offset)))
	}
	rounds := make([]league.ScoreValue, league.RoundsPerSegment)
	for i := range rounds {
		rounds[i] = league.ParseScore(row.cell(3 + offset + i))
	}
	return league.Rounds(rounds...)
}

type group struct {
	base  string
	cards []Card
}

// Merge groups cards by base title and builds one tournament per group, in
// the order groups first appear. Ineligible cards are skipped silently.
// Groups that cannot be named or scored are reported in the returned error;
// the remaining tournaments are still returned.
func Merge(cards []Card) ([]league.Tournament, error) {
	var groups []*group
	byKey := map[string]*group{}
	for _, c := range cards {
		if !Eligible(c.Title) {
			continue
		}
		base := BaseTitle(c.Title)
		key := strings.ToLower(strings.Join(strings.Fields(base), " "))
		g, ok := byKey[key]
		if !ok {
			g = &group{base: base}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.cards = append(g.cards, c)
	}

	out := []league.Tournament{}
	var errs []error
	for _, g := range groups {
		t, err := g.tournament()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", g.base, err))
			continue
		}
		out = append(out, t)
	}
	return out, errors.Join(errs...)
}

func (g *group) tournament() (league.Tournament, error) {
	format := formatOf(g.base)
	t := league.Tournament{Format: format, Players: []league.PlayerScoreEntry{}}

	index := map[string]int{}
	for _, c := range g.cards {
		if c.EndDate.After(t.EndDate) {
			t.EndDate = c.EndDate
		}
		seg, ok := SegmentOf(c.Title, c.Holes)
		if !ok {
			return t, fmt.Errorf("%w: %q", ErrUnknownSegment, c.Title)
		}
		for _, row := range c.Rows {
			i, ok := index[row.Name]
			if !ok {
				i = len(t.Players)
				index[row.Name] = i
				t.Players = append(t.Players, league.PlayerScoreEntry{Name: row.Name})
			}
			p := &t.Players[i]
			s := c.scores(format, row)
			switch seg {
			case "F9":
				p.F9 = s
			case "B9":
				p.B9 = s
			case "F18":
				p.F18 = s
			}
		}
	}
	if t.EndDate.IsZero() {
		return t, errors.New("end date is required")
	}

	var err error
	if format == league.FormatStonehenge {
		t.Name, err = StonehengeName(g.base, t.EndDate)
	} else {
		t.Name, err = TourName(g.base, t.EndDate)
	}
	return t, err
}
