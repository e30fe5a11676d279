package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/MichaelKoga/C2C/internal/league"
)

// Season openers. Tour weeks without a "Wk N" title are counted from these.
var (
	Season2025 = league.MustDate("2025-01-06")
	Season2026 = league.MustDate("2026-01-04")
)

var (
	weekPattern    = regexp.MustCompile(`Wk\s+(\d+)`)
	tourPattern    = regexp.MustCompile(`\bC2C\sTour\b`)
	monthPattern   = regexp.MustCompile(`(?i)\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\b`)
	stone2025Regex = regexp.MustCompile(`(?i)\b(Garnet|Amethyst|Aquamarine|Diamond|Emerald|Pearl|Ruby|Peridot|Sapphire|Tourmaline|Topaz|Blue\sZircon)\b`)
	stone2026Regex = regexp.MustCompile(`(?i)\b(Ember\sStone|Veil\sStone|Tidal\sStone|Prism\sStone|Verdant\sStone|Luster\sStone|Blood\sStone|Sunlit\sStone|Deep\sStone|Shifting\sStone|Hearth\sStone|Sky\sStone)\b`)
)

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Monthly Stonehenge stones, indexed like months.
var (
	stones2025 = []string{
		"Garnet", "Amethyst", "Aquamarine", "Diamond", "Emerald", "Pearl",
		"Ruby", "Peridot", "Sapphire", "Tourmaline", "Topaz", "Blue Zircon",
	}
	stones2026 = []string{
		"Ember Stone", "Veil Stone", "Tidal Stone", "Prism Stone", "Verdant Stone", "Luster Stone",
		"Blood Stone", "Sunlit Stone", "Deep Stone", "Shifting Stone", "Hearth Stone", "Sky Stone",
	}
)

var ErrUnnamed = errors.New("cannot derive tournament name")

// WeekNumber reads "Wk N" from the title, or counts weeks from the season
// opener preceding end.
func WeekNumber(title string, end league.Date) (int, error) {
	if m := weekPattern.FindStringSubmatch(title); m != nil {
		return strconv.Atoi(m[1])
	}
	var start league.Date
	switch {
	case end.After(Season2026):
		start = Season2026
	case end.After(Season2025):
		start = Season2025
	default:
		return 0, fmt.Errorf("%w: no week in %q and %s precedes the 2025 season", ErrUnnamed, title, end)
	}
	days := int(end.Time().Sub(start.Time()).Hours() / 24)
	return days/7 + 1, nil
}

// TourName builds "Wk N - <name>" from a base title such as
// "C2C Tour - Wk 28 - Lakeside". Shootout titles keep everything but the
// "C2C Tour" prefix.
func TourName(base string, end league.Date) (string, error) {
	week, err := WeekNumber(base, end)
	if err != nil {
		return "", err
	}

	var name string
	if strings.Contains(base, "Shootout") {
		name = tourPattern.ReplaceAllString(base, "")
		name = strings.Trim(segmentMarker.ReplaceAllString(name, ""), " -")
	} else {
		parts := strings.Split(base, "-")
		switch {
		case len(parts) >= 3:
			name = parts[2]
		case len(parts) == 2:
			name = parts[1]
		default:
			name = parts[0]
		}
		name = strings.TrimSpace(segmentMarker.ReplaceAllString(strings.TrimSpace(name), ""))
	}
	return fmt.Sprintf("Wk %d - %s", week, name), nil
}

// StonehengeName builds "<Month> - <Stone>". Either half may be missing from
// the title; it is then looked up from the other using the season's stones.
func StonehengeName(base string, end league.Date) (string, error) {
	stones, pattern := stones2025, stone2025Regex
	if end.After(Season2026) {
		stones, pattern = stones2026, stone2026Regex
	}

	month := -1
	if m := monthPattern.FindString(base); m != "" {
		month = monthIndex(m)
	}
	stone := -1
	if m := pattern.FindString(base); m != "" {
		stone = lookup(stones, m)
	}

	switch {
	case month >= 0 && stone >= 0:
	case month >= 0:
		stone = month
	case stone >= 0:
		month = stone
	default:
		return "", fmt.Errorf("%w: no month or stone in %q", ErrUnnamed, base)
	}
	return months[month] + " - " + stones[stone], nil
}

// monthIndex maps any accepted spelling ("Sept", "jul", "December") to its
// index in months.
func monthIndex(s string) int {
	s = strings.ToLower(s)
	for i, m := range months {
		if strings.HasPrefix(strings.ToLower(m), s[:3]) {
			return i
		}
	}
	return -1
}

func lookup(names []string, s string) int {
	s = strings.Join(strings.Fields(s), " ")
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i
		}
	}
	return -1
}
