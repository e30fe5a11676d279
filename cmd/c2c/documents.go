package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MichaelKoga/C2C/internal/league"
)

// importDoc is a tournament document as exported from the hosted database.
// Older exports use tourney_id, type and end_date.
type importDoc struct {
	Name      string                    `json:"name"`
	TourneyID string                    `json:"tourney_id"`
	Format    league.Format             `json:"format"`
	Type      league.Format             `json:"type"`
	EndDate   *league.Date              `json:"endDate"`
	EndDate2  *league.Date              `json:"end_date"`
	Players   []league.PlayerScoreEntry `json:"players"`
}

func (d importDoc) tournament() (league.Tournament, error) {
	t := league.Tournament{
		Name:    firstNonEmpty(d.Name, d.TourneyID),
		Format:  league.Format(firstNonEmpty(string(d.Format), string(d.Type))),
		Players: d.Players,
	}
	switch {
	case d.EndDate != nil:
		t.EndDate = *d.EndDate
	case d.EndDate2 != nil:
		t.EndDate = *d.EndDate2
	}

	if t.Name == "" {
		return t, errors.New("document has no name")
	}
	if t.EndDate.IsZero() {
		return t, fmt.Errorf("%s: document has no end date", t.Name)
	}
	switch t.Format {
	case league.FormatTour, league.FormatStonehenge, league.FormatShootout:
	default:
		return t, fmt.Errorf("%s: unknown format %q", t.Name, t.Format)
	}
	if t.Players == nil {
		t.Players = []league.PlayerScoreEntry{}
	}
	return t, nil
}

// readDocuments decodes a JSON or YAML file holding one tournament document or
// a list of them.
func readDocuments(path string) ([]league.Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if data, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	var docs []importDoc
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(data, &docs)
	} else {
		var d importDoc
		err = json.Unmarshal(data, &d)
		docs = []importDoc{d}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := make([]league.Tournament, 0, len(docs))
	for _, d := range docs {
		t, err := d.tournament()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// yamlToJSON re-encodes a YAML document so it decodes through the same JSON
// paths as an exported document.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
