package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MichaelKoga/C2C/internal/league"
)

// DocStore implements Store using per-collection tables with JSONB data
// columns. The schema comes from the migrations package.
type DocStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db, now: time.Now}
}

func (s *DocStore) GetTournament(ctx context.Context, id string) (league.Tournament, error) {
	var t league.Tournament
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM tournaments WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("loading tournament %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return t, fmt.Errorf("decoding tournament %s: %w", id, err)
	}
	return t, nil
}

func (s *DocStore) ListTournaments(ctx context.Context) ([]league.TournamentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, format, end_date FROM tournaments ORDER BY end_date DESC, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", err)
	}
	defer rows.Close()

	out := []league.TournamentSummary{}
	for rows.Next() {
		var sum league.TournamentSummary
		var format, endDate string
		if err := rows.Scan(&sum.ID, &sum.Name, &format, &endDate); err != nil {
			return nil, err
		}
		sum.Format = league.Format(format)
		if sum.EndDate, err = league.ParseDate(endDate); err != nil {
			return nil, fmt.Errorf("tournament %s: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *DocStore) PageTournaments(ctx context.Context, page, limit int) (league.Page, error) {
	page, limit = normalizePaging(page, limit)
	p := league.Page{Page: page}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&p.TotalCount); err != nil {
		return p, fmt.Errorf("counting tournaments: %w", err)
	}
	p.TotalPages = league.TotalPages(p.TotalCount, limit)

	data, err := s.queryTournaments(ctx,
		`SELECT json(data) FROM tournaments ORDER BY end_date DESC, name LIMIT ? OFFSET ?`,
		limit, (page-1)*limit,
	)
	if err != nil {
		return p, err
	}
	p.Data = data
	return p, nil
}

func (s *DocStore) AllTournaments(ctx context.Context) ([]league.Tournament, error) {
	return s.queryTournaments(ctx, `SELECT json(data) FROM tournaments ORDER BY end_date DESC, name`)
}

func (s *DocStore) queryTournaments(ctx context.Context, query string, args ...any) ([]league.Tournament, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tournaments: %w", err)
	}
	defer rows.Close()

	out := []league.Tournament{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var t league.Tournament
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, fmt.Errorf("decoding tournament: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *DocStore) PutTournament(ctx context.Context, t league.Tournament) (league.Tournament, error) {
	if t.Name == "" {
		return t, errors.New("tournament name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM tournaments WHERE name = ?`, t.Name).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
	case err != nil:
		return t, fmt.Errorf("looking up tournament %q: %w", t.Name, err)
	default:
		t.ID = existing
	}
	t.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(t)
	if err != nil {
		return t, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tournaments (id, name, format, end_date, data) VALUES (?, ?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, format = excluded.format,
		   end_date = excluded.end_date, data = excluded.data`,
		t.ID, t.Name, string(t.Format), t.EndDate.String(), string(data),
	)
	if err != nil {
		return t, fmt.Errorf("saving tournament %q: %w", t.Name, err)
	}
	return t, tx.Commit()
}

func (s *DocStore) HandicapSnapshotAt(ctx context.Context, d league.Date) (league.HandicapSnapshot, error) {
	var snap league.HandicapSnapshot
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM handicap_snapshots
		 WHERE effective_date <= ? ORDER BY effective_date DESC LIMIT 1`,
		d.String(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, ErrNotFound
	}
	if err != nil {
		return snap, fmt.Errorf("loading handicap snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return snap, fmt.Errorf("decoding handicap snapshot: %w", err)
	}
	return snap, nil
}

func (s *DocStore) PutHandicapSnapshot(ctx context.Context, snap league.HandicapSnapshot) error {
	if snap.EffectiveDate.IsZero() {
		return errors.New("snapshot effective date is required")
	}
	snap.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO handicap_snapshots (effective_date, data) VALUES (?, jsonb(?))
		 ON CONFLICT(effective_date) DO UPDATE SET data = excluded.data`,
		snap.EffectiveDate.String(), string(data),
	)
	if err != nil {
		return fmt.Errorf("saving handicap snapshot %s: %w", snap.EffectiveDate, err)
	}
	return nil
}

func (s *DocStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
