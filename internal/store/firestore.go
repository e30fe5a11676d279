package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MichaelKoga/C2C/internal/league"
)

const (
	tournamentsCollection = "leaderboards"
	handicapsCollection   = "handicaps"
)

// Document shapes in Firestore. Field names follow the league's original
// Mongo collections so exported data can be loaded unchanged.

type tournamentDoc struct {
	Name      string      `firestore:"tourney_id"`
	Format    string      `firestore:"type"`
	EndDate   string      `firestore:"end_date"`
	Players   []playerDoc `firestore:"players"`
	UpdatedAt time.Time   `firestore:"updated_at"`
}

// Score fields hold an int64, a string, a list of those, or nil.
type playerDoc struct {
	Name string `firestore:"name"`
	F9   any    `firestore:"F9"`
	B9   any    `firestore:"B9"`
	F18  any    `firestore:"F18"`
}

type handicapDoc struct {
	EffectiveDate string           `firestore:"effective_date"`
	Handicaps     []handicapRowDoc `firestore:"handicaps"`
	UpdatedAt     time.Time        `firestore:"updated_at"`
}

type handicapRowDoc struct {
	Name        string  `firestore:"name"`
	AvgHandicap float64 `firestore:"avg_handicap"`
}

func toTournamentDoc(t league.Tournament) tournamentDoc {
	doc := tournamentDoc{
		Name:      t.Name,
		Format:    string(t.Format),
		EndDate:   t.EndDate.String(),
		Players:   make([]playerDoc, len(t.Players)),
		UpdatedAt: t.UpdatedAt,
	}
	for i, p := range t.Players {
		doc.Players[i] = playerDoc{Name: p.Name, F9: p.F9.Any(), B9: p.B9.Any(), F18: p.F18.Any()}
	}
	return doc
}

func fromTournamentDoc(id string, doc tournamentDoc) (league.Tournament, error) {
	t := league.Tournament{
		ID:        id,
		Name:      doc.Name,
		Format:    league.Format(doc.Format),
		Players:   make([]league.PlayerScoreEntry, len(doc.Players)),
		UpdatedAt: doc.UpdatedAt,
	}
	if doc.EndDate != "" {
		d, err := league.ParseDate(doc.EndDate)
		if err != nil {
			return t, fmt.Errorf("tournament %s: %w", id, err)
		}
		t.EndDate = d
	}
	for i, p := range doc.Players {
		t.Players[i] = league.PlayerScoreEntry{
			Name: p.Name,
			F9:   league.ScoresFromAny(p.F9),
			B9:   league.ScoresFromAny(p.B9),
			F18:  league.ScoresFromAny(p.F18),
		}
	}
	return t, nil
}

func toHandicapDoc(s league.HandicapSnapshot) handicapDoc {
	doc := handicapDoc{
		EffectiveDate: s.EffectiveDate.String(),
		Handicaps:     make([]handicapRowDoc, len(s.Entries)),
		UpdatedAt:     s.UpdatedAt,
	}
	for i, e := range s.Entries {
		doc.Handicaps[i] = handicapRowDoc{Name: e.Name, AvgHandicap: e.AvgHandicap}
	}
	return doc
}

func fromHandicapDoc(doc handicapDoc) (league.HandicapSnapshot, error) {
	d, err := league.ParseDate(doc.EffectiveDate)
	if err != nil {
		return league.HandicapSnapshot{}, err
	}
	s := league.HandicapSnapshot{
		EffectiveDate: d,
		Entries:       make([]league.HandicapEntry, len(doc.Handicaps)),
		UpdatedAt:     doc.UpdatedAt,
	}
	for i, h := range doc.Handicaps {
		s.Entries[i] = league.HandicapEntry{Name: h.Name, AvgHandicap: h.AvgHandicap}
	}
	return s, nil
}

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// OpenFirestore connects to the given project and database. An empty
// databaseID selects the default database. When the FIRESTORE_EMULATOR_HOST
// environment variable is set the client library talks to the emulator.
func OpenFirestore(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &FirestoreStore{client: client, now: time.Now}, nil
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

func (s *FirestoreStore) tournaments() *firestore.CollectionRef {
	return s.client.Collection(tournamentsCollection)
}

func isNotFound(err error) bool { return status.Code(err) == codes.NotFound }

func (s *FirestoreStore) GetTournament(ctx context.Context, id string) (league.Tournament, error) {
	snap, err := s.tournaments().Doc(id).Get(ctx)
	if isNotFound(err) {
		return league.Tournament{}, ErrNotFound
	}
	if err != nil {
		return league.Tournament{}, fmt.Errorf("loading tournament %s: %w", id, err)
	}
	var doc tournamentDoc
	if err := snap.DataTo(&doc); err != nil {
		return league.Tournament{}, fmt.Errorf("decoding tournament %s: %w", id, err)
	}
	return fromTournamentDoc(snap.Ref.ID, doc)
}

func (s *FirestoreStore) ListTournaments(ctx context.Context) ([]league.TournamentSummary, error) {
	iter := s.tournaments().
		Select("tourney_id", "type", "end_date").
		OrderBy("end_date", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := []league.TournamentSummary{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing tournaments: %w", err)
		}
		var doc tournamentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decoding tournament %s: %w", snap.Ref.ID, err)
		}
		t, err := fromTournamentDoc(snap.Ref.ID, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t.Summary())
	}
	league.SortByEndDateDesc(out)
	return out, nil
}

func (s *FirestoreStore) PageTournaments(ctx context.Context, page, limit int) (league.Page, error) {
	page, limit = normalizePaging(page, limit)
	p := league.Page{Page: page}

	res, err := s.tournaments().NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return p, fmt.Errorf("counting tournaments: %w", err)
	}
	if v, ok := res["all"].(*firestorepb.Value); ok {
		p.TotalCount = int(v.GetIntegerValue())
	}
	p.TotalPages = league.TotalPages(p.TotalCount, limit)

	data, err := s.collect(s.tournaments().
		OrderBy("end_date", firestore.Desc).
		Offset((page-1)*limit).
		Limit(limit).
		Documents(ctx))
	if err != nil {
		return p, err
	}
	p.Data = data
	return p, nil
}

func (s *FirestoreStore) AllTournaments(ctx context.Context) ([]league.Tournament, error) {
	return s.collect(s.tournaments().OrderBy("end_date", firestore.Desc).Documents(ctx))
}

func (s *FirestoreStore) collect(iter *firestore.DocumentIterator) ([]league.Tournament, error) {
	defer iter.Stop()

	out := []league.Tournament{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("querying tournaments: %w", err)
		}
		var doc tournamentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decoding tournament %s: %w", snap.Ref.ID, err)
		}
		t, err := fromTournamentDoc(snap.Ref.ID, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

func (s *FirestoreStore) PutTournament(ctx context.Context, t league.Tournament) (league.Tournament, error) {
	if t.Name == "" {
		return t, errors.New("tournament name is required")
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(s.tournaments().Where("tourney_id", "==", t.Name).Limit(1))
		defer iter.Stop()

		snap, err := iter.Next()
		switch {
		case errors.Is(err, iterator.Done):
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
		case err != nil:
			return fmt.Errorf("looking up tournament %q: %w", t.Name, err)
		default:
			t.ID = snap.Ref.ID
		}
		t.UpdatedAt = s.now().UTC()
		return tx.Set(s.tournaments().Doc(t.ID), toTournamentDoc(t))
	})
	if err != nil {
		return t, fmt.Errorf("saving tournament %q: %w", t.Name, err)
	}
	return t, nil
}

func (s *FirestoreStore) HandicapSnapshotAt(ctx context.Context, d league.Date) (league.HandicapSnapshot, error) {
	iter := s.client.Collection(handicapsCollection).
		Where("effective_date", "<=", d.String()).
		OrderBy("effective_date", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return league.HandicapSnapshot{}, ErrNotFound
	}
	if err != nil {
		return league.HandicapSnapshot{}, fmt.Errorf("loading handicap snapshot: %w", err)
	}
	var doc handicapDoc
	if err := snap.DataTo(&doc); err != nil {
		return league.HandicapSnapshot{}, fmt.Errorf("decoding handicap snapshot %s: %w", snap.Ref.ID, err)
	}
	return fromHandicapDoc(doc)
}

func (s *FirestoreStore) PutHandicapSnapshot(ctx context.Context, snap league.HandicapSnapshot) error {
	if snap.EffectiveDate.IsZero() {
		return errors.New("snapshot effective date is required")
	}
	snap.UpdatedAt = s.now().UTC()
	_, err := s.client.Collection(handicapsCollection).
		Doc(snap.EffectiveDate.String()).
		Set(ctx, toHandicapDoc(snap))
	if err != nil {
		return fmt.Errorf("saving handicap snapshot %s: %w", snap.EffectiveDate, err)
	}
	return nil
}

// Ping reads at most one document to confirm the database is reachable.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.tournaments().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}
