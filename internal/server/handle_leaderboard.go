package server

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/MichaelKoga/C2C/internal/export"
	"github.com/MichaelKoga/C2C/internal/league"
	"github.com/MichaelKoga/C2C/internal/standings"
	"github.com/MichaelKoga/C2C/internal/store"
)

const maxPageLimit = 100

func handleLeaderboardPage(logger *slog.Logger, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Unparseable values fall back to the defaults, like missing ones.
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit > maxPageLimit {
			limit = maxPageLimit
		}

		p, err := st.PageTournaments(r.Context(), page, limit)
		if err != nil {
			logger.Error("paging tournaments", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleTournaments(logger *slog.Logger, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := st.ListTournaments(r.Context())
		if err != nil {
			logger.Error("listing tournaments", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleCurrentTournament(logger *slog.Logger, st store.Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := st.ListTournaments(r.Context())
		if err != nil {
			logger.Error("listing tournaments", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		cur, ok := league.CurrentTournament(list, league.NewDate(now()))
		if !ok {
			writeError(w, http.StatusNotFound, "no current tournament")
			return
		}
		writeJSON(w, http.StatusOK, cur)
	}
}

func handleTournament(logger *slog.Logger, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, err := st.GetTournament(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tournament not found")
			return
		}
		if err != nil {
			logger.Error("loading tournament", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func standingsQuery(r *http.Request) (standings.Query, error) {
	q := standings.Query{Segment: r.URL.Query().Get("segment")}
	if raw := r.URL.Query().Get("handicap"); raw != "" {
		h, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid handicap flag %q", raw)
		}
		q.Handicap = h
	}
	return q, nil
}

// computeStandings writes the error response itself and reports whether the
// caller should continue.
func computeStandings(w http.ResponseWriter, r *http.Request, logger *slog.Logger, svc *standings.Service) (standings.Table, bool) {
	q, err := standingsQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return standings.Table{}, false
	}

	id := chi.URLParam(r, "id")
	table, err := svc.Standings(r.Context(), id, q)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "tournament not found")
		return table, false
	}
	if err != nil {
		logger.Error("computing standings", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return table, false
	}
	return table, true
}

// handleStandings serves the ranked table with an ETag over the encoded body.
// Clients polling the leaderboard get 304 until scores change.
func handleStandings(logger *slog.Logger, svc *standings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, ok := computeStandings(w, r, logger, svc)
		if !ok {
			return
		}

		body, err := json.Marshal(table)
		if err != nil {
			logger.Error("encoding standings", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		etag := etagOf(body)
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func etagOf(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func handleStandingsXLSX(logger *slog.Logger, svc *standings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, ok := computeStandings(w, r, logger, svc)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, table); err != nil {
			logger.Error("writing xlsx", "id", table.Tournament.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		name := strings.Trim(unsafeFilename.ReplaceAllString(table.Tournament.Name, "_"), "_")
		if name == "" {
			name = "standings"
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, name))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func handleHandicaps(logger *slog.Logger, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := league.ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}

		snap, err := st.HandicapSnapshotAt(r.Context(), d)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no handicap snapshot on or before "+d.String())
			return
		}
		if err != nil {
			logger.Error("loading handicap snapshot", "date", d.String(), "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleVideos(ids []string) http.HandlerFunc {
	resp := VideosResponse{Videos: append([]string{}, ids...)}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}

// VideosResponse lists the YouTube video IDs shown on the home page.
type VideosResponse struct {
	Videos []string `json:"videos"`
}
