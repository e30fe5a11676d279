package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/MichaelKoga/C2C/internal/export"
	"github.com/MichaelKoga/C2C/internal/league"
	"github.com/MichaelKoga/C2C/internal/standings"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps each checked dependency to its status.
type HealthResponse map[string]struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
}

type pageQuery struct {
	Page  int `query:"page" description:"1-based page number, default 1"`
	Limit int `query:"limit" description:"page size, default 10, at most 100"`
}

type tournamentPath struct {
	ID string `path:"id"`
}

type standingsRequest struct {
	ID       string `path:"id"`
	Segment  string `query:"segment" enum:"F9,B9,F18,Total" description:"Stonehenge display segment, default F9. Ignored for Tour."`
	Handicap bool   `query:"handicap" description:"apply the applicable handicap snapshot"`
}

type handicapPath struct {
	Date string `path:"date" format:"date"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "C2C League API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Leaderboards, standings and handicaps for the C2C golf league.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the store and cache.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/leaderboard
	getPage, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getPage.SetSummary("Page tournaments")
	getPage.SetDescription("Returns full tournaments, newest end date first.")
	getPage.AddReqStructure(pageQuery{})
	getPage.AddRespStructure(league.Page{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getPage)

	// GET /api/leaderboard/tournaments
	listTournaments, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/tournaments")
	listTournaments.SetSummary("List tournaments")
	listTournaments.SetDescription("Returns every tournament's id, name, format and end date, newest first.")
	listTournaments.AddRespStructure([]league.TournamentSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listTournaments)

	// GET /api/leaderboard/current
	getCurrent, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/current")
	getCurrent.SetSummary("Current tournament")
	getCurrent.SetDescription("Returns the soonest-ending tournament that has not ended yet.")
	getCurrent.AddRespStructure(league.TournamentSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	getCurrent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getCurrent)

	// GET /api/leaderboard/{id}
	getTournament, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/{id}")
	getTournament.SetSummary("Get tournament")
	getTournament.SetDescription("Returns a tournament with its raw player scores.")
	getTournament.AddReqStructure(tournamentPath{})
	getTournament.AddRespStructure(league.Tournament{}, openapi.WithHTTPStatus(http.StatusOK))
	getTournament.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTournament)

	// GET /api/leaderboard/{id}/standings
	getStandings, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/{id}/standings")
	getStandings.SetSummary("Get standings")
	getStandings.SetDescription("Returns the ranked standings table. Responses carry an ETag; send If-None-Match to get 304 when unchanged.")
	getStandings.AddReqStructure(standingsRequest{})
	getStandings.AddRespStructure(standings.Table{}, openapi.WithHTTPStatus(http.StatusOK))
	getStandings.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNotModified))
	getStandings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getStandings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStandings)

	// GET /api/leaderboard/{id}/standings.xlsx
	getXLSX, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/{id}/standings.xlsx")
	getXLSX.SetSummary("Export standings")
	getXLSX.SetDescription("Returns the standings table as an Excel workbook.")
	getXLSX.AddReqStructure(standingsRequest{})
	getXLSX.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType(export.ContentType))
	getXLSX.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getXLSX)

	// GET /api/handicaps/{date}
	getHandicaps, _ := r.NewOperationContext(http.MethodGet, "/api/handicaps/{date}")
	getHandicaps.SetSummary("Get handicap snapshot")
	getHandicaps.SetDescription("Returns the latest weekly handicap snapshot effective on or before the date.")
	getHandicaps.AddReqStructure(handicapPath{})
	getHandicaps.AddRespStructure(league.HandicapSnapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	getHandicaps.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getHandicaps.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getHandicaps)

	// GET /api/videos
	getVideos, _ := r.NewOperationContext(http.MethodGet, "/api/videos")
	getVideos.SetSummary("List videos")
	getVideos.SetDescription("Returns the YouTube video IDs featured on the home page.")
	getVideos.AddRespStructure(VideosResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getVideos)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
