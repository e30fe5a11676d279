package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"

	"github.com/MichaelKoga/C2C/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("C2C League API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/leaderboard", func(r chi.Router) {
		r.Get("/", handleLeaderboardPage(logger, deps.Store))
		r.Get("/tournaments", handleTournaments(logger, deps.Store))
		r.Get("/current", handleCurrentTournament(logger, deps.Store, deps.Today))
		r.Get("/{id}", handleTournament(logger, deps.Store))
		r.Get("/{id}/standings", handleStandings(logger, deps.Standings))
		r.Get("/{id}/standings.xlsx", handleStandingsXLSX(logger, deps.Standings))
	})
	r.Get("/api/handicaps/{date}", handleHandicaps(logger, deps.Store))
	r.Get("/api/videos", handleVideos(deps.Videos))

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
