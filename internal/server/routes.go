package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, db *sql.DB, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("FiveFacts API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	// Oracle routes consumed by the game client.
	r.Route("/api/challenge", func(r chi.Router) {
		r.Get("/today", handleChallengeToday(store))
		r.Post("/{id}/verify", handleVerify(store))
		r.Post("/{id}/final-five/options", handleFinalFiveOptions(store))
		r.Get("/{id}/final-five/answer", handleFinalFiveAnswer(store))
	})

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(store))
	r.Post("/api/admin/logout", handleAdminLogout(store))
	r.With(adminAuthMiddleware(store)).Get("/api/admin/me", handleAdminMe(store))

	// Admin challenge upkeep.
	r.Route("/api/admin/challenges", func(r chi.Router) {
		r.Use(adminAuthMiddleware(store))
		r.Get("/", handleAdminListChallenges(store))
		r.Post("/", handleAdminCreateChallenge(store))
		r.Get("/{id}", handleAdminGetChallenge(store))
		r.Put("/{id}", handleAdminUpdateChallenge(store))
		r.Delete("/{id}", handleAdminDeleteChallenge(store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
