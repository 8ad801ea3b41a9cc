// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/animeservice/anime-service/internal/api/handlers"
	apimiddleware "github.com/animeservice/anime-service/internal/api/middleware"
	"github.com/animeservice/anime-service/internal/catalog"
	"github.com/animeservice/anime-service/internal/domain"
	"github.com/animeservice/anime-service/internal/hub"
	"github.com/animeservice/anime-service/internal/repository"
)

// Dependencies holds every collaborator the REST surface needs. It is
// assembled once at startup and handed to NewRouter.
type Dependencies struct {
	Config  *domain.Config
	Store   *repository.Store
	Hub     *hub.Hub
	Catalog *catalog.Client
}

// NewRouter builds the /v1 REST surface: catalog proxy, download listing,
// and SSE live updates. It also returns the downloads handler so the
// caller can wire its response cache into the poller's persistent handler,
// letting a fresh ingest invalidate a cached response before its TTL
// expires.
func NewRouter(deps *Dependencies) (*chi.Mux, *handlers.DownloadsHandler) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(apimiddleware.HTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	compressor, err := httpcompression.DefaultAdapter()
	if err != nil {
		log.Error().Err(err).Msg("failed to create HTTP compression adapter")
	} else {
		r.Use(compressor)
	}

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if deps.Config != nil && deps.Config.BaseURL != "" {
		allowedOrigins = append(allowedOrigins, deps.Config.BaseURL)
	}
	r.Use(apimiddleware.CORSWithCredentials(allowedOrigins))

	healthHandler := handlers.NewHealthHandler()
	r.Route("/", healthHandler.Routes)

	showsHandler := handlers.NewShowsHandler(deps.Catalog)
	downloadsHandler := handlers.NewDownloadsHandler(deps.Store, deps.Hub)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/shows", showsHandler.Routes)
		r.Route("/downloads", downloadsHandler.Routes)
	})

	if deps.Config != nil && deps.Config.PprofEnabled {
		pprofController := handlers.NewPprofController(0, 0)
		r.Route("/debug/pprof", func(r chi.Router) {
			r.Get("/status", pprofController.Status)
			r.Post("/block/enable", pprofController.EnableBlockProfile)
			r.Post("/block/disable", pprofController.DisableBlockProfile)
			r.Post("/mutex/enable", pprofController.EnableMutexProfile)
			r.Post("/mutex/disable", pprofController.DisableMutexProfile)
		})
	}

	return r, downloadsHandler
}
