// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/animeservice/anime-service/internal/catalog"
	"github.com/animeservice/anime-service/internal/domain"
)

// CatalogClient is implemented by *catalog.Client.
type CatalogClient interface {
	List(ctx context.Context) ([]catalog.Show, error)
	Get(ctx context.Context, id string) (*catalog.Show, error)
}

// ShowsHandler proxies show metadata from the catalog client. It holds no
// state of its own; every request is forwarded upstream.
type ShowsHandler struct {
	catalog CatalogClient
}

func NewShowsHandler(catalog CatalogClient) *ShowsHandler {
	return &ShowsHandler{catalog: catalog}
}

func (h *ShowsHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
}

func (h *ShowsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	shows, err := h.catalog.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("catalog list failed")
		RespondError(w, domain.HTTPStatus(err), domain.Reason(err))
		return
	}
	RespondJSON(w, http.StatusOK, shows)
}

func (h *ShowsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseStringParam(w, r, "id", "show ID")
	if !ok {
		return
	}

	show, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("catalog get failed")
		RespondError(w, domain.HTTPStatus(err), domain.Reason(err))
		return
	}
	RespondJSON(w, http.StatusOK, show)
}
