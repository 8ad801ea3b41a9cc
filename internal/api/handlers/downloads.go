// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/animeservice/anime-service/internal/cache"
	"github.com/animeservice/anime-service/internal/domain"
	"github.com/animeservice/anime-service/internal/hub"
	"github.com/animeservice/anime-service/internal/repository"
)

const (
	// unfilteredCacheTTL backs the empty-title query. It is the query every
	// poller tick is most likely to serve, so it gets the longest TTL.
	unfilteredCacheTTL = time.Hour
	// filteredCacheTTL backs a specific title query, hit far less often and
	// tolerant of a shorter TTL.
	filteredCacheTTL = 5 * time.Minute

	// hubSubscriberCapacity is the per-SSE-connection queue depth handed to
	// hub.Subscribe.
	hubSubscriberCapacity = 32
	sseKeepAlive          = 15 * time.Second
)

// DownloadStore is the subset of *repository.Store the REST layer needs.
type DownloadStore interface {
	GetWithDownloads(ctx context.Context, opts repository.ListOptions) ([]domain.DownloadGroup, error)
}

// GroupHub is the subset of *hub.Hub the SSE layer needs.
type GroupHub interface {
	Subscribe(capacity int) *hub.Subscription
}

// DownloadsHandler serves the REST and SSE surface over download groups: a
// cached list query per variant, and a live per-variant SSE feed.
type DownloadsHandler struct {
	store DownloadStore
	hub   GroupHub
	cache *cache.RequestCache[domain.DownloadGroupList]
}

func NewDownloadsHandler(store DownloadStore, h GroupHub) *DownloadsHandler {
	return &DownloadsHandler{
		store: store,
		hub:   h,
		cache: cache.New[domain.DownloadGroupList](filteredCacheTTL),
	}
}

// Cache exposes the handler's response cache so the poller's persistent
// handler can invalidate entries the instant fresher data is ingested,
// instead of waiting out the TTL.
func (h *DownloadsHandler) Cache() *cache.RequestCache[domain.DownloadGroupList] {
	return h.cache
}

func (h *DownloadsHandler) Routes(r chi.Router) {
	r.Get("/", h.handleList(""))
	r.Get("/updates", h.handleUpdates(""))
	r.Get("/batches", h.handleList(string(domain.VariantBatch)))
	r.Get("/batches/updates", h.handleUpdates(string(domain.VariantBatch)))
	r.Get("/episodes", h.handleList(string(domain.VariantEpisode)))
	r.Get("/episodes/updates", h.handleUpdates(string(domain.VariantEpisode)))
	r.Get("/movies", h.handleList(string(domain.VariantMovie)))
	r.Get("/movies/updates", h.handleUpdates(string(domain.VariantMovie)))
}

func (h *DownloadsHandler) handleList(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("title")
		key := domain.DownloadsCacheKey(domain.VariantKind(variant), title)

		if cached, ok := h.cache.Get(key); ok {
			RespondJSON(w, http.StatusOK, cached)
			return
		}

		groups, err := h.store.GetWithDownloads(r.Context(), repository.ListOptions{
			VariantKind:   domain.VariantKind(variant),
			TitleContains: title,
		})
		if err != nil {
			log.Error().Err(err).Str("title", title).Msg("list downloads failed")
			RespondError(w, domain.HTTPStatus(err), domain.Reason(err))
			return
		}

		ttl := filteredCacheTTL
		if title == "" {
			ttl = unfilteredCacheTTL
		}
		h.cache.InsertWithTimeout(key, domain.DownloadGroupList(groups), ttl)

		RespondJSON(w, http.StatusOK, groups)
	}
}

// handleUpdates streams download groups over SSE as event "download",
// filtering client-side by variant so the hub can broadcast every variant
// to every subscriber regardless of which feed they connected to.
func (h *DownloadsHandler) handleUpdates(variant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			RespondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sub := h.hub.Subscribe(hubSubscriberCapacity)
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ctx := r.Context()
		keepAlive := time.NewTicker(sseKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.Lagged():
				return
			case g, open := <-sub.C():
				if !open {
					return
				}
				if variant != "" && string(g.Variant.Kind) != variant {
					continue
				}
				if err := writeSSEDownloadEvent(w, g); err != nil {
					return
				}
				flusher.Flush()
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeSSEDownloadEvent(w http.ResponseWriter, g domain.DownloadGroup) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: download\ndata: %s\n\n", payload)
	return err
}
