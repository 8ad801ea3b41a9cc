// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package poller

import (
	"context"

	"github.com/animeservice/anime-service/internal/cache"
	"github.com/animeservice/anime-service/internal/domain"
)

// Broadcaster delivers a persisted or transient group to live subscribers.
// hub.Hub satisfies this.
type Broadcaster interface {
	Broadcast(group domain.DownloadGroup)
}

// Store is the subset of repository.Store the persistent handler needs.
type Store interface {
	InsertGroups(ctx context.Context, groups []domain.DownloadGroup) ([]int64, error)
}

// TransientHandler broadcasts every tick's groups without persisting them.
// Used when running against an upstream window with no backing repository
// (e.g. a preview/dry-run mode seeded from now - 7 days).
type TransientHandler struct {
	hub Broadcaster
}

func NewTransientHandler(hub Broadcaster) *TransientHandler {
	return &TransientHandler{hub: hub}
}

func (h *TransientHandler) Handle(_ context.Context, groups []domain.DownloadGroup) error {
	for _, g := range groups {
		h.hub.Broadcast(g)
	}
	return nil
}

// PersistentHandler persists groups before broadcasting them. If persistence
// fails, nothing is broadcast and the caller (the poller) must not advance
// the watermark.
type PersistentHandler struct {
	store Store
	hub   Broadcaster
	cache *cache.RequestCache[domain.DownloadGroupList]
}

// NewPersistentHandler builds a handler backed by store and hub. cache may
// be nil if REST responses aren't being cached.
func NewPersistentHandler(store Store, hub Broadcaster, c *cache.RequestCache[domain.DownloadGroupList]) *PersistentHandler {
	return &PersistentHandler{store: store, hub: hub, cache: c}
}

func (h *PersistentHandler) Handle(ctx context.Context, groups []domain.DownloadGroup) error {
	if _, err := h.store.InsertGroups(ctx, groups); err != nil {
		return err
	}

	for _, g := range groups {
		h.hub.Broadcast(g)
		if h.cache != nil {
			// Four cached responses are invalidated: the fully unfiltered
			// list, the variant-filtered list, and the two lists keyed by the
			// group's exact title (with and without the variant). Every key is
			// built through domain.DownloadsCacheKey so it matches what the
			// REST handler populates the cache under. The title filter is a
			// substring match, so a title query that matches the group only
			// partially (e.g. "exam" for "Example") is cached under another
			// key; that entry is not invalidated here and expires with its TTL.
			h.cache.InvalidateIfNewer(domain.DownloadsCacheKey("", ""), g.UpdatedAt)
			h.cache.InvalidateIfNewer(domain.DownloadsCacheKey(g.Variant.Kind, ""), g.UpdatedAt)
			h.cache.InvalidateIfNewer(domain.DownloadsCacheKey("", g.Title), g.UpdatedAt)
			h.cache.InvalidateIfNewer(domain.DownloadsCacheKey(g.Variant.Kind, g.Title), g.UpdatedAt)
		}
	}
	return nil
}
