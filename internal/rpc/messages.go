// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rpc

import (
	"time"

	"github.com/animeservice/anime-service/internal/domain"
)

// SubscribeRequest is the (empty) request for Downloads.Subscribe. It
// exists as a concrete type, rather than struct{}, because the jsonCodec
// needs an addressable value to unmarshal the client's request frame into.
type SubscribeRequest struct{}

// DownloadItem mirrors domain.Download for wire transport.
type DownloadItem struct {
	PublishedDate time.Time `json:"publishedDate"`
	Resolution    int       `json:"resolution"`
	Comments      string    `json:"comments"`
	Torrent       string    `json:"torrent"`
	FileName      string    `json:"fileName"`
}

// DownloadVariant mirrors domain.DownloadVariant for wire transport.
type DownloadVariant struct {
	Kind           string `json:"kind"`
	BatchStart     int    `json:"batchStart,omitempty"`
	BatchEnd       int    `json:"batchEnd,omitempty"`
	EpisodeNumber  int    `json:"episodeNumber,omitempty"`
	EpisodeDecimal int    `json:"episodeDecimal,omitempty"`
	Version        int    `json:"version,omitempty"`
	Extra          string `json:"extra,omitempty"`
}

// DownloadCollection is one domain.DownloadGroup, streamed to every
// Subscribe caller as it is broadcast by the hub.
type DownloadCollection struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Variant   DownloadVariant  `json:"variant"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Downloads []DownloadItem   `json:"downloads"`
}

func toDownloadCollection(g domain.DownloadGroup) *DownloadCollection {
	items := make([]DownloadItem, len(g.Downloads))
	for i, d := range g.Downloads {
		items[i] = DownloadItem{
			PublishedDate: d.PublishedDate,
			Resolution:    d.Resolution,
			Comments:      d.Comments,
			Torrent:       d.Torrent,
			FileName:      d.FileName,
		}
	}

	return &DownloadCollection{
		ID:    g.ID,
		Title: g.Title,
		Variant: DownloadVariant{
			Kind:           string(g.Variant.Kind),
			BatchStart:     g.Variant.BatchStart,
			BatchEnd:       g.Variant.BatchEnd,
			EpisodeNumber:  g.Variant.EpisodeNumber,
			EpisodeDecimal: g.Variant.EpisodeDecimal,
			Version:        g.Variant.Version,
			Extra:          g.Variant.Extra,
		},
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
		Downloads: items,
	}
}
