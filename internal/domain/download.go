// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import "time"

// VariantKind distinguishes the three shapes a DownloadVariant can take.
// A show is aggregated as exactly one of these per group.
type VariantKind string

const (
	VariantBatch   VariantKind = "batch"
	VariantEpisode VariantKind = "episode"
	VariantMovie   VariantKind = "movie"
)

// DownloadVariant is a tagged union over the three release shapes a fansub
// group posts. Only the fields relevant to Kind are populated; the others
// are left at their zero value.
type DownloadVariant struct {
	Kind VariantKind `json:"kind"`

	// Batch fields.
	BatchStart int `json:"batchStart,omitempty"`
	BatchEnd   int `json:"batchEnd,omitempty"`

	// Episode fields.
	EpisodeNumber  int    `json:"episodeNumber,omitempty"`
	EpisodeDecimal int    `json:"episodeDecimal,omitempty"`
	Version        int    `json:"version,omitempty"`
	Extra          string `json:"extra,omitempty"`
}

// Download is a single torrent file attached to a DownloadVariant, carrying
// one resolution's worth of links.
type Download struct {
	PublishedDate time.Time `json:"publishedDate"`
	Resolution    int       `json:"resolution"`
	Comments      string    `json:"comments"`
	Torrent       string    `json:"torrent"`
	FileName      string    `json:"fileName"`
}

// ParsedDownload pairs a release title and variant with a single Download.
// The filename parser does not produce it: parser.ParseFilename returns a
// parser.Release, which the poller groups directly into DownloadGroups.
type ParsedDownload struct {
	Title   string
	Variant DownloadVariant
	Download Download
}

// DownloadGroup aggregates every known Download for a single show/variant
// pair. CreatedAt is the first time this group was observed; UpdatedAt is
// the newest publish time seen for it, and the repository advances the
// stored value only when an ingest carries a strictly later UpdatedAt.
type DownloadGroup struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Variant   DownloadVariant `json:"variant"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Downloads []Download      `json:"downloads"`
}

// DownloadGroupList is a slice of DownloadGroup that reports the newest
// UpdatedAt across its members as its cache insert time, so a cached REST
// response can be invalidated the moment the repository observes a group
// newer than what's cached.
type DownloadGroupList []DownloadGroup

func (l DownloadGroupList) InsertTime() time.Time {
	var max time.Time
	for _, g := range l {
		if g.UpdatedAt.After(max) {
			max = g.UpdatedAt
		}
	}
	return max
}

// DownloadsCacheKey builds the REST response cache key for a downloads list
// query, given the route's fixed variant filter ("" for the unfiltered
// route) and the caller-supplied title query parameter. Both the REST
// handler that populates the cache and the poller handler that invalidates
// it must derive keys through this function so the two agree on what a
// given group's cached responses are keyed as.
func DownloadsCacheKey(variant VariantKind, title string) string {
	return string(variant) + "|" + title
}
