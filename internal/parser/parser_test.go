// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animeservice/anime-service/internal/domain"
)

func TestParseFilenameBatch(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] Arknights - Reimei Zensou (01-08) (1080p) [Batch]")
	require.NoError(t, err)

	assert.Equal(t, Release{
		Source:     "SubsPlease",
		Title:      "Arknights - Reimei Zensou",
		Resolution: 1080,
		Variant: domain.DownloadVariant{
			Kind:       domain.VariantBatch,
			BatchStart: 1,
			BatchEnd:   8,
		},
	}, got)
}

func TestParseFilenameBatchWithExtraBrackets(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] Urusei Yatsura (2022) (01-08) (1080p) [Batch]")
	require.NoError(t, err)

	assert.Equal(t, Release{
		Source:     "SubsPlease",
		Title:      "Urusei Yatsura (2022)",
		Resolution: 1080,
		Variant: domain.DownloadVariant{
			Kind:       domain.VariantBatch,
			BatchStart: 1,
			BatchEnd:   8,
		},
	}, got)
}

func TestParseFilenameMovie(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] Boku no Hero Academia - UA Heroes Battle (720p) [F3A40F62].mkv")
	require.NoError(t, err)

	assert.Equal(t, Release{
		Source:     "SubsPlease",
		Title:      "Boku no Hero Academia - UA Heroes Battle",
		Resolution: 720,
		Variant:    domain.DownloadVariant{Kind: domain.VariantMovie},
	}, got)
}

func TestParseFilenameMovieWithExtraBrackets(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] Urusei Yatsura (2022) (1080p) [F3A40F62].mkv")
	require.NoError(t, err)

	assert.Equal(t, Release{
		Source:     "SubsPlease",
		Title:      "Urusei Yatsura (2022)",
		Resolution: 1080,
		Variant:    domain.DownloadVariant{Kind: domain.VariantMovie},
	}, got)
}

func TestParseFilenameEpisode(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] 16bit Sensation - Another Layer - 10 (1080p) [2A96C634].mkv")
	require.NoError(t, err)

	assert.Equal(t, Release{
		Source:     "SubsPlease",
		Title:      "16bit Sensation - Another Layer",
		Resolution: 1080,
		Variant: domain.DownloadVariant{
			Kind:          domain.VariantEpisode,
			EpisodeNumber: 10,
		},
	}, got)
}

func TestParseFilenameEpisodeWithExtraBrackets(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] Urusei Yatsura (2022) - 25 (1080p) [C0AF019E].mkv")
	require.NoError(t, err)

	assert.Equal(t, Release{
		Source:     "SubsPlease",
		Title:      "Urusei Yatsura (2022)",
		Resolution: 1080,
		Variant: domain.DownloadVariant{
			Kind:          domain.VariantEpisode,
			EpisodeNumber: 25,
		},
	}, got)
}

func TestParseFilenameEpisodeWithDecimal(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] 16bit Sensation - Another Layer - 10.5 (1080p) [2A96C634].mkv")
	require.NoError(t, err)

	assert.Equal(t, domain.DownloadVariant{
		Kind:           domain.VariantEpisode,
		EpisodeNumber:  10,
		EpisodeDecimal: 5,
	}, got.Variant)
}

func TestParseFilenameEpisodeWithVersion(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] 16bit Sensation - Another Layer - 10v2 (1080p) [2A96C634].mkv")
	require.NoError(t, err)

	assert.Equal(t, domain.DownloadVariant{
		Kind:          domain.VariantEpisode,
		EpisodeNumber: 10,
		Version:       2,
	}, got.Variant)
}

func TestParseFilenameEpisodeWithDecimalAndVersion(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] 16bit Sensation - Another Layer - 10.5v2 (1080p) [2A96C634].mkv")
	require.NoError(t, err)

	assert.Equal(t, domain.DownloadVariant{
		Kind:           domain.VariantEpisode,
		EpisodeNumber:  10,
		EpisodeDecimal: 5,
		Version:        2,
	}, got.Variant)
}

func TestParseFilenameEpisodeWithExtra(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("[SubsPlease] 16bit Sensation - Another Layer - 10Extra (1080p) [2A96C634].mkv")
	require.NoError(t, err)

	assert.Equal(t, domain.DownloadVariant{
		Kind:          domain.VariantEpisode,
		EpisodeNumber: 10,
		Extra:         "Extra",
	}, got.Variant)
}

func TestParseFilenameInvalidBatch(t *testing.T) {
	t.Parallel()

	_, err := ParseFilename("[SubsPlease] Arknights - Reimei Zensou (0108) (1080p) [Batch]")
	require.Error(t, err)
}

func TestParseFilenameInvalidResolution(t *testing.T) {
	t.Parallel()

	_, err := ParseFilename("[SubsPlease] 16bit Sensation - Another Layer - 10 (Invalid) [2A96C634].mkv")
	require.Error(t, err)
}
