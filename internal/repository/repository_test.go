// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/animeservice/anime-service/internal/database"
	"github.com/animeservice/anime-service/internal/domain"
)

const testSchema = `
CREATE TABLE download_groups (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT NOT NULL,
	variant_kind    TEXT NOT NULL,
	batch_start     INTEGER NOT NULL DEFAULT 0,
	batch_end       INTEGER NOT NULL DEFAULT 0,
	episode_number  INTEGER NOT NULL DEFAULT 0,
	episode_decimal INTEGER NOT NULL DEFAULT 0,
	version         INTEGER NOT NULL DEFAULT 0,
	extra           TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX idx_download_groups_identity
	ON download_groups (title, variant_kind, batch_start, batch_end, episode_number, episode_decimal, version, extra);
CREATE TABLE downloads (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id       INTEGER NOT NULL REFERENCES download_groups (id) ON DELETE CASCADE,
	published_date TIMESTAMP NOT NULL,
	resolution     INTEGER NOT NULL,
	comments       TEXT NOT NULL DEFAULT '',
	torrent        TEXT NOT NULL,
	file_name      TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_downloads_torrent ON downloads (torrent);
CREATE UNIQUE INDEX idx_downloads_group_resolution ON downloads (group_id, resolution);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(testSchema)
	require.NoError(t, err)

	db := database.NewForTest(conn)
	t.Cleanup(func() { db.Close() })

	return NewStore(db)
}

func batchGroup(title string, start, end int, updatedAt time.Time, resolutions ...int) domain.DownloadGroup {
	g := domain.DownloadGroup{
		Title: title,
		Variant: domain.DownloadVariant{
			Kind:       domain.VariantBatch,
			BatchStart: start,
			BatchEnd:   end,
		},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	for _, res := range resolutions {
		g.Downloads = append(g.Downloads, domain.Download{
			PublishedDate: updatedAt,
			Resolution:    res,
			Torrent:       fmt.Sprintf("%s.torrent.%d", title, res),
			FileName:      title + ".mkv",
		})
	}
	return g
}

func TestUpsertGroupInsertsNewGroup(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id, err := s.UpsertGroup(ctx, batchGroup("Example Show", 1, 12, now, 1080))
	require.NoError(t, err)
	assert.NotZero(t, id)

	groups, err := s.GetWithDownloads(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Example Show", groups[0].Title)
	require.Len(t, groups[0].Downloads, 1)
	assert.Equal(t, 1080, groups[0].Downloads[0].Resolution)
}

func TestUpsertGroupAdvancesTimestampOnly(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	second := time.Now().UTC().Truncate(time.Second)

	id1, err := s.UpsertGroup(ctx, batchGroup("Example Show", 1, 12, first, 1080))
	require.NoError(t, err)

	id2, err := s.UpsertGroup(ctx, batchGroup("Example Show", 1, 12, second, 1080))
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "same identity must resolve to the same row")

	groups, err := s.GetWithDownloads(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.WithinDuration(t, second, groups[0].UpdatedAt, time.Second)
	require.Len(t, groups[0].Downloads, 1, "resolution already recorded must not duplicate")
}

func TestUpsertGroupAddsNewResolution(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	_, err := s.UpsertGroup(ctx, batchGroup("Example Show", 1, 12, now, 1080))
	require.NoError(t, err)
	_, err = s.UpsertGroup(ctx, batchGroup("Example Show", 1, 12, now, 720))
	require.NoError(t, err)

	groups, err := s.GetWithDownloads(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Downloads, 2)
	assert.Equal(t, 1080, groups[0].Downloads[0].Resolution, "ordered by resolution descending")
	assert.Equal(t, 720, groups[0].Downloads[1].Resolution)
}

func TestInsertGroupsIsAllOrNothing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	groups := []domain.DownloadGroup{
		batchGroup("Show A", 1, 12, now, 1080),
		batchGroup("Show B", 1, 12, now, 1080),
	}

	ids, err := s.InsertGroups(ctx, groups)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	got, err := s.GetWithDownloads(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetWithDownloadsFiltersByTitleAndVariant(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	_, err := s.InsertGroups(ctx, []domain.DownloadGroup{
		batchGroup("Alpha Show", 1, 12, now, 1080),
		batchGroup("Beta Show", 1, 12, now.Add(time.Minute), 1080),
	})
	require.NoError(t, err)

	byTitle, err := s.GetWithDownloads(ctx, ListOptions{TitleContains: "alpha"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Alpha Show", byTitle[0].Title)

	byVariant, err := s.GetWithDownloads(ctx, ListOptions{VariantKind: domain.VariantBatch})
	require.NoError(t, err)
	assert.Len(t, byVariant, 2)
	assert.Equal(t, "Beta Show", byVariant[0].Title, "newest updated_at first")
}

func TestGetWithDownloadsEmptyIsNotAnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	groups, err := s.GetWithDownloads(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestLastUpdated(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LastUpdated(ctx)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	later := now.Add(time.Hour)

	_, err = s.InsertGroups(ctx, []domain.DownloadGroup{
		batchGroup("Show A", 1, 12, now, 1080),
		batchGroup("Show B", 1, 12, later, 1080),
	})
	require.NoError(t, err)

	got, err := s.LastUpdated(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.WithinDuration(t, later, *got, time.Second)
}
