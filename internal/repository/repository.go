// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package repository persists DownloadGroup values against the unified
// download_groups/downloads schema shared by the SQLite and Postgres
// dialects in internal/database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/animeservice/anime-service/internal/dbinterface"
	"github.com/animeservice/anime-service/internal/domain"
)

// Store is the repository described by the system: it upserts groups and
// resolutions transactionally, queries by variant and title, and reports a
// monotonic last-updated watermark.
type Store struct {
	db dbinterface.TxBeginner
}

func NewStore(db dbinterface.TxBeginner) *Store {
	return &Store{db: db}
}

// InsertGroups atomically upserts a batch of groups: either every group
// lands or, on any failure, none do.
func (s *Store) InsertGroups(ctx context.Context, groups []domain.DownloadGroup) ([]int64, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "repository.InsertGroups", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		id, err := upsertGroupTx(ctx, tx, g)
		if err != nil {
			return nil, domain.NewError(domain.ErrKindInternal, "repository.InsertGroups", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "repository.InsertGroups", err)
	}
	return ids, nil
}

// UpsertGroup upserts a single group in its own transaction.
func (s *Store) UpsertGroup(ctx context.Context, g domain.DownloadGroup) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.NewError(domain.ErrKindInternal, "repository.UpsertGroup", err)
	}
	defer tx.Rollback()

	id, err := upsertGroupTx(ctx, tx, g)
	if err != nil {
		return 0, domain.NewError(domain.ErrKindInternal, "repository.UpsertGroup", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.NewError(domain.ErrKindInternal, "repository.UpsertGroup", err)
	}
	return id, nil
}

// upsertGroupTx locates the group by its unique identity (title, variant
// fields). If present and the stored updated_at is strictly older than g's,
// only the timestamp advances. If absent, it's inserted. Each Download whose
// resolution isn't already recorded for this group is then inserted;
// resolutions already present are skipped.
func upsertGroupTx(ctx context.Context, tx dbinterface.TxQuerier, g domain.DownloadGroup) (int64, error) {
	v := g.Variant

	var id int64
	var storedUpdatedAt time.Time
	err := tx.QueryRowContext(ctx, `
		SELECT id, updated_at FROM download_groups
		WHERE title = ? AND variant_kind = ? AND batch_start = ? AND batch_end = ?
		  AND episode_number = ? AND episode_decimal = ? AND version = ? AND extra = ?
	`, g.Title, string(v.Kind), v.BatchStart, v.BatchEnd, v.EpisodeNumber, v.EpisodeDecimal, v.Version, v.Extra).
		Scan(&id, &storedUpdatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO download_groups
				(title, variant_kind, batch_start, batch_end, episode_number, episode_decimal, version, extra, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`, g.Title, string(v.Kind), v.BatchStart, v.BatchEnd, v.EpisodeNumber, v.EpisodeDecimal, v.Version, v.Extra, g.CreatedAt, g.UpdatedAt).
			Scan(&id); err != nil {
			return 0, fmt.Errorf("insert group: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("locate group: %w", err)
	default:
		if storedUpdatedAt.Before(g.UpdatedAt) {
			if _, err := tx.ExecContext(ctx, `UPDATE download_groups SET updated_at = ? WHERE id = ?`, g.UpdatedAt, id); err != nil {
				return 0, fmt.Errorf("advance group timestamp: %w", err)
			}
		}
	}

	if len(g.Downloads) == 0 {
		return id, nil
	}

	existing := make(map[int]struct{}, len(g.Downloads))
	rows, err := tx.QueryContext(ctx, `SELECT resolution FROM downloads WHERE group_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("list existing resolutions: %w", err)
	}
	for rows.Next() {
		var res int
		if err := rows.Scan(&res); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan existing resolution: %w", err)
		}
		existing[res] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("list existing resolutions: %w", err)
	}
	rows.Close()

	for _, d := range g.Downloads {
		if _, ok := existing[d.Resolution]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO downloads (group_id, published_date, resolution, comments, torrent, file_name)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, id, d.PublishedDate, d.Resolution, d.Comments, d.Torrent, d.FileName); err != nil {
			return 0, fmt.Errorf("insert download: %w", err)
		}
		existing[d.Resolution] = struct{}{}
	}

	return id, nil
}

// ListOptions filters GetWithDownloads. A zero value matches everything.
type ListOptions struct {
	VariantKind   domain.VariantKind // "" matches any variant
	TitleContains string             // "" matches any title
}

// GetWithDownloads returns up to 25 groups matching opts, newest first, each
// joined with its downloads ordered by resolution descending. An empty
// result is a valid return, not an error.
func (s *Store) GetWithDownloads(ctx context.Context, opts ListOptions) ([]domain.DownloadGroup, error) {
	query := `
		SELECT id, title, variant_kind, batch_start, batch_end, episode_number, episode_decimal, version, extra, created_at, updated_at
		FROM download_groups
		WHERE 1 = 1
	`
	var args []any
	if opts.VariantKind != "" {
		query += " AND variant_kind = ?"
		args = append(args, string(opts.VariantKind))
	}
	if opts.TitleContains != "" {
		query += " AND LOWER(title) LIKE LOWER(?)"
		args = append(args, "%"+opts.TitleContains+"%")
	}
	query += " ORDER BY updated_at DESC LIMIT 25"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "repository.GetWithDownloads", err)
	}
	defer rows.Close()

	var groups []domain.DownloadGroup
	index := make(map[int64]int)
	ids := make([]int64, 0, 25)
	for rows.Next() {
		var g domain.DownloadGroup
		var kind string
		if err := rows.Scan(&g.ID, &g.Title, &kind, &g.Variant.BatchStart, &g.Variant.BatchEnd,
			&g.Variant.EpisodeNumber, &g.Variant.EpisodeDecimal, &g.Variant.Version, &g.Variant.Extra,
			&g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, domain.NewError(domain.ErrKindInternal, "repository.GetWithDownloads", err)
		}
		g.Variant.Kind = domain.VariantKind(kind)
		index[g.ID] = len(groups)
		ids = append(ids, g.ID)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "repository.GetWithDownloads", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	placeholders := make([]string, len(ids))
	dlArgs := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		dlArgs[i] = id
	}
	dlQuery := fmt.Sprintf(`
		SELECT group_id, published_date, resolution, comments, torrent, file_name
		FROM downloads
		WHERE group_id IN (%s)
		ORDER BY group_id, resolution DESC
	`, strings.Join(placeholders, ", "))

	dlRows, err := s.db.QueryContext(ctx, dlQuery, dlArgs...)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "repository.GetWithDownloads", err)
	}
	defer dlRows.Close()

	for dlRows.Next() {
		var groupID int64
		var d domain.Download
		if err := dlRows.Scan(&groupID, &d.PublishedDate, &d.Resolution, &d.Comments, &d.Torrent, &d.FileName); err != nil {
			return nil, domain.NewError(domain.ErrKindInternal, "repository.GetWithDownloads", err)
		}
		idx, ok := index[groupID]
		if !ok {
			continue
		}
		groups[idx].Downloads = append(groups[idx].Downloads, d)
	}
	if err := dlRows.Err(); err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "repository.GetWithDownloads", err)
	}

	return groups, nil
}

// LastUpdated returns max(updated_at) across all groups, or nil if there are
// none yet.
func (s *Store) LastUpdated(ctx context.Context) (*time.Time, error) {
	var t sql.NullTime
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM download_groups`).Scan(&t); err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "repository.LastUpdated", err)
	}
	if !t.Valid {
		return nil, nil
	}
	return &t.Time, nil
}
