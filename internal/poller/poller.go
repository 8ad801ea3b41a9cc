// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package poller runs the aligned periodic tick that fetches the upstream
// feed, parses it, filters against a watermark, and hands new groups to a
// Handler (persist-then-broadcast, or broadcast-only).
package poller

import (
	"context"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/animeservice/anime-service/internal/domain"
	"github.com/animeservice/anime-service/internal/feed"
	"github.com/animeservice/anime-service/internal/parser"
)

// DefaultPeriod is the tick interval used when the caller doesn't override it.
const DefaultPeriod = 60 * time.Second

// FeedClient is the outbound RSS dependency. feed.Client satisfies this.
type FeedClient interface {
	Fetch(ctx context.Context, title string) ([]feed.Item, error)
}

// Repository is the subset of repository.Store the poller needs to seed its
// watermark on a persistent start.
type Repository interface {
	LastUpdated(ctx context.Context) (*time.Time, error)
}

// Handler reacts to a batch of groups whose updated_at exceeds the current
// watermark. Returning an error prevents the watermark from advancing.
type Handler interface {
	Handle(ctx context.Context, groups []domain.DownloadGroup) error
}

// TickRecorder observes tick outcomes and ingested group counts for
// metrics. *metrics.Manager satisfies this through its RecordTick and
// RecordGroupsIngested methods.
type TickRecorder interface {
	RecordTick(outcome string)
	RecordGroupsIngested(n int)
}

// Poller owns the single watermark mutated only by its own tick task.
type Poller struct {
	client  FeedClient
	handler Handler
	period  time.Duration
	metrics TickRecorder

	mu        sync.Mutex
	watermark time.Time
}

// WithMetrics attaches a TickRecorder that observes every tick's outcome.
// Returns p for chaining; a nil recorder is a no-op.
func (p *Poller) WithMetrics(m TickRecorder) *Poller {
	p.metrics = m
	return p
}

// NewPersistent seeds the watermark from repo.LastUpdated, falling back to
// now if the repository has no groups yet.
func NewPersistent(ctx context.Context, client FeedClient, handler Handler, repo Repository, period time.Duration) (*Poller, error) {
	if period <= 0 {
		period = DefaultPeriod
	}

	watermark := time.Now()
	if last, err := repo.LastUpdated(ctx); err != nil {
		return nil, domain.NewError(domain.ErrKindInternal, "poller.NewPersistent", err)
	} else if last != nil {
		watermark = *last
	}

	return &Poller{client: client, handler: handler, period: period, watermark: watermark}, nil
}

// NewTransient seeds the watermark from an explicit starting point
// (commonly now - 7 days), for broadcast-only operation with no repository.
func NewTransient(client FeedClient, handler Handler, seed time.Time, period time.Duration) *Poller {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Poller{client: client, handler: handler, period: period, watermark: seed}
}

// Watermark returns the current watermark value.
func (p *Poller) Watermark() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watermark
}

// Run blocks, ticking at aligned wall-clock boundaries of p.period until ctx
// is canceled. The first tick fires at the next period boundary; missed
// ticks (e.g. a slow previous tick) are skipped, never burst-replayed.
func (p *Poller) Run(ctx context.Context) {
	delay := alignDelay(time.Now(), p.period)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := p.tick(ctx); err != nil {
			log.Error().Err(err).Msg("poller tick failed")
		}

		timer.Reset(alignDelay(time.Now(), p.period))
	}
}

// alignDelay returns the wait until the next boundary of period after now,
// computed from wall-clock time.
func alignDelay(now time.Time, period time.Duration) time.Duration {
	if period <= 0 {
		period = DefaultPeriod
	}
	next := now.Truncate(period).Add(period)
	return next.Sub(now)
}

func (p *Poller) tick(ctx context.Context) (err error) {
	if p.metrics != nil {
		defer func() {
			if err != nil {
				p.metrics.RecordTick("error")
			} else {
				p.metrics.RecordTick("ok")
			}
		}()
	}

	watermark := p.Watermark()

	items, err := p.client.Fetch(ctx, "")
	if err != nil {
		return err
	}

	groups := buildGroups(items)

	filtered := make([]domain.DownloadGroup, 0, len(groups))
	for _, g := range groups {
		if g.UpdatedAt.After(watermark) {
			filtered = append(filtered, g)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	if err := p.handler.Handle(ctx, filtered); err != nil {
		return err
	}

	if p.metrics != nil {
		p.metrics.RecordGroupsIngested(len(filtered))
	}

	newWatermark := watermark
	for _, g := range filtered {
		if g.UpdatedAt.After(newWatermark) {
			newWatermark = g.UpdatedAt
		}
	}

	p.mu.Lock()
	p.watermark = newWatermark
	p.mu.Unlock()
	return nil
}

// groupKey identifies a DownloadGroup's identity for aggregation purposes,
// matching the repository's unique index fields.
type groupKey struct {
	title string
	v     domain.DownloadVariant
}

// buildGroups parses each feed item and aggregates items that share a
// release identity into a single DownloadGroup. Items with an unparseable
// filename, or missing pub-date/link/guid, are dropped and logged.
func buildGroups(items []feed.Item) []domain.DownloadGroup {
	order := make([]groupKey, 0, len(items))
	byKey := make(map[groupKey]*domain.DownloadGroup, len(items))

	for _, item := range items {
		if strings.TrimSpace(item.Link) == "" || strings.TrimSpace(item.GUID) == "" {
			log.Debug().Str("title", item.Title).Msg("dropping feed item missing link or guid")
			continue
		}

		pubDate, err := mail.ParseDate(item.PubDate)
		if err != nil {
			log.Debug().Str("title", item.Title).Err(err).Msg("dropping feed item with unparseable pub date")
			continue
		}

		release, err := parser.ParseFilename(item.Title)
		if err != nil {
			log.Debug().Str("title", item.Title).Err(err).Msg("dropping feed item with unparseable filename")
			continue
		}

		key := groupKey{title: release.Title, v: release.Variant}
		group, ok := byKey[key]
		if !ok {
			group = &domain.DownloadGroup{
				Title:     release.Title,
				Variant:   release.Variant,
				CreatedAt: pubDate.UTC(),
				UpdatedAt: pubDate.UTC(),
			}
			byKey[key] = group
			order = append(order, key)
		}
		if pubDate.UTC().After(group.UpdatedAt) {
			group.UpdatedAt = pubDate.UTC()
		}
		group.Downloads = append(group.Downloads, domain.Download{
			PublishedDate: pubDate.UTC(),
			Resolution:    release.Resolution,
			Comments:      item.GUID,
			Torrent:       item.Link,
			FileName:      item.Title,
		})
	}

	groups := make([]domain.DownloadGroup, 0, len(order))
	for _, key := range order {
		g := *byKey[key]
		sort.Slice(g.Downloads, func(i, j int) bool { return g.Downloads[i].Resolution > g.Downloads[j].Resolution })
		groups = append(groups, g)
	}
	return groups
}
