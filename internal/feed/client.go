// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package feed fetches and decodes the upstream nyaa.si RSS feed of
// SubsPlease releases. Parsing a raw item into a typed release is the
// parser package's job; this package only gets bytes off the wire and
// decodes the RSS 2.0 envelope.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/animeservice/anime-service/internal/buildinfo"
	"github.com/animeservice/anime-service/internal/domain"
)

const (
	// FetchTimeout bounds a single feed fetch; exceeding it is a failed tick.
	FetchTimeout = 10 * time.Second

	defaultBaseURL = "https://nyaa.si/"
	defaultQuery   = "[SubsPlease]"
	defaultCategory = "1_2"
	defaultFilter   = "2"
)

// Item is one RSS <item> as decoded off the wire, before filename parsing.
type Item struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	GUID    string `xml:"guid"`
	PubDate string `xml:"pubDate"`
}

type rssChannel struct {
	Items []Item `xml:"channel>item"`
}

// Client fetches the nyaa.si RSS feed over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	query      string
	category   string
	filter     string
}

// Option customizes a Client.
type Option func(*Client)

// WithQuery overrides the default "[SubsPlease]" search query term.
func WithQuery(query string) Option {
	return func(c *Client) { c.query = query }
}

// WithHTTPClient swaps the underlying *http.Client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the default nyaa.si endpoint. A blank url is a no-op
// so callers can pass an unset config value straight through.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// NewClient constructs a feed Client against nyaa.si's RSS endpoint.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: FetchTimeout},
		baseURL:    defaultBaseURL,
		query:      defaultQuery,
		category:   defaultCategory,
		filter:     defaultFilter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves and decodes the feed. title, when non-empty, narrows the
// search query to a specific show; an empty title fetches the provider's
// full unfiltered feed.
func (c *Client) Fetch(ctx context.Context, title string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	endpoint, err := c.buildURL(title)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindFeed, "feed.Fetch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindFeed, "feed.Fetch", err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindFeed, "feed.Fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.NewError(domain.ErrKindFeed, "feed.Fetch",
			fmt.Errorf("feed request returned status %d", resp.StatusCode))
	}

	var channel rssChannel
	if err := xml.NewDecoder(resp.Body).Decode(&channel); err != nil {
		return nil, domain.NewError(domain.ErrKindFeed, "feed.Fetch", fmt.Errorf("decode rss: %w", err))
	}

	log.Debug().Int("items", len(channel.Items)).Str("title", title).Msg("fetched feed")
	return channel.Items, nil
}

func (c *Client) buildURL(title string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	query := c.query
	if title != "" {
		query = query + " " + title
	}

	q := base.Query()
	q.Set("page", "rss")
	q.Set("q", query)
	if c.category != "" {
		q.Set("c", c.category)
	}
	if c.filter != "" {
		q.Set("f", c.filter)
	}
	base.RawQuery = q.Encode()

	return base.String(), nil
}
