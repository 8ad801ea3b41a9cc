// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package catalog proxies show metadata from the Kitsu JSON:API. It is a
// thin outbound HTTP boundary: REST handlers forward /shows requests here
// and relay the result, without persisting anything locally.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/animeservice/anime-service/internal/buildinfo"
	"github.com/animeservice/anime-service/internal/domain"
)

const (
	jsonAPIContentType = "application/vnd.api+json"
	defaultBaseURL      = "https://kitsu.io/api/edge/anime/"
	defaultTimeout      = 15 * time.Second
)

// Show is the subset of a Kitsu anime resource's JSON:API attributes that
// the REST proxy exposes.
type Show struct {
	ID            string    `json:"id"`
	CanonicalTitle string   `json:"canonicalTitle"`
	Synopsis      string    `json:"synopsis"`
	EpisodeCount  int       `json:"episodeCount"`
	Status        string    `json:"status"`
	StartDate     string    `json:"startDate"`
	PosterImage   string    `json:"posterImage,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type jsonAPIAttributes struct {
	CanonicalTitle string `json:"canonicalTitle"`
	Synopsis       string `json:"synopsis"`
	EpisodeCount   int    `json:"episodeCount"`
	Status         string `json:"status"`
	StartDate      string `json:"startDate"`
	UpdatedAt      time.Time `json:"updatedAt"`
	PosterImage    struct {
		Original string `json:"original"`
	} `json:"posterImage"`
}

type jsonAPIResource struct {
	ID         string            `json:"id"`
	Attributes jsonAPIAttributes `json:"attributes"`
}

type jsonAPISingle struct {
	Data jsonAPIResource `json:"data"`
}

type jsonAPICollection struct {
	Data []jsonAPIResource `json:"data"`
}

func (r jsonAPIResource) toShow() Show {
	return Show{
		ID:             r.ID,
		CanonicalTitle: r.Attributes.CanonicalTitle,
		Synopsis:       r.Attributes.Synopsis,
		EpisodeCount:   r.Attributes.EpisodeCount,
		Status:         r.Attributes.Status,
		StartDate:      r.Attributes.StartDate,
		PosterImage:    r.Attributes.PosterImage.Original,
		UpdatedAt:      r.Attributes.UpdatedAt,
	}
}

// Client is a read-only Kitsu JSON:API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying *http.Client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the default Kitsu endpoint. A blank url is a no-op
// so callers can pass an unset config value straight through.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// NewClient constructs a catalog Client against kitsu.io.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the default anime collection page.
func (c *Client) List(ctx context.Context) ([]Show, error) {
	var doc jsonAPICollection
	if err := c.get(ctx, c.baseURL, &doc); err != nil {
		return nil, err
	}

	shows := make([]Show, 0, len(doc.Data))
	for _, res := range doc.Data {
		shows = append(shows, res.toShow())
	}
	return shows, nil
}

// Get fetches a single show by its Kitsu id.
func (c *Client) Get(ctx context.Context, id string) (*Show, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindNotFound, "catalog.Get", err)
	}

	endpoint, err := url.JoinPath(c.baseURL, id)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindCatalog, "catalog.Get", err)
	}

	var doc jsonAPISingle
	if err := c.get(ctx, endpoint, &doc); err != nil {
		return nil, err
	}

	show := doc.Data.toShow()
	return &show, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.NewError(domain.ErrKindCatalog, "catalog.get", err)
	}
	req.Header.Set("Accept", jsonAPIContentType)
	req.Header.Set("Content-Type", jsonAPIContentType)
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewError(domain.ErrKindCatalog, "catalog.get", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewError(domain.ErrKindNotFound, "catalog.get", fmt.Errorf("show not found"))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.NewError(domain.ErrKindCatalog, "catalog.get",
			fmt.Errorf("catalog request returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewError(domain.ErrKindCatalog, "catalog.get", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// normalizeID trims whitespace and rejects path-traversal-style ids before
// they're joined into the outbound URL.
func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("invalid show id")
	}
	return id, nil
}
