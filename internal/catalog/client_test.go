// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animeservice/anime-service/internal/domain"
)

const sampleSingle = `{
  "data": {
    "id": "1",
    "attributes": {
      "canonicalTitle": "Example",
      "synopsis": "An example show.",
      "episodeCount": 12,
      "status": "finished",
      "startDate": "2020-01-01",
      "updatedAt": "2020-01-02T00:00:00Z",
      "posterImage": {"original": "https://media.kitsu.io/poster.jpg"}
    }
  }
}`

const sampleCollection = `{
  "data": [
    {"id": "1", "attributes": {"canonicalTitle": "Example", "updatedAt": "2020-01-02T00:00:00Z"}}
  ]
}`

func TestGetDecodesShowAndSetsHeaders(t *testing.T) {
	t.Parallel()

	var gotAccept, gotUserAgent, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUserAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", jsonAPIContentType)
		_, _ = w.Write([]byte(sampleSingle))
	}))
	defer srv.Close()

	client := NewClient(WithHTTPClient(srv.Client()))
	client.baseURL = srv.URL + "/"

	show, err := client.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Example", show.CanonicalTitle)
	assert.Equal(t, 12, show.EpisodeCount)
	assert.Equal(t, "https://media.kitsu.io/poster.jpg", show.PosterImage)
	assert.Equal(t, jsonAPIContentType, gotAccept)
	assert.NotEmpty(t, gotUserAgent)
	assert.Contains(t, gotPath, "/1")
}

func TestListDecodesCollection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCollection))
	}))
	defer srv.Close()

	client := NewClient(WithHTTPClient(srv.Client()))
	client.baseURL = srv.URL + "/"

	shows, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "Example", shows[0].CanonicalTitle)
}

func TestGetNotFoundMapsToNotFoundKind(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(WithHTTPClient(srv.Client()))
	client.baseURL = srv.URL + "/"

	_, err := client.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindNotFound, domain.Kind(err))
}

func TestGetRejectsPathTraversalID(t *testing.T) {
	t.Parallel()

	client := NewClient()
	_, err := client.Get(context.Background(), "../../etc/passwd")
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindNotFound, domain.Kind(err))
}

func TestGetServerErrorMapsToCatalogKind(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithHTTPClient(srv.Client()))
	client.baseURL = srv.URL + "/"

	_, err := client.Get(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrKindCatalog, domain.Kind(err))
}
