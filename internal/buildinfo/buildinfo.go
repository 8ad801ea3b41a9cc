// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package buildinfo exposes version metadata injected at link time via
// -ldflags, plus the User-Agent string outbound HTTP clients present to
// nyaa.si and Kitsu.
package buildinfo

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/animeservice/anime-service/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// UserAgent is sent on every outbound feed/catalog request.
var UserAgent string

func init() {
	UserAgent = fmt.Sprintf("anime-service/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// String renders a human-readable multi-line build summary.
func String() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild date: %s", Version, Commit, Date)
}

type info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// JSON renders the build metadata as a JSON object with version, commit
// and date fields.
func JSON() ([]byte, error) {
	return json.Marshal(info{Version: Version, Commit: Commit, Date: Date})
}
