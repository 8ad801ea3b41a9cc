// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package parser extracts a structured release out of a SubsPlease-style
// fansub filename: a bracketed source tag, a title, a required resolution
// tag, and a batch range / episode number / plain movie marker.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/animeservice/anime-service/internal/domain"
)

// Release is the structured result of parsing one filename.
type Release struct {
	Source     string
	Title      string
	Resolution int
	Variant    domain.DownloadVariant
}

var resolutionTags = []struct {
	tag   string
	value int
}{
	{"(1080p)", 1080},
	{"(720p)", 720},
	{"(480p)", 480},
}

// ParseFilename parses a release filename such as:
//
//	[SubsPlease] Arknights - Reimei Zensou (01-08) (1080p) [Batch]
//	[SubsPlease] 16bit Sensation - Another Layer - 10 (1080p) [2A96C634].mkv
//
// into its source tag, title, resolution and variant (batch, episode, or
// movie). It returns an error if the filename doesn't match the expected
// shape.
func ParseFilename(name string) (Release, error) {
	source, rest, ok := bracketPrefix(name)
	if !ok {
		return Release{}, fmt.Errorf("parser: missing leading source tag in %q", name)
	}

	idx := strings.IndexByte(rest, '[')
	if idx < 0 {
		return Release{}, fmt.Errorf("parser: missing trailing tag in %q", name)
	}
	fullTitle, tail := rest[:idx], rest[idx:]

	tag, after, ok := bracketPrefix(tail)
	if !ok {
		return Release{}, fmt.Errorf("parser: malformed trailing tag in %q", name)
	}
	if after != "" && after != ".mkv" {
		return Release{}, fmt.Errorf("parser: unexpected trailing content %q in %q", after, name)
	}

	value := strings.TrimSpace(fullTitle)
	resolution, value, err := extractResolution(value)
	if err != nil {
		return Release{}, fmt.Errorf("parser: %w in %q", err, name)
	}

	if tag == "Batch" {
		start, end, title, err := extractBatchRange(value)
		if err != nil {
			return Release{}, fmt.Errorf("parser: %w in %q", err, name)
		}
		return Release{
			Source:     source,
			Title:      title,
			Resolution: resolution,
			Variant: domain.DownloadVariant{
				Kind:       domain.VariantBatch,
				BatchStart: start,
				BatchEnd:   end,
			},
		}, nil
	}

	dashIdx := strings.LastIndex(value, "- ")
	if dashIdx < 0 {
		return Release{
			Source:     source,
			Title:      value,
			Resolution: resolution,
			Variant:    domain.DownloadVariant{Kind: domain.VariantMovie},
		}, nil
	}

	slice := strings.TrimLeft(value[dashIdx:], "- #")
	ep, ok := parseEpisodeIdentifier(slice)
	if !ok {
		return Release{
			Source:     source,
			Title:      value,
			Resolution: resolution,
			Variant:    domain.DownloadVariant{Kind: domain.VariantMovie},
		}, nil
	}

	return Release{
		Source:     source,
		Title:      strings.TrimSpace(value[:dashIdx]),
		Resolution: resolution,
		Variant:    ep,
	}, nil
}

// bracketPrefix splits "[tag]rest" into ("tag", "rest", true). It returns
// false if s doesn't begin with a balanced bracket pair.
func bracketPrefix(s string) (tag string, rest string, ok bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", s, false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", s, false
	}
	return s[1:end], s[end+1:], true
}

// extractResolution finds the first of (1080p)/(720p)/(480p) present in
// value and returns it along with the text preceding it, trimmed. Priority
// is 1080 > 720 > 480 when more than one literal happens to be present.
func extractResolution(value string) (int, string, error) {
	for _, r := range resolutionTags {
		if idx := strings.Index(value, r.tag); idx >= 0 {
			return r.value, strings.TrimSpace(value[:idx]), nil
		}
	}
	return 0, "", fmt.Errorf("no recognized resolution tag")
}

// extractBatchRange parses the last parenthesized "(start-end)" group in
// value into a start/end pair and returns the text preceding it, trimmed.
func extractBatchRange(value string) (start, end int, title string, err error) {
	idx := strings.LastIndexByte(value, '(')
	if idx < 0 {
		return 0, 0, "", fmt.Errorf("no batch range found")
	}
	group := value[idx:]
	if !strings.HasSuffix(group, ")") {
		return 0, 0, "", fmt.Errorf("unterminated batch range %q", group)
	}
	inner := group[1 : len(group)-1]
	parts := strings.SplitN(inner, "-", 2)
	if len(parts) != 2 {
		return 0, 0, "", fmt.Errorf("malformed batch range %q", group)
	}

	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, "", fmt.Errorf("malformed batch range start %q", parts[0])
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, "", fmt.Errorf("malformed batch range end %q", parts[1])
	}

	return start, end, strings.TrimSpace(value[:idx]), nil
}

// parseEpisodeIdentifier parses "10", "10.5", "10v2", "10.5v2", or
// "10Extra" style episode markers. The leading digits (episode number) are
// mandatory; decimal and version suffixes are optional and may appear in
// either order; any trailing alphanumeric run is captured as Extra.
func parseEpisodeIdentifier(s string) (domain.DownloadVariant, bool) {
	number, n, ok := leadingDigits(s)
	if !ok {
		return domain.DownloadVariant{}, false
	}
	rest := s[n:]

	var decimal, version int
	var haveDecimal, haveVersion bool
	for {
		if !haveDecimal && strings.HasPrefix(rest, ".") {
			if d, n, ok := leadingDigits(rest[1:]); ok {
				decimal, rest, haveDecimal = d, rest[1+n:], true
				continue
			}
		}
		if !haveVersion && strings.HasPrefix(rest, "v") {
			if v, n, ok := leadingDigits(rest[1:]); ok {
				version, rest, haveVersion = v, rest[1+n:], true
				continue
			}
		}
		break
	}

	extra := leadingAlphanumeric(rest)

	return domain.DownloadVariant{
		Kind:           domain.VariantEpisode,
		EpisodeNumber:  number,
		EpisodeDecimal: decimal,
		Version:        version,
		Extra:          extra,
	}, true
}

func leadingDigits(s string) (value int, n int, ok bool) {
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	v, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0, 0, false
	}
	return v, n, true
}

func leadingAlphanumeric(s string) string {
	n := 0
	for n < len(s) {
		c := s[n]
		isAlnum := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlnum {
			break
		}
		n++
	}
	return s[:n]
}
