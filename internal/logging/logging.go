// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logging configures the global zerolog logger from domain.Config:
// a human-readable console writer on stderr, plus an optional rotating file
// writer when a log path is set.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/animeservice/anime-service/internal/domain"
)

// Configure sets log.Logger's level and output according to cfg. Safe to
// call once at startup.
func Configure(cfg *domain.Config) {
	level := parseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	var writers []io.Writer
	writers = append(writers, console)

	if strings.TrimSpace(cfg.LogPath) != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    maxOr(cfg.LogMaxSize, 50),
			MaxBackups: maxOr(cfg.LogMaxBackups, 3),
			Compress:   true,
		})
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
}

func parseLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func maxOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
