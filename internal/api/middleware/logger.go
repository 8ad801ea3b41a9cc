// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// HTTPLogger logs every request at trace level using the global zerolog
// logger, and recovers + logs panics with their stack trace before
// re-raising a 500 to the client.
func HTTPLogger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		t1 := time.Now()
		defer func() {
			t2 := time.Now()

			if rec := recover(); rec != nil {
				log.Error().
					Str("type", "error").
					Interface("recover_info", rec).
					Bytes("debug_stack", debug.Stack()).
					Msg("log system error")
				http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}

			log.Trace().
				Str("type", "access").
				Str("remote_ip", r.RemoteAddr).
				Str("url", r.URL.Path).
				Str("proto", r.Proto).
				Str("method", r.Method).
				Str("user_agent", r.Header.Get("User-Agent")).
				Int("status", ww.Status()).
				Float64("latency_ms", float64(t2.Sub(t1).Nanoseconds())/1000000.0).
				Int("bytes_out", ww.BytesWritten()).
				Msg("incoming_request")
		}()

		next.ServeHTTP(ww, r)
	}
	return http.HandlerFunc(fn)
}
