// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rpc

import (
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
)

// Multiplex wraps httpHandler so that any request with a "application/grpc"
// content-type is routed to grpcServer instead, both served over cleartext
// HTTP/2 (h2c) on the one listener. gRPC always dials HTTP/2; REST clients
// fall back to HTTP/1.1 against the same port transparently.
func Multiplex(grpcServer *grpc.Server, httpHandler http.Handler) http.Handler {
	mixed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor == 2 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc") {
			grpcServer.ServeHTTP(w, r)
			return
		}
		httpHandler.ServeHTTP(w, r)
	})
	return h2c.NewHandler(mixed, &http2.Server{})
}
