// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rpc

import (
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/animeservice/anime-service/internal/hub"
)

// subscriberQueueDepth is the per-subscriber buffered-message count handed
// to hub.Subscribe. gRPC subscribers get a shallower queue than SSE's:
// a lagging streaming client is cut loose quickly rather than let it fall
// far behind.
const subscriberQueueDepth = 4

// Server implements DownloadsServer against a hub.Hub, fanning every
// broadcast group out to each Subscribe caller until its context ends or it
// falls behind the hub's queue depth.
type Server struct {
	hub *hub.Hub
}

// NewServer builds a Server backed by h.
func NewServer(h *hub.Hub) *Server {
	return &Server{hub: h}
}

func (s *Server) Subscribe(_ *SubscribeRequest, stream SubscribeServer) error {
	sub := s.hub.Subscribe(subscriberQueueDepth)
	defer sub.Close()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Lagged():
			return status.Error(codes.Unavailable, "subscriber fell behind hub broadcast queue")
		case g, open := <-sub.C():
			if !open {
				return nil
			}
			if err := stream.Send(toDownloadCollection(g)); err != nil {
				return err
			}
		}
	}
}

// NewGRPCServer builds a *grpc.Server with the Downloads service registered
// against h. ForceServerCodec pins every call to the JSON codec: there is
// no protobuf fallback since no message here was ever a protobuf message.
func NewGRPCServer(h *hub.Hub) *grpc.Server {
	gs := grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
	gs.RegisterService(&ServiceDesc, NewServer(h))
	log.Info().Str("service", serviceName).Msg("registered gRPC service")
	return gs
}
