// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/animeservice/anime-service/internal/domain"
	"github.com/animeservice/anime-service/internal/hub"
)

func dialTestServer(t *testing.T, gs *grpc.Server) (*grpc.ClientConn, func()) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go gs.Serve(lis)

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	require.NoError(t, err)

	return conn, func() {
		conn.Close()
		gs.Stop()
		lis.Close()
	}
}

func TestSubscribeStreamsBroadcastGroups(t *testing.T) {
	t.Parallel()

	h := hub.New()
	gs := NewGRPCServer(h)
	conn, cleanup := dialTestServer(t, gs)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := conn.NewStream(ctx, &grpc.StreamDesc{StreamName: "Subscribe", ServerStreams: true}, "/"+serviceName+"/Subscribe")
	require.NoError(t, err)
	require.NoError(t, stream.SendMsg(&SubscribeRequest{}))
	require.NoError(t, stream.CloseSend())

	// Let the server register its hub subscription before broadcasting.
	time.Sleep(50 * time.Millisecond)
	h.Broadcast(domain.DownloadGroup{
		Title:     "Example",
		Variant:   domain.DownloadVariant{Kind: domain.VariantEpisode, EpisodeNumber: 3},
		Downloads: []domain.Download{{Resolution: 1080, Torrent: "magnet:?xt=1"}},
	})

	out := new(DownloadCollection)
	require.NoError(t, stream.RecvMsg(out))
	require.Equal(t, "Example", out.Title)
	require.Equal(t, "episode", out.Variant.Kind)
	require.Len(t, out.Downloads, 1)
	require.Equal(t, 1080, out.Downloads[0].Resolution)
}

func TestSubscribeReturnsUnavailableWhenLagged(t *testing.T) {
	t.Parallel()

	h := hub.New()
	gs := NewGRPCServer(h)
	conn, cleanup := dialTestServer(t, gs)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := conn.NewStream(ctx, &grpc.StreamDesc{StreamName: "Subscribe", ServerStreams: true}, "/"+serviceName+"/Subscribe")
	require.NoError(t, err)
	require.NoError(t, stream.SendMsg(&SubscribeRequest{}))
	require.NoError(t, stream.CloseSend())

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < subscriberQueueDepth+2; i++ {
		h.Broadcast(domain.DownloadGroup{Title: "Flood"})
	}

	out := new(DownloadCollection)
	var recvErr error
	for i := 0; i < subscriberQueueDepth+2; i++ {
		if recvErr = stream.RecvMsg(out); recvErr != nil {
			break
		}
	}
	require.Error(t, recvErr)
	require.Equal(t, codes.Unavailable, status.Code(recvErr))
}
