// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rpc

import (
	"google.golang.org/grpc"
)

// serviceName matches the path gRPC clients dial: /anime.Downloads/Subscribe.
const serviceName = "anime.Downloads"

// SubscribeServer is the server side of the Subscribe stream: one message
// out per broadcast download group, no messages in.
type SubscribeServer interface {
	Send(*DownloadCollection) error
	grpc.ServerStream
}

type subscribeServer struct {
	grpc.ServerStream
}

func (s *subscribeServer) Send(m *DownloadCollection) error {
	return s.ServerStream.SendMsg(m)
}

// DownloadsServer is the interface the Downloads service dispatches to.
// Server (server.go) implements it against a hub.
type DownloadsServer interface {
	Subscribe(*SubscribeRequest, SubscribeServer) error
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	req := new(SubscribeRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(DownloadsServer).Subscribe(req, &subscribeServer{ServerStream: stream})
}

// ServiceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would generate from a one-RPC "Downloads" service definition. There is no
// .proto file: the wire contract is this struct plus the jsonCodec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DownloadsServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "anime/downloads.proto",
}
