// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package rpc exposes the download feed over gRPC alongside the REST/SSE
// surface, multiplexed on the same HTTP/2 socket. There is no protoc
// codegen here: the service is one hand-written streaming method and a
// JSON wire codec, registered directly against grpc.ServiceDesc.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is the gRPC content-subtype this codec answers to, i.e. wire
// requests arrive as "application/grpc+json".
const codecName = "json"

// jsonCodec marshals gRPC messages as JSON instead of protobuf. Every
// message type the Downloads service sends or receives is a plain Go
// struct, not a generated protobuf message.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal %T: %w", v, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
