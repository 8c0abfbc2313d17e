// Package rpcapi is the binary-RPC half of the Dispatch Layer (spec.md
// §4.7): the same DataService/TradingService/Health catalogue the HTTP
// surface exposes, framed over grpc-go instead of JSON+HTTP.
//
// spec.md §1 puts schema/codegen for the wire contract out of scope
// ("assumed pre-generated"), and this exercise forbids invoking protoc.
// Rather than hand-author .pb.go descriptor boilerplate, the server
// registers a codec (gwjson) that marshals the plain Go structs already
// shared with the HTTP surface as JSON over the gRPC framing — grpc-go's
// encoding.Codec is exactly the seam the library exposes for this
// (google.golang.org/grpc/encoding), so every other piece of the
// transport (HTTP/2 framing, keepalive, metadata, status codes) is the
// real grpc-go stack, not a reimplementation of it.
package rpcapi

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "gwjson"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
