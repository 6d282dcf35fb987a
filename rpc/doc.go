// Package rpc exposes the hash-table service of hKV over the network.
//
// The package is organized into several subpackages:
//
//   - common: Server and client configuration plus logger setup.
//
//   - transport: Framed byte transports with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Codecs turning service.CommandRequest and service.CommandResponse
//     into bytes (Binary, Protobuf wire format, RESP, JSON, GOB).
//
//   - server: Decodes requests, runs them against the service and encodes the result.
//
//   - client: Typed command client and a storage.Storage backed by a remote server.
package rpc
