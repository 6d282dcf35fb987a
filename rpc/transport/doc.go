// Package transport defines the contract between the RPC layer and the network.
// A transport moves opaque byte payloads; encoding them is the job of the
// serializer package.
//
// Key Components:
//
//   - IRPCClientTransport: Client side. Send blocks until the response for the
//     given request arrives, the timeout expires or all retries failed.
//
//   - IRPCServerTransport: Server side. Every received payload is passed to the
//     registered ServerHandleFunc and its result is sent back to the caller.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// Implementations live in the subpackages tcp, unix and http. The tcp and unix
// transports share the framed connection handling of the base package, which
// allows many requests in flight on a single connection.
package transport
