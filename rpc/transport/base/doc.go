// Package base implements the stream transports of hKV independent of the
// concrete network (TCP, Unix sockets). Protocol specific behavior is plugged
// in through small connector interfaces.
//
// Wire Format:
//
//	Every request and response is one frame:
//
//	  +----------------------+-------------------+-----------------+
//	  | requestID (u64, BE)  | length (u32, BE)  | payload         |
//	  +----------------------+-------------------+-----------------+
//
//	The server answers each frame on the connection it arrived on, echoing the
//	requestID. Responses may arrive in any order; the client correlates them by
//	requestID. Payloads larger than MaxFrameSize are rejected.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     (dialing, listening, socket options).
//
//   - clientTransport: Manages multiple connections per endpoint with round-robin
//     selection, retries with exponential backoff and reconnects on read errors.
//     Pending requests are tracked in an xsync.MapOf keyed by requestID.
//
//   - serverTransport: Accepts connections and runs a bounded pool of workers per
//     connection, each calling the registered handler.
//
// Performance Optimizations:
//
//   - Connection Pooling: Multiple connections per endpoint improve throughput
//     for large payloads. For small messages a single connection per endpoint
//     often performs better.
//
//   - Buffer Pooling: The server uses a sync.Pool to reuse read buffers.
//
//   - Asynchronous Processing: Requests are pipelined on a connection, so slow
//     requests do not block fast ones.
//
//   - Frame Batching: Header and payload are written with net.Buffers in a
//     single write operation.
//
// Thread Safety:
//
//	All public methods are thread-safe. Writes to a connection are serialized
//	with a mutex, reads happen in a single goroutine per connection.
package base
