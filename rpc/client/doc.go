// Package client implements the RPC client of hKV.
//
// Key Components:
//
//   - Client: Created with NewRPCClient. Execute sends any CommandRequest and
//     returns the raw response; the typed methods (Hget, Hset, Hmget, ...)
//     convert failed responses into *storage.Error values, so callers can use
//     storage.CodeOf(err) to tell a missing key from an invalid request.
//
//   - NewRPCStorage: Returns a storage.Storage that forwards every call to a
//     remote server. It allows using a remote memtable wherever a local backend
//     is expected (and runs the same conformance suite). Transport failures are
//     reported as RetCStorageError.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:8080"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//
//	c, err := client.NewRPCClient(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  log.Fatal(err)
//	}
//	defer c.Close()
//
//	c.Hset("users", "alice", storage.StringValue("admin"))
//	v, err := c.Hget("users", "alice")
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
