// Package server implements the RPC server of hKV. It glues a transport, a
// serializer and a service.Service together: the transport hands over raw
// request bytes, the server decodes them, executes the command and encodes
// the response.
//
// Error Handling:
//
//   - A request that cannot be decoded is answered with an InvalidCommand
//     response (status 400).
//
//   - A response that cannot be encoded is replaced by an InternalError
//     response (status 500).
//
//   - Errors and panics of the backend are turned into responses by the
//     service, so the transport never sees a Go error.
//
// The server registers the storage gauges (hkv_storage_tables, hkv_storage_keys,
// hkv_storage_size_bytes) if the backend implements storage.InfoProvider. They
// are served by the HTTP transport together with the command metrics.
//
// Usage Example:
//
//	config := common.DefaultServerConfig()
//	config.Endpoint = "0.0.0.0:8080"
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
package server
