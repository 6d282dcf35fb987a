// Package serializer converts command requests and responses to bytes and back.
// It defines a common interface and several implementations that trade speed,
// payload size and interoperability against each other.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//     New(name) returns an implementation by name.
//
//   - binarySerializerImpl: Custom binary format. A flag byte marks the fields
//     that are present, so only those are written. Fastest and smallest format.
//
//   - protoSerializerImpl: Protobuf wire format written with protowire. The schema
//     is documented on NewProtoSerializer, so clients in other languages can
//     generate matching code.
//
//   - respSerializerImpl: Redis serialization protocol. Requests look like the
//     commands redis-cli would send (HGET table key).
//
//   - jsonSerializerImpl: JSON encoding, useful for debugging or for the http
//     transport. Requests are envelopes named after the command.
//
//   - gobSerializerImpl: Go's built-in gob encoding. Type information is sent with
//     every message, which makes it the largest and slowest format.
//
// The binary, proto and resp encodings share the flat view of the command
// variants in commands.go.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	s, err := serializer.New("binary")
//	data, err := s.SerializeRequest(service.NewHget("users", "alice"))
//	// ... send data ...
//	var resp service.CommandResponse
//	err = s.DeserializeResponse(receivedData, &resp)
package serializer
