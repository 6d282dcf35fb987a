package serializer

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/hKV/lib/service"
)

// IRPCSerializer is the interface for all request/response serializers
type IRPCSerializer interface {
	// SerializeRequest serializes a request into a byte array
	SerializeRequest(req *service.CommandRequest) ([]byte, error)
	// DeserializeRequest deserializes a byte array into the given request
	DeserializeRequest(b []byte, req *service.CommandRequest) error
	// SerializeResponse serializes a response into a byte array
	SerializeResponse(resp *service.CommandResponse) ([]byte, error)
	// DeserializeResponse deserializes a byte array into the given response
	DeserializeResponse(b []byte, resp *service.CommandResponse) error
}

// serializers maps the names accepted by New to their factories
var serializers = map[string]func() IRPCSerializer{
	"json":   NewJSONSerializer,
	"gob":    NewGOBSerializer,
	"binary": NewBinarySerializer,
	"proto":  NewProtoSerializer,
	"resp":   NewRESPSerializer,
}

// New returns the serializer with the given name (json, gob, binary, proto, resp)
func New(name string) (IRPCSerializer, error) {
	factory, ok := serializers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown serializer: %s", name)
	}
	return factory(), nil
}
