package server

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/rpc/common"
	"github.com/ValentinKolb/hKV/rpc/serializer"
	"github.com/ValentinKolb/hKV/rpc/transport/unix"
)

// roundTrip sends a request through Handle and decodes the answer
func roundTrip(t *testing.T, s *RPCServer, ser serializer.IRPCSerializer, req *service.CommandRequest) *service.CommandResponse {
	t.Helper()
	data, err := ser.SerializeRequest(req)
	if err != nil {
		t.Fatalf("Failed to serialize request: %v", err)
	}
	var resp service.CommandResponse
	if err := ser.DeserializeResponse(s.Handle(data), &resp); err != nil {
		t.Fatalf("Failed to deserialize response: %v", err)
	}
	return &resp
}

func newTestServer(ser serializer.IRPCSerializer) *RPCServer {
	config := common.DefaultServerConfig()
	config.MemtableShards = 4
	return NewRPCServer(config, unix.NewUnixServerTransport(), ser)
}

func TestHandle(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary", "proto", "resp"} {
		t.Run(name, func(t *testing.T) {
			ser, err := serializer.New(name)
			if err != nil {
				t.Fatal(err)
			}
			s := newTestServer(ser)

			resp := roundTrip(t, s, ser, service.NewHset("users", "alice", storage.StringValue("admin")))
			if !resp.Ok() || len(resp.Values) != 1 || !resp.Values[0].IsEmpty() {
				t.Errorf("Unexpected hset response: %s", resp)
			}

			resp = roundTrip(t, s, ser, service.NewHget("users", "alice"))
			if !resp.Ok() || len(resp.Values) != 1 || !resp.Values[0].Equal(storage.StringValue("admin")) {
				t.Errorf("Unexpected hget response: %s", resp)
			}

			resp = roundTrip(t, s, ser, service.NewHget("users", "bob"))
			if resp.Status != service.StatusNotFound {
				t.Errorf("Expected 404 for absent key, got %s", resp)
			}

			resp = roundTrip(t, s, ser, &service.CommandRequest{})
			if resp.Status != service.StatusBadRequest {
				t.Errorf("Expected 400 for empty request, got %s", resp)
			}

			// the data ended up in the server's service
			if v, found, _ := s.Service().Storage().Get("users", "alice"); !found || !v.Equal(storage.StringValue("admin")) {
				t.Errorf("Value not stored in the backend: %s (found %t)", v, found)
			}
		})
	}
}

func TestHandleUndecodableRequest(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	s := newTestServer(ser)

	var resp service.CommandResponse
	if err := ser.DeserializeResponse(s.Handle([]byte{0xff}), &resp); err != nil {
		t.Fatalf("Failed to deserialize response: %v", err)
	}
	if resp.Status != service.StatusBadRequest {
		t.Errorf("Expected 400, got %s", &resp)
	}
	if storage.CodeOf(resp.Err()) != storage.RetCInvalidCommand {
		t.Errorf("Expected invalid command error, got %v", resp.Err())
	}
}

// failingSerializer fails to serialize every successful response
type failingSerializer struct {
	serializer.IRPCSerializer
}

func (f failingSerializer) SerializeResponse(resp *service.CommandResponse) ([]byte, error) {
	if resp.Ok() {
		return nil, errors.New("boom")
	}
	return f.IRPCSerializer.SerializeResponse(resp)
}

func TestHandleUnencodableResponse(t *testing.T) {
	ser := failingSerializer{serializer.NewJSONSerializer()}
	s := newTestServer(ser)

	resp := roundTrip(t, s, ser, service.NewHgetall("users"))
	if resp.Status != service.StatusInternalError {
		t.Errorf("Expected 500, got %s", resp)
	}
}

func TestServeInvalidLogLevel(t *testing.T) {
	config := common.DefaultServerConfig()
	config.LogLevel = "chatty"
	s := NewRPCServer(config, unix.NewUnixServerTransport(), serializer.NewBinarySerializer())
	if err := s.Serve(); err == nil {
		t.Error("Expected error for invalid log level")
	}
}
