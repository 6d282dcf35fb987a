package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
	storagetesting "github.com/ValentinKolb/hKV/lib/storage/testing"
	"github.com/ValentinKolb/hKV/rpc/common"
	"github.com/ValentinKolb/hKV/rpc/serializer"
	"github.com/ValentinKolb/hKV/rpc/server"
	"github.com/ValentinKolb/hKV/rpc/transport/tcp"
	"github.com/ValentinKolb/hKV/rpc/transport/unix"
)

// startServer runs an RPC server with a fresh memtable on a unix socket
func startServer(t *testing.T, ser serializer.IRPCSerializer) (*server.RPCServer, string) {
	t.Helper()

	config := common.DefaultServerConfig()
	config.Endpoint = filepath.Join(t.TempDir(), "hkv.sock")
	config.LogLevel = "warn"

	tr := unix.NewUnixServerTransport()
	s := server.NewRPCServer(config, tr, ser)

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()
	t.Cleanup(func() {
		s.Close()
		<-done
	})

	deadline := time.Now().Add(5 * time.Second)
	for tr.Addr() == nil {
		select {
		case err := <-done:
			t.Fatalf("Server stopped: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("Server did not start listening")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s, config.Endpoint
}

func clientConfig(endpoint string) common.ClientConfig {
	return common.ClientConfig{
		Endpoints:              []string{endpoint},
		TimeoutSecond:          5,
		RetryCount:             1,
		ConnectionsPerEndpoint: 2,
	}
}

func newClient(t *testing.T, ser serializer.IRPCSerializer) *Client {
	t.Helper()
	_, endpoint := startServer(t, ser)
	c, err := NewRPCClient(clientConfig(endpoint), unix.NewUnixClientTransport(), ser)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// TestRPCStorage runs the storage conformance suite against a remote memtable
func TestRPCStorage(t *testing.T) {
	for _, name := range []string{"binary", "proto", "resp", "json", "gob"} {
		ser, err := serializer.New(name)
		if err != nil {
			t.Fatal(err)
		}
		storagetesting.RunStorageTests(t, name, func() storage.Storage {
			_, endpoint := startServer(t, ser)
			s, err := NewRPCStorage(clientConfig(endpoint), unix.NewUnixClientTransport(), ser)
			if err != nil {
				t.Fatalf("Failed to create rpc storage: %v", err)
			}
			t.Cleanup(func() { s.(*rpcStorage).Close() })
			return s
		})
	}
}

func TestTypedCommands(t *testing.T) {
	c := newClient(t, serializer.NewBinarySerializer())

	prev, err := c.Hset("users", "alice", storage.StringValue("admin"))
	if err != nil || !prev.IsEmpty() {
		t.Fatalf("Hset: prev=%s err=%v", prev, err)
	}
	prev, err = c.Hset("users", "alice", storage.StringValue("owner"))
	if err != nil || !prev.Equal(storage.StringValue("admin")) {
		t.Fatalf("Hset: expected previous value admin, got %s (err: %v)", prev, err)
	}

	v, err := c.Hget("users", "alice")
	if err != nil || !v.Equal(storage.StringValue("owner")) {
		t.Errorf("Hget: got %s (err: %v)", v, err)
	}

	if _, err := c.Hget("users", "bob"); storage.CodeOf(err) != storage.RetCNotFound {
		t.Errorf("Hget of absent key: expected not found error, got %v", err)
	}

	prevs, err := c.Hmset("users",
		storage.NewKvpair("bob", storage.IntegerValue(1)),
		storage.NewKvpair("carol", storage.BoolValue(true)),
	)
	if err != nil || len(prevs) != 2 {
		t.Fatalf("Hmset: got %v (err: %v)", prevs, err)
	}

	values, err := c.Hmget("users", "alice", "bob", "dave")
	if err != nil {
		t.Fatalf("Hmget failed: %v", err)
	}
	expected := []storage.Value{storage.StringValue("owner"), storage.IntegerValue(1), {}}
	if !storage.EqualValues(values, expected) {
		t.Errorf("Hmget: expected %v, got %v", expected, values)
	}

	exists, err := c.Hmexist("users", "alice", "dave")
	if err != nil || len(exists) != 2 || !exists[0] || exists[1] {
		t.Errorf("Hmexist: got %v (err: %v)", exists, err)
	}

	pairs, err := c.Hgetall("users")
	if err != nil || len(pairs) != 3 {
		t.Errorf("Hgetall: got %v (err: %v)", pairs, err)
	}

	removed, err := c.Hdel("users", "alice")
	if err != nil || !removed.Equal(storage.StringValue("owner")) {
		t.Errorf("Hdel: got %s (err: %v)", removed, err)
	}
	if found, err := c.Hexist("users", "alice"); err != nil || found {
		t.Errorf("Hexist after delete: got %t (err: %v)", found, err)
	}

	removedValues, err := c.Hmdel("users", "bob", "carol", "dave")
	if err != nil || !storage.EqualValues(removedValues, []storage.Value{storage.IntegerValue(1), storage.BoolValue(true), {}}) {
		t.Errorf("Hmdel: got %v (err: %v)", removedValues, err)
	}
}

func TestInvalidCommands(t *testing.T) {
	c := newClient(t, serializer.NewProtoSerializer())

	if _, err := c.Hget("", "key"); storage.CodeOf(err) != storage.RetCInvalidCommand {
		t.Errorf("Expected invalid command error for empty table, got %v", err)
	}

	resp, err := c.Execute(&service.CommandRequest{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if resp.Status != service.StatusBadRequest {
		t.Errorf("Expected 400 for empty request, got %s", resp)
	}
}

func TestTransportFailure(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	s, endpoint := startServer(t, ser)

	store, err := NewRPCStorage(clientConfig(endpoint), unix.NewUnixClientTransport(), ser)
	if err != nil {
		t.Fatalf("Failed to create rpc storage: %v", err)
	}
	defer store.(*rpcStorage).Close()

	if _, _, err := store.Set("t", "k", storage.StringValue("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s.Close()

	// the server is gone, errors must surface as storage errors
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, _, err := store.Get("t", "k")
		if err != nil {
			if code := storage.CodeOf(err); code != storage.RetCStorageError {
				t.Errorf("Expected storage error, got %s: %v", code, err)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("Requests still succeed after the server was closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConnectFailure(t *testing.T) {
	config := clientConfig(filepath.Join(t.TempDir(), "missing.sock"))
	if _, err := NewRPCClient(config, unix.NewUnixClientTransport(), serializer.NewBinarySerializer()); err == nil {
		t.Error("Expected error when connecting to a missing socket")
	}

	config = clientConfig("127.0.0.1:1")
	if _, err := NewRPCStorage(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer()); err == nil {
		t.Error("Expected error when connecting to a closed port")
	}
}
