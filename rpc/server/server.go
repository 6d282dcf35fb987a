package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/lib/storage/memtable"
	"github.com/ValentinKolb/hKV/rpc/common"
	"github.com/ValentinKolb/hKV/rpc/serializer"
	"github.com/ValentinKolb/hKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// RPCServer serves one Service over a transport. Every request is
// deserialized, executed and answered with the serialized response.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	service    service.Service
}

// NewRPCServer creates a new RPC server backed by a Memtable
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	store := memtable.NewMemtable(&memtable.Options{NumShards: config.MemtableShards})
	return NewRPCServerWithStorage(config, transport, serializer, store)
}

// NewRPCServerWithStorage creates a new RPC server for an arbitrary backend
func NewRPCServerWithStorage(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	store storage.Storage,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	s := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		service:    service.NewService(store),
	}

	if service.RegisterStorageMetrics(store) {
		Logger.Debugf("registered storage metrics for %T", store)
	}

	s.transport.RegisterHandler(s.Handle)
	return s
}

// Service returns the service executing the requests
func (s *RPCServer) Service() service.Service {
	return s.service
}

// Handle processes one serialized request and returns the serialized response.
// It is the handler registered at the transport.
func (s *RPCServer) Handle(req []byte) []byte {
	var cmd service.CommandRequest
	var resp *service.CommandResponse

	if err := s.serializer.DeserializeRequest(req, &cmd); err != nil {
		Logger.Debugf("failed to deserialize request: %v", err)
		resp = service.NewErrorResponse(storage.NewInvalidCommandError("failed to deserialize request: %v", err))
	} else {
		resp = s.service.Execute(&cmd)
	}

	data, err := s.serializer.SerializeResponse(resp)
	if err != nil {
		Logger.Errorf("failed to serialize response for %s: %v", cmd.CommandName(), err)
		data, err = s.serializer.SerializeResponse(
			service.NewErrorResponse(storage.NewInternalError("failed to serialize response: %v", err)),
		)
		if err != nil {
			// nothing sensible can be sent, the client will fail to decode the empty payload
			Logger.Errorf("failed to serialize error response: %v", err)
			return nil
		}
	}
	return data
}

// Serve starts the RPC server and blocks until it is closed
func (s *RPCServer) Serve() error {
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(s.config.String())

	return s.transport.Listen(s.config)
}

// Close stops the transport
func (s *RPCServer) Close() error {
	return s.transport.Close()
}
