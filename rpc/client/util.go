package client

import (
	"fmt"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/rpc/serializer"
	"github.com/ValentinKolb/hKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// invokeRPCRequest is a helper function used by all RPC clients to send requests.
// It returns an error only if the request could not be delivered or the answer
// could not be decoded; failed commands are reported in the response status.
func invokeRPCRequest(req *service.CommandRequest, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*service.CommandResponse, error) {
	reqBytes, err := serializer.SerializeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s request: %w", req.CommandName(), err)
	}

	respBytes, err := transport.Send(reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &service.CommandResponse{}
	if err := serializer.DeserializeResponse(respBytes, resp); err != nil {
		return nil, fmt.Errorf("failed to deserialize %s response: %w", req.CommandName(), err)
	}
	return resp, nil
}

// expectValues checks that a successful response carries exactly n values
func expectValues(req *service.CommandRequest, resp *service.CommandResponse, n int) error {
	if len(resp.Values) != n {
		return storage.NewInternalError("%s: expected %d values in response, got %d", req.CommandName(), n, len(resp.Values))
	}
	return nil
}
