package serializer

import (
	"encoding/json"

	"github.com/ValentinKolb/hKV/lib/service"
)

// NewJSONSerializer creates a new serializer using json encoding.
// Requests are encoded as envelopes, e.g. {"hget":{"table":"t","key":"k"}}
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) SerializeRequest(req *service.CommandRequest) ([]byte, error) {
	return json.Marshal(req)
}

func (j jsonSerializerImpl) DeserializeRequest(b []byte, req *service.CommandRequest) error {
	return json.Unmarshal(b, req)
}

func (j jsonSerializerImpl) SerializeResponse(resp *service.CommandResponse) ([]byte, error) {
	return json.Marshal(resp)
}

func (j jsonSerializerImpl) DeserializeResponse(b []byte, resp *service.CommandResponse) error {
	*resp = service.CommandResponse{}
	return json.Unmarshal(b, resp)
}
