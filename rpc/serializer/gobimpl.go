package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/hKV/lib/service"
)

func init() {
	// gob needs the concrete types behind the RequestData interface
	gob.RegisterName("hkv.Hget", &service.Hget{})
	gob.RegisterName("hkv.Hgetall", &service.Hgetall{})
	gob.RegisterName("hkv.Hmget", &service.Hmget{})
	gob.RegisterName("hkv.Hset", &service.Hset{})
	gob.RegisterName("hkv.Hmset", &service.Hmset{})
	gob.RegisterName("hkv.Hdel", &service.Hdel{})
	gob.RegisterName("hkv.Hmdel", &service.Hmdel{})
	gob.RegisterName("hkv.Hexist", &service.Hexist{})
	gob.RegisterName("hkv.Hmexist", &service.Hmexist{})
}

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding.
// Every message is encoded with a fresh encoder, so type information is sent
// each time.
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) SerializeRequest(req *service.CommandRequest) ([]byte, error) {
	return gobEncode(req)
}

func (g gobSerializerImpl) DeserializeRequest(b []byte, req *service.CommandRequest) error {
	*req = service.CommandRequest{}
	return gob.NewDecoder(bytes.NewReader(b)).Decode(req)
}

func (g gobSerializerImpl) SerializeResponse(resp *service.CommandResponse) ([]byte, error) {
	return gobEncode(resp)
}

func (g gobSerializerImpl) DeserializeResponse(b []byte, resp *service.CommandResponse) error {
	*resp = service.CommandResponse{}
	return gob.NewDecoder(bytes.NewReader(b)).Decode(resp)
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
