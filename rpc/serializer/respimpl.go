package serializer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/tidwall/resp"
)

// NewRESPSerializer creates a new serializer speaking the Redis serialization
// protocol. A request is a multi bulk command in the style of redis-cli:
//
//	HGET   table key
//	HMGET  table key...
//	HSET   table [key value]
//	HMSET  table (key value)...
//
// A value is a two element array [kind, payload] (or null for a pair without
// value). A response is the array [status, message, values, pairs].
func NewRESPSerializer() IRPCSerializer {
	return &respSerializerImpl{}
}

// respSerializerImpl implements IRPCSerializer using tidwall/resp
type respSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (r respSerializerImpl) SerializeRequest(req *service.CommandRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("cannot serialize nil request")
	}
	cmd, f, err := flatten(req.RequestData)
	if err != nil {
		return nil, err
	}
	if cmd == cmdNone {
		return resp.ArrayValue(nil).MarshalRESP()
	}

	args := []resp.Value{
		resp.StringValue(strings.ToUpper(req.CommandName())),
		resp.StringValue(f.table),
	}
	switch shapeOf(cmd) {
	case shapeKey:
		args = append(args, resp.StringValue(f.key))
	case shapeKeys:
		for _, k := range f.keys {
			args = append(args, resp.StringValue(k))
		}
	case shapePair:
		if f.pair != nil {
			args = append(args, resp.StringValue(f.pair.Key), respOptionalValue(f.pair.Value))
		}
	case shapePairs:
		for _, pair := range f.pairs {
			args = append(args, resp.StringValue(pair.Key), respOptionalValue(pair.Value))
		}
	}
	return resp.ArrayValue(args).MarshalRESP()
}

func (r respSerializerImpl) DeserializeRequest(b []byte, req *service.CommandRequest) error {
	req.RequestData = nil

	v, err := readSingleRESP(b)
	if err != nil {
		return err
	}
	if v.Type() != resp.Array {
		return fmt.Errorf("resp request must be an array, got %q", v.Type())
	}
	args := v.Array()
	if len(args) == 0 {
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("resp request %q is missing the table name", args[0].String())
	}

	cmd, ok := commandNumber(args[0].String())
	if !ok {
		return fmt.Errorf("unknown resp command %q", args[0].String())
	}

	f := commandFields{table: args[1].String()}
	rest := args[2:]
	switch shapeOf(cmd) {
	case shapeTable:
		if len(rest) != 0 {
			return fmt.Errorf("resp command %s takes no arguments after the table", args[0].String())
		}
	case shapeKey:
		if len(rest) != 1 {
			return fmt.Errorf("resp command %s expects exactly one key", args[0].String())
		}
		f.key = rest[0].String()
	case shapeKeys:
		for _, k := range rest {
			f.keys = append(f.keys, k.String())
		}
	case shapePair:
		switch len(rest) {
		case 0:
		case 2:
			pair, err := respPair(rest[0], rest[1])
			if err != nil {
				return err
			}
			f.pair = &pair
		default:
			return fmt.Errorf("resp command %s expects a key and a value", args[0].String())
		}
	case shapePairs:
		if len(rest)%2 != 0 {
			return fmt.Errorf("resp command %s expects key value pairs", args[0].String())
		}
		for i := 0; i < len(rest); i += 2 {
			pair, err := respPair(rest[i], rest[i+1])
			if err != nil {
				return err
			}
			f.pairs = append(f.pairs, pair)
		}
	}

	req.RequestData, err = unflatten(cmd, f)
	return err
}

func (r respSerializerImpl) SerializeResponse(res *service.CommandResponse) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("cannot serialize nil response")
	}

	values := make([]resp.Value, 0, len(res.Values))
	for _, v := range res.Values {
		values = append(values, respValue(v))
	}
	pairs := make([]resp.Value, 0, len(res.Pairs))
	for _, pair := range res.Pairs {
		pairs = append(pairs, resp.ArrayValue([]resp.Value{
			resp.StringValue(pair.Key),
			respOptionalValue(pair.Value),
		}))
	}

	return resp.ArrayValue([]resp.Value{
		resp.IntegerValue(int(res.Status)),
		resp.StringValue(res.Message),
		resp.ArrayValue(values),
		resp.ArrayValue(pairs),
	}).MarshalRESP()
}

func (r respSerializerImpl) DeserializeResponse(b []byte, res *service.CommandResponse) error {
	*res = service.CommandResponse{}

	v, err := readSingleRESP(b)
	if err != nil {
		return err
	}
	parts := v.Array()
	if v.Type() != resp.Array || len(parts) != 4 {
		return fmt.Errorf("resp response must be an array of 4 elements")
	}
	if parts[0].Type() != resp.Integer {
		return fmt.Errorf("resp response status must be an integer, got %q", parts[0].Type())
	}
	res.Status = uint32(parts[0].Integer())
	res.Message = parts[1].String()

	for _, rv := range parts[2].Array() {
		value, err := readRESPValue(rv)
		if err != nil {
			return err
		}
		res.Values = append(res.Values, value)
	}
	for _, rp := range parts[3].Array() {
		kv := rp.Array()
		if len(kv) != 2 {
			return fmt.Errorf("resp pair must be an array of 2 elements")
		}
		pair, err := respPair(kv[0], kv[1])
		if err != nil {
			return err
		}
		res.Pairs = append(res.Pairs, pair)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readSingleRESP reads exactly one value from b
func readSingleRESP(b []byte) (resp.Value, error) {
	v, n, err := resp.NewReader(bytes.NewReader(b)).ReadValue()
	if err != nil {
		return resp.Value{}, fmt.Errorf("invalid resp data: %w", err)
	}
	if n != len(b) {
		return resp.Value{}, fmt.Errorf("invalid resp data: %d trailing bytes", len(b)-n)
	}
	return v, nil
}

// respValue encodes a value as [kind, payload]. Binary payloads are sent raw.
func respValue(v storage.Value) resp.Value {
	payload := resp.StringValue(v.Text())
	if raw, ok := v.AsBinary(); ok {
		payload = resp.BytesValue(raw)
	}
	return resp.ArrayValue([]resp.Value{resp.StringValue(v.Kind().String()), payload})
}

func respOptionalValue(v *storage.Value) resp.Value {
	if v == nil {
		return resp.NullValue()
	}
	return respValue(*v)
}

func readRESPValue(rv resp.Value) (storage.Value, error) {
	parts := rv.Array()
	if rv.Type() != resp.Array || len(parts) != 2 {
		return storage.Value{}, fmt.Errorf("resp value must be an array of 2 elements")
	}
	kind, err := storage.ParseKind(parts[0].String())
	if err != nil {
		return storage.Value{}, err
	}
	if kind == storage.KindBinary {
		return storage.BinaryValue(parts[1].Bytes()), nil
	}
	return storage.ParseValue(kind, parts[1].String())
}

func respPair(key, value resp.Value) (storage.Kvpair, error) {
	pair := storage.Kvpair{Key: key.String()}
	if value.IsNull() {
		return pair, nil
	}
	v, err := readRESPValue(value)
	if err != nil {
		return storage.Kvpair{}, err
	}
	pair.Value = &v
	return pair, nil
}
