package serializer

import (
	"fmt"
	"math"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
	"google.golang.org/protobuf/encoding/protowire"
)

// NewProtoSerializer creates a new serializer producing protobuf wire format.
// The messages follow this schema:
//
//	message CommandRequest {
//	  oneof request_data {
//	    Hget hget = 1; Hgetall hgetall = 2; Hmget hmget = 3;
//	    Hset hset = 4; Hmset hmset = 5; Hdel hdel = 6;
//	    Hmdel hmdel = 7; Hexist hexist = 8; Hmexist hmexist = 9;
//	  }
//	}
//	message CommandResponse {
//	  uint32 status = 1; string message = 2;
//	  repeated Value values = 3; repeated Kvpair pairs = 4;
//	}
//	message Value {
//	  oneof value { string string = 1; bytes binary = 2; int64 integer = 3; double float = 4; bool bool = 5; }
//	}
//	message Kvpair { string key = 1; Value value = 2; }
//	message Hget { string table = 1; string key = 2; }      // also Hdel, Hexist
//	message Hgetall { string table = 1; }
//	message Hmget { string table = 1; repeated string keys = 2; } // also Hmdel, Hmexist
//	message Hset { string table = 1; Kvpair pair = 2; }
//	message Hmset { string table = 1; repeated Kvpair pairs = 2; }
func NewProtoSerializer() IRPCSerializer {
	return &protoSerializerImpl{}
}

// protoSerializerImpl implements IRPCSerializer using protowire, without
// generated code
type protoSerializerImpl struct {
}

// Field numbers of the messages
const (
	fieldTable  protowire.Number = 1
	fieldKey    protowire.Number = 2 // also keys, pair and pairs
	fieldStatus protowire.Number = 1
	fieldMsg    protowire.Number = 2
	fieldValues protowire.Number = 3
	fieldPairs  protowire.Number = 4
	fieldPKey   protowire.Number = 1
	fieldPValue protowire.Number = 2
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (p protoSerializerImpl) SerializeRequest(req *service.CommandRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("cannot serialize nil request")
	}
	cmd, f, err := flatten(req.RequestData)
	if err != nil {
		return nil, err
	}
	if cmd == cmdNone {
		return []byte{}, nil
	}

	var inner []byte
	if f.table != "" {
		inner = protowire.AppendTag(inner, fieldTable, protowire.BytesType)
		inner = protowire.AppendString(inner, f.table)
	}
	switch shapeOf(cmd) {
	case shapeKey:
		if f.key != "" {
			inner = protowire.AppendTag(inner, fieldKey, protowire.BytesType)
			inner = protowire.AppendString(inner, f.key)
		}
	case shapeKeys:
		for _, k := range f.keys {
			inner = protowire.AppendTag(inner, fieldKey, protowire.BytesType)
			inner = protowire.AppendString(inner, k)
		}
	case shapePair:
		if f.pair != nil {
			inner = protowire.AppendTag(inner, fieldKey, protowire.BytesType)
			inner = protowire.AppendBytes(inner, appendProtoPair(nil, *f.pair))
		}
	case shapePairs:
		for _, pair := range f.pairs {
			inner = protowire.AppendTag(inner, fieldKey, protowire.BytesType)
			inner = protowire.AppendBytes(inner, appendProtoPair(nil, pair))
		}
	}

	out := protowire.AppendTag(nil, protowire.Number(cmd), protowire.BytesType)
	return protowire.AppendBytes(out, inner), nil
}

func (p protoSerializerImpl) DeserializeRequest(b []byte, req *service.CommandRequest) error {
	req.RequestData = nil

	var (
		cmd   = cmdNone
		inner []byte
	)
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) error {
		if num < protowire.Number(cmdHget) || num > protowire.Number(cmdHmexist) {
			return nil
		}
		if typ != protowire.BytesType {
			return fmt.Errorf("command field %d has wire type %d", num, typ)
		}
		// last oneof field wins
		cmd = byte(num)
		inner = field
		return nil
	})
	if err != nil || cmd == cmdNone {
		return err
	}

	var f commandFields
	err = walkFields(inner, func(num protowire.Number, typ protowire.Type, field []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case fieldTable:
			f.table = string(field)
		case fieldKey:
			switch shapeOf(cmd) {
			case shapeKey:
				f.key = string(field)
			case shapeKeys:
				f.keys = append(f.keys, string(field))
			case shapePair:
				pair, err := readProtoPair(field)
				if err != nil {
					return err
				}
				f.pair = &pair
			case shapePairs:
				pair, err := readProtoPair(field)
				if err != nil {
					return err
				}
				f.pairs = append(f.pairs, pair)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	req.RequestData, err = unflatten(cmd, f)
	return err
}

func (p protoSerializerImpl) SerializeResponse(resp *service.CommandResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("cannot serialize nil response")
	}

	var out []byte
	if resp.Status != 0 {
		out = protowire.AppendTag(out, fieldStatus, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(resp.Status))
	}
	if resp.Message != "" {
		out = protowire.AppendTag(out, fieldMsg, protowire.BytesType)
		out = protowire.AppendString(out, resp.Message)
	}
	for _, v := range resp.Values {
		out = protowire.AppendTag(out, fieldValues, protowire.BytesType)
		out = protowire.AppendBytes(out, appendProtoValue(nil, v))
	}
	for _, pair := range resp.Pairs {
		out = protowire.AppendTag(out, fieldPairs, protowire.BytesType)
		out = protowire.AppendBytes(out, appendProtoPair(nil, pair))
	}
	return out, nil
}

func (p protoSerializerImpl) DeserializeResponse(b []byte, resp *service.CommandResponse) error {
	*resp = service.CommandResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch {
		case num == fieldStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(field)
			if n < 0 {
				return protowire.ParseError(n)
			}
			resp.Status = uint32(v)
		case num == fieldMsg && typ == protowire.BytesType:
			resp.Message = string(field)
		case num == fieldValues && typ == protowire.BytesType:
			v, err := readProtoValue(field)
			if err != nil {
				return err
			}
			resp.Values = append(resp.Values, v)
		case num == fieldPairs && typ == protowire.BytesType:
			pair, err := readProtoPair(field)
			if err != nil {
				return err
			}
			resp.Pairs = append(resp.Pairs, pair)
		}
		return nil
	})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// walkFields calls fn for every field of a message. For length delimited
// fields, field is the payload; for all other wire types it is the raw value.
func walkFields(b []byte, fn func(num protowire.Number, typ protowire.Type, field []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		field := b[:m]
		if typ == protowire.BytesType {
			var k int
			field, k = protowire.ConsumeBytes(b)
			if k < 0 {
				return protowire.ParseError(k)
			}
		}
		if err := fn(num, typ, field); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func appendProtoValue(b []byte, v storage.Value) []byte {
	switch v.Kind() {
	case storage.KindString:
		s, _ := v.AsString()
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, s)
	case storage.KindBinary:
		raw, _ := v.AsBinary()
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, raw)
	case storage.KindInteger:
		i, _ := v.AsInteger()
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(i))
	case storage.KindFloat:
		f, _ := v.AsFloat()
		b = protowire.AppendTag(b, 4, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(f))
	case storage.KindBool:
		x, _ := v.AsBool()
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(x))
	}
	return b
}

func readProtoValue(b []byte) (storage.Value, error) {
	var v storage.Value
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v = storage.StringValue(string(field))
		case num == 2 && typ == protowire.BytesType:
			v = storage.BinaryValue(field)
		case num == 3 && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(field)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v = storage.IntegerValue(int64(x))
		case num == 4 && typ == protowire.Fixed64Type:
			x, n := protowire.ConsumeFixed64(field)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v = storage.FloatValue(math.Float64frombits(x))
		case num == 5 && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(field)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v = storage.BoolValue(protowire.DecodeBool(x))
		}
		return nil
	})
	return v, err
}

func appendProtoPair(b []byte, pair storage.Kvpair) []byte {
	if pair.Key != "" {
		b = protowire.AppendTag(b, fieldPKey, protowire.BytesType)
		b = protowire.AppendString(b, pair.Key)
	}
	if pair.Value != nil {
		b = protowire.AppendTag(b, fieldPValue, protowire.BytesType)
		b = protowire.AppendBytes(b, appendProtoValue(nil, *pair.Value))
	}
	return b
}

func readProtoPair(b []byte) (storage.Kvpair, error) {
	var pair storage.Kvpair
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case fieldPKey:
			pair.Key = string(field)
		case fieldPValue:
			v, err := readProtoValue(field)
			if err != nil {
				return err
			}
			pair.Value = &v
		}
		return nil
	})
	return pair, err
}
