package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format.
//
// Request:  [command][flags][table][key][keys][pair][pairs]
// Response: [flags][status u32][message][values][pairs]
//
// Only fields whose flag is set are written. Strings are prefixed with their
// length (u32, big endian), lists with their element count. Values and pairs
// use the encoding of storage.Value / storage.Kvpair.
type binarySerializerImpl struct {
}

// Bit flags to indicate which request fields are present
const (
	hasTable byte = 1 << 0
	hasKey   byte = 1 << 1
	hasKeys  byte = 1 << 2
	hasPair  byte = 1 << 3
	hasPairs byte = 1 << 4
)

// Bit flags to indicate which response fields are present
const (
	hasMessage   byte = 1 << 0
	hasValues    byte = 1 << 1
	hasRespPairs byte = 1 << 2
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) SerializeRequest(req *service.CommandRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("cannot serialize nil request")
	}
	cmd, f, err := flatten(req.RequestData)
	if err != nil {
		return nil, err
	}

	result := make([]byte, 2, 64)
	result[0] = cmd

	var flags byte
	if f.table != "" {
		flags |= hasTable
		result = appendString(result, f.table)
	}
	if f.key != "" {
		flags |= hasKey
		result = appendString(result, f.key)
	}
	if len(f.keys) > 0 {
		flags |= hasKeys
		result = binary.BigEndian.AppendUint32(result, uint32(len(f.keys)))
		for _, k := range f.keys {
			result = appendString(result, k)
		}
	}
	if f.pair != nil {
		flags |= hasPair
		result = f.pair.AppendEncoded(result)
	}
	if len(f.pairs) > 0 {
		flags |= hasPairs
		result = binary.BigEndian.AppendUint32(result, uint32(len(f.pairs)))
		for _, p := range f.pairs {
			result = p.AppendEncoded(result)
		}
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) DeserializeRequest(data []byte, req *service.CommandRequest) error {
	// Check minimum size (command + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for request header")
	}

	cmd, flags := data[0], data[1]
	r := &binaryReader{data: data, pos: 2}

	var (
		f   commandFields
		err error
	)
	if flags&hasTable != 0 {
		if f.table, err = r.readString("table"); err != nil {
			return err
		}
	}
	if flags&hasKey != 0 {
		if f.key, err = r.readString("key"); err != nil {
			return err
		}
	}
	if flags&hasKeys != 0 {
		n, err := r.readCount("keys")
		if err != nil {
			return err
		}
		f.keys = make([]string, n)
		for i := range f.keys {
			if f.keys[i], err = r.readString("key"); err != nil {
				return err
			}
		}
	}
	if flags&hasPair != 0 {
		p, err := r.readPair()
		if err != nil {
			return err
		}
		f.pair = &p
	}
	if flags&hasPairs != 0 {
		n, err := r.readCount("pairs")
		if err != nil {
			return err
		}
		f.pairs = make([]storage.Kvpair, n)
		for i := range f.pairs {
			if f.pairs[i], err = r.readPair(); err != nil {
				return err
			}
		}
	}
	if err := r.done(); err != nil {
		return err
	}

	cmdData, err := unflatten(cmd, f)
	if err != nil {
		return err
	}
	req.RequestData = cmdData
	return nil
}

func (b binarySerializerImpl) SerializeResponse(resp *service.CommandResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("cannot serialize nil response")
	}
	result := make([]byte, 5, 64)
	binary.BigEndian.PutUint32(result[1:5], resp.Status)

	var flags byte
	if resp.Message != "" {
		flags |= hasMessage
		result = appendString(result, resp.Message)
	}
	if len(resp.Values) > 0 {
		flags |= hasValues
		result = binary.BigEndian.AppendUint32(result, uint32(len(resp.Values)))
		for _, v := range resp.Values {
			result = v.AppendEncoded(result)
		}
	}
	if len(resp.Pairs) > 0 {
		flags |= hasRespPairs
		result = binary.BigEndian.AppendUint32(result, uint32(len(resp.Pairs)))
		for _, p := range resp.Pairs {
			result = p.AppendEncoded(result)
		}
	}

	result[0] = flags
	return result, nil
}

func (b binarySerializerImpl) DeserializeResponse(data []byte, resp *service.CommandResponse) error {
	// Check minimum size (flags + status)
	if len(data) < 5 {
		return fmt.Errorf("data too short for response header")
	}

	*resp = service.CommandResponse{Status: binary.BigEndian.Uint32(data[1:5])}
	flags := data[0]
	r := &binaryReader{data: data, pos: 5}

	var err error
	if flags&hasMessage != 0 {
		if resp.Message, err = r.readString("message"); err != nil {
			return err
		}
	}
	if flags&hasValues != 0 {
		n, err := r.readCount("values")
		if err != nil {
			return err
		}
		resp.Values = make([]storage.Value, n)
		for i := range resp.Values {
			if resp.Values[i], err = r.readValue(); err != nil {
				return err
			}
		}
	}
	if flags&hasRespPairs != 0 {
		n, err := r.readCount("pairs")
		if err != nil {
			return err
		}
		resp.Pairs = make([]storage.Kvpair, n)
		for i := range resp.Pairs {
			if resp.Pairs[i], err = r.readPair(); err != nil {
				return err
			}
		}
	}
	return r.done()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func appendString(b []byte, s string) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// binaryReader reads length prefixed fields and tracks the read position
type binaryReader struct {
	data []byte
	pos  int
}

func (r *binaryReader) readLen(field string) (int, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4
	return n, nil
}

func (r *binaryReader) readString(field string) (string, error) {
	n, err := r.readLen(field)
	if err != nil {
		return "", err
	}
	if r.pos+n > len(r.data) {
		return "", fmt.Errorf("data too short for %s data", field)
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

// readCount reads an element count. Every element takes at least one byte, which
// bounds the allocation for corrupt input.
func (r *binaryReader) readCount(field string) (int, error) {
	n, err := r.readLen(field)
	if err != nil {
		return 0, err
	}
	if n > len(r.data)-r.pos {
		return 0, fmt.Errorf("invalid %s count %d", field, n)
	}
	return n, nil
}

func (r *binaryReader) readValue() (storage.Value, error) {
	v, n, err := storage.ReadValue(r.data[r.pos:])
	if err != nil {
		return storage.Value{}, err
	}
	r.pos += n
	return v, nil
}

func (r *binaryReader) readPair() (storage.Kvpair, error) {
	p, n, err := storage.ReadKvpair(r.data[r.pos:])
	if err != nil {
		return storage.Kvpair{}, err
	}
	r.pos += n
	return p, nil
}

func (r *binaryReader) done() error {
	if r.pos != len(r.data) {
		return fmt.Errorf("%d trailing bytes", len(r.data)-r.pos)
	}
	return nil
}
