package storage

import (
	"cmp"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Value Kinds
// --------------------------------------------------------------------------

// Kind identifies which variant of a Value is populated.
type Kind uint8

const (
	KindNone    Kind = iota // The empty Value (no variant set)
	KindString              // UTF-8 string
	KindBinary              // Raw bytes
	KindInteger             // 64-bit signed integer
	KindFloat               // 64-bit float
	KindBool                // Boolean
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name into a Kind. A few common aliases are accepted
// so that command line users can write "int" or "bytes".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "none", "empty":
		return KindNone, nil
	case "string", "str":
		return KindString, nil
	case "binary", "bytes":
		return KindBinary, nil
	case "integer", "int":
		return KindInteger, nil
	case "float", "double":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBool, nil
	default:
		return KindNone, fmt.Errorf("unknown value kind: %s", s)
	}
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

// Value is a tagged scalar. The zero Value is the empty Value.
// Values are immutable: all fields are private and binary payloads are copied
// on the way in and on the way out.
type Value struct {
	kind Kind
	str  string // string and binary payloads
	num  uint64 // integer, float (as bits) and bool payloads
}

// StringValue creates a string Value
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BinaryValue creates a binary Value. The slice is copied.
func BinaryValue(b []byte) Value {
	return Value{kind: KindBinary, str: string(b)}
}

// IntegerValue creates an integer Value
func IntegerValue(i int64) Value {
	return Value{kind: KindInteger, num: uint64(i)}
}

// FloatValue creates a float Value
func FloatValue(f float64) Value {
	return Value{kind: KindFloat, num: math.Float64bits(f)}
}

// BoolValue creates a boolean Value
func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// ParseValue builds a Value of the given kind from its text form.
// Binary values are expected as hex.
func ParseValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindNone:
		return Value{}, nil
	case KindString:
		return StringValue(text), nil
	case KindBinary:
		b, err := hex.DecodeString(text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid hex value %q: %w", text, err)
		}
		return BinaryValue(b), nil
	case KindInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer value %q: %w", text, err)
		}
		return IntegerValue(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float value %q: %w", text, err)
		}
		return FloatValue(f), nil
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid bool value %q: %w", text, err)
		}
		return BoolValue(b), nil
	default:
		return Value{}, fmt.Errorf("unknown value kind: %d", kind)
	}
}

// Kind returns the populated variant
func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty reports whether no variant is set
func (v Value) IsEmpty() bool {
	return v.kind == KindNone
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsBinary returns a copy of the binary payload
func (v Value) AsBinary() ([]byte, bool) {
	if v.kind != KindBinary {
		return nil, false
	}
	return []byte(v.str), true
}

func (v Value) AsInteger() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return int64(v.num), true
}

func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return math.Float64frombits(v.num), true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num == 1, true
}

// Size returns the payload size in bytes
func (v Value) Size() int {
	switch v.kind {
	case KindString, KindBinary:
		return len(v.str)
	case KindInteger, KindFloat:
		return 8
	case KindBool:
		return 1
	default:
		return 0
	}
}

// Text returns the payload in the text form accepted by ParseValue
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBinary:
		return hex.EncodeToString([]byte(v.str))
	case KindInteger:
		return strconv.FormatInt(int64(v.num), 10)
	case KindFloat:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.num == 1)
	default:
		return ""
	}
}

// String returns a human-readable representation, e.g. integer(10)
func (v Value) String() string {
	if v.kind == KindString {
		return fmt.Sprintf("string(%q)", v.str)
	}
	if v.kind == KindNone {
		return "none"
	}
	return fmt.Sprintf("%s(%s)", v.kind, v.Text())
}

// Equal reports whether both values have the same kind and payload.
// Floats are compared by bit pattern, so NaN equals NaN.
func (v Value) Equal(o Value) bool {
	return v == o
}

// Compare orders values by kind first and payload second.
// The ordering is only meant for sorting (tests, deterministic output).
func (v Value) Compare(o Value) int {
	if c := cmp.Compare(v.kind, o.kind); c != 0 {
		return c
	}
	switch v.kind {
	case KindString, KindBinary:
		return strings.Compare(v.str, o.str)
	case KindInteger:
		return cmp.Compare(int64(v.num), int64(o.num))
	case KindFloat:
		return cmp.Compare(math.Float64frombits(v.num), math.Float64frombits(o.num))
	default:
		return cmp.Compare(v.num, o.num)
	}
}

// --------------------------------------------------------------------------
// Binary Encoding
// --------------------------------------------------------------------------

// AppendEncoded appends the binary encoding of the value to b:
// 1 byte for the kind followed by the payload
//   - string, binary: 4 bytes length (big endian) + N bytes data
//   - integer, float: 8 bytes (big endian)
//   - bool: 1 byte
//   - none: nothing
func (v Value) AppendEncoded(b []byte) []byte {
	b = append(b, byte(v.kind))
	switch v.kind {
	case KindString, KindBinary:
		b = binary.BigEndian.AppendUint32(b, uint32(len(v.str)))
		b = append(b, v.str...)
	case KindInteger, KindFloat:
		b = binary.BigEndian.AppendUint64(b, v.num)
	case KindBool:
		b = append(b, byte(v.num))
	}
	return b
}

// ReadValue decodes a value from the start of data and returns the number of bytes consumed
func ReadValue(data []byte) (Value, int, error) {
	if len(data) < 1 {
		return Value{}, 0, fmt.Errorf("data too short for value kind")
	}
	v := Value{kind: Kind(data[0])}
	pos := 1

	switch v.kind {
	case KindNone:
	case KindString, KindBinary:
		if len(data) < pos+4 {
			return Value{}, 0, fmt.Errorf("data too short for value length")
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if len(data) < pos+n {
			return Value{}, 0, fmt.Errorf("data too short for value of length %d", n)
		}
		v.str = string(data[pos : pos+n])
		pos += n
	case KindInteger, KindFloat:
		if len(data) < pos+8 {
			return Value{}, 0, fmt.Errorf("data too short for %s value", v.kind)
		}
		v.num = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	case KindBool:
		if len(data) < pos+1 {
			return Value{}, 0, fmt.Errorf("data too short for bool value")
		}
		if data[pos] != 0 {
			v.num = 1
		}
		pos++
	default:
		return Value{}, 0, fmt.Errorf("unknown value kind: %d", data[0])
	}

	return v, pos, nil
}

// MarshalBinary implements encoding.BinaryMarshaler (also used by encoding/gob)
func (v Value) MarshalBinary() ([]byte, error) {
	return v.AppendEncoded(nil), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (v *Value) UnmarshalBinary(data []byte) error {
	val, n, err := ReadValue(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%d trailing bytes after value", len(data)-n)
	}
	*v = val
	return nil
}

// --------------------------------------------------------------------------
// JSON Encoding
// --------------------------------------------------------------------------

// MarshalJSON encodes the value as an object with a single field named after
// its kind, e.g. {"integer":10}. Binary payloads are base64 encoded.
// The empty value is encoded as {}.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindNone:
		return []byte("{}"), nil
	case KindString:
		payload = v.str
	case KindBinary:
		payload = base64.StdEncoding.EncodeToString([]byte(v.str))
	case KindInteger:
		payload = int64(v.num)
	case KindFloat:
		payload = math.Float64frombits(v.num)
	case KindBool:
		payload = v.num == 1
	default:
		return nil, fmt.Errorf("unknown value kind: %d", v.kind)
	}
	return json.Marshal(map[string]any{v.kind.String(): payload})
}

// UnmarshalJSON implements json.Unmarshaler (see MarshalJSON for the format)
func (v *Value) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		*v = Value{}
		return nil
	}
	if len(fields) > 1 {
		return fmt.Errorf("value must have exactly one field, got %d", len(fields))
	}

	for name, raw := range fields {
		kind, err := ParseKind(name)
		if err != nil {
			return err
		}
		switch kind {
		case KindString:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			*v = StringValue(s)
		case KindBinary:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return fmt.Errorf("invalid base64 binary value: %w", err)
			}
			*v = BinaryValue(b)
		case KindInteger:
			var i int64
			if err := json.Unmarshal(raw, &i); err != nil {
				return err
			}
			*v = IntegerValue(i)
		case KindFloat:
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil {
				return err
			}
			*v = FloatValue(f)
		case KindBool:
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			*v = BoolValue(b)
		default:
			*v = Value{}
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Kvpair
// --------------------------------------------------------------------------

// Kvpair is a single row of a table. A nil Value models a missing entry,
// which is different from an entry holding the empty Value.
type Kvpair struct {
	Key   string `json:"key"`
	Value *Value `json:"value,omitempty"`
}

// NewKvpair creates a Kvpair holding the given value
func NewKvpair(key string, value Value) Kvpair {
	return Kvpair{Key: key, Value: &value}
}

// ValueOrEmpty returns the value of the pair or the empty Value if it is missing
func (p Kvpair) ValueOrEmpty() Value {
	if p.Value == nil {
		return Value{}
	}
	return *p.Value
}

// Equal compares key, presence and value
func (p Kvpair) Equal(o Kvpair) bool {
	if p.Key != o.Key || (p.Value == nil) != (o.Value == nil) {
		return false
	}
	return p.Value == nil || p.Value.Equal(*o.Value)
}

// Compare orders pairs by key, then by value (missing values first)
func (p Kvpair) Compare(o Kvpair) int {
	if c := strings.Compare(p.Key, o.Key); c != 0 {
		return c
	}
	switch {
	case p.Value == nil && o.Value == nil:
		return 0
	case p.Value == nil:
		return -1
	case o.Value == nil:
		return 1
	}
	return p.Value.Compare(*o.Value)
}

func (p Kvpair) String() string {
	if p.Value == nil {
		return fmt.Sprintf("%s=<missing>", p.Key)
	}
	return fmt.Sprintf("%s=%s", p.Key, p.Value)
}

// AppendEncoded appends the binary encoding of the pair to b:
// 4 bytes key length (big endian) + key, 1 byte presence flag, encoded value (if present)
func (p Kvpair) AppendEncoded(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(p.Key)))
	b = append(b, p.Key...)
	if p.Value == nil {
		return append(b, 0)
	}
	b = append(b, 1)
	return p.Value.AppendEncoded(b)
}

// ReadKvpair decodes a pair from the start of data and returns the number of bytes consumed
func ReadKvpair(data []byte) (Kvpair, int, error) {
	if len(data) < 4 {
		return Kvpair{}, 0, fmt.Errorf("data too short for key length")
	}
	n := int(binary.BigEndian.Uint32(data))
	pos := 4
	if len(data) < pos+n+1 {
		return Kvpair{}, 0, fmt.Errorf("data too short for key of length %d", n)
	}
	p := Kvpair{Key: string(data[pos : pos+n])}
	pos += n

	present := data[pos]
	pos++
	if present == 0 {
		return p, pos, nil
	}

	v, m, err := ReadValue(data[pos:])
	if err != nil {
		return Kvpair{}, 0, fmt.Errorf("value of key %q: %w", p.Key, err)
	}
	p.Value = &v
	return p, pos + m, nil
}

// MarshalBinary implements encoding.BinaryMarshaler (also used by encoding/gob)
func (p Kvpair) MarshalBinary() ([]byte, error) {
	return p.AppendEncoded(nil), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (p *Kvpair) UnmarshalBinary(data []byte) error {
	pair, n, err := ReadKvpair(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%d trailing bytes after pair", len(data)-n)
	}
	*p = pair
	return nil
}

// SortKvpairs sorts pairs in place (see Kvpair.Compare)
func SortKvpairs(pairs []Kvpair) {
	slices.SortFunc(pairs, Kvpair.Compare)
}

// EqualKvpairs compares two pair slices element by element
func EqualKvpairs(a, b []Kvpair) bool {
	return slices.EqualFunc(a, b, Kvpair.Equal)
}

// EqualValues compares two value slices element by element
func EqualValues(a, b []Value) bool {
	return slices.EqualFunc(a, b, Value.Equal)
}
