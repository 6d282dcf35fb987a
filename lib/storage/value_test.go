package storage

import (
	"encoding/json"
	"math"
	"testing"
)

var sampleValues = []Value{
	{},
	StringValue(""),
	StringValue("hello world"),
	BinaryValue([]byte{0x00, 0x01, 0xfe, 0xff}),
	BinaryValue(nil),
	IntegerValue(0),
	IntegerValue(math.MinInt64),
	IntegerValue(math.MaxInt64),
	FloatValue(-0.5),
	FloatValue(math.Inf(1)),
	BoolValue(true),
	BoolValue(false),
}

func TestValueAccessors(t *testing.T) {
	s := StringValue("x")
	if got, ok := s.AsString(); !ok || got != "x" {
		t.Errorf("AsString() = %q, %v", got, ok)
	}
	if _, ok := s.AsInteger(); ok {
		t.Error("Expected AsInteger on a string value to fail")
	}

	i := IntegerValue(-7)
	if got, ok := i.AsInteger(); !ok || got != -7 {
		t.Errorf("AsInteger() = %d, %v", got, ok)
	}
	if got, ok := i.AsFloat(); ok || got != 0 {
		t.Errorf("Expected AsFloat on an integer to return 0, false, got %f, %v", got, ok)
	}

	f := FloatValue(2.5)
	if got, ok := f.AsFloat(); !ok || got != 2.5 {
		t.Errorf("AsFloat() = %f, %v", got, ok)
	}

	b := BoolValue(true)
	if got, ok := b.AsBool(); !ok || !got {
		t.Errorf("AsBool() = %v, %v", got, ok)
	}

	var empty Value
	if !empty.IsEmpty() || empty.Kind() != KindNone {
		t.Error("Expected zero Value to be empty")
	}
	if _, ok := empty.AsString(); ok {
		t.Error("Expected AsString on the empty value to fail")
	}
}

func TestBinaryValueIsCopied(t *testing.T) {
	raw := []byte("abc")
	v := BinaryValue(raw)
	raw[0] = 'X'

	out, ok := v.AsBinary()
	if !ok || string(out) != "abc" {
		t.Fatalf("Expected abc, got %q", out)
	}

	out[0] = 'Y'
	again, _ := v.AsBinary()
	if string(again) != "abc" {
		t.Errorf("Expected AsBinary to return a copy, got %q", again)
	}
}

func TestValueEqualNoCoercion(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{IntegerValue(1), IntegerValue(1), true},
		{IntegerValue(1), FloatValue(1), false},
		{StringValue("1"), IntegerValue(1), false},
		{StringValue("ab"), BinaryValue([]byte("ab")), false},
		{BoolValue(false), Value{}, false},
		{Value{}, Value{}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueCompare(t *testing.T) {
	if IntegerValue(-1).Compare(IntegerValue(1)) >= 0 {
		t.Error("Expected -1 < 1")
	}
	if StringValue("b").Compare(StringValue("a")) <= 0 {
		t.Error("Expected b > a")
	}
	if (Value{}).Compare(StringValue("")) >= 0 {
		t.Error("Expected the empty value to sort first")
	}
	if FloatValue(1.5).Compare(FloatValue(1.5)) != 0 {
		t.Error("Expected equal floats to compare as 0")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		kind    string
		text    string
		want    Value
		wantErr bool
	}{
		{"string", "hello", StringValue("hello"), false},
		{"int", "-12", IntegerValue(-12), false},
		{"integer", "x", Value{}, true},
		{"float", "1.25", FloatValue(1.25), false},
		{"bool", "true", BoolValue(true), false},
		{"bool", "maybe", Value{}, true},
		{"bytes", "00ff", BinaryValue([]byte{0x00, 0xff}), false},
		{"bytes", "zz", Value{}, true},
		{"none", "ignored", Value{}, false},
	}

	for _, tt := range tests {
		kind, err := ParseKind(tt.kind)
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", tt.kind, err)
		}
		got, err := ParseValue(kind, tt.text)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseValue(%s, %q) error = %v, wantErr %v", tt.kind, tt.text, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseValue(%s, %q) = %v, want %v", tt.kind, tt.text, got, tt.want)
		}
		if !tt.wantErr && kind != KindNone && got.Text() != tt.text {
			t.Errorf("Text() = %q, want %q", got.Text(), tt.text)
		}
	}

	if _, err := ParseKind("decimal"); err == nil {
		t.Error("Expected unknown kind to be rejected")
	}
}

func TestValueBinaryEncoding(t *testing.T) {
	var stream []byte
	for _, v := range sampleValues {
		data, err := v.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary(%v) failed: %v", v, err)
		}

		var got Value
		if err := got.UnmarshalBinary(data); err != nil {
			t.Fatalf("UnmarshalBinary(%v) failed: %v", v, err)
		}
		if !got.Equal(v) {
			t.Errorf("Binary round trip: expected %v, got %v", v, got)
		}

		stream = v.AppendEncoded(stream)
	}

	// values can be read back one after another from a stream
	for i, want := range sampleValues {
		got, n, err := ReadValue(stream)
		if err != nil {
			t.Fatalf("ReadValue #%d failed: %v", i, err)
		}
		if !got.Equal(want) {
			t.Errorf("ReadValue #%d: expected %v, got %v", i, want, got)
		}
		stream = stream[n:]
	}
	if len(stream) != 0 {
		t.Errorf("Expected stream to be consumed, %d bytes left", len(stream))
	}
}

func TestValueBinaryEncodingErrors(t *testing.T) {
	tests := map[string][]byte{
		"empty":          {},
		"unknown kind":   {0x7f},
		"short length":   {byte(KindString), 0x00},
		"short payload":  {byte(KindString), 0x00, 0x00, 0x00, 0x05, 'a'},
		"short integer":  {byte(KindInteger), 0x01},
		"missing bool":   {byte(KindBool)},
		"trailing bytes": {byte(KindBool), 0x01, 0x00},
	}

	for name, data := range tests {
		var v Value
		if err := v.UnmarshalBinary(data); err == nil {
			t.Errorf("%s: expected error, got %v", name, v)
		}
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		value Value
		json  string
	}{
		{Value{}, `{}`},
		{StringValue("x"), `{"string":"x"}`},
		{IntegerValue(10), `{"integer":10}`},
		{FloatValue(0.5), `{"float":0.5}`},
		{BoolValue(true), `{"bool":true}`},
		{BinaryValue([]byte("hi")), `{"binary":"aGk="}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.value)
		if err != nil {
			t.Fatalf("Marshal(%v) failed: %v", tt.value, err)
		}
		if string(data) != tt.json {
			t.Errorf("Marshal(%v) = %s, want %s", tt.value, data, tt.json)
		}

		var got Value
		if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tt.json, err)
		}
		if !got.Equal(tt.value) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.json, got, tt.value)
		}
	}

	var v Value
	if err := json.Unmarshal([]byte(`{"string":"a","integer":1}`), &v); err == nil {
		t.Error("Expected error for value with two fields")
	}
	if err := json.Unmarshal([]byte(`{"integer":"ten"}`), &v); err == nil {
		t.Error("Expected error for mistyped payload")
	}
}

func TestKvpair(t *testing.T) {
	a := NewKvpair("k", IntegerValue(1))
	missing := Kvpair{Key: "k"}
	empty := NewKvpair("k", Value{})

	if a.Equal(missing) || missing.Equal(empty) {
		t.Error("Expected a missing value to differ from present values")
	}
	if !missing.ValueOrEmpty().IsEmpty() {
		t.Error("Expected ValueOrEmpty of a missing value to be empty")
	}
	if missing.String() != "k=<missing>" || a.String() != "k=integer(1)" {
		t.Errorf("Unexpected String() output: %s, %s", missing, a)
	}

	pairs := []Kvpair{
		NewKvpair("u2", IntegerValue(20)),
		missing,
		NewKvpair("u1", IntegerValue(10)),
	}
	SortKvpairs(pairs)
	want := []Kvpair{missing, NewKvpair("u1", IntegerValue(10)), NewKvpair("u2", IntegerValue(20))}
	if !EqualKvpairs(pairs, want) {
		t.Errorf("Expected %v, got %v", want, pairs)
	}
}

func TestKvpairBinaryEncoding(t *testing.T) {
	pairs := []Kvpair{
		{Key: "missing"},
		NewKvpair("empty", Value{}),
		NewKvpair("", StringValue("empty key")),
		NewKvpair("bin", BinaryValue([]byte{1, 2, 3})),
	}

	for _, p := range pairs {
		data, err := p.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary(%v) failed: %v", p, err)
		}
		var got Kvpair
		if err := got.UnmarshalBinary(data); err != nil {
			t.Fatalf("UnmarshalBinary(%v) failed: %v", p, err)
		}
		if !got.Equal(p) {
			t.Errorf("Expected %v, got %v", p, got)
		}

		if err := got.UnmarshalBinary(data[:len(data)-1]); err == nil {
			t.Errorf("Expected truncated pair %v to fail", p)
		}
	}
}
