package kconvert

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRawValueOf(t *testing.T) {
	tests := []struct {
		name  string
		input any
		kind  Kind
	}{
		{name: "string", input: `{"id":1}`, kind: KindText},
		{name: "empty string", input: "", kind: KindText},
		{name: "bytes", input: []byte(`{"id":1}`), kind: KindBytes},
		{name: "empty bytes", input: []byte{}, kind: KindBytes},
		{name: "nil bytes", input: []byte(nil), kind: KindUnsupported},
		{name: "nil", input: nil, kind: KindUnsupported},
		{name: "int", input: 12, kind: KindUnsupported},
		{name: "struct", input: struct{}{}, kind: KindUnsupported},
		{name: "raw value", input: Text("x"), kind: KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, RawValueOf(tt.input).Kind())
		})
	}
}

func TestRawValueAccessors(t *testing.T) {
	text := Text("abc")
	assert.Equal(t, "abc", text.String())
	assert.Zero(t, text.Bytes())

	b := Bytes([]byte("xyz"))
	assert.Equal(t, []byte("xyz"), b.Bytes())
	assert.Equal(t, "", b.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "bytes", KindBytes.String())
	assert.Equal(t, "unsupported", KindUnsupported.String())
}

func TestUnsupportedErrorNamesType(t *testing.T) {
	_, err := New().Decode(RawValueOf(3.5), TypeFor[idOnly]())
	assert.IsError(t, err, ErrUnsupportedRepresentation)
	assert.Contains(t, err.Error(), "float64")
}
