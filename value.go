package kconvert

import "fmt"

// Kind is the physical representation of a raw inbound value.
type Kind uint8

const (
	// KindUnsupported covers everything that is neither text nor bytes,
	// including an absent value.
	KindUnsupported Kind = iota
	KindText
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	default:
		return "unsupported"
	}
}

// RawValue is the value of a record before it is decoded. Only the text and
// bytes variants can be decoded.
type RawValue struct {
	kind  Kind
	text  string
	bytes []byte

	// goType names the dynamic type of an unsupported value, for errors.
	goType string
}

// Text wraps a string payload.
func Text(s string) RawValue {
	return RawValue{kind: KindText, text: s}
}

// Bytes wraps a UTF-8 encoded payload. A nil slice is an absent value and
// yields an unsupported RawValue.
func Bytes(b []byte) RawValue {
	if b == nil {
		return RawValue{kind: KindUnsupported, goType: "[]uint8(nil)"}
	}
	return RawValue{kind: KindBytes, bytes: b}
}

// RawValueOf classifies an arbitrary value pulled off a record.
func RawValueOf(v any) RawValue {
	switch tv := v.(type) {
	case string:
		return Text(tv)
	case []byte:
		return Bytes(tv)
	case RawValue:
		return tv
	case nil:
		return RawValue{kind: KindUnsupported, goType: "nil"}
	default:
		return RawValue{kind: KindUnsupported, goType: fmt.Sprintf("%T", v)}
	}
}

func (r RawValue) Kind() Kind {
	return r.kind
}

// String returns the text payload. It is only meaningful for KindText.
func (r RawValue) String() string {
	return r.text
}

// Bytes returns the byte payload. It is only meaningful for KindBytes.
func (r RawValue) Bytes() []byte {
	return r.bytes
}
