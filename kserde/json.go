package kserde

import (
	"github.com/birdayz/kconvert"
)

// JSONSerializer encodes T as JSON text through conv. A nil conv uses
// kconvert.New(). Failures are *kconvert.ConversionError.
func JSONSerializer[T any](conv *kconvert.Converter) Serializer[T] {
	if conv == nil {
		conv = kconvert.New()
	}
	return func(t T) ([]byte, error) {
		out, err := conv.Encode(t)
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	}
}

// JSONDeserializer decodes JSON into T through conv. A nil conv uses
// kconvert.New(). Failures are *kconvert.ConversionError, except for a nil
// slice, which yields kconvert.ErrUnsupportedRepresentation.
func JSONDeserializer[T any](conv *kconvert.Converter) Deserializer[T] {
	if conv == nil {
		conv = kconvert.New()
	}
	return func(b []byte) (T, error) {
		return kconvert.DecodeAs[T](conv, kconvert.Bytes(b))
	}
}

func JSON[T any](conv *kconvert.Converter) Serde[T] {
	return Serde[T]{
		Serializer:   JSONSerializer[T](conv),
		Deserializer: JSONDeserializer[T](conv),
	}
}
