// Package kconvert converts Kafka record payloads to and from JSON. Outbound
// payloads are always encoded as text; inbound payloads may be text or bytes
// and are decoded into a caller supplied Type.
package kconvert

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/birdayz/kconvert/kjson"
)

// Converter encodes and decodes payloads with a single engine fixed at
// construction. It holds no per-message state and is safe for concurrent
// use.
type Converter struct {
	engine *kjson.Engine
	log    logr.Logger

	headerPrefix string
}

// New creates a Converter with the default engine: view inclusion disabled
// and unknown fields ignored on decode.
func New(opts ...Option) *Converter {
	return NewWithEngine(kjson.Default(), opts...)
}

// NewWithEngine creates a Converter around an already configured engine. The
// engine's configuration is used as is. It panics with ErrNilEngine if engine
// is nil.
func NewWithEngine(engine *kjson.Engine, opts ...Option) *Converter {
	if engine == nil {
		panic(ErrNilEngine)
	}

	c := &Converter{
		engine:       engine,
		log:          logr.Discard(),
		headerPrefix: DefaultHeaderPrefix,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Engine returns the engine the converter was built with.
func (c *Converter) Engine() *kjson.Engine {
	return c.engine
}

// Encode returns the JSON text of v. A nil v encodes as null.
func (c *Converter) Encode(v any) (string, error) {
	out, err := c.engine.MarshalToString(v)
	if err != nil {
		return "", &ConversionError{Msg: msgToJSON, Cause: err}
	}
	c.log.V(2).Info("Encoded payload", "type", fmt.Sprintf("%T", v), "len", len(out))
	return out, nil
}

// Decode decodes raw into a new value of typ. Bad data yields a
// *ConversionError; a raw value that is neither text nor bytes yields
// ErrUnsupportedRepresentation.
func (c *Converter) Decode(raw RawValue, typ Type) (any, error) {
	if !typ.Valid() {
		return nil, ErrInvalidType
	}
	et := engineType(typ)

	var (
		v   any
		err error
	)
	switch raw.Kind() {
	case KindText:
		v, err = c.engine.UnmarshalFromStringAs(raw.String(), et)
	case KindBytes:
		v, err = c.engine.UnmarshalAs(raw.Bytes(), et)
	default:
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedRepresentation, raw.goType)
	}
	if err != nil {
		return nil, &ConversionError{Msg: msgFromJSON, Cause: err}
	}

	c.log.V(2).Info("Decoded payload", "representation", raw.Kind(), "type", typ)
	return v, nil
}

// DecodeAs is Decode with the target type given as a type parameter.
func DecodeAs[T any](c *Converter, raw RawValue) (T, error) {
	var zero T
	v, err := c.Decode(raw, TypeFor[T]())
	if err != nil {
		return zero, err
	}
	// A nil interface comes back for interface targets decoded from null.
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}
