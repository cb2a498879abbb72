package kjson

import (
	"fmt"
	"reflect"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
)

// cycleCheckDepth is the nesting depth after which the encoder starts
// remembering the pointers, maps and slices it descends through.
const cycleCheckDepth = 1000

// cycleExtension stops json-iterator from recursing forever on values that
// reference themselves. It is registered on every json-iterator engine.
type cycleExtension struct {
	jsoniter.DummyExtension
}

func (cycleExtension) DecorateEncoder(typ reflect2.Type, encoder jsoniter.ValEncoder) jsoniter.ValEncoder {
	switch typ.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		return &cycleEncoder{typ: typ, encoder: encoder}
	}
	return encoder
}

type visit struct {
	addr unsafe.Pointer
	len  int
	typ  reflect2.Type
}

// encodeState lives in Stream.Attachment for the duration of one encode.
type encodeState struct {
	depth  int
	seen   map[visit]struct{}
	failed bool
}

type cycleEncoder struct {
	typ     reflect2.Type
	encoder jsoniter.ValEncoder
}

func (e *cycleEncoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	state, ok := stream.Attachment.(*encodeState)
	if !ok {
		state = &encodeState{}
		stream.Attachment = state
	}
	if state.failed {
		return
	}

	state.depth++
	defer func() { state.depth-- }()
	if state.depth <= cycleCheckDepth {
		e.encoder.Encode(ptr, stream)
		return
	}

	v := e.visit(ptr)
	if v.addr == nil {
		e.encoder.Encode(ptr, stream)
		return
	}
	if state.seen == nil {
		state.seen = make(map[visit]struct{})
	}
	if _, cyclic := state.seen[v]; cyclic {
		state.failed = true
		stream.Error = fmt.Errorf("kjson: encountered a cycle via %s", e.typ)
		return
	}
	state.seen[v] = struct{}{}
	e.encoder.Encode(ptr, stream)
	delete(state.seen, v)
}

func (e *cycleEncoder) visit(ptr unsafe.Pointer) visit {
	switch e.typ.Kind() {
	case reflect.Slice:
		h := (*sliceHeader)(ptr)
		return visit{addr: h.Data, len: h.Len, typ: e.typ}
	default:
		// Pointers and maps are both a single machine word.
		return visit{addr: *(*unsafe.Pointer)(ptr), typ: e.typ}
	}
}

func (e *cycleEncoder) IsEmpty(ptr unsafe.Pointer) bool {
	return e.encoder.IsEmpty(ptr)
}

func (e *cycleEncoder) IsEmbeddedPtrNil(ptr unsafe.Pointer) bool {
	if isEmbeddedPtrNil, ok := e.encoder.(jsoniter.IsEmbeddedPtrNil); ok {
		return isEmbeddedPtrNil.IsEmbeddedPtrNil(ptr)
	}
	return false
}

type sliceHeader struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}
