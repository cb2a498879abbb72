package kconvert

import (
	"reflect"

	"github.com/birdayz/kconvert/kjson"
)

// Type describes the Go type a payload is decoded into. The zero Type is
// invalid.
type Type struct {
	rt reflect.Type
}

// TypeFor returns the Type of T. It works for any instantiation, including
// interfaces and generic types such as []Order or Page[Order].
func TypeFor[T any]() Type {
	return Type{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeOf returns the dynamic Type of v. A nil v yields the zero Type.
func TypeOf(v any) Type {
	return Type{rt: reflect.TypeOf(v)}
}

// ReflectType wraps an existing reflect.Type.
func ReflectType(t reflect.Type) Type {
	return Type{rt: t}
}

func (t Type) Valid() bool {
	return t.rt != nil
}

func (t Type) Reflect() reflect.Type {
	return t.rt
}

func (t Type) String() string {
	if t.rt == nil {
		return "<invalid>"
	}
	return t.rt.String()
}

// engineType is the single translation point from Type to the engine's own
// type descriptor.
func engineType(t Type) kjson.Type {
	return kjson.TypeOf(t.rt)
}
