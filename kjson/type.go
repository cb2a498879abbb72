package kjson

import (
	"reflect"

	"github.com/modern-go/reflect2"
)

// Type is the engine's own descriptor of a Go type. It knows how to allocate
// a value to decode into and how to read the decoded value back out.
type Type = reflect2.Type

// TypeOf translates a reflect.Type into the engine's descriptor. It returns
// nil for a nil input.
func TypeOf(t reflect.Type) Type {
	return reflect2.Type2(t)
}
