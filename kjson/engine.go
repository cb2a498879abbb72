// Package kjson holds the JSON engine used to encode and decode record
// payloads. An Engine is built once from a Config and cannot be reconfigured
// afterwards, so a single instance can be shared by any number of goroutines.
package kjson

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	jsoniter "github.com/json-iterator/go"
)

// Backend selects the library that does the actual JSON work.
type Backend int

const (
	// BackendJSONIter uses json-iterator. It supports views.
	BackendJSONIter Backend = iota
	// BackendSonic uses bytedance/sonic. Views and custom tag keys are not
	// supported.
	BackendSonic
)

func (b Backend) String() string {
	switch b {
	case BackendJSONIter:
		return "jsoniter"
	case BackendSonic:
		return "sonic"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

var (
	ErrUnknownBackend = errors.New("kjson: unknown backend")
	// ErrViewsUnsupported is returned by Froze when view filtering is
	// requested on a backend that cannot drop struct fields.
	ErrViewsUnsupported = errors.New("kjson: backend does not support views")
	// ErrTagKeyUnsupported is returned by Froze when a custom tag key is
	// requested on a backend that only reads `json` tags.
	ErrTagKeyUnsupported = errors.New("kjson: backend does not support custom tag keys")
)

// Config describes an Engine. Use Froze to obtain the Engine.
type Config struct {
	Backend Backend

	// ActiveView enables view filtering. Struct fields tagged `view:"a,b"`
	// are only read and written when ActiveView is one of the listed names.
	// Empty disables filtering entirely.
	ActiveView string

	// DefaultViewInclusion decides whether fields without a view tag take
	// part in encoding and decoding while a view is active.
	DefaultViewInclusion bool

	// FailOnUnknownFields rejects input objects carrying fields the target
	// struct does not declare.
	FailOnUnknownFields bool

	// CaseSensitive makes object keys match field names exactly. When false,
	// a key that matches no field exactly falls back to a case-insensitive
	// match.
	CaseSensitive bool

	SortMapKeys bool
	EscapeHTML  bool
	UseNumber   bool

	// TagKey overrides the struct tag used for field names. Defaults to json.
	TagKey string
}

// DefaultConfig is the configuration used when a converter is built without
// an explicit engine: view inclusion off, unknown fields ignored, keys matched
// case-sensitively, map keys sorted so output is canonical.
func DefaultConfig() Config {
	return Config{
		Backend:              BackendJSONIter,
		DefaultViewInclusion: false,
		FailOnUnknownFields:  false,
		CaseSensitive:        true,
		SortMapKeys:          true,
	}
}

// api is the part of jsoniter.API and sonic.API the engine relies on.
type api interface {
	MarshalToString(v interface{}) (string, error)
	UnmarshalFromString(str string, v interface{}) error
	Unmarshal(data []byte, v interface{}) error
}

// Engine is a frozen, concurrency safe JSON encoder/decoder.
type Engine struct {
	cfg Config
	api api
}

// Froze validates the configuration and builds the Engine.
func (c Config) Froze() (*Engine, error) {
	switch c.Backend {
	case BackendJSONIter:
		jc := jsoniter.Config{
			EscapeHTML:            c.EscapeHTML,
			SortMapKeys:           c.SortMapKeys,
			UseNumber:             c.UseNumber,
			DisallowUnknownFields: c.FailOnUnknownFields,
			CaseSensitive:         c.CaseSensitive,
			TagKey:                c.TagKey,
		}
		frozen := jc.Froze()
		// Extensions must be registered before the first call populates the
		// encoder/decoder caches.
		frozen.RegisterExtension(&cycleExtension{})
		if c.ActiveView != "" {
			frozen.RegisterExtension(newViewExtension(c.ActiveView, c.DefaultViewInclusion))
		}
		return &Engine{cfg: c, api: frozen}, nil
	case BackendSonic:
		if c.ActiveView != "" {
			return nil, fmt.Errorf("%w: %s", ErrViewsUnsupported, c.Backend)
		}
		if c.TagKey != "" && c.TagKey != "json" {
			return nil, fmt.Errorf("%w: %s", ErrTagKeyUnsupported, c.Backend)
		}
		sc := sonic.Config{
			EscapeHTML:            c.EscapeHTML,
			SortMapKeys:           c.SortMapKeys,
			UseNumber:             c.UseNumber,
			DisallowUnknownFields: c.FailOnUnknownFields,
			CaseSensitive:         c.CaseSensitive,
			// Decoded strings must not alias the input buffer.
			CopyString: true,
		}
		return &Engine{cfg: c, api: sc.Froze()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, c.Backend)
	}
}

// MustFroze is like Froze but panics on an invalid configuration.
func MustFroze(c Config) *Engine {
	e, err := c.Froze()
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns a new Engine built from DefaultConfig.
func Default() *Engine {
	return MustFroze(DefaultConfig())
}

// Config returns a copy of the configuration the engine was built from.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) MarshalToString(v any) (string, error) {
	return e.api.MarshalToString(v)
}

// UnmarshalFromString decodes s into ptr, which must be a non-nil pointer.
func (e *Engine) UnmarshalFromString(s string, ptr any) error {
	return e.api.UnmarshalFromString(s, ptr)
}

// Unmarshal decodes UTF-8 encoded JSON from b into ptr.
func (e *Engine) Unmarshal(b []byte, ptr any) error {
	return e.api.Unmarshal(b, ptr)
}

// UnmarshalFromStringAs decodes s into a fresh value of typ and returns that
// value, not a pointer to it.
func (e *Engine) UnmarshalFromStringAs(s string, typ Type) (any, error) {
	ptr := typ.New()
	if err := e.api.UnmarshalFromString(s, ptr); err != nil {
		return nil, err
	}
	return typ.Indirect(ptr), nil
}

// UnmarshalAs decodes b into a fresh value of typ and returns that value.
func (e *Engine) UnmarshalAs(b []byte, typ Type) (any, error) {
	ptr := typ.New()
	if err := e.api.Unmarshal(b, ptr); err != nil {
		return nil, err
	}
	return typ.Indirect(ptr), nil
}
