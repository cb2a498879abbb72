package kconvert

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/exp/slices"
)

// Header is a single header key-value pair.
type Header struct {
	Key   string
	Value []byte
}

// Headers is an ordered, multi-valued header list.
//
// Headers is not safe for concurrent mutation; a message is owned by one
// goroutine at a time.
type Headers struct {
	headers []Header
}

// NewHeaders creates an empty Headers.
func NewHeaders() *Headers {
	return &Headers{
		headers: make([]Header, 0),
	}
}

// Get retrieves the first value for key.
// Returns (value, true) if found, (nil, false) if not found
func (h *Headers) Get(key string) ([]byte, bool) {
	i := slices.IndexFunc(h.headers, func(hd Header) bool { return hd.Key == key })
	if i < 0 {
		return nil, false
	}
	return h.headers[i].Value, true
}

// GetString retrieves the first value for key as a string.
func (h *Headers) GetString(key string) (string, bool) {
	val, ok := h.Get(key)
	if !ok {
		return "", false
	}
	return string(val), true
}

// GetAll retrieves all values for key in insertion order.
func (h *Headers) GetAll(key string) [][]byte {
	var values [][]byte
	for _, header := range h.headers {
		if header.Key == key {
			values = append(values, header.Value)
		}
	}
	return values
}

// Set replaces all values for key with value.
func (h *Headers) Set(key string, value []byte) {
	h.Remove(key)
	h.headers = append(h.headers, Header{Key: key, Value: value})
}

func (h *Headers) SetString(key, value string) {
	h.Set(key, []byte(value))
}

// Add appends a value without touching existing values for key.
func (h *Headers) Add(key string, value []byte) {
	h.headers = append(h.headers, Header{Key: key, Value: value})
}

func (h *Headers) AddString(key, value string) {
	h.Add(key, []byte(value))
}

// Remove drops every value for key.
func (h *Headers) Remove(key string) {
	h.headers = slices.DeleteFunc(h.headers, func(hd Header) bool { return hd.Key == key })
}

// All returns a copy of all headers.
func (h *Headers) All() []Header {
	return slices.Clone(h.headers)
}

// Keys returns the distinct header keys in first-seen order.
func (h *Headers) Keys() []string {
	keys := make([]string, 0, len(h.headers))
	for _, header := range h.headers {
		if !slices.Contains(keys, header.Key) {
			keys = append(keys, header.Key)
		}
	}
	return keys
}

func (h *Headers) Len() int {
	return len(h.headers)
}

func headersFromKgo(in []kgo.RecordHeader) *Headers {
	h := &Headers{headers: make([]Header, 0, len(in))}
	for _, rh := range in {
		h.Add(rh.Key, rh.Value)
	}
	return h
}
