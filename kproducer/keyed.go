package kproducer

import (
	"context"

	"github.com/birdayz/kconvert/kserde"
)

// Keyed sends through a Template with keys of type K.
type Keyed[K any] struct {
	tmpl *Template
	keys kserde.Serializer[K]
}

// NewKeyed wraps tmpl so keys are serialized with keys before sending.
func NewKeyed[K any](tmpl *Template, keys kserde.Serializer[K]) *Keyed[K] {
	return &Keyed[K]{tmpl: tmpl, keys: keys}
}

// Send serializes key and sends payload like Template.Send. Nothing is
// produced when the key cannot be serialized.
func (k *Keyed[K]) Send(ctx context.Context, topic string, key K, payload any) error {
	b, err := k.keys(key)
	if err != nil {
		return err
	}
	return k.tmpl.Send(ctx, topic, b, payload)
}
