// Package integrationtest runs the converter, listener and producer against a
// real broker started with testcontainers.
package integrationtest

import (
	"context"

	"github.com/birdayz/kconvert"
)

// Received is one message seen by a Spy.
type Received[T any] struct {
	Key     string
	Payload T
	Message kconvert.Message
}

// Spy is a listener handler that forwards everything it receives to Out.
// Payloads for which Fail returns a non-nil error are not forwarded.
type Spy[T any] struct {
	Out  chan Received[T]
	Fail func(T) error
}

func NewSpy[T any]() *Spy[T] {
	return &Spy[T]{Out: make(chan Received[T], 100)}
}

func (s *Spy[T]) Handle(ctx context.Context, msg kconvert.Message, payload T) error {
	if s.Fail != nil {
		if err := s.Fail(payload); err != nil {
			return err
		}
	}

	select {
	case s.Out <- Received[T]{Key: string(msg.Metadata.Key), Payload: payload, Message: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
