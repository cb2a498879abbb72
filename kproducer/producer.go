// Package kproducer sends payloads through a kconvert.Converter to Kafka.
package kproducer

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kconvert"
)

// ErrNoTopic is returned when neither the call, the message headers nor the
// template name a destination topic.
var ErrNoTopic = errors.New("kproducer: no topic given and no default topic configured")

// Producer is the part of *kgo.Client the template uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Template encodes payloads as JSON text and produces them synchronously.
type Template struct {
	client       Producer
	conv         *kconvert.Converter
	log          logr.Logger
	defaultTopic string
}

type Option func(*Template)

// WithDefaultTopic sets the topic used when a send names none.
var WithDefaultTopic = func(topic string) Option {
	return func(t *Template) {
		t.defaultTopic = topic
	}
}

var WithLogger = func(log logr.Logger) Option {
	return func(t *Template) {
		t.log = log
	}
}

func New(client Producer, conv *kconvert.Converter, opts ...Option) *Template {
	t := &Template{
		client: client,
		conv:   conv,
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithName("producer")
	return t
}

// Send encodes payload and produces it to topic with key. An empty topic
// falls back to the default topic.
func (t *Template) Send(ctx context.Context, topic string, key []byte, payload any) error {
	if topic == "" {
		topic = t.defaultTopic
	}
	if topic == "" {
		return ErrNoTopic
	}

	value, err := t.conv.Encode(payload)
	if err != nil {
		return err
	}

	return t.produce(ctx, &kgo.Record{Topic: topic, Key: key, Value: []byte(value)})
}

// SendMessage produces msg. The destination is topic, else the message's
// topic header, else the default topic.
func (t *Template) SendMessage(ctx context.Context, topic string, msg kconvert.Message) error {
	rec, err := t.conv.FromMessage(msg, topic)
	if err != nil {
		return err
	}
	if rec.Topic == "" {
		rec.Topic = t.defaultTopic
	}
	if rec.Topic == "" {
		return ErrNoTopic
	}

	return t.produce(ctx, rec)
}

func (t *Template) produce(ctx context.Context, rec *kgo.Record) error {
	if err := t.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", rec.Topic, err)
	}
	t.log.V(1).Info("Produced record", "topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset)
	return nil
}
