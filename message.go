package kconvert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultHeaderPrefix prefixes every metadata header name.
const DefaultHeaderPrefix = "kafka_"

// Metadata header names, relative to the converter's header prefix. The
// received* names are written by ToMessage; the others are read by
// FromMessage.
const (
	HeaderReceivedMessageKey = "receivedMessageKey"
	HeaderReceivedTopic      = "receivedTopic"
	HeaderReceivedPartition  = "receivedPartitionId"
	HeaderReceivedTimestamp  = "receivedTimestamp"
	HeaderOffset             = "offset"

	HeaderMessageKey = "messageKey"
	HeaderTopic      = "topic"
	HeaderPartition  = "partitionId"
	HeaderTimestamp  = "timestamp"
)

// Message is the broker agnostic envelope around a payload.
type Message struct {
	Payload  any
	Headers  *Headers
	Metadata RecordMetadata
}

// RecordMetadata describes where an inbound message came from. It is the
// zero value for outbound messages.
type RecordMetadata struct {
	Key         []byte
	Topic       string
	Partition   int32
	Offset      int64
	Timestamp   time.Time
	LeaderEpoch int32
}

// NewMessage creates an outbound message with empty headers.
func NewMessage(payload any) Message {
	return Message{Payload: payload, Headers: NewHeaders()}
}

// HeaderName returns the full name of a metadata header.
func (c *Converter) HeaderName(name string) string {
	return c.headerPrefix + name
}

// ToMessage decodes the value of rec into typ and wraps it together with the
// record headers and metadata. A record without a value fails with
// ErrUnsupportedRepresentation.
func (c *Converter) ToMessage(rec *kgo.Record, typ Type) (Message, error) {
	payload, err := c.Decode(Bytes(rec.Value), typ)
	if err != nil {
		return Message{}, err
	}

	headers := headersFromKgo(rec.Headers)
	if rec.Key != nil {
		headers.Set(c.HeaderName(HeaderReceivedMessageKey), rec.Key)
	}
	headers.SetString(c.HeaderName(HeaderReceivedTopic), rec.Topic)
	headers.SetString(c.HeaderName(HeaderReceivedPartition), strconv.FormatInt(int64(rec.Partition), 10))
	headers.SetString(c.HeaderName(HeaderOffset), strconv.FormatInt(rec.Offset, 10))
	headers.SetString(c.HeaderName(HeaderReceivedTimestamp), strconv.FormatInt(rec.Timestamp.UnixMilli(), 10))

	return Message{
		Payload: payload,
		Headers: headers,
		Metadata: RecordMetadata{
			Key:         rec.Key,
			Topic:       rec.Topic,
			Partition:   rec.Partition,
			Offset:      rec.Offset,
			Timestamp:   rec.Timestamp,
			LeaderEpoch: rec.LeaderEpoch,
		},
	}, nil
}

// FromMessage encodes the payload of msg into a record for topic. An empty
// topic falls back to the topic header. Key, partition and timestamp are
// taken from their headers when present; other prefixed headers are dropped
// and the rest are copied.
func (c *Converter) FromMessage(msg Message, topic string) (*kgo.Record, error) {
	value, err := c.Encode(msg.Payload)
	if err != nil {
		return nil, err
	}

	rec := &kgo.Record{
		Topic: topic,
		Value: []byte(value),
	}

	if msg.Headers == nil {
		return rec, nil
	}

	if rec.Topic == "" {
		rec.Topic, _ = msg.Headers.GetString(c.HeaderName(HeaderTopic))
	}
	if key, ok := msg.Headers.Get(c.HeaderName(HeaderMessageKey)); ok {
		rec.Key = key
	}
	if p, ok := msg.Headers.GetString(c.HeaderName(HeaderPartition)); ok {
		partition, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("kconvert: invalid %s header %q: %w", c.HeaderName(HeaderPartition), p, err)
		}
		rec.Partition = int32(partition)
	}
	if ts, ok := msg.Headers.GetString(c.HeaderName(HeaderTimestamp)); ok {
		millis, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("kconvert: invalid %s header %q: %w", c.HeaderName(HeaderTimestamp), ts, err)
		}
		rec.Timestamp = time.UnixMilli(millis)
	}

	for _, h := range msg.Headers.All() {
		if c.headerPrefix != "" && strings.HasPrefix(h.Key, c.headerPrefix) {
			continue
		}
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: h.Key, Value: h.Value})
	}

	return rec, nil
}
