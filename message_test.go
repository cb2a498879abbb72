package kconvert

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestToMessage(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	rec := &kgo.Record{
		Key:         []byte("order-1"),
		Value:       []byte(`{"id":"order-1","items":["a"],"total":4.5,"unknown":true}`),
		Topic:       "orders",
		Partition:   3,
		Offset:      42,
		Timestamp:   ts,
		LeaderEpoch: 7,
		Headers:     []kgo.RecordHeader{{Key: "trace-id", Value: []byte("abc")}},
	}

	c := New()
	msg, err := c.ToMessage(rec, TypeFor[Order]())
	assert.NoError(t, err)

	assert.Equal(t, Order{ID: "order-1", Items: []string{"a"}, Total: 4.5}, msg.Payload.(Order))
	assert.Equal(t, RecordMetadata{
		Key:         []byte("order-1"),
		Topic:       "orders",
		Partition:   3,
		Offset:      42,
		Timestamp:   ts,
		LeaderEpoch: 7,
	}, msg.Metadata)

	expected := map[string]string{
		"trace-id":                  "abc",
		"kafka_receivedMessageKey":  "order-1",
		"kafka_receivedTopic":       "orders",
		"kafka_receivedPartitionId": "3",
		"kafka_offset":              "42",
		"kafka_receivedTimestamp":   "1700000000123",
	}
	for k, want := range expected {
		got, ok := msg.Headers.GetString(k)
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
	assert.Equal(t, len(expected), msg.Headers.Len())
}

func TestToMessageWithoutKey(t *testing.T) {
	msg, err := New().ToMessage(&kgo.Record{Topic: "t", Value: []byte(`{"id":1}`)}, TypeFor[idOnly]())
	assert.NoError(t, err)
	_, ok := msg.Headers.Get("kafka_receivedMessageKey")
	assert.False(t, ok)
}

func TestToMessageErrors(t *testing.T) {
	c := New()

	_, err := c.ToMessage(&kgo.Record{Topic: "t"}, TypeFor[idOnly]())
	assert.IsError(t, err, ErrUnsupportedRepresentation)

	_, err = c.ToMessage(&kgo.Record{Topic: "t", Value: []byte("{not json")}, TypeFor[idOnly]())
	assert.True(t, IsConversionError(err))
}

func TestFromMessage(t *testing.T) {
	c := New()

	msg := NewMessage(idName{ID: 1, Name: "a"})
	msg.Headers.SetString(c.HeaderName(HeaderMessageKey), "k1")
	msg.Headers.SetString(c.HeaderName(HeaderPartition), "2")
	msg.Headers.SetString(c.HeaderName(HeaderTimestamp), "1700000000000")
	msg.Headers.SetString(c.HeaderName(HeaderReceivedTopic), "ignored")
	msg.Headers.SetString("trace-id", "abc")

	rec, err := c.FromMessage(msg, "out")
	assert.NoError(t, err)
	assert.Equal(t, "out", rec.Topic)
	assert.Equal(t, `{"id":1,"name":"a"}`, string(rec.Value))
	assert.Equal(t, []byte("k1"), rec.Key)
	assert.Equal(t, int32(2), rec.Partition)
	assert.Equal(t, time.UnixMilli(1700000000000), rec.Timestamp)
	assert.Equal(t, []kgo.RecordHeader{{Key: "trace-id", Value: []byte("abc")}}, rec.Headers)
}

func TestFromMessageTopicHeader(t *testing.T) {
	c := New(WithHeaderPrefix("x-"))

	msg := NewMessage("payload")
	msg.Headers.SetString("x-topic", "from-header")

	rec, err := c.FromMessage(msg, "")
	assert.NoError(t, err)
	assert.Equal(t, "from-header", rec.Topic)
	assert.Equal(t, `"payload"`, string(rec.Value))
	assert.Equal(t, 0, len(rec.Headers))
}

func TestFromMessageErrors(t *testing.T) {
	c := New()

	_, err := c.FromMessage(Message{Payload: make(chan int)}, "t")
	assert.True(t, IsConversionError(err))

	msg := NewMessage(1)
	msg.Headers.SetString(c.HeaderName(HeaderPartition), "two")
	_, err = c.FromMessage(msg, "t")
	assert.Error(t, err)
	assert.False(t, IsConversionError(err))
}

func TestMessageRoundTrip(t *testing.T) {
	c := New()

	rec, err := c.FromMessage(NewMessage(Order{ID: "o", Items: []string{"i"}, Total: 1}), "orders")
	assert.NoError(t, err)

	msg, err := c.ToMessage(rec, TypeFor[Order]())
	assert.NoError(t, err)
	assert.Equal(t, Order{ID: "o", Items: []string{"i"}, Total: 1}, msg.Payload.(Order))
}
