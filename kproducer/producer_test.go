package kproducer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kconvert"
	"github.com/birdayz/kconvert/kserde"
)

type shipment struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}

type fakeProducer struct {
	produced []*kgo.Record
	err      error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		if f.err == nil {
			f.produced = append(f.produced, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestSend(t *testing.T) {
	p := &fakeProducer{}
	tmpl := New(p, kconvert.New())

	err := tmpl.Send(context.Background(), "shipments", []byte("s-1"), shipment{ID: "s-1", Weight: 3})
	assert.NoError(t, err)

	assert.Equal(t, 1, len(p.produced))
	assert.Equal(t, "shipments", p.produced[0].Topic)
	assert.Equal(t, []byte("s-1"), p.produced[0].Key)
	assert.Equal(t, `{"id":"s-1","weight":3}`, string(p.produced[0].Value))
}

func TestSendTopicResolution(t *testing.T) {
	p := &fakeProducer{}

	err := New(p, kconvert.New()).Send(context.Background(), "", nil, 1)
	assert.IsError(t, err, ErrNoTopic)
	assert.Equal(t, 0, len(p.produced))

	tmpl := New(p, kconvert.New(), WithDefaultTopic("fallback"))
	assert.NoError(t, tmpl.Send(context.Background(), "", nil, 1))
	assert.NoError(t, tmpl.Send(context.Background(), "explicit", nil, 2))

	assert.Equal(t, "fallback", p.produced[0].Topic)
	assert.Equal(t, "explicit", p.produced[1].Topic)
}

func TestSendConversionError(t *testing.T) {
	p := &fakeProducer{}
	err := New(p, kconvert.New()).Send(context.Background(), "t", nil, make(chan int))

	var ce *kconvert.ConversionError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "Failed to convert to JSON", ce.Msg)
	assert.Equal(t, 0, len(p.produced))
}

func TestSendProduceError(t *testing.T) {
	brokerErr := errors.New("not leader")
	err := New(&fakeProducer{err: brokerErr}, kconvert.New()).Send(context.Background(), "t", nil, 1)
	assert.IsError(t, err, brokerErr)
	assert.Equal(t, "produce to t: not leader", err.Error())
}

func TestSendMessage(t *testing.T) {
	p := &fakeProducer{}
	conv := kconvert.New()
	tmpl := New(p, conv, WithDefaultTopic("fallback"))

	msg := kconvert.NewMessage(shipment{ID: "s-2"})
	msg.Headers.SetString(conv.HeaderName(kconvert.HeaderTopic), "from-header")
	msg.Headers.SetString(conv.HeaderName(kconvert.HeaderMessageKey), "k")
	msg.Headers.SetString("trace-id", "abc")

	assert.NoError(t, tmpl.SendMessage(context.Background(), "", msg))
	assert.NoError(t, tmpl.SendMessage(context.Background(), "explicit", msg))
	assert.NoError(t, tmpl.SendMessage(context.Background(), "", kconvert.NewMessage(1)))

	assert.Equal(t, 3, len(p.produced))
	assert.Equal(t, "from-header", p.produced[0].Topic)
	assert.Equal(t, []byte("k"), p.produced[0].Key)
	assert.Equal(t, `{"id":"s-2","weight":0}`, string(p.produced[0].Value))
	assert.Equal(t, []kgo.RecordHeader{{Key: "trace-id", Value: []byte("abc")}}, p.produced[0].Headers)
	assert.Equal(t, "explicit", p.produced[1].Topic)
	assert.Equal(t, "fallback", p.produced[2].Topic)
}

func TestSendMessageNoTopic(t *testing.T) {
	err := New(&fakeProducer{}, kconvert.New()).SendMessage(context.Background(), "", kconvert.NewMessage(1))
	assert.IsError(t, err, ErrNoTopic)
}

type fakeAdmin struct {
	resps kadm.CreateTopicResponses
	err   error
	asked []string
}

func (f *fakeAdmin) CreateTopics(_ context.Context, _ int32, _ int16, _ map[string]*string, topics ...string) (kadm.CreateTopicResponses, error) {
	f.asked = append(f.asked, topics...)
	return f.resps, f.err
}

func TestEnsureTopics(t *testing.T) {
	adm := &fakeAdmin{resps: kadm.CreateTopicResponses{
		"new":      {Topic: "new"},
		"existing": {Topic: "existing", Err: kerr.TopicAlreadyExists},
	}}
	assert.NoError(t, EnsureTopics(context.Background(), adm, 3, 1, "new", "existing"))
	assert.Equal(t, []string{"new", "existing"}, adm.asked)
}

func TestEnsureTopicsErrors(t *testing.T) {
	adm := &fakeAdmin{resps: kadm.CreateTopicResponses{
		"bad": {Topic: "bad", Err: kerr.InvalidReplicationFactor},
	}}
	err := EnsureTopics(context.Background(), adm, 1, 3, "bad", "missing")
	assert.IsError(t, err, kerr.InvalidReplicationFactor)
	assert.Contains(t, err.Error(), "create topic missing: no response")

	reqErr := errors.New("dial tcp: refused")
	err = EnsureTopics(context.Background(), &fakeAdmin{err: reqErr}, 1, 1, "t")
	assert.IsError(t, err, reqErr)

	assert.NoError(t, EnsureTopics(context.Background(), &fakeAdmin{err: reqErr}, 1, 1))
}

type shipmentKey struct {
	Region string `json:"region"`
	Seq    int    `json:"seq"`
}

func TestKeyedSend(t *testing.T) {
	p := &fakeProducer{}
	conv := kconvert.New()
	keyed := NewKeyed(New(p, conv, WithDefaultTopic("shipments")), kserde.JSONSerializer[shipmentKey](conv))

	assert.NoError(t, keyed.Send(context.Background(), "", shipmentKey{Region: "eu", Seq: 4}, shipment{ID: "s-4"}))
	assert.Equal(t, 1, len(p.produced))
	assert.Equal(t, `{"region":"eu","seq":4}`, string(p.produced[0].Key))
	assert.Equal(t, `{"id":"s-4","weight":0}`, string(p.produced[0].Value))

	plain := NewKeyed(New(p, conv), kserde.String.Serializer)
	assert.NoError(t, plain.Send(context.Background(), "raw", "plain", 1))
	assert.Equal(t, []byte("plain"), p.produced[1].Key)
}

func TestKeyedSendKeyError(t *testing.T) {
	p := &fakeProducer{}
	keyed := NewKeyed(New(p, kconvert.New()), kserde.JSONSerializer[float64](nil))

	err := keyed.Send(context.Background(), "t", math.NaN(), 1)
	var ce *kconvert.ConversionError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "Failed to convert to JSON", ce.Msg)
	assert.Equal(t, 0, len(p.produced))
}
