// Package klistener feeds Kafka records through a kconvert.Converter into a
// typed handler.
package klistener

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/birdayz/kconvert"
)

// Consumer is the part of *kgo.Client the listener uses. The client must be
// configured with kgo.DisableAutoCommit and a consumer group.
type Consumer interface {
	PollRecords(ctx context.Context, maxPollRecords int) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Handler receives every successfully decoded message along with its typed
// payload.
type Handler[T any] func(ctx context.Context, msg kconvert.Message, payload T) error

// Listener polls records, decodes their values into T and passes them to a
// Handler. Records of one partition are handled in order; partitions of one
// poll are handled concurrently.
type Listener[T any] struct {
	client  Consumer
	conv    *kconvert.Converter
	handler Handler[T]
	cfg     config
	log     logr.Logger
	metrics *metrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	closed  bool
	running sync.WaitGroup
}

// New creates a Listener. It fails only if the metrics cannot be registered.
func New[T any](client Consumer, conv *kconvert.Converter, handler Handler[T], opts ...Option) (*Listener[T], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.errorHandler == nil {
		cfg.errorHandler = DefaultErrorHandler()
	}

	m, err := newMetrics(cfg.registerer)
	if err != nil {
		return nil, fmt.Errorf("klistener: register metrics: %w", err)
	}

	return &Listener[T]{
		client:  client,
		conv:    conv,
		handler: handler,
		cfg:     cfg,
		log:     cfg.log.WithName("listener"),
		metrics: m,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](client Consumer, conv *kconvert.Converter, handler Handler[T], opts ...Option) *Listener[T] {
	l, err := New(client, conv, handler, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Run polls until ctx is done, Close is called, the client is closed, or a
// record fails with RecoveryFail. Only the last case returns an error.
func (l *Listener[T]) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running.Add(1)
	l.mu.Unlock()

	defer l.running.Done()
	defer cancel()

	for {
		pollCtx, pollCancel := context.WithTimeout(ctx, l.cfg.pollTimeout)
		fetches := l.client.PollRecords(pollCtx, l.cfg.maxPollRecords)
		pollCancel()

		if fetches.IsClientClosed() || ctx.Err() != nil {
			l.log.V(1).Info("Listener stopping")
			return nil
		}

		for _, fe := range fetches.Errors() {
			if errors.Is(fe.Err, context.DeadlineExceeded) || errors.Is(fe.Err, context.Canceled) {
				continue
			}
			l.log.Error(fe.Err, "fetch error", "topic", fe.Topic, "partition", fe.Partition)
			return fmt.Errorf("fetch error on topic %s, partition %d: %w", fe.Topic, fe.Partition, fe.Err)
		}

		if err := l.process(ctx, fetches); err != nil {
			return err
		}
	}
}

// Close stops Run and waits for it to return. It is safe to call more than
// once.
func (l *Listener[T]) Close() error {
	l.mu.Lock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()

	l.running.Wait()
	return nil
}

// process handles one poll and commits every record that was handled,
// skipped or dead lettered, even when another partition failed.
func (l *Listener[T]) process(ctx context.Context, fetches kgo.Fetches) error {
	var (
		mu   sync.Mutex
		done []*kgo.Record
	)

	grp, gctx := errgroup.WithContext(ctx)
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		if len(p.Records) == 0 {
			return
		}
		grp.Go(func() error {
			handled, err := l.processPartition(gctx, p.Records)
			mu.Lock()
			done = append(done, handled...)
			mu.Unlock()
			return err
		})
	})
	err := grp.Wait()

	if len(done) > 0 {
		commitCtx, cancel := context.WithTimeout(context.Background(), l.cfg.commitTimeout)
		defer cancel()
		if cerr := l.client.CommitRecords(commitCtx, done...); cerr != nil {
			l.log.Error(cerr, "failed to commit")
			err = multierr.Append(err, fmt.Errorf("commit: %w", cerr))
		} else {
			l.log.V(1).Info("Committed", "records", len(done))
		}
	}

	return err
}

func (l *Listener[T]) processPartition(ctx context.Context, records []*kgo.Record) ([]*kgo.Record, error) {
	handled := make([]*kgo.Record, 0, len(records))
	for _, record := range records {
		// Another partition failed or the listener is stopping. The rest
		// stays uncommitted and is redelivered.
		if ctx.Err() != nil {
			return handled, nil
		}
		if err := l.processRecord(ctx, record); err != nil {
			l.metrics.observe(record.Topic, outcomeFailed)
			return handled, err
		}
		handled = append(handled, record)
	}
	return handled, nil
}

func (l *Listener[T]) processRecord(ctx context.Context, record *kgo.Record) error {
	perr := l.handle(ctx, record)
	if perr == nil {
		l.metrics.observe(record.Topic, outcomeOK)
		return nil
	}

	// A value that is neither text nor bytes means the consumer is
	// misconfigured; retrying or dead lettering cannot fix that.
	if errors.Is(perr, kconvert.ErrUnsupportedRepresentation) {
		l.log.Error(perr, "unsupported record value", "topic", record.Topic,
			"partition", record.Partition, "offset", record.Offset)
		return perr
	}

	switch recovery := l.cfg.errorHandler(ctx, perr, record); recovery {
	case RecoverySkip:
		l.log.Info("Skipping failed record", "error", perr.Error(),
			"topic", record.Topic, "partition", record.Partition, "offset", record.Offset)
		l.metrics.observe(record.Topic, outcomeSkipped)
		return nil
	case RecoveryDLQ:
		if l.cfg.dlqTopic == "" {
			return newProcessingError(fmt.Errorf("%w: %v", ErrNoDLQTopic, perr), StageDeadLetter, record)
		}
		if err := l.sendToDLQ(ctx, record, perr); err != nil {
			l.log.Error(err, "Failed to send record to DLQ",
				"topic", record.Topic, "partition", record.Partition, "offset", record.Offset)
			return newProcessingError(err, StageDeadLetter, record)
		}
		l.log.Info("Sent failed record to DLQ", "dlq_topic", l.cfg.dlqTopic,
			"topic", record.Topic, "partition", record.Partition, "offset", record.Offset)
		l.metrics.observe(record.Topic, outcomeDeadLettered)
		return nil
	default:
		l.log.Error(perr, "Failed to process record, stopping listener",
			"topic", record.Topic, "partition", record.Partition, "offset", record.Offset)
		return perr
	}
}

func (l *Listener[T]) handle(ctx context.Context, record *kgo.Record) *ProcessingError {
	msg, err := l.conv.ToMessage(record, kconvert.TypeFor[T]())
	if err != nil {
		return newProcessingError(err, StageDeserialization, record)
	}

	var payload T
	if msg.Payload != nil {
		payload = msg.Payload.(T)
	}

	if err := l.handler(ctx, msg, payload); err != nil {
		return newProcessingError(err, StageHandler, record)
	}
	return nil
}

// sendToDLQ produces the raw record to the dead letter topic.
func (l *Listener[T]) sendToDLQ(ctx context.Context, record *kgo.Record, cause error) error {
	headers := make([]kgo.RecordHeader, 0, len(record.Headers)+4)
	headers = append(headers, record.Headers...)
	headers = append(headers,
		kgo.RecordHeader{Key: "kconvert.original.topic", Value: []byte(record.Topic)},
		kgo.RecordHeader{Key: "kconvert.original.partition", Value: []byte(fmt.Sprintf("%d", record.Partition))},
		kgo.RecordHeader{Key: "kconvert.original.offset", Value: []byte(fmt.Sprintf("%d", record.Offset))},
		kgo.RecordHeader{Key: "kconvert.error", Value: []byte(cause.Error())},
	)

	dlqRecord := &kgo.Record{
		Topic:   l.cfg.dlqTopic,
		Key:     record.Key,
		Value:   record.Value,
		Headers: headers,
	}

	return l.client.ProduceSync(ctx, dlqRecord).FirstErr()
}
