package klistener

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrNoDLQTopic is returned when the error handler asks for dead lettering
// but no topic was configured.
var ErrNoDLQTopic = errors.New("klistener: DLQ recovery requested but no DLQ topic configured")

// ErrorRecovery determines how to handle a failed record.
type ErrorRecovery int

const (
	// RecoveryFail stops the listener (default behavior)
	RecoveryFail ErrorRecovery = iota
	// RecoverySkip skips the record and continues
	RecoverySkip
	// RecoveryDLQ sends the raw record to the dead letter topic and continues
	RecoveryDLQ
)

func (r ErrorRecovery) String() string {
	switch r {
	case RecoveryFail:
		return "fail"
	case RecoverySkip:
		return "skip"
	case RecoveryDLQ:
		return "dlq"
	default:
		return fmt.Sprintf("recovery(%d)", int(r))
	}
}

// ErrorHandler decides what happens to a record whose conversion or handling
// failed. Unsupported representations never reach it.
type ErrorHandler func(ctx context.Context, err error, record *kgo.Record) ErrorRecovery

// DefaultErrorHandler returns RecoveryFail for all errors.
func DefaultErrorHandler() ErrorHandler {
	return func(ctx context.Context, err error, record *kgo.Record) ErrorRecovery {
		return RecoveryFail
	}
}

// Stage indicates where a record failed.
type Stage string

const (
	StageDeserialization Stage = "deserialization"
	StageHandler         Stage = "handler"
	StageDeadLetter      Stage = "dead_letter"
)

// ProcessingError wraps a record failure with the record's position.
type ProcessingError struct {
	Cause     error
	Stage     Stage
	Topic     string
	Partition int32
	Offset    int64
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s error (topic=%s partition=%d offset=%d): %v",
		e.Stage, e.Topic, e.Partition, e.Offset, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

func newProcessingError(cause error, stage Stage, record *kgo.Record) *ProcessingError {
	return &ProcessingError{
		Cause:     cause,
		Stage:     stage,
		Topic:     record.Topic,
		Partition: record.Partition,
		Offset:    record.Offset,
	}
}
