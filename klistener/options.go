package klistener

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

type config struct {
	log            logr.Logger
	errorHandler   ErrorHandler
	dlqTopic       string
	maxPollRecords int
	pollTimeout    time.Duration
	commitTimeout  time.Duration
	registerer     prometheus.Registerer
}

func defaultConfig() config {
	return config{
		log:            logr.Discard(),
		errorHandler:   DefaultErrorHandler(),
		maxPollRecords: 10000,
		pollTimeout:    10 * time.Second,
		commitTimeout:  10 * time.Second,
	}
}

// Option configures a Listener.
type Option func(*config)

var WithLogger = func(log logr.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithErrorHandler sets the recovery policy for failed records. Default
// behavior is fail-fast (RecoveryFail).
var WithErrorHandler = func(handler ErrorHandler) Option {
	return func(c *config) {
		c.errorHandler = handler
	}
}

// WithDLQTopic sets the dead letter topic. Required when the error handler
// returns RecoveryDLQ.
var WithDLQTopic = func(topic string) Option {
	return func(c *config) {
		c.dlqTopic = topic
	}
}

// WithMaxPollRecords sets the maximum number of records to poll at once.
var WithMaxPollRecords = func(n int) Option {
	return func(c *config) {
		c.maxPollRecords = n
	}
}

// WithPollTimeout bounds a single poll.
var WithPollTimeout = func(timeout time.Duration) Option {
	return func(c *config) {
		c.pollTimeout = timeout
	}
}

// WithCommitTimeout bounds a single offset commit.
var WithCommitTimeout = func(timeout time.Duration) Option {
	return func(c *config) {
		c.commitTimeout = timeout
	}
}

// WithMetrics registers the listener's counters with reg.
var WithMetrics = func(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}
