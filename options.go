package kconvert

import "github.com/go-logr/logr"

// Option configures a Converter at construction time.
type Option func(*Converter)

// WithLogger sets the logger. Only successful conversions are traced, at
// V(2); failures are returned, never logged.
var WithLogger = func(log logr.Logger) Option {
	return func(c *Converter) {
		c.log = log
	}
}

// WithHeaderPrefix sets the prefix of the metadata headers written by
// ToMessage and read by FromMessage.
var WithHeaderPrefix = func(prefix string) Option {
	return func(c *Converter) {
		c.headerPrefix = prefix
	}
}
