package kproducer

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"go.uber.org/multierr"
)

// TopicCreator is satisfied by *kadm.Client.
type TopicCreator interface {
	CreateTopics(ctx context.Context, partitions int32, replicationFactor int16, configs map[string]*string, topics ...string) (kadm.CreateTopicResponses, error)
}

// EnsureTopics creates the given topics. Topics that already exist are left
// alone.
func EnsureTopics(ctx context.Context, adm TopicCreator, partitions int32, replication int16, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}

	resps, err := adm.CreateTopics(ctx, partitions, replication, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}

	var errs error
	for _, topic := range topics {
		resp, ok := resps[topic]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("create topic %s: no response", topic))
			continue
		}
		if resp.Err == nil || errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			continue
		}
		errs = multierr.Append(errs, fmt.Errorf("create topic %s: %w", topic, resp.Err))
	}
	return errs
}
