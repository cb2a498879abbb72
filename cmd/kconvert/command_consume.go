package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kconvert"
	"github.com/birdayz/kconvert/klistener"
	"github.com/birdayz/kconvert/kproducer"
	"github.com/birdayz/kconvert/kserde"
)

var (
	consumeTopic       string
	consumeGroup       string
	consumeDLQ         string
	consumeMetricsAddr string
)

func init() {
	consumeCmd.Flags().StringVar(&consumeTopic, "topic", "", "Topic to consume.")
	consumeCmd.Flags().StringVar(&consumeGroup, "group", "kconvert", "Consumer group.")
	consumeCmd.Flags().StringVar(&consumeDLQ, "dlq", "", "Dead letter topic for records that fail to decode. Without it the first bad record stops the consumer.")
	consumeCmd.Flags().StringVar(&consumeMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100.")
	_ = consumeCmd.MarkFlagRequired("topic")
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Decode JSON records from a topic and log them",
	RunE: func(cmd *cobra.Command, args []string) error {
		conv, err := newConverter()
		if err != nil {
			return err
		}

		client, err := kgo.NewClient(
			kgo.SeedBrokers(brokers...),
			kgo.ConsumerGroup(consumeGroup),
			kgo.ConsumeTopics(consumeTopic),
			kgo.DisableAutoCommit(),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := []klistener.Option{klistener.WithLogger(logger())}
		if consumeDLQ != "" {
			if err := kproducer.EnsureTopics(ctx, kadm.NewClient(client), 1, 1, consumeDLQ); err != nil {
				return err
			}
			opts = append(opts,
				klistener.WithDLQTopic(consumeDLQ),
				klistener.WithErrorHandler(func(ctx context.Context, err error, record *kgo.Record) klistener.ErrorRecovery {
					return klistener.RecoveryDLQ
				}),
			)
		}

		if consumeMetricsAddr != "" {
			reg := prometheus.NewRegistry()
			opts = append(opts, klistener.WithMetrics(reg))

			srv := &http.Server{
				Addr:              consumeMetricsAddr,
				Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					zlog.Error().Err(err).Msg("Metrics server failed")
				}
			}()
			defer srv.Close()
		}

		listener, err := klistener.New[any](client, conv, printRecord, opts...)
		if err != nil {
			return err
		}

		zlog.Info().Str("topic", consumeTopic).Str("group", consumeGroup).Msg("Consuming")
		err = listener.Run(ctx)
		zlog.Info().Msg("Consumer exited")
		return err
	},
}

func printRecord(ctx context.Context, msg kconvert.Message, payload any) error {
	key, err := kserde.String.Deserializer(msg.Metadata.Key)
	if err != nil {
		return err
	}
	zlog.Info().
		Str("topic", msg.Metadata.Topic).
		Int32("partition", msg.Metadata.Partition).
		Int64("offset", msg.Metadata.Offset).
		Str("key", key).
		Interface("payload", payload).
		Msg("Record")
	return nil
}
