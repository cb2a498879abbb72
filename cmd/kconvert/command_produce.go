package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kconvert"
	"github.com/birdayz/kconvert/kproducer"
	"github.com/birdayz/kconvert/kserde"
)

var (
	produceTopic       string
	produceKey         string
	produceKeyJSON     bool
	producePayload     string
	produceCreateTopic bool
	producePartitions  int32
)

func init() {
	produceCmd.Flags().StringVar(&produceTopic, "topic", "", "Destination topic.")
	produceCmd.Flags().StringVar(&produceKey, "key", "", "Record key, sent as raw UTF-8.")
	produceCmd.Flags().BoolVar(&produceKeyJSON, "key-json", false, "Treat --key as JSON and send it in canonical form.")
	produceCmd.Flags().StringVar(&producePayload, "payload", "", "JSON payload.")
	produceCmd.Flags().BoolVar(&produceCreateTopic, "create-topic", false, "Create the topic if it does not exist.")
	produceCmd.Flags().Int32Var(&producePartitions, "partitions", 1, "Partition count used with --create-topic.")
	_ = produceCmd.MarkFlagRequired("topic")
	_ = produceCmd.MarkFlagRequired("payload")
}

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Validate a JSON payload and produce it in canonical form",
	RunE: func(cmd *cobra.Command, args []string) error {
		if produceKeyJSON && produceKey == "" {
			return errors.New("--key-json requires --key")
		}
		conv, err := newConverter()
		if err != nil {
			return err
		}

		// Round trip through the converter so only valid JSON is sent.
		payload, err := kconvert.DecodeAs[any](conv, kconvert.Text(producePayload))
		if err != nil {
			return err
		}

		client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if produceCreateTopic {
			if err := kproducer.EnsureTopics(ctx, kadm.NewClient(client), producePartitions, 1, produceTopic); err != nil {
				return err
			}
		}

		tmpl := kproducer.New(client, conv, kproducer.WithLogger(logger()))
		if produceKeyJSON {
			keys := kserde.JSON[any](conv)
			key, err := keys.Deserializer([]byte(produceKey))
			if err != nil {
				return err
			}
			err = kproducer.NewKeyed(tmpl, keys.Serializer).Send(ctx, produceTopic, key, payload)
			if err != nil {
				return err
			}
		} else {
			var key []byte
			if produceKey != "" {
				if key, err = kserde.String.Serializer(produceKey); err != nil {
					return err
				}
			}
			if err := tmpl.Send(ctx, produceTopic, key, payload); err != nil {
				return err
			}
		}

		zlog.Info().Str("topic", produceTopic).Str("key", produceKey).Msg("Produced record")
		return nil
	},
}
