package main

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/birdayz/kconvert"
	"github.com/birdayz/kconvert/kjson"
	"github.com/birdayz/kconvert/pkg/log"
)

var (
	brokers             []string
	logLevel            string
	backend             string
	failOnUnknownFields bool

	zlog *zerolog.Logger
)

func init() {
	rootCmd.AddCommand(produceCmd)
	rootCmd.AddCommand(consumeCmd)

	rootCmd.PersistentFlags().StringSliceVar(&brokers, "brokers", []string{"localhost:9092"}, "Kafka seed brokers.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error).")
	rootCmd.PersistentFlags().StringVar(&backend, "engine", "jsoniter", "JSON engine backend (jsoniter or sonic).")
	rootCmd.PersistentFlags().BoolVar(&failOnUnknownFields, "strict", false, "Reject payloads with fields the target type does not declare.")
}

var rootCmd = &cobra.Command{
	Use:          "kconvert",
	Short:        "Produce and consume JSON payloads on Kafka",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		zlog = log.New(lvl)
		return nil
	},
}

func logger() logr.Logger {
	return log.Logr(zlog)
}

func newConverter() (*kconvert.Converter, error) {
	cfg := kjson.DefaultConfig()
	cfg.FailOnUnknownFields = failOnUnknownFields
	switch backend {
	case "", "jsoniter":
		cfg.Backend = kjson.BackendJSONIter
	case "sonic":
		cfg.Backend = kjson.BackendSonic
	default:
		return nil, fmt.Errorf("%w: %q", kjson.ErrUnknownBackend, backend)
	}

	engine, err := cfg.Froze()
	if err != nil {
		return nil, err
	}
	return kconvert.NewWithEngine(engine, kconvert.WithLogger(logger())), nil
}
