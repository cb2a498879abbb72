package klistener

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK           = "ok"
	outcomeSkipped      = "skipped"
	outcomeDeadLettered = "dead_lettered"
	outcomeFailed       = "failed"
)

type metrics struct {
	records *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kconvert",
		Subsystem: "listener",
		Name:      "records_total",
		Help:      "Records seen by the listener, by topic and outcome.",
	}, []string{"topic", "outcome"})

	if reg != nil {
		if err := reg.Register(records); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			records = existing
		}
	}

	return &metrics{records: records}, nil
}

func (m *metrics) observe(topic, outcome string) {
	m.records.WithLabelValues(topic, outcome).Inc()
}
