// Package metrics counts store mutations for Prometheus scraping and for the
// OTLP meter provider when one is configured.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alturino/storefront/internal/common/constants"
)

const (
	Namespace     = "storefront"
	MutationsName = "store_mutations_total"
)

type Recorder struct {
	mutations *prometheus.CounterVec
	counter   metric.Int64Counter
}

// NewRecorder registers the collectors on reg. A nil reg uses a private
// registry, which keeps tests independent.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	mutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MutationsName,
			Help:      "Store mutations by store, operation and result.",
		},
		[]string{"store", "operation", "result"},
	)
	if err := reg.Register(mutations); err != nil {
		return nil, err
	}

	counter, err := otel.Meter(constants.AppStorefront).Int64Counter(
		Namespace+"."+MutationsName,
		metric.WithDescription("Store mutations by store, operation and result."),
	)
	if err != nil {
		return nil, err
	}
	return &Recorder{mutations: mutations, counter: counter}, nil
}

func (r *Recorder) Mutation(store, operation, result string) {
	r.mutations.WithLabelValues(store, operation, result).Inc()
	r.counter.Add(
		context.Background(),
		1,
		metric.WithAttributes(
			attribute.String("store", store),
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func (r *Recorder) Mutations() *prometheus.CounterVec { return r.mutations }
