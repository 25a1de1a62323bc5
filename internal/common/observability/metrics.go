package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records handoff delivery metrics through an OpenTelemetry
// meter exported to Prometheus. A zero value is usable and records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	deliveries    otelmetric.Int64Counter
	latency       otelmetric.Float64Histogram
}

// New creates the meter pipeline. A nil registerer uses the default
// Prometheus registry that /metrics serves.
func New(serviceName string, registerer promclient.Registerer) (*Observability, error) {
	opts := []prometheus.Option{}
	if registerer != nil {
		opts = append(opts, prometheus.WithRegisterer(registerer))
	}
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	deliveries, err := meter.Int64Counter(
		"handoff.sink.deliveries",
		otelmetric.WithDescription("Handoff events delivered to a sink"),
	)
	if err != nil {
		return &Observability{}, err
	}
	latency, err := meter.Float64Histogram(
		"handoff.sink.duration",
		otelmetric.WithDescription("Time spent delivering a handoff event to a sink"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{}, err
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		deliveries:    deliveries,
		latency:       latency,
	}, nil
}

// RecordDelivery counts one delivery attempt and its duration.
func (o *Observability) RecordDelivery(ctx context.Context, sink, status string, took time.Duration) {
	if o == nil || o.deliveries == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("sink", sink),
		attribute.String("status", status),
	)
	o.deliveries.Add(ctx, 1, attrs)
	o.latency.Record(ctx, float64(took.Microseconds())/1000, attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
