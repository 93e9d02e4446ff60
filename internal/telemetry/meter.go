package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// DefaultMetricsInterval is the export interval for long invocations.
// Short ones are flushed by Telemetry.Shutdown.
const DefaultMetricsInterval = 15 * time.Second

// newMeterProvider wires the cache metrics to an OTLP collector, a Prometheus
// registry for the textfile, or both. registry may be nil.
func newMeterProvider(
	ctx context.Context, cfg *Config, res *resource.Resource, registry *prometheus.Registry,
) (metric.MeterProvider, error) {
	if !cfg.metricsEnabled() {
		return noop.NewMeterProvider(), nil
	}

	providerOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.metricsOverOTLP() {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.GetEndpoint())}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricsInterval)),
		))
	}
	if registry != nil {
		exporter, err := otelprom.New(
			otelprom.WithRegisterer(registry),
			otelprom.WithoutScopeInfo(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus metrics exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(exporter))
	}

	slog.Debug("Metrics initialized",
		"otlp", cfg.metricsOverOTLP(),
		"textfile", cfg.textfile(),
	)
	return sdkmetric.NewMeterProvider(providerOpts...), nil
}
