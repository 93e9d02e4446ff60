package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheMetricsMeterName is the name used for the registry cache meter
const CacheMetricsMeterName = "github.com/nf-core/modcache/registry"

// Network operation names recorded by CacheMetrics
const (
	OpClone    = "clone"
	OpFetch    = "fetch"
	OpLsRemote = "ls-remote"
)

// CacheMetrics holds the OpenTelemetry instruments for the local registry cache.
// A nil *CacheMetrics is valid and records nothing.
type CacheMetrics struct {
	networkOps   metric.Int64Counter
	syncDuration metric.Float64Histogram
	recoveries   metric.Int64Counter
}

// NewCacheMetrics creates a new CacheMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCacheMetrics(provider metric.MeterProvider) (*CacheMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CacheMetricsMeterName)

	networkOps, err := meter.Int64Counter(
		"modcache_network_operations_total",
		metric.WithDescription("Number of network operations against registry remotes"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	syncDuration, err := meter.Float64Histogram(
		"modcache_sync_duration_seconds",
		metric.WithDescription("Duration of local cache setup in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	recoveries, err := meter.Int64Counter(
		"modcache_cache_recoveries_total",
		metric.WithDescription("Number of corrupted caches encountered"),
		metric.WithUnit("{recovery}"),
	)
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		networkOps:   networkOps,
		syncDuration: syncDuration,
		recoveries:   recoveries,
	}, nil
}

// RecordNetworkOp records one clone, fetch or ls-remote against a registry
func (m *CacheMetrics) RecordNetworkOp(ctx context.Context, registryName, op string, success bool) {
	if m == nil || m.networkOps == nil {
		return
	}

	m.networkOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("registry", registryName),
		attribute.String("operation", op),
		attribute.Bool("success", success),
	))
}

// RecordSyncDuration records how long establishing a registry's working copy took
func (m *CacheMetrics) RecordSyncDuration(ctx context.Context, registryName string, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("registry", registryName),
		attribute.Bool("success", success),
	))
}

// RecordRecovery records a corrupted cache and whether it was deleted
func (m *CacheMetrics) RecordRecovery(ctx context.Context, registryName string, deleted bool) {
	if m == nil || m.recoveries == nil {
		return
	}

	m.recoveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("registry", registryName),
		attribute.Bool("deleted", deleted),
	))
}
