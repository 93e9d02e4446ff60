package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Resource attributes describing one modcache run
const (
	AttrDefaultRemote = attribute.Key("modcache.remote")
	AttrCacheDir      = attribute.Key("modcache.cache_dir")
)

// RunInfo identifies the invocation whose spans and metrics are exported.
// The session ID becomes service.instance.id, so every signal of one run
// can be correlated in the collector.
type RunInfo struct {
	SessionID string
	Version   string
	Remote    string
	CacheDir  string
}

func newResource(ctx context.Context, cfg *Config, run RunInfo) (*resource.Resource, error) {
	version := cfg.ServiceVersion
	if version == "" {
		version = run.Version
	}
	if version == "" {
		version = "unknown"
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.GetServiceName()),
		semconv.ServiceVersion(version),
	}
	if run.SessionID != "" {
		attrs = append(attrs, semconv.ServiceInstanceID(run.SessionID))
	}
	if run.Remote != "" {
		attrs = append(attrs, AttrDefaultRemote.String(run.Remote))
	}
	if run.CacheDir != "" {
		attrs = append(attrs, AttrCacheDir.String(run.CacheDir))
	}

	// resource.New avoids schema URL conflicts with resource.Default()
	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
