// Package telemetry provides OpenTelemetry instrumentation for modcache.
// Cache operations emit spans and metrics that are exported over OTLP/HTTP
// when telemetry is enabled, and go to no-op providers otherwise.
package telemetry

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultServiceName identifies modcache runs in the collector
	DefaultServiceName = "modcache"

	// DefaultEndpoint is the local OTLP/HTTP collector
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling keeps every trace. A run produces a handful of spans.
	DefaultSampling = 1.0

	textfileExt = ".prom"
)

// Config is the telemetry section of the modcache config file
type Config struct {
	Enabled bool `yaml:"enabled"`

	// ServiceName overrides DefaultServiceName
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion overrides the build version
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the collector as host:port. Empty means DefaultEndpoint,
	// except for metrics going to a textfile, which then skip OTLP.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure sends OTLP over plain HTTP
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig controls the spans of registry operations
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of runs traced, 0 means DefaultSampling
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig controls the cache metrics
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Textfile is written in Prometheus text format at shutdown, for the
	// node_exporter textfile collector
	Textfile string `yaml:"textfile,omitempty"`
}

// GetServiceName returns the service name, using default if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetEndpoint returns the endpoint, using default if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

func (c *Config) tracingEnabled() bool {
	return c != nil && c.Enabled && c.Tracing != nil && c.Tracing.Enabled
}

func (c *Config) metricsEnabled() bool {
	return c != nil && c.Enabled && c.Metrics != nil && c.Metrics.Enabled
}

// textfile returns the Prometheus textfile path when metrics go to one
func (c *Config) textfile() string {
	if !c.metricsEnabled() {
		return ""
	}
	return c.Metrics.Textfile
}

// metricsOverOTLP reports whether metrics are pushed to a collector. A
// textfile with no explicit endpoint never dials one.
func (c *Config) metricsOverOTLP() bool {
	return c.metricsEnabled() && (c.Metrics.Textfile == "" || c.Endpoint != "")
}

// GetSampling returns the sampling ratio. 0 cannot be told apart from unset and means DefaultSampling.
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0.0 {
		return DefaultSampling
	}
	return c.Sampling
}

// Validate checks the enabled parts of the configuration
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	return errors.Join(errs...)
}

// Validate checks the sampling ratio
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Sampling < 0 || c.Sampling > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", c.Sampling)
	}
	return nil
}

// Validate checks the textfile name, which node_exporter only picks up with a .prom extension
func (c *MetricsConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Textfile != "" && !strings.HasSuffix(c.Textfile, textfileExt) {
		return fmt.Errorf("textfile must have a %s extension, got %q", textfileExt, c.Textfile)
	}
	return nil
}
