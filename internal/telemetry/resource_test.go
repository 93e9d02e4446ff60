package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestNewResource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		run     RunInfo
		want    map[attribute.Key]string
		missing []attribute.Key
	}{
		{
			name:   "run attributes",
			config: &Config{},
			run: RunInfo{
				SessionID: "6f1c2a4e",
				Version:   "v1.2.0",
				Remote:    "https://github.com/nf-core/modules.git",
				CacheDir:  "/home/user/.cache/nfcore/modules",
			},
			want: map[attribute.Key]string{
				semconv.ServiceNameKey:       DefaultServiceName,
				semconv.ServiceVersionKey:    "v1.2.0",
				semconv.ServiceInstanceIDKey: "6f1c2a4e",
				AttrDefaultRemote:            "https://github.com/nf-core/modules.git",
				AttrCacheDir:                 "/home/user/.cache/nfcore/modules",
			},
		},
		{
			name:   "configured service overrides build version",
			config: &Config{ServiceName: "modcache-ci", ServiceVersion: "pinned"},
			run:    RunInfo{Version: "v1.2.0"},
			want: map[attribute.Key]string{
				semconv.ServiceNameKey:    "modcache-ci",
				semconv.ServiceVersionKey: "pinned",
			},
			missing: []attribute.Key{semconv.ServiceInstanceIDKey, AttrDefaultRemote, AttrCacheDir},
		},
		{
			name:   "unknown version",
			config: &Config{},
			want:   map[attribute.Key]string{semconv.ServiceVersionKey: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := newResource(context.Background(), tt.config, tt.run)
			require.NoError(t, err)

			set := res.Set()
			for key, want := range tt.want {
				got, ok := set.Value(key)
				require.True(t, ok, "missing %s", key)
				assert.Equal(t, want, got.AsString(), key)
			}
			for _, key := range tt.missing {
				_, ok := set.Value(key)
				assert.False(t, ok, "unexpected %s", key)
			}
		})
	}
}

func TestTelemetry_TextfileCarriesRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "modcache.prom")
	tel, err := New(ctx,
		WithTelemetryConfig(&Config{
			Enabled: true,
			Metrics: &MetricsConfig{Enabled: true, Textfile: path},
		}),
		WithRun(RunInfo{SessionID: "6f1c2a4e", Remote: "https://github.com/nf-core/modules.git"}),
	)
	require.NoError(t, err)

	metrics, err := tel.CacheMetrics()
	require.NoError(t, err)
	metrics.RecordNetworkOp(ctx, "nf-core/modules", OpFetch, true)
	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "target_info")
	assert.Contains(t, string(content), `service_instance_id="6f1c2a4e"`)
	assert.Contains(t, string(content), `modcache_remote="https://github.com/nf-core/modules.git"`)
}
