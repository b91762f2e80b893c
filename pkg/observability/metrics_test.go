package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/observability"
)

func setupRunMetrics(t *testing.T) (*observability.RunMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rm, err := observability.NewRunMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return rm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func sumOf(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				return 0, false
			}

			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}

			return total, true
		}
	}

	return 0, false
}

func TestRunMetrics_Counters(t *testing.T) {
	t.Parallel()

	rm, reader := setupRunMetrics(t)
	ctx := context.Background()

	rm.FileVisited(ctx)
	rm.FileVisited(ctx)
	rm.TemplateMigrated(ctx, "inline")
	rm.EditsRecorded(ctx, 5)
	rm.EditsRecorded(ctx, 0)
	rm.ResourceSkipped(ctx, "missing-template")
	rm.RunFinished(ctx, observability.StatusOK, 3, 250*time.Millisecond)

	data := collect(t, reader)

	visited, ok := sumOf(data, "tuimigrate.files.visited")
	require.True(t, ok)
	assert.Equal(t, int64(2), visited)

	edits, ok := sumOf(data, "tuimigrate.edits.recorded")
	require.True(t, ok)
	assert.Equal(t, int64(5), edits)

	changed, ok := sumOf(data, "tuimigrate.files.changed")
	require.True(t, ok)
	assert.Equal(t, int64(3), changed)

	skipped, ok := sumOf(data, "tuimigrate.resources.skipped")
	require.True(t, ok)
	assert.Equal(t, int64(1), skipped)

	errs, _ := sumOf(data, "tuimigrate.errors.total")
	assert.Zero(t, errs)
}

func TestRunMetrics_ErrorRun(t *testing.T) {
	t.Parallel()

	rm, reader := setupRunMetrics(t)
	rm.RunFinished(context.Background(), observability.StatusError, 0, time.Second)

	errs, ok := sumOf(collect(t, reader), "tuimigrate.errors.total")
	require.True(t, ok)
	assert.Equal(t, int64(1), errs)
}

func TestRunMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var rm *observability.RunMetrics

	assert.NotPanics(t, func() {
		rm.FileVisited(context.Background())
		rm.EditsRecorded(context.Background(), 1)
		rm.RunFinished(context.Background(), observability.StatusOK, 1, time.Millisecond)
	})
}

func TestNewRunMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	rm, err := observability.NewRunMetrics(providers.Meter)
	require.NoError(t, err)

	rm.TemplateMigrated(context.Background(), "external")
}
