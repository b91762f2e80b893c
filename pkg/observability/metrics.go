package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesVisited     = "tuimigrate.files.visited"
	metricTemplates        = "tuimigrate.templates.migrated"
	metricEditsRecorded    = "tuimigrate.edits.recorded"
	metricFilesChanged     = "tuimigrate.files.changed"
	metricErrorsTotal      = "tuimigrate.errors.total"
	metricRunDuration      = "tuimigrate.run.duration.seconds"
	metricSkippedResources = "tuimigrate.resources.skipped"

	attrKind   = "kind"
	attrStatus = "status"
	attrReason = "reason"

	// StatusOK and StatusError label finished runs.
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBuckets covers quick single-file runs up to large monorepos.
var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// RunMetrics holds the instruments of a migration run.
type RunMetrics struct {
	filesVisited metric.Int64Counter
	templates    metric.Int64Counter
	edits        metric.Int64Counter
	filesChanged metric.Int64Counter
	skipped      metric.Int64Counter
	errors       metric.Int64Counter
	duration     metric.Float64Histogram
}

// NewRunMetrics creates the run instruments from mt.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	var (
		rm  RunMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&rm.filesVisited, metricFilesVisited, "Source files inspected", "{file}"},
		{&rm.templates, metricTemplates, "Templates run through the migration steps", "{template}"},
		{&rm.edits, metricEditsRecorded, "Edit operations recorded", "{edit}"},
		{&rm.filesChanged, metricFilesChanged, "Files whose text changed", "{file}"},
		{&rm.skipped, metricSkippedResources, "Template resources skipped", "{resource}"},
		{&rm.errors, metricErrorsTotal, "Errors surfaced by a run", "{error}"},
	}

	for _, c := range counters {
		*c.dst, err = mt.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}
	}

	rm.duration, err = mt.Float64Histogram(metricRunDuration,
		metric.WithDescription("Migration run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunDuration, err)
	}

	return &rm, nil
}

// FileVisited counts one inspected source file.
func (rm *RunMetrics) FileVisited(ctx context.Context) {
	if rm == nil {
		return
	}

	rm.filesVisited.Add(ctx, 1)
}

// TemplateMigrated counts one template of the given kind ("inline" or "external").
func (rm *RunMetrics) TemplateMigrated(ctx context.Context, kind string) {
	if rm == nil {
		return
	}

	rm.templates.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}

// ResourceSkipped counts a template that could not be migrated.
func (rm *RunMetrics) ResourceSkipped(ctx context.Context, reason string) {
	if rm == nil {
		return
	}

	rm.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// EditsRecorded adds n recorded edits.
func (rm *RunMetrics) EditsRecorded(ctx context.Context, n int) {
	if rm == nil || n == 0 {
		return
	}

	rm.edits.Add(ctx, int64(n))
}

// RunFinished records the outcome of a run.
func (rm *RunMetrics) RunFinished(ctx context.Context, status string, filesChanged int, duration time.Duration) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	rm.duration.Record(ctx, duration.Seconds(), attrs)
	rm.filesChanged.Add(ctx, int64(filesChanged))

	if status == StatusError {
		rm.errors.Add(ctx, 1)
	}
}
