package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRevisionsIngested = "revstats.revisions.ingested.total"
	metricReportsRendered   = "revstats.reports.rendered.total"
	metricRenderDuration    = "revstats.report.render.duration.seconds"
	metricFilesWritten      = "revstats.files.written.total"

	attrSource = "source"
	attrKind   = "kind"
	attrStatus = "status"

	// StatusOK and StatusError label rendered reports.
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries covers 1ms to 60s; a single report renders from
// an in-memory record set.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds the OTel instruments for ingestion and rendering.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	revisionsIngested metric.Int64Counter
	reportsRendered   metric.Int64Counter
	renderDuration    metric.Float64Histogram
	filesWritten      metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	ingested, err := mt.Int64Counter(metricRevisionsIngested,
		metric.WithDescription("Revisions parsed and stored"),
		metric.WithUnit("{revision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRevisionsIngested, err)
	}

	rendered, err := mt.Int64Counter(metricReportsRendered,
		metric.WithDescription("Reports rendered by kind and status"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReportsRendered, err)
	}

	duration, err := mt.Float64Histogram(metricRenderDuration,
		metric.WithDescription("Report render duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRenderDuration, err)
	}

	written, err := mt.Int64Counter(metricFilesWritten,
		metric.WithDescription("Output files written"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesWritten, err)
	}

	return &PipelineMetrics{
		revisionsIngested: ingested,
		reportsRendered:   rendered,
		renderDuration:    duration,
		filesWritten:      written,
	}, nil
}

// RecordIngest records revisions stored from a source ("svn", "git").
func (pm *PipelineMetrics) RecordIngest(ctx context.Context, source string, count int) {
	if pm == nil {
		return
	}

	pm.revisionsIngested.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrSource, source)))
}

// RecordRender records one report render.
func (pm *PipelineMetrics) RecordRender(ctx context.Context, kind, status string, duration time.Duration) {
	if pm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	)

	pm.reportsRendered.Add(ctx, 1, attrs)
	pm.renderDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordFiles records output files written.
func (pm *PipelineMetrics) RecordFiles(ctx context.Context, count int) {
	if pm == nil {
		return
	}

	pm.filesWritten.Add(ctx, int64(count))
}
