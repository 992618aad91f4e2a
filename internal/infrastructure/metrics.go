package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// BusinessMetrics holds the HTTP and journal instruments.
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Journal metrics
	OperationsTotal    metric.Int64Counter
	OperationDuration  metric.Float64Histogram
	OperationErrors    metric.Int64Counter
	RecordsImported    metric.Int64Counter
	ValuesCoerced      metric.Int64Counter
	ValidationFailures metric.Int64Counter
	ExportsTotal       metric.Int64Counter
	RosterSize         metric.Int64Gauge

	// System metrics
	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests"},
		{&m.OperationsTotal, "journal_operations_total", "Total number of journal operations"},
		{&m.OperationErrors, "journal_operation_errors_total", "Total number of failed journal operations"},
		{&m.RecordsImported, "journal_records_imported_total", "Total number of student records imported"},
		{&m.ValuesCoerced, "journal_values_coerced_total", "Imported grade values that were not valid and stored as ungraded"},
		{&m.ValidationFailures, "journal_validation_failures_total", "Create and update requests rejected by validation"},
		{&m.ExportsTotal, "journal_exports_total", "Total number of journal exports"},
		{&m.SystemErrors, "system_errors_total", "Total number of system errors"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.OperationDuration, err = meter.Float64Histogram(
		"journal_operation_duration_seconds",
		metric.WithDescription("Journal operation duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.RosterSize, err = meter.Int64Gauge(
		"journal_roster_size",
		metric.WithDescription("Number of students in the journal"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordOperationMetrics records one journal operation.
func RecordOperationMetrics(ctx context.Context, metrics *BusinessMetrics, operation string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	metrics.OperationsTotal.Add(ctx, 1, attrs)
	metrics.OperationDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		metrics.OperationErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("error.type", fmt.Sprintf("%T", err)),
		))
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("journal.metrics_recorded", trace.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("success", err == nil),
			attribute.Float64("duration_seconds", duration.Seconds()),
		))
	}
}
