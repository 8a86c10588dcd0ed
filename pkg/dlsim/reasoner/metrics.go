package reasoner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for similarity measurements.
var (
	tracer = otel.Tracer("dlsim.reasoner")
	meter  = otel.Meter("dlsim.reasoner")
)

var (
	measureLatency   metric.Float64Histogram
	measureTotal     metric.Int64Counter
	backtraceRecords metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		measureLatency, err = meter.Float64Histogram(
			"dlsim_measure_duration_seconds",
			metric.WithDescription("Duration of top-level directed similarity measurements"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		measureTotal, err = meter.Int64Counter(
			"dlsim_measure_total",
			metric.WithDescription("Total number of directed similarity measurements"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		backtraceRecords, err = meter.Int64Histogram(
			"dlsim_backtrace_records",
			metric.WithDescription("Number of backtrace records produced per measurement"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordMeasurement records the outcome of one top-level measurement.
func recordMeasurement(ctx context.Context, d time.Duration, records int, ok bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", ok))
	measureLatency.Record(ctx, d.Seconds(), attrs)
	measureTotal.Add(ctx, 1, attrs)
	if ok {
		backtraceRecords.Record(ctx, int64(records))
	}
}
