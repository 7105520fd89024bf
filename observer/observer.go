// Package observer provides OTEL-based observability for tutor operations.
//
// It wraps agents with instrumented versions that emit traces and metrics via
// OpenTelemetry, and exposes counters for store and ingest activity. Users
// export to any OTEL-compatible backend by setting standard OTEL env vars.
package observer

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/edusage/sage/observer"

// Instruments holds all OTEL instruments used by the observer wrappers.
type Instruments struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	// Counters
	AgentExecutions metric.Int64Counter
	StoreOps        metric.Int64Counter
	IngestChunks    metric.Int64Counter

	// Histograms
	AgentDuration metric.Float64Histogram
}

// Init sets up OTEL trace and metric providers with OTLP HTTP exporters.
// Configuration comes from standard OTEL env vars (OTEL_EXPORTER_OTLP_ENDPOINT,
// etc.). Returns a shutdown function that must be called on application exit.
func Init(ctx context.Context) (*Instruments, func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName("sage")),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, nil, err
	}

	traceExp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricExp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	inst, err := newInstruments()
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tp.Shutdown(ctx),
			mp.Shutdown(ctx),
		)
	}

	return inst, shutdown, nil
}

func newInstruments() (*Instruments, error) {
	tracer := otel.Tracer(scopeName)
	meter := otel.Meter(scopeName)

	agentExecutions, err := meter.Int64Counter("agent.executions",
		metric.WithDescription("Agent execution count"),
		metric.WithUnit("{execution}"))
	if err != nil {
		return nil, err
	}

	agentDuration, err := meter.Float64Histogram("agent.duration",
		metric.WithDescription("Agent execution duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	storeOps, err := meter.Int64Counter("store.operations",
		metric.WithDescription("Store operation count"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, err
	}

	ingestChunks, err := meter.Int64Counter("ingest.chunks",
		metric.WithDescription("Curriculum chunks ingested"),
		metric.WithUnit("{chunk}"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		Tracer:          tracer,
		Meter:           meter,
		AgentExecutions: agentExecutions,
		AgentDuration:   agentDuration,
		StoreOps:        storeOps,
		IngestChunks:    ingestChunks,
	}, nil
}

// RecordStoreOp counts one store operation by name and status.
func (inst *Instruments) RecordStoreOp(ctx context.Context, op string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	inst.StoreOps.Add(ctx, 1, metric.WithAttributes(
		AttrStoreOp.String(op),
		AttrStatus.String(status),
	))
}

// RecordIngest counts ingested chunks for a subject.
func (inst *Instruments) RecordIngest(ctx context.Context, subject string, chunks int) {
	inst.IngestChunks.Add(ctx, int64(chunks), metric.WithAttributes(
		AttrSubject.String(subject),
	))
}
