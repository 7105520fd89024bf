package observer

import (
	"context"
	"time"

	"github.com/edusage/sage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedAgent wraps any Agent to emit OTEL lifecycle spans and metrics.
// The wrapper creates a parent span for each Execute call; delegated
// sub-agent work joins it via context propagation.
type ObservedAgent struct {
	inner sage.Agent
	inst  *Instruments
}

var _ sage.Agent = (*ObservedAgent)(nil)

// WrapAgent returns an instrumented Agent that emits lifecycle telemetry.
func WrapAgent(inner sage.Agent, inst *Instruments) *ObservedAgent {
	return &ObservedAgent{inner: inner, inst: inst}
}

func (o *ObservedAgent) Name() string        { return o.inner.Name() }
func (o *ObservedAgent) Description() string { return o.inner.Description() }

// Execute wraps the inner agent's Execute, emitting an agent.execute span
// that serves as the parent for all inner operations.
func (o *ObservedAgent) Execute(ctx context.Context, task sage.Task) (sage.Result, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "agent.execute", trace.WithAttributes(
		AttrAgentName.String(o.inner.Name()),
		AttrSessionID.String(task.SessionID),
	))
	defer span.End()
	start := time.Now()

	result, err := o.inner.Execute(ctx, task)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"

	if ctx.Err() != nil && err != nil {
		status = "cancelled"
		span.SetStatus(codes.Error, "cancelled")
	} else if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(AttrAgentStatus.String(status))
	if result.Agent != "" {
		span.SetAttributes(attribute.String("agent.answered_by", result.Agent))
	}

	o.inst.AgentExecutions.Add(ctx, 1, metric.WithAttributes(
		AttrAgentName.String(o.inner.Name()),
		AttrStatus.String(status),
	))
	o.inst.AgentDuration.Record(ctx, durationMs, metric.WithAttributes(
		AttrAgentName.String(o.inner.Name()),
	))

	return result, err
}
