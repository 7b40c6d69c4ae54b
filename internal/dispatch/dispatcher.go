// Package dispatch implements the operation dispatch pipeline: resolve the
// contract, validate arguments, apply defaults, bind the upstream request,
// issue it, and normalize the response into an envelope.
package dispatch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/catalog"
	"github.com/darkfeedlabs/leakwatch/internal/observability"
	"github.com/darkfeedlabs/leakwatch/model"
)

// Dispatcher executes operations against the upstream API. It holds no
// per-call state and is safe for concurrent use.
type Dispatcher struct {
	registry *catalog.Registry
	upstream model.UpstreamClient
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// New creates a Dispatcher. metrics may be nil, in which case no metrics
// are recorded.
func New(registry *catalog.Registry, upstream model.UpstreamClient, logger *zap.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		upstream: upstream,
		logger:   logger,
		metrics:  metrics,
	}
}

// Dispatch runs one operation invocation end to end and always returns an
// envelope; failures are carried inside it, never as a Go error. Arguments
// that fail validation never reach the network.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args model.Arguments) model.Envelope {
	contract, ok := d.registry.Resolve(name)
	if !ok {
		// The name is caller input; a fixed label keeps the metric's
		// cardinality bounded.
		d.count("unknown", model.ErrInvalidRequest)
		return model.Fail(model.NewUnknownOperationError(name))
	}

	cctx := &model.CallContext{
		Operation:     name,
		CorrelationID: uuid.NewString(),
		StartedAt:     time.Now(),
	}
	ctx = model.WithCallContext(ctx, cctx)

	ctx, span := observability.StartSpan(ctx, "dispatch."+name,
		observability.AttrOperation.String(name),
		observability.AttrCorrelationID.String(cctx.CorrelationID),
	)
	logger := observability.DispatchLogger(ctx, d.logger)

	env := d.run(ctx, contract, args)

	elapsed := time.Since(cctx.StartedAt)
	if d.metrics != nil {
		d.metrics.DispatchDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	}

	if env.OK() {
		d.count(name, "")
		logger.Info("dispatch complete", zap.Duration("elapsed", elapsed))
		observability.EndSpanWithError(span, nil)
	} else {
		d.count(name, env.Failure.Kind)
		span.SetAttributes(observability.AttrFailureKind.String(env.Failure.Kind))
		logger.Warn("dispatch failed",
			zap.String("failure_kind", env.Failure.Kind),
			zap.String("failure_message", env.Failure.Message),
			zap.Duration("elapsed", elapsed),
		)
		observability.EndSpanWithError(span, env.Failure)
	}

	return env
}

// run executes the validated part of the pipeline for a resolved contract.
func (d *Dispatcher) run(ctx context.Context, contract model.OperationContract, args model.Arguments) model.Envelope {
	if failure := validate(contract, args); failure != nil {
		if d.metrics != nil {
			d.metrics.ValidationFailuresTotal.WithLabelValues(contract.Name).Inc()
		}
		return model.Fail(failure)
	}

	shape := contract.Bind(applyDefaults(contract, args))
	trace.SpanFromContext(ctx).SetAttributes(observability.AttrUpstreamPath.String(shape.Path))

	start := time.Now()
	result, err := d.upstream.Issue(ctx, shape)
	if d.metrics != nil {
		d.metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return model.Fail(model.NewTransportError(err))
	}
	if d.metrics != nil {
		d.metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(result.StatusCode)).Inc()
	}

	return normalize(result)
}

// count records a dispatch outcome. An empty failure kind means success.
func (d *Dispatcher) count(operation, failureKind string) {
	if d.metrics == nil {
		return
	}
	outcome := "success"
	if failureKind != "" {
		outcome = strings.ToLower(failureKind)
	}
	d.metrics.DispatchesTotal.WithLabelValues(operation, outcome).Inc()
}
