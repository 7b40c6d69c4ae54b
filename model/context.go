package model

import (
	"context"
	"time"
)

// CallContext carries per-dispatch metadata for the lifetime of one
// invocation. It is immutable after construction and safe for concurrent
// reads.
type CallContext struct {
	Operation     string
	CorrelationID string
	StartedAt     time.Time
}

type callContextKey struct{}

// WithCallContext stores a CallContext in the context.
func WithCallContext(ctx context.Context, cctx *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey{}, cctx)
}

// CallContextFrom returns the CallContext stored in the context, or nil.
func CallContextFrom(ctx context.Context) *CallContext {
	cctx, _ := ctx.Value(callContextKey{}).(*CallContext)
	return cctx
}
