package model

import "context"

// UpstreamClient is the single capability the dispatcher needs from the
// upstream collaborator: issue one read-only call and return the raw
// status and body. Implementations own connection pooling and any retry
// policy; the dispatcher never retries.
type UpstreamClient interface {
	Issue(ctx context.Context, shape RequestShape) (Result, error)
}

// Result is the raw upstream response.
type Result struct {
	StatusCode int
	Body       []byte
}
