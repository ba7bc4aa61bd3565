package context

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// TraceContext identifies one registry request in logs and error responses.
type TraceContext struct {
	TraceID   string
	RequestID string

	// Host the request was addressed to
	Host string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// NewTraceContext keeps the ids supplied by the caller and generates the missing ones.
func NewTraceContext(requestID, traceID, host string) *TraceContext {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return &TraceContext{TraceID: traceID, RequestID: requestID, Host: host}
}

// Diagnostic reports whether the request came through a dev or test host.
// Unexpected errors are shown in full only there.
func (t *TraceContext) Diagnostic() bool {
	if t == nil {
		return false
	}
	host := strings.ToLower(t.Host)
	return strings.Contains(host, "dev.") || strings.Contains(host, "test.")
}
