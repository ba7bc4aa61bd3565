package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceContext(t *testing.T) {
	kept := NewTraceContext("req-1", "trace-1", "api.ptv.example")
	assert.Equal(t, "req-1", kept.RequestID)
	assert.Equal(t, "trace-1", kept.TraceID)

	generated := NewTraceContext("", "", "")
	assert.NotEmpty(t, generated.RequestID)
	assert.NotEmpty(t, generated.TraceID)
	assert.NotEqual(t, generated.RequestID, generated.TraceID)

	ctx := WithTrace(context.Background(), kept)
	require.NotNil(t, GetTrace(ctx))
	assert.Same(t, kept, GetTrace(ctx))
	assert.Nil(t, GetTrace(context.Background()))
}

func TestTraceContext_Diagnostic(t *testing.T) {
	assert.True(t, NewTraceContext("", "", "dev.ptv.example").Diagnostic())
	assert.True(t, NewTraceContext("", "", "API.TEST.ptv.example:8080").Diagnostic())
	assert.False(t, NewTraceContext("", "", "api.ptv.example").Diagnostic())

	var missing *TraceContext
	assert.False(t, missing.Diagnostic())
}
