package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "ptv/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace attaches a TraceContext to the request. Incoming request and trace
// ids are kept; missing ones are generated. The host decides how much of an
// unexpected error the response reveals.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext(c.GetHeader(HeaderRequestID), c.GetHeader(HeaderTraceID), c.Request.Host)

		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), trace))

		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
