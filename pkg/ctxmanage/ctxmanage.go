package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type key string

// TraceIDKey is set on the gin context by the logging middleware.
const TraceIDKey key = "trace_id"

// GetTraceIdOfRequest returns the trace id attached to the request,
// generating one if the middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(string(TraceIDKey)).(string)
	if !ok || traceId == "" {
		return uuid.NewString()
	}
	return traceId
}
