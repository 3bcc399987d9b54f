package mycontext

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ctxTraceID is the context key under which the per-request trace ID lives (used by mylog).
type ctxTraceID struct{}

func ContextFromHTTPRequest(r *http.Request) context.Context {
	traceID := r.Header.Get("X-Request-Id")
	if traceID == "" {
		traceID = uuid.New().String()
	}

	return context.WithValue(r.Context(), ctxTraceID{}, traceID)
}

func TraceID(c context.Context) string {
	traceID, ok := c.Value(ctxTraceID{}).(string)
	if !ok {
		return ""
	}

	return traceID
}
