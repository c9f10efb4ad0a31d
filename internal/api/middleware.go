package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lp-farming/farming-core/internal/observability/metrics"
	"github.com/lp-farming/farming-core/internal/observability/tracing"
)

const traceHeader = "X-Request-Id"

// traceRequest attaches a trace id to the request logger and echoes it back.
func traceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := tracing.TraceID(r.Header.Get(traceHeader))
		w.Header().Set(traceHeader, id)
		next.ServeHTTP(w, r.WithContext(tracing.WithTraceID(r.Context(), id)))
	})
}

func recordDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// the pattern is only known once routing is done
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHttpRequestDuration(time.Since(startTime), r.Method, route, status)
	})
}
