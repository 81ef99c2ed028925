package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"property-quote/internal/common/logger"
	"property-quote/internal/common/metrics"
)

// requestLogger logs every request and records its duration by route pattern.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			metrics.HTTPRequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(status)).
				Observe(elapsed.Seconds())

			fields := map[string]interface{}{
				"method":     r.Method,
				"route":      route,
				"status":     status,
				"durationMs": elapsed.Milliseconds(),
				"requestId":  middleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				log.Error("request failed", fields)
				return
			}
			log.Debug("request served", fields)
		})
	}
}
