package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/metrics"
)

// RequestLogger logs each request and records latency and error metrics.
func RequestLogger(log logger.Logger, m *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := r.Method + " " + r.URL.Path

			log.Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), elapsed)

			if m != nil {
				m.RequestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
				if ww.Status() >= 400 {
					m.APIErrorsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
				}
			}
		})
	}
}
