package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts requests by method, route, and status.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formingo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)

	// httpRequestDurationSeconds observes request latency in seconds.
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "formingo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "formingo",
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Requests currently being served.",
	})
)

// HTTPMiddleware instruments each request with Prometheus metrics.
// Routes listed in skip (e.g. "/metrics") are not recorded.
func HTTPMiddleware(skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipped[s] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Path()]; ok {
				return next(c)
			}
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo's error handler set the final status before we record it
				c.Error(err)
				err = nil
			}

			route := c.Path()
			if route == "" {
				route = "unknown"
			}
			method := c.Request().Method

			httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			httpRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
