package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
)

const (
	KindEstimate   = "estimate"
	KindSubmission = "submission"
)

var (
	QuotesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotes_computed_total",
			Help: "Total number of quotes priced, by kind and project category",
		},
		[]string{"kind", "category"},
	)

	QuoteTotal = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quote_total_one_time",
			Help:    "One-time quote totals in whole currency units",
			Buckets: prometheus.ExponentialBuckets(500, 2, 10),
		},
		[]string{"kind", "category"},
	)

	QuoteStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_status_changes_total",
			Help: "Total number of operator status changes, by new status",
		},
		[]string{"status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveQuote records one priced quote.
func ObserveQuote(kind string, res pricing.Result) {
	category := string(res.Category)
	QuotesComputed.WithLabelValues(kind, category).Inc()
	QuoteTotal.WithLabelValues(kind, category).Observe(res.TotalOneTimePrice.InexactFloat64())
}

// Middleware counts and times requests by chi route pattern, so ids in the
// path do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
