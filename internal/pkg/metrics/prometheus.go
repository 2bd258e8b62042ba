package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skysweep",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skysweep",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "skysweep",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Detection rule metrics
	ruleEditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skysweep",
			Subsystem: "rule",
			Name:      "edits_total",
			Help:      "Total number of detection rule setting edits",
		},
		[]string{"resource_type"},
	)

	ruleResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skysweep",
			Subsystem: "rule",
			Name:      "resets_total",
			Help:      "Total number of detection rule resets to factory defaults",
		},
		[]string{"resource_type"},
	)

	customizedRules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "skysweep",
			Subsystem: "rule",
			Name:      "customized_count",
			Help:      "Number of rules whose current settings deviate from defaults",
		},
	)

	// Waste metrics
	orphanedResources = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "skysweep",
			Subsystem: "waste",
			Name:      "orphaned_resources",
			Help:      "Number of detected orphaned resources",
		},
		[]string{"resource_type", "tier"},
	)

	accruedWaste = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "skysweep",
			Subsystem: "waste",
			Name:      "accrued_total",
			Help:      "Estimated money already wasted across all orphaned resources",
		},
	)

	monthlyRunRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "skysweep",
			Subsystem: "waste",
			Name:      "monthly_run_rate",
			Help:      "Estimated monthly cost of all orphaned resources",
		},
	)

	// Inventory sweep metrics
	sweepTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skysweep",
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Total number of inventory sweeps",
		},
		[]string{"status"},
	)

	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skysweep",
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Duration of inventory sweeps in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skysweep",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Get route pattern from chi
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRuleEdit records a rule setting edit
func RecordRuleEdit(resourceType string) {
	ruleEditsTotal.WithLabelValues(resourceType).Inc()
}

// RecordRuleReset records a rule reset to defaults
func RecordRuleReset(resourceType string) {
	ruleResetsTotal.WithLabelValues(resourceType).Inc()
}

// SetCustomizedRules sets the gauge for customized rules
func SetCustomizedRules(count float64) {
	customizedRules.Set(count)
}

// SetOrphanedResources sets the gauge for orphaned resources by type and tier
func SetOrphanedResources(resourceType, tier string, count float64) {
	orphanedResources.WithLabelValues(resourceType, tier).Set(count)
}

// SetAccruedWaste sets the gauge for total accrued waste
func SetAccruedWaste(amount float64) {
	accruedWaste.Set(amount)
}

// SetMonthlyRunRate sets the gauge for the total monthly run-rate
func SetMonthlyRunRate(amount float64) {
	monthlyRunRate.Set(amount)
}

// RecordSweep records an inventory sweep run
func RecordSweep(status string, duration time.Duration) {
	sweepTotal.WithLabelValues(status).Inc()
	sweepDuration.Observe(duration.Seconds())
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
