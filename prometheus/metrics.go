package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	StatusCategoryTotal *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Entity metrics
	EntityOperationsCounter *prometheus.CounterVec
	RuleRejectionsCounter   *prometheus.CounterVec

	// Infrastructure side effects
	EventPublishFailures *prometheus.CounterVec
	CacheLookups         *prometheus.CounterVec
)

// InitMetrics registers the metrics on the default registry.
// Until it is called every recorder in this package is a no-op.
func InitMetrics(prefix string) {
	initOnce.Do(func() {
		HttpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		HttpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		StatusCategoryTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category"},
		)

		AuthAttemptsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
		)

		AuthSuccessCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_success_total",
				Help: "Total number of successful authentications",
			},
		)

		AuthErrorsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors by reason",
			},
			[]string{"reason"},
		)

		DbOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity", "operation_type"},
		)

		EntityOperationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_entity_operations_total",
				Help: "Total number of supplier, inventory and pricing operations",
			},
			[]string{"entity", "operation"},
		)

		RuleRejectionsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_rule_rejections_total",
				Help: "Writes rejected by validation, uniqueness or reference checks",
			},
			[]string{"entity", "kind"},
		)

		EventPublishFailures = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_event_publish_failures_total",
				Help: "Domain events that could not be delivered",
			},
			[]string{"entity"},
		)

		CacheLookups = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_stats_cache_lookups_total",
				Help: "Stats cache lookups by result",
			},
			[]string{"result"},
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(entity, operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(entity, operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordOperation increments the counter for entity operations
func RecordOperation(entity, operation string) {
	if EntityOperationsCounter != nil {
		EntityOperationsCounter.WithLabelValues(entity, operation).Inc()
	}
}

// RecordRejection counts a write refused by a business or field rule
func RecordRejection(entity, kind string) {
	if RuleRejectionsCounter != nil {
		RuleRejectionsCounter.WithLabelValues(entity, kind).Inc()
	}
}

// RecordAuthAttempt counts an authentication attempt
func RecordAuthAttempt() {
	if AuthAttemptsCounter != nil {
		AuthAttemptsCounter.Inc()
	}
}

// RecordAuthSuccess counts a successful authentication
func RecordAuthSuccess() {
	if AuthSuccessCounter != nil {
		AuthSuccessCounter.Inc()
	}
}

// RecordAuthError counts a failed authentication by reason
func RecordAuthError(reason string) {
	if AuthErrorsCounter != nil {
		AuthErrorsCounter.WithLabelValues(reason).Inc()
	}
}

// RecordEventFailure counts an undelivered domain event
func RecordEventFailure(entity string) {
	if EventPublishFailures != nil {
		EventPublishFailures.WithLabelValues(entity).Inc()
	}
}

// RecordCacheLookup counts a stats cache hit or miss
func RecordCacheLookup(result string) {
	if CacheLookups != nil {
		CacheLookups.WithLabelValues(result).Inc()
	}
}

// RecordHTTPRequest records count, duration and status class of a handled request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	code := strconv.Itoa(status)
	HttpRequestsTotal.WithLabelValues(method, path, code).Inc()
	HttpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())

	if category := StatusCategory(status); category != "" {
		StatusCategoryTotal.WithLabelValues(category).Inc()
	}
}

// StatusCategory maps a status code to its class label
func StatusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
