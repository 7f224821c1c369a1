package metrics

import "github.com/prometheus/client_golang/prometheus"

// ModerationMetrics counts sanitizer runs over user-submitted text.
type ModerationMetrics struct {
	checksTotal  *prometheus.CounterVec
	matchesTotal *prometheus.CounterVec
}

func NewModerationMetrics(reg prometheus.Registerer) *ModerationMetrics {
	m := &ModerationMetrics{
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sciencehub",
			Subsystem: "moderation",
			Name:      "checks_total",
			Help:      "Text fields passed through the profanity filter",
		}, []string{"field", "result"}),
		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sciencehub",
			Subsystem: "moderation",
			Name:      "matches_total",
			Help:      "Denylisted words masked, by field",
		}, []string{"field"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.checksTotal, m.matchesTotal)
	return m
}

// ObserveCheck records one filtered field and how many words it masked.
func (m *ModerationMetrics) ObserveCheck(field string, matches int) {
	if m == nil {
		return
	}
	result := "clean"
	if matches > 0 {
		result = "redacted"
		m.matchesTotal.WithLabelValues(field).Add(float64(matches))
	}
	m.checksTotal.WithLabelValues(field, result).Inc()
}

// HTTPMetrics tracks request counts and latency per chi route pattern.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sciencehub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sciencehub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}
