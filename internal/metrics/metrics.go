package metrics

import (
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics - счётчики клиента. Все методы допускают nil-получатель.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	tokenRefresh    *prometheus.CounterVec
	apiRetries      prometheus.Counter
	workflows       *prometheus.CounterVec
	backgroundFails *prometheus.CounterVec
}

// New регистрирует метрики в отдельном реестре, не в глобальном
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmaconnect",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Outbound API requests by method and status class",
		}, []string{"method", "status_class"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pharmaconnect",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Outbound API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		tokenRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmaconnect",
			Subsystem: "auth",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by outcome",
		}, []string{"outcome"}),
		apiRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pharmaconnect",
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Requests retried after a successful token refresh",
		}),
		workflows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmaconnect",
			Subsystem: "session",
			Name:      "workflows_total",
			Help:      "Orchestrator workflows by name and outcome",
		}, []string{"workflow", "outcome"}),
		backgroundFails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmaconnect",
			Subsystem: "session",
			Name:      "background_refresh_failures_total",
			Help:      "Swallowed background refresh failures by task",
		}, []string{"task"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// StatusClass: 0 -> "none", 404 -> "4xx"
func StatusClass(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}

func (m *Metrics) ObserveRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, StatusClass(status)).Inc()
	m.apiDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *Metrics) TokenRefresh(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.tokenRefresh.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.apiRetries.Inc()
}

func (m *Metrics) Workflow(name string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.workflows.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) BackgroundFailure(task string) {
	if m == nil {
		return
	}
	m.backgroundFails.WithLabelValues(task).Inc()
}

// WriteText выгружает метрики в текстовом формате Prometheus
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
