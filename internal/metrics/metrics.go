package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector of the service on a private registry, so
// tests can build as many instances as they like. All methods are safe on a
// nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	LoginAttempts    *prometheus.CounterVec
	LeaveTransitions *prometheus.CounterVec
	BalanceConflicts prometheus.Counter
	AccrualCredits   *prometheus.CounterVec
	AccrualRuns      *prometheus.CounterVec
	OutboxRelayed    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrms_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrms_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrms_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		LeaveTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrms_leave_transitions_total",
			Help: "Leave request transitions by target status and leave type",
		}, []string{"status", "leave_type"}),
		BalanceConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "hrms_leave_balance_conflicts_total",
			Help: "Optimistic balance writes that lost a race and were retried",
		}),
		AccrualCredits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrms_accrual_credits_total",
			Help: "Accrual outcomes per employee and leave type",
		}, []string{"leave_type", "outcome"}),
		AccrualRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrms_accrual_runs_total",
			Help: "Accrual job runs by result",
		}, []string{"result"}),
		OutboxRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrms_outbox_relayed_total",
			Help: "Outbox rows relayed to Kafka by result",
		}, []string{"result"}),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLeaveTransition(status, leaveType string) {
	if m == nil {
		return
	}
	m.LeaveTransitions.WithLabelValues(status, leaveType).Inc()
}

func (m *Metrics) IncBalanceConflict() {
	if m == nil {
		return
	}
	m.BalanceConflicts.Inc()
}

func (m *Metrics) ObserveAccrual(leaveType, outcome string) {
	if m == nil {
		return
	}
	m.AccrualCredits.WithLabelValues(leaveType, outcome).Inc()
}

func (m *Metrics) ObserveAccrualRun(result string) {
	if m == nil {
		return
	}
	m.AccrualRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveOutbox(result string) {
	if m == nil {
		return
	}
	m.OutboxRelayed.WithLabelValues(result).Inc()
}
