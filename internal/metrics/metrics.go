package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roofdash"

// 对账结果标签
const (
	RunResultSuccess  = "success"
	RunResultDegraded = "degraded"
	RunResultFailed   = "failed"
	RunResultCached   = "cached"
)

// 潜在佣金调用结果标签
const (
	CallResultOK      = "ok"
	CallResultFailed  = "failed"
	CallResultTimeout = "timeout"
)

// Reconcile 对账引擎监控指标
type Reconcile struct {
	registry       *prometheus.Registry
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	potentialCalls *prometheus.CounterVec
	degradedUsers  prometheus.Gauge
}

// NewReconcile 创建并注册对账指标
func NewReconcile() *Reconcile {
	registry := prometheus.NewRegistry()
	m := &Reconcile{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Reconciliation runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a reconciliation run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		potentialCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "potential_calls_total",
			Help:      "Potential commission capability calls by result.",
		}, []string{"result"}),
		degradedUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "degraded_users",
			Help:      "Users whose potential commission degraded to zero in the last run.",
		}),
	}
	registry.MustRegister(
		m.runs,
		m.runDuration,
		m.potentialCalls,
		m.degradedUsers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun 记录一次对账
func (m *Reconcile) ObserveRun(result string, elapsed time.Duration, degraded int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(result)).Inc()
	if result == RunResultCached {
		return
	}
	m.runDuration.Observe(elapsed.Seconds())
	m.degradedUsers.Set(float64(degraded))
}

// IncPotentialCall 记录一次潜在佣金调用
func (m *Reconcile) IncPotentialCall(result string) {
	if m == nil {
		return
	}
	m.potentialCalls.WithLabelValues(normalizeLabel(result)).Inc()
}

// Handler 指标暴露处理器
func (m *Reconcile) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func normalizeLabel(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
