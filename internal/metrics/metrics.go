// Package metrics 工作流与通知投递的 Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 持有所有指标，注册到独立的 Registry 以便测试
type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	notices     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bounty",
			Subsystem: "workflow",
			Name:      "operations_total",
			Help:      "Workflow operations by outcome.",
		}, []string{"operation", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bounty",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Review decisions applied, by review type and result.",
		}, []string{"review_type", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bounty",
			Subsystem: "workflow",
			Name:      "operation_seconds",
			Help:      "Workflow operation latency including the transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bounty",
			Name:      "notifications_total",
			Help:      "Notification deliveries by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}

	m.registry.MustRegister(
		m.operations,
		m.transitions,
		m.durations,
		m.notices,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOperation 记录一次工作流操作
func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.durations.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveTransition(reviewType, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(reviewType, result).Inc()
}

func (m *Metrics) ObserveNotification(sink string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.notices.WithLabelValues(sink, outcome).Inc()
}

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
