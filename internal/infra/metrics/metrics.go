// Package metrics はカート操作のPrometheus指標。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// カート操作の件数（op, result）
	CartOperations *prometheus.CounterVec
	// カート操作の処理時間
	CartOperationDuration *prometheus.HistogramVec
	// 在庫の管理者調整の件数
	InventoryAdjustments prometheus.Counter
}

// 専用レジストリに登録する。テストごとに作り直せる。
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		CartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart operations by operation and result kind",
		}, []string{"op", "result"}),
		CartOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_operation_duration_seconds",
			Help:    "Cart operation latency including lock waits",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		InventoryAdjustments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_adjustments_total",
			Help: "Admin stock adjustments",
		}),
	}

	reg.MustRegister(
		m.CartOperations,
		m.CartOperationDuration,
		m.InventoryAdjustments,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// 操作1回分を記録
func (m *Metrics) ObserveCartOp(op, result string, started time.Time) {
	if m == nil {
		return
	}
	m.CartOperations.WithLabelValues(op, result).Inc()
	m.CartOperationDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
