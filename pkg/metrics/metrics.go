package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		HTTPRequestDuration,
		ExportTotal, ExportDuration,
		ImportTotal,
		ResourceSaveDuration,
		CacheHitTotal,
	)
}

// HTTPRequestDuration HTTP 请求耗时（秒）
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mde_http_request_duration_seconds",
		Help:    "HTTP 请求耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// ExportTotal XML 导出总数（按 scheme 与结果）
var ExportTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mde_export_total",
		Help: "XML 导出总数（按 scheme 与结果）",
	},
	[]string{"scheme", "status"}, // success | error
)

// ExportDuration XML 渲染耗时（秒）
var ExportDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mde_export_duration_seconds",
		Help:    "XML 渲染耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"scheme"},
)

// ImportTotal XML 导入总数（按结果）
var ImportTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mde_import_total",
		Help: "XML 导入总数（按结果）",
	},
	[]string{"status"}, // success | rejected | error
)

// ResourceSaveDuration 资源聚合保存耗时（秒，含子表重写）
var ResourceSaveDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mde_resource_save_duration_seconds",
		Help:    "资源聚合保存耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op"}, // create | update | delete
)

// CacheHitTotal 导出缓存命中/未命中
var CacheHitTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mde_export_cache_total",
		Help: "导出缓存命中统计",
	},
	[]string{"result"}, // hit | miss
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
