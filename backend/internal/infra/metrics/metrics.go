package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce           sync.Once
	newsMutations          *prometheus.CounterVec
	newsListDuration       *prometheus.HistogramVec
	newsRateLimited        *prometheus.CounterVec
	defaultDurationBuckets = prometheus.DefBuckets
)

const (
	namespaceMetrics = "newsportal"
)

// MustRegister 初始化 Prometheus 指标并注册 Go 运行时采样器，需在应用启动阶段调用一次。
func MustRegister() {
	registerOnce.Do(func() {
		newsMutations = register(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "news",
					Name:      "mutations_total",
					Help:      "新闻创建/更新/删除的调用次数，按操作与结果统计。",
				},
				[]string{"operation", "result"},
			),
		)
		newsListDuration = register(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespaceMetrics,
					Subsystem: "news",
					Name:      "list_duration_seconds",
					Help:      "公开列表查询耗时，按查询范围区分。",
					Buckets:   defaultDurationBuckets,
				},
				[]string{"scope"},
			),
		)
		newsRateLimited = register(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "http",
					Name:      "rate_limited_total",
					Help:      "被限流拒绝的写请求次数，按路由统计。",
				},
				[]string{"route"},
			),
		)

		registerRuntimeCollectors()
	})
}

// RecordNewsMutation 记录写操作结果，result 取值如 ok/invalid/duplicate/not_found/error。
func RecordNewsMutation(operation, result string) {
	if newsMutations == nil {
		return
	}
	newsMutations.WithLabelValues(normalizeLabel(operation, "unknown"), normalizeLabel(result, "unknown")).Inc()
}

// ObserveNewsList 记录列表查询耗时。
func ObserveNewsList(scope string, duration time.Duration) {
	if newsListDuration == nil {
		return
	}
	newsListDuration.WithLabelValues(normalizeLabel(scope, "all")).Observe(duration.Seconds())
}

// RecordRateLimited 记录一次限流拒绝。
func RecordRateLimited(route string) {
	if newsRateLimited == nil {
		return
	}
	newsRateLimited.WithLabelValues(normalizeLabel(route, "unknown")).Inc()
}

func normalizeLabel(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// register 注册采集器；同名采集器已存在时复用已注册的实例，保证重复调用安全。
func register[T prometheus.Collector](collector T) T {
	err := prometheus.Register(collector)
	if err == nil {
		return collector
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	panic(err)
}

// registerRuntimeCollectors 默认注册表通常已包含 Go/进程采集器，重复注册直接忽略。
func registerRuntimeCollectors() {
	for _, collector := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		var are prometheus.AlreadyRegisteredError
		if err := prometheus.Register(collector); err != nil && !errors.As(err, &are) {
			panic(err)
		}
	}
}
