package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue 从默认注册表中读取指定标签组合的计数值。
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecordersAreSafeBeforeRegistration(t *testing.T) {
	if newsMutations != nil {
		t.Skip("metrics already registered in this process")
	}
	RecordNewsMutation("create", "ok")
	ObserveNewsList("all", time.Millisecond)
	RecordRateLimited("/api/news")
}

func TestMustRegisterIsIdempotentAndRecords(t *testing.T) {
	MustRegister()
	MustRegister()

	labels := map[string]string{"operation": "create", "result": "ok"}
	before := counterValue(t, "newsportal_news_mutations_total", labels)
	RecordNewsMutation("create", "ok")
	if got := counterValue(t, "newsportal_news_mutations_total", labels); got != before+1 {
		t.Fatalf("expected counter to increase by one, before=%v after=%v", before, got)
	}

	RecordNewsMutation(" ", "")
	if got := counterValue(t, "newsportal_news_mutations_total", map[string]string{"operation": "unknown", "result": "unknown"}); got < 1 {
		t.Fatalf("expected blank labels to fall back to unknown, got %v", got)
	}

	RecordRateLimited("")
	if got := counterValue(t, "newsportal_http_rate_limited_total", map[string]string{"route": "unknown"}); got < 1 {
		t.Fatalf("expected rate limited counter, got %v", got)
	}

	ObserveNewsList("", 5*time.Millisecond)
}
