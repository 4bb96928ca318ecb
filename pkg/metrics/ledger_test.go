package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLedgerMetrics(reg)
	op := "submit_purchase"
	metrics.ObserveDuration(op, 250*time.Millisecond)
	metrics.IncSuccess(op)
	metrics.IncFailure(op)
	metrics.IncTimeout(op)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "ledger_call_success", "op", op); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "ledger_call_timeout", "op", op); err != nil {
		t.Fatalf("fetch timeout: %v", err)
	} else if got != 1 {
		t.Fatalf("expected timeout=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "ledger_call_duration_seconds", "op", op); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	metrics := NewLedgerMetrics(nil)
	metrics.ObserveDuration("noop", time.Second)
	metrics.IncSuccess("noop")

	queries := NewQueryMetrics(nil)
	queries.IncCacheHit("get")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(pairs []*dto.LabelPair, label, value string) bool {
	for _, pair := range pairs {
		if pair.GetName() == label && pair.GetValue() == value {
			return true
		}
	}
	return false
}
