package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "shop-earnings-reconcile"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "marketplace_cron_job_success_total", "job", job); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "marketplace_cron_job_failure_total", "job", job); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "marketplace_cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	stamp := findMetricFamily(mfs, "marketplace_cron_job_last_success_timestamp_seconds")
	if stamp == nil || stamp.GetMetric()[0].GetGauge().GetValue() <= 0 {
		t.Fatalf("expected last success timestamp to be set")
	}
}

func TestCronJobMetricsCountsSkippedCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.IncSkipped()
	m.IncSkipped()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	skipped := findMetricFamily(mfs, "marketplace_cron_cycles_skipped_total")
	if skipped == nil || skipped.GetMetric()[0].GetCounter().GetValue() != 2 {
		t.Fatalf("expected skipped=2")
	}
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
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestEventMetricsCountsPerEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEventMetrics(reg)
	m.IncPublished("newOrder")
	m.IncPublished("newOrder")
	m.IncDropped("orderUpdate")
	m.IncRelayError()
	m.SetSubscribers(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "marketplace_events_published_total", "event", "newOrder"); err != nil || got != 2 {
		t.Fatalf("expected published=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "marketplace_events_dropped_total", "event", "orderUpdate"); err != nil || got != 1 {
		t.Fatalf("expected dropped=1, got %f (%v)", got, err)
	}
	gauge := findMetricFamily(mfs, "marketplace_events_subscribers")
	if gauge == nil || gauge.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected subscribers gauge=3")
	}
}

func TestNilRecordersAreSafe(t *testing.T) {
	var cron *CronJobMetrics
	cron.IncSuccess("x")
	cron.ObserveDuration("x", time.Second)
	NewCronJobMetrics(nil).IncFailure("x")

	var events *EventMetrics
	events.IncPublished("x")
	events.SetSubscribers(1)
	NewEventMetrics(nil).IncDropped("x")
}
