package goAuthKit

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricValidateLatency, 10*time.Millisecond)

	if m.Enabled() {
		t.Fatal("metrics must report disabled")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled counter = %d, want 0", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", snap)
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricLoginSuccess)
	if nilMetrics.Enabled() {
		t.Fatal("nil metrics must report disabled")
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	for i := 0; i < 5; i++ {
		m.Inc(MetricLoginSuccess)
	}
	m.Inc(MetricLoginFailure)

	if got := m.Value(MetricLoginSuccess); got != 5 {
		t.Fatalf("login success = %d, want 5", got)
	}
	if got := m.Value(MetricLoginFailure); got != 1 {
		t.Fatalf("login failure = %d, want 1", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 5 {
		t.Fatalf("snapshot login success = %d", snap.Counters[MetricLoginSuccess])
	}
	// Counters are present for every ID, touched or not.
	if _, ok := snap.Counters[MetricLogout]; !ok {
		t.Fatal("snapshot missing untouched counter")
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	durations := []struct {
		d      time.Duration
		bucket int
	}{
		{time.Millisecond, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{100 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}
	for _, tc := range durations {
		m.Observe(MetricValidateLatency, tc.d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricValidateLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("bucket count = %d, want %d", len(buckets), histBucketCount)
	}

	want := make([]uint64, histBucketCount)
	for _, tc := range durations {
		want[tc.bucket]++
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket %d = %d, want %d (all: %v)", i, buckets[i], want[i], buckets)
		}
	}

	// Only the validate latency series records observations.
	m.Observe(MetricLoginSuccess, time.Millisecond)
	after := m.Snapshot()
	if _, ok := after.Histograms[MetricLoginSuccess]; ok {
		t.Fatal("unexpected histogram for a counter-only metric")
	}
}

func TestMetricsLatencyDisabledIndependently(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	if m.LatencyEnabled() {
		t.Fatal("latency must default off")
	}
	m.Observe(MetricValidateLatency, time.Millisecond)
	snap := m.Snapshot()
	if len(snap.Histograms) != 0 {
		t.Fatalf("histograms recorded while disabled: %v", snap.Histograms)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	const goroutines = 8
	const perGoroutine = 1000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				m.Inc(MetricValidateSuccess)
				m.Observe(MetricValidateLatency, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricValidateSuccess); got != goroutines*perGoroutine {
		t.Fatalf("concurrent counter = %d, want %d", got, goroutines*perGoroutine)
	}
	var total uint64
	for _, v := range m.Snapshot().Histograms[MetricValidateLatency] {
		total += v
	}
	if total != goroutines*perGoroutine {
		t.Fatalf("concurrent observations = %d, want %d", total, goroutines*perGoroutine)
	}
}

func TestMetricsOutOfRangeID(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricID(10_000))
	if got := m.Value(MetricID(10_000)); got != 0 {
		t.Fatalf("out-of-range counter = %d", got)
	}
}
