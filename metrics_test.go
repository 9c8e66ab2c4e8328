package namecheck

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricCacheHit)
	m.Inc(MetricCacheHit)
	m.Inc(MetricResolveResolved)

	if got := m.Value(MetricCacheHit); got != 2 {
		t.Fatalf("cache hits = %d, want 2", got)
	}
	if got := m.Value(MetricResolveResolved); got != 1 {
		t.Fatalf("resolved = %d, want 1", got)
	}
	if got := m.Value(MetricCacheMiss); got != 0 {
		t.Fatalf("misses = %d, want 0", got)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.Inc(MetricCacheHit)
	m.Observe(MetricResolveLatency, time.Millisecond)

	if got := m.Value(MetricCacheHit); got != 0 {
		t.Fatalf("disabled counter = %d, want 0", got)
	}
	snap := m.Snapshot()
	if len(snap.Histograms) != 0 {
		t.Fatal("disabled metrics must not report histograms")
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricResolveLatency, 3*time.Millisecond)
	m.Observe(MetricResolveLatency, 40*time.Millisecond)
	m.Observe(MetricResolveLatency, 2*time.Second)

	buckets := m.Snapshot().Histograms[MetricResolveLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("bucket count = %d", len(buckets))
	}
	if buckets[0] != 1 || buckets[3] != 1 || buckets[7] != 1 {
		t.Fatalf("buckets = %v", buckets)
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{100 * time.Millisecond, 4},
		{500 * time.Millisecond, 6},
		{501 * time.Millisecond, 7},
	}
	for _, tc := range tests {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}
