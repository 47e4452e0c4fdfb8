package nilmap

import "sync/atomic"

// MetricsCollector defines an interface for collecting structural events.
// Implement this interface to integrate with monitoring systems like
// Prometheus. Containers report only rare structural transitions, never
// per-operation data, so collectors stay off the hot path.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    resizes  prometheus.Counter
//	    switches *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordResize(oldCapacity, newCapacity int) {
//	    p.resizes.Inc()
//	}
type MetricsCollector interface {
	// RecordResize is called after the sparse engine rebuilds at a new
	// capacity, including growth driven by inserts and explicit
	// EnsureCapacity and Trim rebuilds.
	RecordResize(oldCapacity, newCapacity int)

	// RecordStrategySwitch is called after a container changes its storage
	// strategy.
	RecordStrategySwitch(from, to Strategy)

	// RecordClear is called after a container is cleared.
	// size is the number of entries dropped.
	RecordClear(size int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordResize(int, int)                   {}
func (NoopMetricsCollector) RecordStrategySwitch(Strategy, Strategy) {}
func (NoopMetricsCollector) RecordClear(int)                         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ResizeCount         atomic.Int64
	StrategySwitchCount atomic.Int64
	ClearCount          atomic.Int64
	ClearedEntries      atomic.Int64
	LastCapacity        atomic.Int64
}

// RecordResize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResize(oldCapacity, newCapacity int) {
	b.ResizeCount.Add(1)
	b.LastCapacity.Store(int64(newCapacity))
}

// RecordStrategySwitch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStrategySwitch(from, to Strategy) {
	b.StrategySwitchCount.Add(1)
}

// RecordClear implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClear(size int) {
	b.ClearCount.Add(1)
	b.ClearedEntries.Add(int64(size))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ResizeCount:         b.ResizeCount.Load(),
		StrategySwitchCount: b.StrategySwitchCount.Load(),
		ClearCount:          b.ClearCount.Load(),
		ClearedEntries:      b.ClearedEntries.Load(),
		LastCapacity:        b.LastCapacity.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ResizeCount         int64
	StrategySwitchCount int64
	ClearCount          int64
	ClearedEntries      int64
	LastCapacity        int64
}
