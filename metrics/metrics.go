// Package metrics instruments the engine with Prometheus counters/gauges
// and HdrHistogram latency histograms (SPEC_FULL.md's Domain Stack:
// op counts, memtable/L0 gauges, get/put/flush latency).
package metrics

import (
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// histogramMaxMicros bounds the latency histograms at 10s, generous for
// an in-process storage engine whose operations are normally
// sub-millisecond.
const histogramMaxMicros = 10 * 1000 * 1000

// Metrics holds every counter, gauge, and latency histogram the engine
// reports. A nil *Metrics is valid and every method on it is a no-op.
// New always returns a non-nil *Metrics, so an engine opened without a
// Registerer still records every counter, gauge and histogram; they are
// just not registered for scraping.
type Metrics struct {
	Gets    prometheus.Counter
	Puts    prometheus.Counter
	Removes prometheus.Counter
	Flushes prometheus.Counter

	MemtableBytes prometheus.Gauge
	L0Files       prometheus.Gauge
	OnDiskBytes   prometheus.Gauge

	mu           sync.Mutex
	getLatency   *hdrhistogram.Histogram
	putLatency   *hdrhistogram.Histogram
	flushLatency *hdrhistogram.Histogram
}

// New constructs a Metrics instance and registers it against reg. If reg
// is nil, the counters/gauges are still created (so callers always get a
// usable *Metrics) but never exposed to a Prometheus scrape.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Gets:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "lsmgo", Name: "gets_total", Help: "Total Get calls."}),
		Puts:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "lsmgo", Name: "puts_total", Help: "Total Put calls."}),
		Removes:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "lsmgo", Name: "removes_total", Help: "Total Remove calls."}),
		Flushes:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "lsmgo", Name: "flushes_total", Help: "Total memtable flushes."}),
		MemtableBytes: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "lsmgo", Name: "memtable_bytes", Help: "Active + frozen memtable bytes."}),
		L0Files:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "lsmgo", Name: "l0_files", Help: "Number of installed L0 SSTs."}),
		OnDiskBytes:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "lsmgo", Name: "on_disk_bytes", Help: "Total bytes across installed SSTs."}),
		getLatency:    hdrhistogram.New(1, histogramMaxMicros, 3),
		putLatency:    hdrhistogram.New(1, histogramMaxMicros, 3),
		flushLatency:  hdrhistogram.New(1, histogramMaxMicros, 3),
	}
	if reg != nil {
		reg.MustRegister(m.Gets, m.Puts, m.Removes, m.Flushes, m.MemtableBytes, m.L0Files, m.OnDiskBytes)
	}
	return m
}

// ObserveGet records a completed Get's latency and increments its
// counter.
func (m *Metrics) ObserveGet(d time.Duration) {
	if m == nil {
		return
	}
	m.Gets.Inc()
	m.record(m.getLatency, d)
}

// ObservePut records a completed Put's latency and increments its
// counter.
func (m *Metrics) ObservePut(d time.Duration) {
	if m == nil {
		return
	}
	m.Puts.Inc()
	m.record(m.putLatency, d)
}

// ObserveRemove increments the remove counter.
func (m *Metrics) ObserveRemove() {
	if m == nil {
		return
	}
	m.Removes.Inc()
}

// ObserveFlush records a completed flush's latency and increments its
// counter.
func (m *Metrics) ObserveFlush(d time.Duration) {
	if m == nil {
		return
	}
	m.Flushes.Inc()
	m.record(m.flushLatency, d)
}

// SetGauges updates the point-in-time gauges from the engine's current
// state.
func (m *Metrics) SetGauges(memtableBytes int, l0Files int, onDiskBytes int64) {
	if m == nil {
		return
	}
	m.MemtableBytes.Set(float64(memtableBytes))
	m.L0Files.Set(float64(l0Files))
	m.OnDiskBytes.Set(float64(onDiskBytes))
}

func (m *Metrics) record(h *hdrhistogram.Histogram, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = h.RecordValue(d.Microseconds())
}

// LatencySnapshot reports rounded latency percentiles, in microseconds,
// for the get/put/flush histograms.
type LatencySnapshot struct {
	GetP50, GetP99     int64
	PutP50, PutP99     int64
	FlushP50, FlushP99 int64
}

// Snapshot returns the current percentile readout across all tracked
// operations.
func (m *Metrics) Snapshot() LatencySnapshot {
	if m == nil {
		return LatencySnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return LatencySnapshot{
		GetP50:   m.getLatency.ValueAtQuantile(50),
		GetP99:   m.getLatency.ValueAtQuantile(99),
		PutP50:   m.putLatency.ValueAtQuantile(50),
		PutP99:   m.putLatency.ValueAtQuantile(99),
		FlushP50: m.flushLatency.ValueAtQuantile(50),
		FlushP99: m.flushLatency.ValueAtQuantile(99),
	}
}
