package metrics_test

import (
	"testing"
	"time"

	"github.com/devlibx/lsmgo/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestObserveAndSnapshot(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.ObserveGet(5 * time.Millisecond)
	m.ObservePut(1 * time.Millisecond)
	m.ObserveRemove()
	m.ObserveFlush(20 * time.Millisecond)

	snap := m.Snapshot()
	require.Greater(t, snap.GetP50, int64(0))
	require.Greater(t, snap.PutP50, int64(0))
	require.Greater(t, snap.FlushP50, int64(0))
}

func TestSetGauges(t *testing.T) {
	m := metrics.New(nil)
	m.SetGauges(128, 3, 4096)

	require.Equal(t, float64(128), testutilValue(m.MemtableBytes))
	require.Equal(t, float64(3), testutilValue(m.L0Files))
	require.Equal(t, float64(4096), testutilValue(m.OnDiskBytes))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.ObserveGet(time.Millisecond)
		m.ObservePut(time.Millisecond)
		m.ObserveRemove()
		m.ObserveFlush(time.Millisecond)
		m.SetGauges(1, 1, 1)
		_ = m.Snapshot()
	})
}

func testutilValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	_ = g.Write(m)
	return m.GetGauge().GetValue()
}
