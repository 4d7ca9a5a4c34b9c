package qn

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const latencyWindowSize = 1000

/*
Metrics accumulates measurement statistics for one or more registers. A nil
*Metrics records nothing. It is also a prometheus.Collector, so it can be
handed to a prometheus.Registry as is.
*/
type Metrics struct {
	mu             sync.RWMutex
	Measurements   int64
	Outcomes       [2]int64 // indexed by Bit
	Degenerate     int64
	TotalTime      time.Duration
	AverageLatency time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration

	// sliding window of the most recent latencies, for the percentiles
	latencyWindow []time.Duration
	windowSize    int

	measurementsDesc *prometheus.Desc
	degenerateDesc   *prometheus.Desc
	latencyDesc      *prometheus.Desc
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencyWindow: make([]time.Duration, 0, latencyWindowSize),
		windowSize:    latencyWindowSize,
		measurementsDesc: prometheus.NewDesc(
			"qn_measurements_total",
			"Qubit measurements performed, by outcome.",
			[]string{"outcome"}, nil,
		),
		degenerateDesc: prometheus.NewDesc(
			"qn_degenerate_states_total",
			"Measurements refused because the state vector had no usable mass.",
			nil, nil,
		),
		latencyDesc: prometheus.NewDesc(
			"qn_measurement_latency_seconds",
			"Measurement latency including lock wait, by quantile.",
			[]string{"quantile"}, nil,
		),
	}
}

func (m *Metrics) recordMeasurement(outcome Bit, latency time.Duration) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Measurements++
	m.Outcomes[outcome&1]++
	m.TotalTime += latency
	m.AverageLatency = m.TotalTime / time.Duration(m.Measurements)
	m.updateLatencyPercentiles(latency)
}

func (m *Metrics) recordDegenerate() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Degenerate++
}

func (m *Metrics) updateLatencyPercentiles(latency time.Duration) {
	m.latencyWindow = append(m.latencyWindow, latency)
	if len(m.latencyWindow) > m.windowSize {
		m.latencyWindow = m.latencyWindow[1:]
	}

	sorted := slices.Clone(m.latencyWindow)
	slices.Sort(sorted)

	p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
	p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

	m.P95Latency = sorted[p95Index]
	m.P99Latency = sorted[p99Index]
}

// ExportMetrics returns a snapshot keyed by metric name.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"measurements": m.Measurements,
		"outcome_zero": m.Outcomes[Zero],
		"outcome_one":  m.Outcomes[One],
		"degenerate":   m.Degenerate,
		"avg_latency":  m.AverageLatency.Microseconds(),
		"p95_latency":  m.P95Latency.Microseconds(),
		"p99_latency":  m.P99Latency.Microseconds(),
	}
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.measurementsDesc
	ch <- m.degenerateDesc
	ch <- m.latencyDesc
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, outcome := range []Bit{Zero, One} {
		ch <- prometheus.MustNewConstMetric(
			m.measurementsDesc, prometheus.CounterValue,
			float64(m.Outcomes[outcome]), outcome.String(),
		)
	}

	ch <- prometheus.MustNewConstMetric(
		m.degenerateDesc, prometheus.CounterValue, float64(m.Degenerate),
	)

	for quantile, latency := range map[string]time.Duration{
		"0.95": m.P95Latency,
		"0.99": m.P99Latency,
	} {
		ch <- prometheus.MustNewConstMetric(
			m.latencyDesc, prometheus.GaugeValue, latency.Seconds(), quantile,
		)
	}
}
