// Package metrics exposes Prometheus counters/histograms for the control
// station's FEC decode drops, grant admission outcomes, FNE login
// outcomes, and ring-buffer overflow, grounded on the teacher's
// CounterVec/HistogramVec + promhttp server shape.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	FECDropsTotal      *prometheus.CounterVec
	GrantOutcomesTotal *prometheus.CounterVec
	GrantDuration      prometheus.Histogram
	LoginOutcomesTotal *prometheus.CounterVec
	RingOverflowsTotal *prometheus.CounterVec
	AffiliationsTotal  prometheus.Gauge
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		FECDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "p25ctrl_fec_drops_total",
			Help: "Frames dropped by FEC decode (Golay/Hamming/RS/BCH/Trellis) past tolerance",
		}, []string{"code"}),
		GrantOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "p25ctrl_grant_outcomes_total",
			Help: "Channel-grant admission outcomes",
		}, []string{"outcome"}), // granted, denied, queued, refreshed
		GrantDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "p25ctrl_grant_duration_seconds",
			Help:    "Wall-clock duration of granted channel holds",
			Buckets: prometheus.DefBuckets,
		}),
		LoginOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "p25ctrl_fne_login_outcomes_total",
			Help: "FNE peer login handshake outcomes",
		}, []string{"outcome"}), // accepted, rejected, timed_out
		RingOverflowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "p25ctrl_ring_overflows_total",
			Help: "Frames dropped because a protocol ring buffer was full",
		}, []string{"protocol"}), // dmr, p25, nxdn
		AffiliationsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "p25ctrl_affiliations_total",
			Help: "Current number of group-affiliated subscriber units",
		}),
	}
	metrics.register()
	return metrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.FECDropsTotal)
	prometheus.MustRegister(m.GrantOutcomesTotal)
	prometheus.MustRegister(m.GrantDuration)
	prometheus.MustRegister(m.LoginOutcomesTotal)
	prometheus.MustRegister(m.RingOverflowsTotal)
	prometheus.MustRegister(m.AffiliationsTotal)
}

func (m *Metrics) RecordFECDrop(code string) {
	m.FECDropsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordGrantOutcome(outcome string) {
	m.GrantOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordGrantDuration(seconds float64) {
	m.GrantDuration.Observe(seconds)
}

func (m *Metrics) RecordLoginOutcome(outcome string) {
	m.LoginOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRingOverflow(protocol string) {
	m.RingOverflowsTotal.WithLabelValues(protocol).Inc()
}

func (m *Metrics) SetAffiliationsTotal(count float64) {
	m.AffiliationsTotal.Set(count)
}
