// Package metrics declares the Prometheus collectors a session.Client
// reports through, following the counter/gauge pairing this module's sibling
// services register for their own request-handling paths.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the collectors a session.Client updates during its pump
// loop and dispatcher. The zero value has nil collectors and must not be
// used; the Metrics returned by Nop is safe to call and never exported.
type Metrics struct {
	WindowOccupancy prometheus.Gauge
	SubmitResults   *prometheus.CounterVec
	Reconnects      prometheus.Counter
	ActiveTests     prometheus.Counter
}

// New constructs Metrics and registers them with reg. Panics if reg already
// has collectors under the same names, matching prometheus.MustRegister's
// fail-fast convention used for process-lifetime metrics.
func New(reg prometheus.Registerer, namespace string) Metrics {
	m := Metrics{
		WindowOccupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_occupancy",
			Help:      "Number of SUBMITs currently awaiting SUBMIT_RESP.",
		}),
		SubmitResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_results_total",
			Help:      "SUBMIT outcomes by result name.",
		}, []string{"result"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Number of times the session loop re-entered the connect cycle.",
		}),
		ActiveTests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_tests_total",
			Help:      "Number of ACTIVE_TEST frames emitted by the keepalive path.",
		}),
	}
	reg.MustRegister(m.WindowOccupancy, m.SubmitResults, m.Reconnects, m.ActiveTests)
	return m
}

// Nop returns Metrics whose collectors are unregistered and safe to call;
// used when a session.Client is constructed without WithMetrics.
func Nop() Metrics {
	return Metrics{
		WindowOccupancy: prometheus.NewGauge(prometheus.GaugeOpts{Name: "cmpp_nop_window_occupancy"}),
		SubmitResults:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cmpp_nop_submit_results"}, []string{"result"}),
		Reconnects:      prometheus.NewCounter(prometheus.CounterOpts{Name: "cmpp_nop_reconnects"}),
		ActiveTests:     prometheus.NewCounter(prometheus.CounterOpts{Name: "cmpp_nop_active_tests"}),
	}
}
