package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	probe_reachable        *prometheus.GaugeVec
	fallback_active        prometheus.Gauge
	incident_open          prometheus.Gauge
	cycles_total           prometheus.Counter
	reconcile_errors_total prometheus.Counter
	alerts_sent_total      prometheus.Counter
}

var coll *Collector

func newCollector() *Collector {
	namespace := "nat_failover"
	return &Collector{
		probe_reachable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_reachable",
			Help:      "Whether the last probe sequence on the path reached the target.",
		}, []string{"path"}),
		fallback_active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fallback_active",
			Help:      "Whether the NAT masquerade fallback rule is currently applied.",
		}),
		incident_open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "incident_open",
			Help:      "Whether an incident alert is currently open.",
		}),
		cycles_total: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Counter of completed detection cycles.",
		}),
		reconcile_errors_total: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_errors_total",
			Help:      "Counter of failed firewall reconciliations.",
		}),
		alerts_sent_total: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Counter of alerts posted to Alertmanager.",
		}),
	}
}

func (e *Collector) Describe(ch chan<- *prometheus.Desc) {
	e.probe_reachable.Describe(ch)
	ch <- e.fallback_active.Desc()
	ch <- e.incident_open.Desc()
	ch <- e.cycles_total.Desc()
	ch <- e.reconcile_errors_total.Desc()
	ch <- e.alerts_sent_total.Desc()
}

func (e *Collector) Collect(ch chan<- prometheus.Metric) {
	e.probe_reachable.Collect(ch)
	ch <- e.fallback_active
	ch <- e.incident_open
	ch <- e.cycles_total
	ch <- e.reconcile_errors_total
	ch <- e.alerts_sent_total
}

// The update helpers are nil-safe so unit tests can run without a
// collector.

func (e *Collector) observeProbes(defaultUp, policyUp bool) {
	if e == nil {
		return
	}
	e.probe_reachable.WithLabelValues("default").Set(boolToFloat(defaultUp))
	e.probe_reachable.WithLabelValues("policy").Set(boolToFloat(policyUp))
}

func (e *Collector) observeState(state FailoverState, incidentOpen bool) {
	if e == nil {
		return
	}
	e.fallback_active.Set(boolToFloat(state == NatFallback))
	e.incident_open.Set(boolToFloat(incidentOpen))
}

func (e *Collector) cycleDone() {
	if e == nil {
		return
	}
	e.cycles_total.Inc()
}

func (e *Collector) reconcileError() {
	if e == nil {
		return
	}
	e.reconcile_errors_total.Inc()
}

func (e *Collector) alertSent() {
	if e == nil {
		return
	}
	e.alerts_sent_total.Inc()
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
