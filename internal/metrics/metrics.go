// Package metrics exposes Prometheus counters and gauges for the
// node's replication activity, served at GET /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every counter/gauge this node reports.
type Metrics struct {
	LocalWrites      prometheus.Counter
	RemoteDelivered  prometheus.Counter
	RemoteHeld       prometheus.Counter
	RemoteDropped    prometheus.Counter
	ReplicationSends prometheus.Counter
	HoldBackDepth    prometheus.Gauge
}

// New creates and registers a node's metrics against registry.
func New(registry *prometheus.Registry, nodeID string) *Metrics {
	labels := prometheus.Labels{"node_id": nodeID}

	m := &Metrics{
		LocalWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "causalkv_local_writes_total",
			Help:        "Number of CREATE/UPDATE operations accepted from this node's own clients.",
			ConstLabels: labels,
		}),
		RemoteDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "causalkv_remote_delivered_total",
			Help:        "Number of remote operations applied, on arrival or on release from the hold-back queue.",
			ConstLabels: labels,
		}),
		RemoteHeld: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "causalkv_remote_held_total",
			Help:        "Number of remote operations parked in the hold-back queue.",
			ConstLabels: labels,
		}),
		RemoteDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "causalkv_remote_dropped_total",
			Help:        "Number of remote operations dropped for protocol errors.",
			ConstLabels: labels,
		}),
		ReplicationSends: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "causalkv_replication_sends_total",
			Help:        "Number of outbound replication sends queued, one per peer for each local write; retries are not counted.",
			ConstLabels: labels,
		}),
		HoldBackDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "causalkv_holdback_queue_depth",
			Help:        "Current number of operations parked in the hold-back queue.",
			ConstLabels: labels,
		}),
	}

	registry.MustRegister(
		m.LocalWrites,
		m.RemoteDelivered,
		m.RemoteHeld,
		m.RemoteDropped,
		m.ReplicationSends,
		m.HoldBackDepth,
	)
	return m
}
