package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes engine-wide counters for hosts that scrape Prometheus,
// grounded in the same client library the teacher's stats package builds
// on. The engine core never starts an HTTP listener itself (spec.md §1
// Non-goals: "the engine is not a proxy and performs no I/O directly");
// a host registers these with its own registry.
type Metrics struct {
	ModulesLinked   prometheus.Counter
	ConnectionsOpen prometheus.Gauge
	TransactionsTotal prometheus.Counter
	Blocked         prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ModulesLinked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "httpinspect",
			Name:      "modules_linked_total",
			Help:      "Number of modules linked into the engine at configure time.",
		}),
		ConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "httpinspect",
			Name:      "connections_open",
			Help:      "Number of connections currently open.",
		}),
		TransactionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "httpinspect",
			Name:      "transactions_total",
			Help:      "Number of transactions created.",
		}),
		Blocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "httpinspect",
			Name:      "blocked_total",
			Help:      "Number of transactions on which tx_block took effect.",
		}),
	}
}

// Collectors returns every metric so a host can register them with its
// own prometheus.Registerer.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.ModulesLinked, m.ConnectionsOpen, m.TransactionsTotal, m.Blocked}
}
