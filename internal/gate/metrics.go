package gate

import "github.com/prometheus/client_golang/prometheus"

var decisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vaultd",
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Gate decisions by action",
	},
	[]string{"action"},
)

func init() {
	prometheus.MustRegister(decisionsTotal)
}
