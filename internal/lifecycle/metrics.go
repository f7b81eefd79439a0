package lifecycle

import "github.com/prometheus/client_golang/prometheus"

var (
	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultd",
			Subsystem: "lifecycle",
			Name:      "signals_total",
			Help:      "Platform signals applied by the controller",
		},
		[]string{"signal"},
	)

	phaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultd",
			Subsystem: "lifecycle",
			Name:      "update_phase_transitions_total",
			Help:      "Worker update coordinator phase transitions",
		},
		[]string{"phase"},
	)

	promptOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultd",
			Subsystem: "lifecycle",
			Name:      "prompt_outcomes_total",
			Help:      "Install/update/permission prompt outcomes",
		},
		[]string{"prompt", "outcome"},
	)

	subscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vaultd",
			Subsystem: "lifecycle",
			Name:      "subscribers",
			Help:      "Attached snapshot subscribers",
		},
	)
)

func init() {
	prometheus.MustRegister(signalsTotal, phaseTransitions, promptOutcomes, subscribersGauge)
}
