// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// One gauge series per known state, with the active one set to 1, so a single
// PromQL selector can alert on whichever state a component is in.
var breakerStates = [...]string{"closed", "half-open", "open"}

var (
	breakerStateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pendel_circuit_breaker_state",
		Help: "Active circuit breaker state per component (1 on the active state, 0 elsewhere)",
	}, []string{"component", "state"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_circuit_breaker_trips_total",
		Help: "Circuit breaker transitions into the open state",
	}, []string{"component", "reason"})
)

// SetCircuitBreakerState marks state as active for the component and clears
// the other known states.
func SetCircuitBreakerState(component, state string) {
	for _, known := range breakerStates {
		var v float64
		if known == state {
			v = 1
		}
		breakerStateGauge.WithLabelValues(component, known).Set(v)
	}
}

// RecordCircuitBreakerTrip counts a transition into the open state.
func RecordCircuitBreakerTrip(component, reason string) {
	breakerTrips.WithLabelValues(component, reason).Inc()
}
