package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chantier_purchase_transitions_total",
		Help: "Purchase order transitions by trigger and outcome.",
	}, []string{"trigger", "outcome"})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chantier_overrun_alerts_total",
		Help: "Overrun alerts created by type.",
	}, []string{"type"})

	Suggestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chantier_suggestions_total",
		Help: "Suggestion requests by source.",
	}, []string{"source"})
)
