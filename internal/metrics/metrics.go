// Package metrics holds the Prometheus collectors of the verifier. They are
// registered with the default registry and served by the app's /metrics
// endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "argcegar"

var (
	// Refinements counts refinement rounds by outcome.
	Refinements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refinements_total",
		Help:      "Refinement rounds by outcome",
	}, []string{"outcome"})

	// RoundDuration tracks how long one refinement round takes.
	RoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refinement_duration_seconds",
		Help:      "Refinement round duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	// TargetsFound counts target nodes handed to refinement.
	TargetsFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "targets_found_total",
		Help:      "Target nodes handed to refinement",
	})

	// InterpolationQueries counts prover calls by kind.
	InterpolationQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interpolation_queries_total",
		Help:      "Prover calls by kind",
	}, []string{"kind"})

	// SessionCacheHits counts prover calls answered from a round's session.
	SessionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_cache_hits_total",
		Help:      "Prover calls answered from the round cache",
	})

	// RemovedNodes counts nodes removed from the ARG by refinement.
	RemovedNodes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "removed_nodes_total",
		Help:      "Nodes removed from the ARG by refinement",
	})

	// ARGSize is the number of live nodes after the last exploration.
	ARGSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "arg_nodes",
		Help:      "Live ARG nodes after the last exploration",
	})

	// Verdicts counts finished verification runs by verdict.
	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verdicts_total",
		Help:      "Finished verification runs by verdict",
	}, []string{"verdict"})
)
