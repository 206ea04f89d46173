// Package observability exposes the Prometheus metrics recorded by the agent
// runtime, the tool registry and the request handler.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors used across supportmesh. A nil *Metrics is
// valid and records nothing, so components can treat metrics as optional.
//
// Usage:
//
//	reg := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(reg)
//	metrics.ObserveToolDispatch("track_package", "success", time.Since(start))
type Metrics struct {
	// Invocations counts handler invocations.
	// Labels: status (success|error)
	Invocations *prometheus.CounterVec

	// ModelTurns counts model capability calls.
	// Labels: status (success|error)
	ModelTurns *prometheus.CounterVec

	// ModelTurnDuration measures model call latency in seconds.
	ModelTurnDuration prometheus.Histogram

	// ToolDispatches counts tool dispatches.
	// Labels: tool, outcome (success or error kind)
	ToolDispatches *prometheus.CounterVec

	// ToolDispatchDuration measures tool execution time in seconds.
	// Labels: tool
	ToolDispatchDuration *prometheus.HistogramVec

	// LoopLimitHits counts runs terminated by the iteration cap.
	LoopLimitHits prometheus.Counter
}

// NewMetrics creates all collectors and registers them with reg. Passing
// prometheus.DefaultRegisterer exposes them on the default /metrics handler;
// tests should pass a fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supportmesh_invocations_total",
				Help: "Total number of handler invocations by status",
			},
			[]string{"status"},
		),
		ModelTurns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supportmesh_model_turns_total",
				Help: "Total number of model turns by status",
			},
			[]string{"status"},
		),
		ModelTurnDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "supportmesh_model_turn_duration_seconds",
				Help:    "Duration of model turns in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		ToolDispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supportmesh_tool_dispatch_total",
				Help: "Total number of tool dispatches by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		ToolDispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "supportmesh_tool_dispatch_duration_seconds",
				Help:    "Duration of tool dispatches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"tool"},
		),
		LoopLimitHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "supportmesh_loop_limit_total",
				Help: "Total number of runs terminated by the iteration cap",
			},
		),
	}
}
