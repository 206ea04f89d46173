package observability

import "time"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveInvocation records one handler invocation.
func (m *Metrics) ObserveInvocation(err error) {
	if m == nil {
		return
	}
	m.Invocations.WithLabelValues(status(err)).Inc()
}

// ObserveModelTurn records one model call and its latency.
func (m *Metrics) ObserveModelTurn(dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.ModelTurns.WithLabelValues(status(err)).Inc()
	m.ModelTurnDuration.Observe(dur.Seconds())
}

// ObserveToolDispatch records one tool dispatch. outcome is "success" or the
// error kind of the result.
func (m *Metrics) ObserveToolDispatch(tool, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.ToolDispatches.WithLabelValues(tool, outcome).Inc()
	m.ToolDispatchDuration.WithLabelValues(tool).Observe(dur.Seconds())
}

// ObserveLoopLimit records a run stopped by the iteration cap.
func (m *Metrics) ObserveLoopLimit() {
	if m == nil {
		return
	}
	m.LoopLimitHits.Inc()
}
