package report

import "math"

// Delta is the change of a figure between two runs
type Delta struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

// CalculateDelta compares current with previous. When previous is zero
// (or NaN) the whole current value is reported as the absolute change and
// the percentage is 0.
func CalculateDelta(current, previous float64) Delta {
	if previous == 0 || math.IsNaN(previous) {
		return Delta{Absolute: current, Percent: 0}
	}
	absolute := current - previous
	return Delta{
		Absolute: roundCents(absolute),
		Percent:  round1(absolute / previous * 100),
	}
}
