package history

import "github.com/garyjia/ar-reminder/internal/report"

// Update is the outcome of recording a run: the new history plus the
// dashboard cards and insights comparing the run with its predecessor
type Update struct {
	History  *History     `json:"history"`
	Current  report.Run   `json:"current"`
	Previous *report.Run  `json:"previous,omitempty"`
	KPIs     []report.KPI `json:"kpis"`
	Insights []string     `json:"insights"`
}

// Record appends run to h and derives trends. h is left untouched and may
// be nil for a first run.
func Record(h *History, run report.Run) Update {
	next := AddRun(h, run)
	current := CurrentRun(next)
	previous := PreviousRun(next)

	return Update{
		History:  next,
		Current:  *current,
		Previous: previous,
		KPIs:     report.BuildKPIs(current, previous),
		Insights: report.GenerateInsights(current, previous),
	}
}
