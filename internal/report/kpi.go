package report

import "github.com/garyjia/ar-reminder/internal/invoice"

// KPI is one headline card of the AR dashboard
type KPI struct {
	Title          string  `json:"title"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formatted_value"`
	Color          string  `json:"color"`
	Delta          *Delta  `json:"delta,omitempty"`
	FormattedDelta string  `json:"formatted_delta,omitempty"`
	Trend          string  `json:"trend,omitempty"`
}

type kpiSpec struct {
	title string
	color string
	value func(*Run) float64
}

func bucketAmount(b invoice.Bucket) func(*Run) float64 {
	return func(r *Run) float64 { return r.Aging.Get(b).Amount }
}

var kpiSpecs = []kpiSpec{
	{title: "Total AR", color: "blue", value: func(r *Run) float64 { return r.Summary.TotalAR }},
	{title: "Total Overdue", color: "red", value: func(r *Run) float64 { return r.Summary.TotalOverdue }},
	{title: "1-30 Days", color: "orange", value: bucketAmount(invoice.Bucket1To30)},
	{title: "31-60 Days", color: "orange", value: bucketAmount(invoice.Bucket31To60)},
	{title: "61-90 Days", color: "red", value: bucketAmount(invoice.Bucket61To90)},
	{title: "90+ Days", color: "darkred", value: bucketAmount(invoice.Bucket90Plus)},
}

// BuildKPIs returns the dashboard cards for current. Deltas are filled in
// only when a previous run exists.
func BuildKPIs(current, previous *Run) []KPI {
	if current == nil {
		return nil
	}

	kpis := make([]KPI, 0, len(kpiSpecs))
	for _, spec := range kpiSpecs {
		value := spec.value(current)
		kpi := KPI{
			Title:          spec.title,
			Value:          value,
			FormattedValue: FormatCurrency(value),
			Color:          spec.color,
		}
		if previous != nil {
			delta := CalculateDelta(value, spec.value(previous))
			kpi.Delta = &delta
			kpi.FormattedDelta = formatDelta(delta)
			kpi.Trend = trend(delta)
		}
		kpis = append(kpis, kpi)
	}
	return kpis
}

// formatDelta renders "+12.5% (+$1,200)"
func formatDelta(d Delta) string {
	amount := FormatCurrency(d.Absolute)
	if d.Percent > 0 {
		amount = "+" + amount
	}
	return FormatPercent(d.Percent) + " (" + amount + ")"
}

func trend(d Delta) string {
	switch {
	case d.Percent > 0:
		return "up"
	case d.Percent < 0:
		return "down"
	default:
		return "flat"
	}
}
