package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{in: 0, expected: "$0"},
		{in: 1234.56, expected: "$1,235"},
		{in: 1234567, expected: "$1,234,567"},
		{in: 999.49, expected: "$999"},
		{in: -40.4, expected: "-$40"},
		{in: -2500, expected: "-$2,500"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCurrency(tt.in))
		})
	}
}

func TestRoundCents_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.125, 0.13},
		{-0.125, -0.13},
		{1.005, 1.01},
		{-40.555, -40.56},
		{12.344, 12.34},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundCents(tt.in), "roundCents(%v)", tt.in)
	}
	assert.Equal(t, -12.5, round1(-12.45))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+12.3%", FormatPercent(12.34))
	assert.Equal(t, "-5.0%", FormatPercent(-5))
	assert.Equal(t, "+0.0%", FormatPercent(0))
}

func TestBuildKPIs(t *testing.T) {
	t.Run("first run has no deltas", func(t *testing.T) {
		kpis := BuildKPIs(currentRun(), nil)

		require.Len(t, kpis, 6)
		titles := make([]string, 0, len(kpis))
		for _, k := range kpis {
			titles = append(titles, k.Title)
			assert.Nil(t, k.Delta)
		}
		assert.Equal(t, []string{"Total AR", "Total Overdue", "1-30 Days", "31-60 Days", "61-90 Days", "90+ Days"}, titles)
		assert.Equal(t, "$3,000", kpis[0].FormattedValue)
	})

	t.Run("deltas against previous run", func(t *testing.T) {
		kpis := BuildKPIs(currentRun(), previousRun())

		require.NotNil(t, kpis[0].Delta)
		assert.Equal(t, Delta{Absolute: 1000, Percent: 50}, *kpis[0].Delta)
		assert.Equal(t, "+50.0% (+$1,000)", kpis[0].FormattedDelta)
		assert.Equal(t, "up", kpis[0].Trend)

		assert.Equal(t, "flat", kpis[3].Trend)
		assert.Equal(t, "darkred", kpis[5].Color)
	})

	t.Run("nil current", func(t *testing.T) {
		assert.Nil(t, BuildKPIs(nil, nil))
	})
}
