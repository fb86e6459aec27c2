package report

import (
	"testing"

	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcernScore(t *testing.T) {
	assert.Equal(t, 0.0, ConcernScore(AgingBuckets{}))
	assert.Equal(t, 1+2*2+3*3+5*4.0, ConcernScore(AgingBuckets{Days1To30: 1, Days31To60: 2, Days61To90: 3, Days90Plus: 4}))
}

func TestConcernScore_NinetyPlusDominates(t *testing.T) {
	base := AgingBuckets{Days1To30: 500, Days31To60: 400, Days61To90: 300, Days90Plus: 100}
	worse := base
	worse.Days90Plus = 100.01

	assert.Greater(t, ConcernScore(worse), ConcernScore(base))
}

func TestBuildCustomerRisk(t *testing.T) {
	invoices := invoice.NormalizeRows([]invoice.Row{
		{"Customer": "Acme", "Amount": "100", "Due date": "2023-10-01"},
		{"Customer": "Acme", "Amount": "40", "Due date": "2024-02-15"},
		{"Customer": "Acme", "Amount": "60", "Due date": "2024-05-01"},
		{"Customer": "Acme", "Amount": "bad", "Due date": "2023-01-01"},
	}, testNow)

	risk, ok := BuildCustomerRisk("Acme", invoices)
	require.True(t, ok)

	assert.Equal(t, 200.0, risk.TotalBalance)
	assert.Equal(t, 140.0, risk.OverdueBalance)
	assert.Equal(t, 152, risk.OldestInvoiceDays)
	assert.Equal(t, AgingBuckets{Days1To30: 40, Days90Plus: 100}, risk.AgingBuckets)
	assert.Equal(t, 540.0, risk.ConcernScore)
}

func TestBuildCustomerRisk_OnlyCurrent(t *testing.T) {
	invoices := invoice.NormalizeRows([]invoice.Row{
		{"Customer": "Acme", "Amount": "60", "Due date": "2024-05-01"},
	}, testNow)

	risk, ok := BuildCustomerRisk("Acme", invoices)
	require.True(t, ok)
	assert.Equal(t, 0, risk.OldestInvoiceDays)
	assert.Equal(t, 0.0, risk.ConcernScore)

	_, ok = BuildCustomerRisk("Nobody", nil)
	assert.False(t, ok)
}

func TestCalculateDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		expected Delta
	}{
		{name: "zero previous", current: 100, previous: 0, expected: Delta{Absolute: 100, Percent: 0}},
		{name: "increase", current: 150, previous: 100, expected: Delta{Absolute: 50, Percent: 50}},
		{name: "decrease", current: 90, previous: 120, expected: Delta{Absolute: -30, Percent: -25}},
		{name: "one decimal", current: 200, previous: 300, expected: Delta{Absolute: -100, Percent: -33.3}},
		{name: "fractional", current: 110.5, previous: 100, expected: Delta{Absolute: 10.5, Percent: 10.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateDelta(tt.current, tt.previous))
		})
	}
}

func TestHealthTier(t *testing.T) {
	assert.Equal(t, "healthy", HealthTier(14.9))
	assert.Equal(t, "moderate", HealthTier(15))
	assert.Equal(t, "moderate", HealthTier(29.9))
	assert.Equal(t, "concerning", HealthTier(30))
}

func previousRun() *Run {
	return &Run{
		Summary: Summary{TotalAR: 2000, TotalOverdue: 1000, OverduePct: 50},
		Aging: Aging{
			Current:    BucketTotal{Amount: 1000},
			Days31To60: BucketTotal{Amount: 100},
			Days61To90: BucketTotal{Amount: 200},
			Days90Plus: BucketTotal{Amount: 700},
		},
	}
}

func currentRun() *Run {
	return &Run{
		Summary: Summary{TotalAR: 3000, TotalOverdue: 1200, OverduePct: 40},
		Aging: Aging{
			Current:    BucketTotal{Amount: 1800},
			Days31To60: BucketTotal{Amount: 100},
			Days61To90: BucketTotal{Amount: 300},
			Days90Plus: BucketTotal{Amount: 800},
		},
		TopCustomers: []CustomerRisk{
			{Name: "A", OverdueBalance: 600, AgingBuckets: AgingBuckets{Days90Plus: 500}},
			{Name: "B", OverdueBalance: 300, AgingBuckets: AgingBuckets{Days61To90: 300}},
		},
	}
}

func TestGenerateInsights(t *testing.T) {
	insights := GenerateInsights(currentRun(), previousRun())

	assert.Equal(t, []string{
		"Total overdue AR increased by 20.0% since last run, primarily driven by 61-90 days and 90+ days buckets.",
		"Top 5 customers account for 75% of total overdue AR.",
		"Aging drift shows money moving from 61-90 days → 90+ days, indicating invoices are getting older.",
		"1 of the top 10 customers have invoices overdue by 90+ days, requiring immediate attention.",
		"Overall AR health is concerning with 40.0% of total AR overdue.",
	}, insights)
}

func TestGenerateInsights_FirstRun(t *testing.T) {
	insights := GenerateInsights(currentRun(), nil)

	require.Len(t, insights, 3)
	assert.Contains(t, insights[0], "Top 5 customers")
	assert.Contains(t, insights[2], "Overall AR health")
}

func TestGenerateInsights_NilCurrent(t *testing.T) {
	assert.Empty(t, GenerateInsights(nil, previousRun()))
}

func TestGenerateInsights_Drift(t *testing.T) {
	t.Run("ninety plus growth", func(t *testing.T) {
		cur := previousRun()
		cur.Aging.Days90Plus.Amount = 1400

		insights := GenerateInsights(cur, previousRun())

		assert.Contains(t, insights, "Significant increase in 90+ days bucket, indicating invoices are aging.")
	})

	t.Run("shrinking bucket is not reported", func(t *testing.T) {
		cur := previousRun()
		cur.Aging.Days90Plus.Amount = 100
		cur.Aging.Days61To90.Amount = 210

		for _, s := range GenerateInsights(cur, previousRun()) {
			assert.NotContains(t, s, "drift")
			assert.NotContains(t, s, "Significant increase")
		}
	})

	t.Run("small change below threshold", func(t *testing.T) {
		cur := previousRun()
		cur.Aging.Days61To90.Amount = 210

		for _, s := range GenerateInsights(cur, previousRun()) {
			assert.NotContains(t, s, "drift")
		}
	})
}

func TestGenerateInsights_UnchangedOverdue(t *testing.T) {
	insights := GenerateInsights(previousRun(), previousRun())

	for _, s := range insights {
		assert.NotContains(t, s, "Total overdue AR")
	}
	assert.Equal(t, "Overall AR health is concerning with 50.0% of total AR overdue.", insights[len(insights)-1])
}
