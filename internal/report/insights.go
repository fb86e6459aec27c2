package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/garyjia/ar-reminder/internal/invoice"
)

const (
	driverThresholdPct = 5.0
	driftThresholdPct  = 10.0
	concentrationTopN  = 5
)

// Buckets whose movement is named as a driver of the overdue change
var driverBuckets = []invoice.Bucket{invoice.Bucket31To60, invoice.Bucket61To90, invoice.Bucket90Plus}

// HealthTier grades the share of AR that is overdue
func HealthTier(overduePct float64) string {
	switch {
	case overduePct < 15:
		return "healthy"
	case overduePct < 30:
		return "moderate"
	default:
		return "concerning"
	}
}

type bucketChange struct {
	bucket  invoice.Bucket
	percent float64
}

// largestFirst orders changes by magnitude, keeping bucket order on ties
func largestFirst(changes []bucketChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		return math.Abs(changes[i].percent) > math.Abs(changes[j].percent)
	})
}

func bucketChanges(current, previous *Run, buckets []invoice.Bucket, threshold float64) []bucketChange {
	var changes []bucketChange
	for _, b := range buckets {
		delta := CalculateDelta(current.Aging.Get(b).Amount, previous.Aging.Get(b).Amount)
		if math.Abs(delta.Percent) > threshold {
			changes = append(changes, bucketChange{bucket: b, percent: delta.Percent})
		}
	}
	largestFirst(changes)
	return changes
}

// GenerateInsights writes short advisory sentences comparing current with
// previous. previous may be nil for a first run.
func GenerateInsights(current, previous *Run) []string {
	insights := []string{}
	if current == nil {
		return insights
	}

	if previous != nil {
		if s := overdueChangeInsight(current, previous); s != "" {
			insights = append(insights, s)
		}
	}

	if s := concentrationInsight(current); s != "" {
		insights = append(insights, s)
	}

	if previous != nil {
		if s := agingDriftInsight(current, previous); s != "" {
			insights = append(insights, s)
		}
	}

	if s := criticalCustomersInsight(current); s != "" {
		insights = append(insights, s)
	}

	pct := current.Summary.OverduePct
	insights = append(insights, fmt.Sprintf("Overall AR health is %s with %.1f%% of total AR overdue.", HealthTier(pct), pct))

	return insights
}

func overdueChangeInsight(current, previous *Run) string {
	delta := CalculateDelta(current.Summary.TotalOverdue, previous.Summary.TotalOverdue)
	if delta.Percent == 0 {
		return ""
	}

	direction := "decreased"
	if delta.Percent > 0 {
		direction = "increased"
	}
	s := fmt.Sprintf("Total overdue AR %s by %.1f%% since last run", direction, math.Abs(delta.Percent))

	changes := bucketChanges(current, previous, driverBuckets, driverThresholdPct)
	if len(changes) > 0 {
		if len(changes) > 2 {
			changes = changes[:2]
		}
		names := make([]string, 0, len(changes))
		for _, c := range changes {
			names = append(names, c.bucket.DisplayName())
		}
		s += fmt.Sprintf(", primarily driven by %s buckets", strings.Join(names, " and "))
	}
	return s + "."
}

func concentrationInsight(current *Run) string {
	if len(current.TopCustomers) == 0 || current.Summary.TotalOverdue <= 0 {
		return ""
	}

	top := current.TopCustomers
	if len(top) > concentrationTopN {
		top = top[:concentrationTopN]
	}
	topOverdue := 0.0
	for _, c := range top {
		topOverdue += c.OverdueBalance
	}

	share := toDecimal(topOverdue / current.Summary.TotalOverdue * 100).Round(0).IntPart()
	return fmt.Sprintf("Top 5 customers account for %d%% of total overdue AR.", share)
}

// agingDriftInsight describes the largest bucket movement. Only growth is
// reported; shrinking buckets produce no sentence.
func agingDriftInsight(current, previous *Run) string {
	changes := bucketChanges(current, previous, invoice.OverdueBuckets, driftThresholdPct)
	if len(changes) == 0 {
		return ""
	}

	drift := changes[0]
	if drift.percent <= 0 {
		return ""
	}
	if older, ok := drift.bucket.Next(); ok {
		return fmt.Sprintf("Aging drift shows money moving from %s → %s, indicating invoices are getting older.",
			drift.bucket.DisplayName(), older.DisplayName())
	}
	return fmt.Sprintf("Significant increase in %s bucket, indicating invoices are aging.", drift.bucket.DisplayName())
}

func criticalCustomersInsight(current *Run) string {
	critical := 0
	for _, c := range current.TopCustomers {
		if c.AgingBuckets.Days90Plus > 0 {
			critical++
		}
	}
	if critical == 0 {
		return ""
	}

	ranked := DefaultTopCustomers
	if len(current.TopCustomers) > ranked {
		ranked = len(current.TopCustomers)
	}
	return fmt.Sprintf("%d of the top %d customers have invoices overdue by 90+ days, requiring immediate attention.", critical, ranked)
}
