package report

import (
	"errors"
	"sort"
	"time"

	"github.com/garyjia/ar-reminder/internal/clock"
	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTopCustomers is how many customers a run ranks by Concern Score
const DefaultTopCustomers = 10

const (
	runIDLayout        = "2006-01-02"
	runTimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
	// ErrNoInvoices is returned when there is nothing to aggregate
	ErrNoInvoices = errors.New("no invoices to aggregate")
)

// Summary holds the portfolio headline figures of a run
type Summary struct {
	TotalAR      float64 `json:"total_ar"`
	TotalOverdue float64 `json:"total_overdue"`
	OverduePct   float64 `json:"overdue_pct"`
	OverdueCount int     `json:"overdue_count"`
}

// BucketTotal is the dollar amount and invoice count of one aging bucket
type BucketTotal struct {
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Aging holds the portfolio totals per aging bucket
type Aging struct {
	Current    BucketTotal `json:"current"`
	Days1To30  BucketTotal `json:"1_30"`
	Days31To60 BucketTotal `json:"31_60"`
	Days61To90 BucketTotal `json:"61_90"`
	Days90Plus BucketTotal `json:"90_plus"`
}

// Get returns the totals of one bucket
func (a Aging) Get(b invoice.Bucket) BucketTotal {
	switch b {
	case invoice.BucketCurrent:
		return a.Current
	case invoice.Bucket1To30:
		return a.Days1To30
	case invoice.Bucket31To60:
		return a.Days31To60
	case invoice.Bucket61To90:
		return a.Days61To90
	case invoice.Bucket90Plus:
		return a.Days90Plus
	default:
		return BucketTotal{}
	}
}

func (a *Aging) set(b invoice.Bucket, total BucketTotal) {
	switch b {
	case invoice.BucketCurrent:
		a.Current = total
	case invoice.Bucket1To30:
		a.Days1To30 = total
	case invoice.Bucket31To60:
		a.Days31To60 = total
	case invoice.Bucket61To90:
		a.Days61To90 = total
	case invoice.Bucket90Plus:
		a.Days90Plus = total
	}
}

// Run is one AR report snapshot as stored in the history file
type Run struct {
	RunID        string         `json:"run_id"`
	RunTimestamp string         `json:"run_timestamp"`
	Summary      Summary        `json:"summary"`
	Aging        Aging          `json:"aging"`
	TopCustomers []CustomerRisk `json:"top_customers"`
}

// CalculateARMetrics aggregates every customer in invoices, no-contact
// customers included, into a run stamped with now
func CalculateARMetrics(invoices []invoice.Invoice, now time.Time) (*Run, error) {
	return calculate(invoices, now, DefaultTopCustomers)
}

func calculate(invoices []invoice.Invoice, now time.Time, topN int) (*Run, error) {
	if len(invoices) == 0 {
		return nil, ErrNoInvoices
	}
	if topN <= 0 {
		topN = DefaultTopCustomers
	}

	amounts := make(map[invoice.Bucket]decimal.Decimal, len(invoice.Buckets))
	counts := make(map[invoice.Bucket]int, len(invoice.Buckets))
	customers := make([]CustomerRisk, 0)

	groups := invoice.GroupByCustomer(invoices)
	groups.Each(func(name string, customerInvoices []invoice.Invoice) {
		totals := accumulate(invoice.CategorizeByAge(customerInvoices))
		for _, bucket := range invoice.Buckets {
			amounts[bucket] = amounts[bucket].Add(totals.buckets[bucket])
			counts[bucket] += totals.counts[bucket]
		}
		if risk, ok := totals.risk(name); ok {
			customers = append(customers, risk)
		}
	})

	var aging Aging
	totalAR := decimal.Zero
	totalOverdue := decimal.Zero
	overdueCount := 0
	for _, bucket := range invoice.Buckets {
		sum := amounts[bucket]
		aging.set(bucket, BucketTotal{Amount: sum.Round(2).InexactFloat64(), Count: counts[bucket]})
		totalAR = totalAR.Add(sum)
		if bucket != invoice.BucketCurrent {
			totalOverdue = totalOverdue.Add(sum)
			overdueCount += counts[bucket]
		}
	}
	totalAR = totalAR.Round(2)
	totalOverdue = totalOverdue.Round(2)

	overduePct := 0.0
	if totalAR.IsPositive() {
		overduePct = totalOverdue.Div(totalAR).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}

	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].ConcernScore > customers[j].ConcernScore
	})
	if len(customers) > topN {
		customers = customers[:topN]
	}

	now = now.UTC()
	return &Run{
		RunID:        now.Format(runIDLayout),
		RunTimestamp: now.Format(runTimestampLayout),
		Summary: Summary{
			TotalAR:      totalAR.InexactFloat64(),
			TotalOverdue: totalOverdue.InexactFloat64(),
			OverduePct:   overduePct,
			OverdueCount: overdueCount,
		},
		Aging:        aging,
		TopCustomers: customers,
	}, nil
}

// Aggregator turns invoice rows into AR runs against an injected clock
type Aggregator struct {
	classifier   *invoice.Classifier
	topCustomers int
	logger       *zap.Logger
}

// NewAggregator creates an Aggregator. A non-positive topCustomers falls
// back to DefaultTopCustomers.
func NewAggregator(c clock.Clock, topCustomers int, logger *zap.Logger) *Aggregator {
	if topCustomers <= 0 {
		topCustomers = DefaultTopCustomers
	}
	return &Aggregator{
		classifier:   invoice.NewClassifier(c),
		topCustomers: topCustomers,
		logger:       logger,
	}
}

// Run normalizes rows and aggregates them into a run
func (a *Aggregator) Run(rows []invoice.Row) (*Run, error) {
	invoices, now := a.classifier.Normalize(rows)
	return a.aggregate(invoices, now)
}

// Aggregate builds a run from already normalized invoices
func (a *Aggregator) Aggregate(invoices []invoice.Invoice) (*Run, error) {
	return a.aggregate(invoices, a.classifier.Now())
}

func (a *Aggregator) aggregate(invoices []invoice.Invoice, now time.Time) (*Run, error) {
	run, err := calculate(invoices, now, a.topCustomers)
	if err != nil {
		a.logger.Warn("AR aggregation skipped", zap.Error(err))
		return nil, err
	}

	a.logger.Info("AR run calculated",
		zap.String("run_id", run.RunID),
		zap.Int("invoices", len(invoices)),
		zap.Float64("total_ar", run.Summary.TotalAR),
		zap.Float64("total_overdue", run.Summary.TotalOverdue),
		zap.Float64("overdue_pct", run.Summary.OverduePct),
		zap.Int("top_customers", len(run.TopCustomers)))

	return run, nil
}
