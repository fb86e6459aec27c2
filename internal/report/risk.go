package report

import (
	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/shopspring/decimal"
)

// Concern Score weights per overdue bucket
var (
	weight1To30  = decimal.NewFromInt(1)
	weight31To60 = decimal.NewFromInt(2)
	weight61To90 = decimal.NewFromInt(3)
	weight90Plus = decimal.NewFromInt(5)
)

// AgingBuckets holds a customer's overdue dollars per bucket
type AgingBuckets struct {
	Days1To30  float64 `json:"1_30"`
	Days31To60 float64 `json:"31_60"`
	Days61To90 float64 `json:"61_90"`
	Days90Plus float64 `json:"90_plus"`
}

// ConcernScore weighs overdue dollars by severity: b1 + 2*b2 + 3*b3 + 5*b4
func ConcernScore(b AgingBuckets) float64 {
	return concernScore(toDecimal(b.Days1To30), toDecimal(b.Days31To60), toDecimal(b.Days61To90), toDecimal(b.Days90Plus)).InexactFloat64()
}

func concernScore(b1, b2, b3, b4 decimal.Decimal) decimal.Decimal {
	return b1.Mul(weight1To30).
		Add(b2.Mul(weight31To60)).
		Add(b3.Mul(weight61To90)).
		Add(b4.Mul(weight90Plus))
}

// CustomerRisk is one customer's line in the AR report
type CustomerRisk struct {
	CustomerID        string       `json:"customer_id"`
	Name              string       `json:"name"`
	TotalBalance      float64      `json:"total_balance"`
	OverdueBalance    float64      `json:"overdue_balance"`
	OldestInvoiceDays int          `json:"oldest_invoice_days"`
	ConcernScore      float64      `json:"concern_score"`
	AgingBuckets      AgingBuckets `json:"aging_buckets"`
}

// customerTotals accumulates one customer's bucket sums
type customerTotals struct {
	buckets    map[invoice.Bucket]decimal.Decimal
	counts     map[invoice.Bucket]int
	total      decimal.Decimal
	overdue    decimal.Decimal
	oldestDays int
}

func accumulate(categorized invoice.Categorized) customerTotals {
	t := customerTotals{
		buckets: make(map[invoice.Bucket]decimal.Decimal, len(invoice.Buckets)),
		counts:  make(map[invoice.Bucket]int, len(invoice.Buckets)),
	}
	for _, bucket := range invoice.Buckets {
		sum := decimal.Zero
		for _, inv := range categorized.In(bucket) {
			amount := toDecimal(inv.Amount)
			sum = sum.Add(amount)
			if bucket != invoice.BucketCurrent && inv.DaysPastDue > t.oldestDays {
				t.oldestDays = inv.DaysPastDue
			}
		}
		t.buckets[bucket] = sum
		t.counts[bucket] = len(categorized.In(bucket))
		t.total = t.total.Add(sum)
		if bucket != invoice.BucketCurrent {
			t.overdue = t.overdue.Add(sum)
		}
	}
	return t
}

func (t customerTotals) risk(name string) (CustomerRisk, bool) {
	if !t.total.IsPositive() {
		return CustomerRisk{}, false
	}
	b1 := t.buckets[invoice.Bucket1To30]
	b2 := t.buckets[invoice.Bucket31To60]
	b3 := t.buckets[invoice.Bucket61To90]
	b4 := t.buckets[invoice.Bucket90Plus]
	return CustomerRisk{
		CustomerID:        name,
		Name:              name,
		TotalBalance:      t.total.Round(2).InexactFloat64(),
		OverdueBalance:    t.overdue.Round(2).InexactFloat64(),
		OldestInvoiceDays: t.oldestDays,
		ConcernScore:      concernScore(b1, b2, b3, b4).Round(2).InexactFloat64(),
		AgingBuckets: AgingBuckets{
			Days1To30:  b1.Round(2).InexactFloat64(),
			Days31To60: b2.Round(2).InexactFloat64(),
			Days61To90: b3.Round(2).InexactFloat64(),
			Days90Plus: b4.Round(2).InexactFloat64(),
		},
	}, true
}

// BuildCustomerRisk summarizes one customer's invoices. ok is false when
// the customer's total balance is not positive and the record should be
// left out of the report. No-contact customers are not special here.
func BuildCustomerRisk(name string, invoices []invoice.Invoice) (CustomerRisk, bool) {
	return accumulate(invoice.CategorizeByAge(invoices)).risk(name)
}
