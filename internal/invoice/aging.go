package invoice

import (
	"sort"
	"time"

	"github.com/garyjia/ar-reminder/internal/clock"
)

// Bucket is an aging band keyed the way exported AR runs key it
type Bucket string

const (
	BucketCurrent Bucket = "current"
	Bucket1To30   Bucket = "1_30"
	Bucket31To60  Bucket = "31_60"
	Bucket61To90  Bucket = "61_90"
	Bucket90Plus  Bucket = "90_plus"
)

// Buckets lists every bucket from youngest to oldest
var Buckets = []Bucket{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, Bucket90Plus}

// OverdueBuckets lists the past-due buckets from youngest to oldest
var OverdueBuckets = []Bucket{Bucket1To30, Bucket31To60, Bucket61To90, Bucket90Plus}

// BucketFor maps days past due onto a bucket using inclusive upper bounds
func BucketFor(daysPastDue int) Bucket {
	switch {
	case daysPastDue <= 0:
		return BucketCurrent
	case daysPastDue <= 30:
		return Bucket1To30
	case daysPastDue <= 60:
		return Bucket31To60
	case daysPastDue <= 90:
		return Bucket61To90
	default:
		return Bucket90Plus
	}
}

// DisplayName returns the human readable bucket name
func (b Bucket) DisplayName() string {
	switch b {
	case BucketCurrent:
		return "Current"
	case Bucket1To30:
		return "1-30 days"
	case Bucket31To60:
		return "31-60 days"
	case Bucket61To90:
		return "61-90 days"
	case Bucket90Plus:
		return "90+ days"
	default:
		return string(b)
	}
}

// Next returns the next older bucket. 90+ has none.
func (b Bucket) Next() (Bucket, bool) {
	for i, bucket := range Buckets {
		if bucket == b && i+1 < len(Buckets) {
			return Buckets[i+1], true
		}
	}
	return "", false
}

// Categorized holds invoices partitioned by aging bucket
type Categorized struct {
	Current    []Invoice
	Days1To30  []Invoice
	Days31To60 []Invoice
	Days61To90 []Invoice
	Days91Plus []Invoice
}

// In returns the invoices of one bucket
func (c Categorized) In(b Bucket) []Invoice {
	switch b {
	case BucketCurrent:
		return c.Current
	case Bucket1To30:
		return c.Days1To30
	case Bucket31To60:
		return c.Days31To60
	case Bucket61To90:
		return c.Days61To90
	case Bucket90Plus:
		return c.Days91Plus
	default:
		return nil
	}
}

// Overdue concatenates the past-due buckets, youngest first
func (c Categorized) Overdue() []Invoice {
	overdue := make([]Invoice, 0, len(c.Days1To30)+len(c.Days31To60)+len(c.Days61To90)+len(c.Days91Plus))
	overdue = append(overdue, c.Days1To30...)
	overdue = append(overdue, c.Days31To60...)
	overdue = append(overdue, c.Days61To90...)
	overdue = append(overdue, c.Days91Plus...)
	return overdue
}

// HasOverdue reports whether any past-due bucket is non-empty
func (c Categorized) HasOverdue() bool {
	return len(c.Days1To30)+len(c.Days31To60)+len(c.Days61To90)+len(c.Days91Plus) > 0
}

// Len returns the number of categorized invoices
func (c Categorized) Len() int {
	return len(c.Current) + len(c.Days1To30) + len(c.Days31To60) + len(c.Days61To90) + len(c.Days91Plus)
}

// HighestOverdueBucket returns the oldest non-empty past-due bucket
func (c Categorized) HighestOverdueBucket() (Bucket, bool) {
	for i := len(OverdueBuckets) - 1; i >= 0; i-- {
		if len(c.In(OverdueBuckets[i])) > 0 {
			return OverdueBuckets[i], true
		}
	}
	return "", false
}

// CategorizeByAge partitions invoices into aging buckets. Invoices whose
// amount did not parse are left out. Each bucket is ordered by due date,
// oldest first; invoices without a readable due date go last in input order.
func CategorizeByAge(invoices []Invoice) Categorized {
	var c Categorized
	for _, inv := range invoices {
		if !inv.HasValidAmount() {
			continue
		}
		switch inv.Bucket() {
		case BucketCurrent:
			c.Current = append(c.Current, inv)
		case Bucket1To30:
			c.Days1To30 = append(c.Days1To30, inv)
		case Bucket31To60:
			c.Days31To60 = append(c.Days31To60, inv)
		case Bucket61To90:
			c.Days61To90 = append(c.Days61To90, inv)
		default:
			c.Days91Plus = append(c.Days91Plus, inv)
		}
	}

	for _, bucket := range [][]Invoice{c.Current, c.Days1To30, c.Days31To60, c.Days61To90, c.Days91Plus} {
		sortByDueDate(bucket)
	}
	return c
}

func sortByDueDate(invoices []Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if a.DueDateValid != b.DueDateValid {
			return a.DueDateValid
		}
		if !a.DueDateValid {
			return false
		}
		return a.DueDate.Before(b.DueDate)
	})
}

// Classifier categorizes raw rows against an injected clock
type Classifier struct {
	clock clock.Clock
}

// NewClassifier creates a classifier. A nil clock falls back to the wall clock.
func NewClassifier(c clock.Clock) *Classifier {
	if c == nil {
		c = clock.New()
	}
	return &Classifier{clock: c}
}

// Now is the instant the classifier ages invoices at
func (cl *Classifier) Now() time.Time {
	return cl.clock.Now()
}

// Normalize converts rows into invoices aged at a single reading of the
// clock and returns that instant
func (cl *Classifier) Normalize(rows []Row) ([]Invoice, time.Time) {
	now := cl.clock.Now()
	return NormalizeRows(rows, now), now
}

// Categorize normalizes rows and partitions them by age
func (cl *Classifier) Categorize(rows []Row) Categorized {
	invoices, _ := cl.Normalize(rows)
	return CategorizeByAge(invoices)
}
