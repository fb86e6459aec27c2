package invoice

import (
	"math"
	"time"
)

// Invoice is the canonical form of one spreadsheet invoice row
type Invoice struct {
	CustomerName string
	Number       string // "#" prefix stripped, "N/A" when absent
	DueDate      time.Time
	DueDateValid bool
	Amount       float64 // NaN when the amount cell is unparseable
	DaysPastDue  int
	Raw          Row
}

// HasValidAmount reports whether the amount parsed to a number
func (inv Invoice) HasValidAmount() bool {
	return !math.IsNaN(inv.Amount)
}

// IsOverdue reports whether the invoice is past its due date
func (inv Invoice) IsOverdue() bool {
	return inv.DaysPastDue > 0
}

// Bucket returns the aging bucket the invoice falls into
func (inv Invoice) Bucket() Bucket {
	return BucketFor(inv.DaysPastDue)
}

// Normalize extracts the canonical fields from a row as of now
func Normalize(row Row, now time.Time) Invoice {
	due, valid := ParseDueDate(DueDateValue(row))
	return Invoice{
		CustomerName: CustomerName(row),
		Number:       NormalizeInvoiceNumber(InvoiceNumber(row)),
		DueDate:      due,
		DueDateValid: valid,
		Amount:       Amount(row),
		DaysPastDue:  DaysPastDue(due, valid, now),
		Raw:          row,
	}
}

// NormalizeRows normalizes every row against the same instant
func NormalizeRows(rows []Row, now time.Time) []Invoice {
	invoices := make([]Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, Normalize(row, now))
	}
	return invoices
}

// DaysPastDue returns ceil((now - due) / 24h). Invalid due dates count as
// 0 days, which places them in the current bucket.
func DaysPastDue(due time.Time, valid bool, now time.Time) int {
	if !valid {
		return 0
	}
	days := math.Ceil(float64(now.Sub(due)) / float64(24*time.Hour))
	return int(days)
}
