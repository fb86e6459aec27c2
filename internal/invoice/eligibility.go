package invoice

// Eligibility is the per-customer decision of whether a reminder run has
// anything to send
type Eligibility struct {
	Categorized   Categorized
	HasOverdue    bool
	UnsentCurrent []Invoice
	Eligible      bool
}

// AlreadySent reports whether the customer only has current invoices and
// every one of them is in the sent ledger
func (e Eligibility) AlreadySent() bool {
	return !e.Eligible && len(e.Categorized.Current) > 0
}

// DecideEligibility categorizes one customer's invoices and decides whether
// a reminder is due. Overdue invoices always qualify; current invoices
// qualify only while their number is missing from the ledger.
func DecideEligibility(invoices []Invoice, ledger SentLedger) Eligibility {
	categorized := CategorizeByAge(invoices)
	unsent := FilterUnsent(categorized.Current, ledger)
	hasOverdue := categorized.HasOverdue()
	return Eligibility{
		Categorized:   categorized,
		HasOverdue:    hasOverdue,
		UnsentCurrent: unsent,
		Eligible:      hasOverdue || len(unsent) > 0,
	}
}
