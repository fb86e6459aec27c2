package reminder

import "errors"

var (
	// ErrNoValidInvoices means filtering left no invoice to remind about
	ErrNoValidInvoices = errors.New("no valid invoices found after filtering")

	// ErrNoEligibleCustomers means every customer was skipped
	ErrNoEligibleCustomers = errors.New("no customers have unsent invoices to process")

	// ErrNilWorkContext is returned when Generate is called without Prepare
	ErrNilWorkContext = errors.New("work context is required")
)

// IsNoWork reports whether err is one of the "nothing to send" results
func IsNoWork(err error) bool {
	return errors.Is(err, ErrNoValidInvoices) || errors.Is(err, ErrNoEligibleCustomers)
}
