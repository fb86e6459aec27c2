package reminder

import (
	"time"

	"github.com/garyjia/ar-reminder/internal/clock"
	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBrand closes every subject line unless configured otherwise
const DefaultBrand = "Vein360"

// Kind distinguishes the two reminder flavours
type Kind string

const (
	KindCurrent Kind = "current"
	KindOverdue Kind = "overdue"
)

// Options configures a Pipeline
type Options struct {
	Brand       string
	Signature   string
	// SenderEmail fills the From address of every reminder when set
	SenderEmail string
}

// PrepareInput is the raw material of a reminder run
type PrepareInput struct {
	Invoices  []invoice.Row
	NoContact invoice.NoContactSet
	Sent      []any
}

// GenerateOptions tweaks a single Generate call
type GenerateOptions struct {
	// Signature overrides the configured signature when set
	Signature string
}

// WorkContext is the immutable hand-off between Prepare and Generate
type WorkContext struct {
	now       time.Time
	groups    *invoice.CustomerGroups
	ledger    invoice.SentLedger
	customers []string
	skipped   []string
	removed   []string
}

// Now is the instant invoices were aged at
func (wc *WorkContext) Now() time.Time { return wc.now }

// Groups returns the filtered invoices grouped by customer
func (wc *WorkContext) Groups() *invoice.CustomerGroups { return wc.groups }

// Ledger returns the sent ledger of the run
func (wc *WorkContext) Ledger() invoice.SentLedger { return wc.ledger }

// Customers returns the customers with something to send, in worklist order
func (wc *WorkContext) Customers() []string { return cloneStrings(wc.customers) }

// SkippedAlreadySent returns customers whose current invoices were all sent before
func (wc *WorkContext) SkippedAlreadySent() []string { return cloneStrings(wc.skipped) }

// RemovedNoContact returns no-contact customers dropped from the run
func (wc *WorkContext) RemovedNoContact() []string { return cloneStrings(wc.removed) }

// Email is one generated reminder
type Email struct {
	Customer      string            `json:"customer"`
	Kind          Kind              `json:"kind"`
	Tone          ToneKey           `json:"tone"`
	Subject       string            `json:"subject"`
	From          string            `json:"from,omitempty"`
	To            string            `json:"to"`
	CC            string            `json:"cc,omitempty"`
	HTML          string            `json:"html"`
	TotalAmount   float64           `json:"total_amount"`
	TotalInvoices int               `json:"total_invoices"`
	OverdueCount  int               `json:"overdue_count"`
	OverdueAmount float64           `json:"overdue_amount"`
	Invoices      []invoice.Invoice `json:"-"`
}

// Emails is the output of Generate
type Emails struct {
	Current            []Email  `json:"current"`
	Overdue            []Email  `json:"overdue"`
	SkippedAlreadySent []string `json:"skipped_already_sent"`
}

// Pipeline runs the two reminder phases against an injected clock
type Pipeline struct {
	classifier *invoice.Classifier
	opts       Options
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline. An empty brand falls back to DefaultBrand.
func NewPipeline(c clock.Clock, opts Options, logger *zap.Logger) *Pipeline {
	if opts.Brand == "" {
		opts.Brand = DefaultBrand
	}
	return &Pipeline{classifier: invoice.NewClassifier(c), opts: opts, logger: logger}
}

// Prepare filters and groups invoices and builds the customer worklist.
// On ErrNoValidInvoices and ErrNoEligibleCustomers the context is still
// returned so callers can report removed and skipped customers.
func (p *Pipeline) Prepare(in PrepareInput) (*WorkContext, error) {
	invoices, now := p.classifier.Normalize(in.Invoices)

	filtered := invoice.FilterInvoices(invoices, in.NoContact)
	wc := &WorkContext{
		now:       now,
		groups:    invoice.GroupByCustomer(filtered.Invoices),
		ledger:    invoice.ProcessSentLedger(in.Sent),
		customers: []string{},
		skipped:   []string{},
		removed:   filtered.RemovedCustomers,
	}

	if len(filtered.Invoices) == 0 {
		p.logger.Warn("No valid invoices after filtering",
			zap.Int("rows", len(in.Invoices)),
			zap.Int("removed_no_contact", len(wc.removed)))
		return wc, ErrNoValidInvoices
	}

	wc.groups.Each(func(name string, customerInvoices []invoice.Invoice) {
		if invoice.DecideEligibility(customerInvoices, wc.ledger).Eligible {
			wc.customers = append(wc.customers, name)
		} else {
			wc.skipped = append(wc.skipped, name)
		}
	})

	p.logger.Info("Reminder run prepared",
		zap.Int("rows", len(in.Invoices)),
		zap.Int("valid_invoices", len(filtered.Invoices)),
		zap.Int("customers", wc.groups.Len()),
		zap.Int("eligible", len(wc.customers)),
		zap.Int("skipped_already_sent", len(wc.skipped)),
		zap.Int("removed_no_contact", len(wc.removed)),
		zap.Int("sent_ledger", wc.ledger.Len()))

	if len(wc.customers) == 0 {
		return wc, ErrNoEligibleCustomers
	}
	return wc, nil
}

// Generate renders the reminders of a prepared run. contacts may be nil.
// Both lists come out in reverse worklist order.
func (p *Pipeline) Generate(wc *WorkContext, contacts *ContactBook, opts GenerateOptions) (*Emails, error) {
	if wc == nil {
		return nil, ErrNilWorkContext
	}
	signature := opts.Signature
	if signature == "" {
		signature = p.opts.Signature
	}

	out := &Emails{Current: []Email{}, Overdue: []Email{}, SkippedAlreadySent: []string{}}

	for _, name := range wc.groups.Names() {
		decision := invoice.DecideEligibility(wc.groups.Invoices(name), wc.ledger)
		contact, _ := contacts.Get(name)
		link := func(number string) string { return contacts.Link(name, number) }

		if len(decision.Categorized.Current) > 0 {
			if len(decision.UnsentCurrent) == 0 {
				out.SkippedAlreadySent = append(out.SkippedAlreadySent, name)
			} else {
				html, err := renderCurrent(name, decision.UnsentCurrent, link, signature)
				if err != nil {
					return nil, err
				}
				total := sumAmounts(decision.UnsentCurrent)
				out.Current = append(out.Current, Email{
					Customer:      name,
					Kind:          KindCurrent,
					Tone:          ToneCurrent,
					Subject:       "New Invoice(s) Sent - " + p.opts.Brand,
					From:          p.opts.SenderEmail,
					To:            contact.Email,
					CC:            contact.CC,
					HTML:          html,
					TotalAmount:   total,
					TotalInvoices: len(decision.UnsentCurrent),
					Invoices:      decision.UnsentCurrent,
				})
			}
		}

		if decision.HasOverdue {
			overdue := decision.Categorized.Overdue()
			html, err := renderOverdue(name, decision.Categorized, link, signature)
			if err != nil {
				return nil, err
			}
			total := sumAmounts(overdue)
			out.Overdue = append(out.Overdue, Email{
				Customer:      name,
				Kind:          KindOverdue,
				Tone:          ToneFor(decision.Categorized).Key,
				Subject:       "You have " + HighestOverdueCategory(decision.Categorized) + " - " + p.opts.Brand,
				From:          p.opts.SenderEmail,
				To:            contact.Email,
				CC:            contact.CC,
				HTML:          html,
				TotalAmount:   total,
				TotalInvoices: len(overdue),
				OverdueCount:  len(overdue),
				OverdueAmount: total,
				Invoices:      overdue,
			})
		}

		p.logger.Debug("Customer reminders generated",
			zap.String("customer", name),
			zap.Bool("eligible", decision.Eligible),
			zap.Int("unsent_current", len(decision.UnsentCurrent)),
			zap.Bool("has_overdue", decision.HasOverdue),
			zap.Bool("has_contact", contact.Email != ""))
	}

	reverse(out.Current)
	reverse(out.Overdue)

	p.logger.Info("Reminder emails generated",
		zap.Int("current", len(out.Current)),
		zap.Int("overdue", len(out.Overdue)),
		zap.Int("skipped_already_sent", len(out.SkippedAlreadySent)))

	return out, nil
}

// MarkSent returns the invoice numbers to append to the sent ledger once
// email has gone out. Only current invoices are tracked.
func MarkSent(email Email) []string {
	var current []invoice.Invoice
	if email.Kind == KindCurrent {
		current = email.Invoices
	} else {
		current = invoice.CategorizeByAge(email.Invoices).Current
	}

	numbers := make([]string, 0, len(current))
	for _, inv := range current {
		if inv.Number == "" || inv.Number == invoice.NotAvailable {
			continue
		}
		numbers = append(numbers, inv.Number)
	}
	return numbers
}

func sumAmounts(invoices []invoice.Invoice) float64 {
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.HasValidAmount() {
			total = total.Add(decimal.NewFromFloat(inv.Amount))
		}
	}
	return total.Round(2).InexactFloat64()
}

func reverse(emails []Email) {
	for i, j := 0, len(emails)-1; i < j; i, j = i+1, j-1 {
		emails[i], emails[j] = emails[j], emails[i]
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
