package reminder

import "sort"

// Column headers of exported sheets. They read back through
// ParseCustomerEmails, ParseInvoiceLinks and the sent ledger parser.
var (
	ContactHeaders = []string{"Customer Name", "Email", "CC"}
	LinkHeaders    = []string{"Invoice", "Link"}
	SentHeaders    = []string{"Invoice Number"}
)

// ContactEntry is one row of the customer emails export
type ContactEntry struct {
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	CC           string `json:"cc"`
}

// LinkEntry is one row of the invoice links export
type LinkEntry struct {
	Invoice string `json:"invoice"`
	Link    string `json:"link"`
}

// Exports are the sheets a run hands back so the next run starts where
// this one ended
type Exports struct {
	Contacts []ContactEntry `json:"contacts"`
	Links    []LinkEntry    `json:"links"`
	Sent     []string       `json:"sent"`
}

// PendingExports collects the contact and link rows worth persisting.
// Every contact with an email is exported. Links are the customer's own
// links plus the global links of that customer's invoices in this run.
func (wc *WorkContext) PendingExports(contacts *ContactBook) Exports {
	exports := Exports{Contacts: []ContactEntry{}, Links: []LinkEntry{}, Sent: []string{}}
	if contacts == nil {
		return exports
	}

	seen := make(map[string]struct{})
	addLink := func(num, link string) {
		if link == "" {
			return
		}
		if _, ok := seen[num]; ok {
			return
		}
		seen[num] = struct{}{}
		exports.Links = append(exports.Links, LinkEntry{Invoice: num, Link: link})
	}

	for _, name := range contacts.Names() {
		c, _ := contacts.Get(name)
		if c.Email != "" {
			exports.Contacts = append(exports.Contacts, ContactEntry{CustomerName: name, Email: c.Email, CC: c.CC})
		}

		own := make([]string, 0, len(c.InvoiceLinks))
		for num := range c.InvoiceLinks {
			own = append(own, num)
		}
		sort.Strings(own)
		for _, num := range own {
			addLink(num, c.InvoiceLinks[num])
		}

		for _, inv := range wc.groups.Invoices(name) {
			addLink(inv.Number, contacts.Link(name, inv.Number))
		}
	}
	return exports
}

// ContactRows converts contact entries into sheet rows
func ContactRows(entries []ContactEntry) [][]any {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.CustomerName, e.Email, e.CC})
	}
	return rows
}

// LinkRows converts link entries into sheet rows
func LinkRows(entries []LinkEntry) [][]any {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.Invoice, e.Link})
	}
	return rows
}

// SentRows converts ledger keys into sheet rows
func SentRows(numbers []string) [][]any {
	rows := make([][]any, 0, len(numbers))
	for _, n := range numbers {
		rows = append(rows, []any{n})
	}
	return rows
}

// SentNumbers is MarkSent over every generated email, in output order
func SentNumbers(emails *Emails) []string {
	numbers := []string{}
	if emails == nil {
		return numbers
	}
	for _, list := range [][]Email{emails.Current, emails.Overdue} {
		for _, e := range list {
			numbers = append(numbers, MarkSent(e)...)
		}
	}
	return numbers
}
