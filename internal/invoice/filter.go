package invoice

// FilterResult is the outcome of FilterInvoices
type FilterResult struct {
	Invoices         []Invoice
	RemovedCustomers []string
}

// FilterInvoices keeps invoices that may be reminded about: the customer
// name is present, the customer is not on the no-contact list and the
// amount is a non-negative number. Excluded no-contact customers are
// reported once each, in first-seen order and original casing.
func FilterInvoices(invoices []Invoice, noContact NoContactSet) FilterResult {
	result := FilterResult{
		Invoices:         make([]Invoice, 0, len(invoices)),
		RemovedCustomers: []string{},
	}
	seen := make(map[string]struct{})

	for _, inv := range invoices {
		hasCustomer := inv.CustomerName != ""
		isNoContact := hasCustomer && noContact.Contains(inv.CustomerName)

		if isNoContact {
			if _, ok := seen[inv.CustomerName]; !ok {
				seen[inv.CustomerName] = struct{}{}
				result.RemovedCustomers = append(result.RemovedCustomers, inv.CustomerName)
			}
			continue
		}
		if !hasCustomer || !inv.HasValidAmount() || inv.Amount < 0 {
			continue
		}
		result.Invoices = append(result.Invoices, inv)
	}
	return result
}

// CustomerGroups maps customer names to their invoices, remembering the
// order in which customers first appeared
type CustomerGroups struct {
	order  []string
	byName map[string][]Invoice
}

// GroupByCustomer groups invoices by exact trimmed customer name. The key
// is case-sensitive, unlike the no-contact match. Invoices without a
// customer name are skipped.
func GroupByCustomer(invoices []Invoice) *CustomerGroups {
	g := &CustomerGroups{byName: make(map[string][]Invoice)}
	for _, inv := range invoices {
		if inv.CustomerName == "" {
			continue
		}
		if _, ok := g.byName[inv.CustomerName]; !ok {
			g.order = append(g.order, inv.CustomerName)
		}
		g.byName[inv.CustomerName] = append(g.byName[inv.CustomerName], inv)
	}
	return g
}

// Names returns customer names in first-seen order
func (g *CustomerGroups) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Invoices returns a copy of one customer's invoices
func (g *CustomerGroups) Invoices(name string) []Invoice {
	src := g.byName[name]
	out := make([]Invoice, len(src))
	copy(out, src)
	return out
}

// Len returns the number of customers
func (g *CustomerGroups) Len() int {
	return len(g.order)
}

// Each calls fn for every customer in first-seen order
func (g *CustomerGroups) Each(fn func(name string, invoices []Invoice)) {
	for _, name := range g.order {
		fn(name, g.Invoices(name))
	}
}
