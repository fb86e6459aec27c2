package reminder

import (
	"strings"

	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/go-playground/validator/v10"
)

var (
	contactNameField  = invoice.FirstOf(invoice.Key("Customer Name"), invoice.Key("customerName"), invoice.Key("Customer"))
	contactEmailField = invoice.FirstOf(invoice.Key("Email"), invoice.Key("email"))
	contactCCField    = invoice.FirstOf(invoice.Key("CC"), invoice.Key("cc"))

	linkInvoiceField = invoice.FirstOf(invoice.Key("Invoice"), invoice.Key("invoice"), invoice.Key("Num"))
	linkURLField     = invoice.FirstOf(invoice.Key("Link"), invoice.Key("link"), invoice.Key("URL"), invoice.Key("url"))
)

var validate = validator.New()

// Contact is where a customer's reminders go
type Contact struct {
	CustomerName string
	Email        string
	CC           string
	InvoiceLinks map[string]string
}

// ContactBook resolves recipients and payment links for customers
type ContactBook struct {
	order    []string
	contacts map[string]Contact
	links    map[string]string
}

// NewContactBook builds a book from per-customer contacts and the global
// invoice links sheet. Later contacts for the same customer win.
func NewContactBook(contacts []Contact, links map[string]string) *ContactBook {
	b := &ContactBook{
		contacts: make(map[string]Contact, len(contacts)),
		links:    make(map[string]string, len(links)),
	}
	for _, c := range contacts {
		b.Set(c)
	}
	for num, link := range links {
		b.links[invoice.NormalizeInvoiceNumber(num)] = link
	}
	return b
}

// Set adds or replaces a customer's contact
func (b *ContactBook) Set(c Contact) {
	name := strings.TrimSpace(c.CustomerName)
	if name == "" {
		return
	}
	c.CustomerName = name
	links := make(map[string]string, len(c.InvoiceLinks))
	for num, link := range c.InvoiceLinks {
		if link = strings.TrimSpace(link); validLink(link) {
			links[invoice.NormalizeInvoiceNumber(num)] = link
		}
	}
	c.InvoiceLinks = links

	if _, ok := b.contacts[name]; !ok {
		b.order = append(b.order, name)
	}
	b.contacts[name] = c
}

// Get returns a customer's contact
func (b *ContactBook) Get(customer string) (Contact, bool) {
	if b == nil {
		return Contact{}, false
	}
	c, ok := b.contacts[customer]
	return c, ok
}

// Names returns customers with a contact, in insertion order
func (b *ContactBook) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, len(b.order))
	copy(names, b.order)
	return names
}

// Link resolves an invoice's payment link, preferring the customer's own
// links over the global sheet
func (b *ContactBook) Link(customer, number string) string {
	if b == nil {
		return ""
	}
	number = invoice.NormalizeInvoiceNumber(number)
	if c, ok := b.contacts[customer]; ok {
		if link := c.InvoiceLinks[number]; link != "" {
			return link
		}
	}
	return b.links[number]
}

// ParseCustomerEmails reads a customer emails sheet. Rows without a
// customer name or email are skipped.
func ParseCustomerEmails(rows []invoice.Row) []Contact {
	contacts := make([]Contact, 0, len(rows))
	for _, row := range rows {
		name := field(contactNameField, row)
		email := field(contactEmailField, row)
		if name == "" || email == "" {
			continue
		}
		contacts = append(contacts, Contact{
			CustomerName: name,
			Email:        email,
			CC:           field(contactCCField, row),
		})
	}
	return contacts
}

// ParseInvoiceLinks reads an invoice links sheet into number → URL. Rows
// whose link is not an absolute URL are skipped.
func ParseInvoiceLinks(rows []invoice.Row) map[string]string {
	links := make(map[string]string, len(rows))
	for _, row := range rows {
		num := invoice.NormalizeInvoiceNumber(field(linkInvoiceField, row))
		link := field(linkURLField, row)
		if num == "" || !validLink(link) {
			continue
		}
		links[num] = link
	}
	return links
}

func field(acc invoice.Accessor, row invoice.Row) string {
	v, _ := acc(row)
	return strings.TrimSpace(invoice.Stringify(v))
}

func validLink(link string) bool {
	return link != "" && validate.Var(link, "url") == nil
}
