package reminder

import (
	"testing"

	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomerEmails(t *testing.T) {
	contacts := ParseCustomerEmails([]invoice.Row{
		{"Customer Name": "Acme", "Email": "ap@acme.test", "CC": "boss@acme.test"},
		{"customerName": "Globex", "email": "ap@globex.test"},
		{"Customer": "Initech", "Email": ""},
		{"Email": "orphan@test"},
	})

	require.Len(t, contacts, 2)
	assert.Equal(t, Contact{CustomerName: "Acme", Email: "ap@acme.test", CC: "boss@acme.test"}, contacts[0])
	assert.Equal(t, "Globex", contacts[1].CustomerName)
	assert.Empty(t, contacts[1].CC)
}

func TestParseInvoiceLinks(t *testing.T) {
	links := ParseInvoiceLinks([]invoice.Row{
		{"Invoice": "#1001", "Link": "https://pay.test/1001"},
		{"Num": 1002.0, "url": "https://pay.test/1002"},
		{"Invoice": "1003", "Link": "not a url"},
		{"Invoice": "", "Link": "https://pay.test/x"},
	})

	assert.Equal(t, map[string]string{
		"1001": "https://pay.test/1001",
		"1002": "https://pay.test/1002",
	}, links)
}

func TestContactBook_Link(t *testing.T) {
	book := NewContactBook([]Contact{
		{CustomerName: "Acme", Email: "ap@acme.test", InvoiceLinks: map[string]string{"#1": "https://own.test/1", "2": "bogus"}},
	}, map[string]string{"1": "https://global.test/1", "2": "https://global.test/2"})

	assert.Equal(t, "https://own.test/1", book.Link("Acme", "1"))
	assert.Equal(t, "https://global.test/2", book.Link("Acme", "2"))
	assert.Equal(t, "https://global.test/1", book.Link("Globex", "#1"))
	assert.Empty(t, book.Link("Acme", "3"))

	var nilBook *ContactBook
	assert.Empty(t, nilBook.Link("Acme", "1"))
	_, ok := nilBook.Get("Acme")
	assert.False(t, ok)
}

func TestContactBook_LaterContactWins(t *testing.T) {
	book := NewContactBook([]Contact{
		{CustomerName: "Acme", Email: "old@acme.test"},
		{CustomerName: "Globex", Email: "ap@globex.test"},
		{CustomerName: " Acme ", Email: "new@acme.test"},
		{CustomerName: "", Email: "nobody@test"},
	}, nil)

	c, ok := book.Get("Acme")
	require.True(t, ok)
	assert.Equal(t, "new@acme.test", c.Email)
	assert.Equal(t, []string{"Acme", "Globex"}, book.Names())
}

func TestPendingExports(t *testing.T) {
	p := newTestPipeline(t)
	wc, err := p.Prepare(sampleInput())
	require.NoError(t, err)

	book := NewContactBook([]Contact{
		{CustomerName: "Globex", Email: "ap@globex.test", CC: "cfo@globex.test", InvoiceLinks: map[string]string{"2002": "https://own.test/2002"}},
		{CustomerName: "Acme"},
	}, map[string]string{"2001": "https://pay.test/2001", "1003": "https://pay.test/1003", "9999": "https://pay.test/9999"})

	exports := wc.PendingExports(book)

	assert.Equal(t, []ContactEntry{{CustomerName: "Globex", Email: "ap@globex.test", CC: "cfo@globex.test"}}, exports.Contacts)
	assert.Equal(t, []LinkEntry{
		{Invoice: "2002", Link: "https://own.test/2002"},
		{Invoice: "2001", Link: "https://pay.test/2001"},
		{Invoice: "1003", Link: "https://pay.test/1003"},
	}, exports.Links)

	assert.Equal(t, [][]any{{"Globex", "ap@globex.test", "cfo@globex.test"}}, ContactRows(exports.Contacts))
	assert.Equal(t, [][]any{{"2002", "https://own.test/2002"}}, LinkRows(exports.Links[:1]))
	assert.Equal(t, [][]any{{"1003"}}, SentRows([]string{"1003"}))

	empty := wc.PendingExports(nil)
	assert.Empty(t, empty.Contacts)
	assert.NotNil(t, empty.Links)
}

func TestToneFor(t *testing.T) {
	now := testNow
	tests := []struct {
		name     string
		due      string
		tone     ToneKey
		category string
	}{
		{name: "critical", due: "2023-10-01", tone: ToneCriticallyOverdue, category: "Critically Overdue invoices"},
		{name: "extreme", due: "2023-12-15", tone: ToneExtremelyOverdue, category: "Extremely Overdue invoices"},
		{name: "long", due: "2024-01-10", tone: ToneLongOverdue, category: "Long Overdue invoices"},
		{name: "overdue", due: "2024-02-20", tone: ToneOverdue, category: "Overdue invoices"},
		{name: "current", due: "2024-04-01", tone: ToneCurrent, category: "Overdue invoices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := invoice.CategorizeByAge(invoice.NormalizeRows([]invoice.Row{
				{"Customer": "Acme", "Amount": 1.0, "Due date": tt.due},
			}, now))

			assert.Equal(t, tt.tone, ToneFor(c).Key)
			assert.Equal(t, tt.category, HighestOverdueCategory(c))
		})
	}
}
