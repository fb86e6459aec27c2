package invoice

import (
	"sort"
	"strings"
)

// Header names probed, in order, on object rows of a sent ledger
var sentLedgerField = FirstOf(
	DefinedKey("Invoice Number"),
	DefinedKey("invoiceNumber"),
	DefinedKey("Num"),
	DefinedKey("num"),
	DefinedKey("Invoice Num"),
	DefinedKey("InvoiceNumber"),
	DefinedKey("Invoice_Number"),
)

// SentLedger is the set of invoice numbers already reminded about.
// Lookups are exact and case-sensitive.
type SentLedger struct {
	keys map[string]struct{}
}

// ProcessSentLedger normalizes ledger entries into a key set. An entry is
// either a bare invoice number (string or number) or a row. Entries that
// yield an empty key are dropped.
func ProcessSentLedger(entries []any) SentLedger {
	ledger := SentLedger{keys: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		if key := SentKey(entry); key != "" {
			ledger.keys[key] = struct{}{}
		}
	}
	return ledger
}

// SentKey returns the normalized ledger key of one entry
func SentKey(entry any) string {
	var raw string
	switch t := entry.(type) {
	case nil:
		return ""
	case Row:
		v, _ := sentLedgerField(t)
		raw = Stringify(v)
	case map[string]any:
		v, _ := sentLedgerField(Row(t))
		raw = Stringify(v)
	default:
		raw = Stringify(t)
	}
	return NormalizeInvoiceNumber(raw)
}

// RowsToEntries adapts spreadsheet rows for ProcessSentLedger
func RowsToEntries(rows []Row) []any {
	entries := make([]any, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row)
	}
	return entries
}

// Has reports whether key is in the ledger
func (l SentLedger) Has(key string) bool {
	_, ok := l.keys[key]
	return ok
}

// Len returns the number of distinct keys
func (l SentLedger) Len() int {
	return len(l.keys)
}

// Keys returns the ledger keys in sorted order
func (l SentLedger) Keys() []string {
	keys := make([]string, 0, len(l.keys))
	for k := range l.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of the ledger that also contains keys
func (l SentLedger) With(keys ...string) SentLedger {
	next := SentLedger{keys: make(map[string]struct{}, len(l.keys)+len(keys))}
	for k := range l.keys {
		next.keys[k] = struct{}{}
	}
	for _, k := range keys {
		if k = NormalizeInvoiceNumber(k); k != "" {
			next.keys[k] = struct{}{}
		}
	}
	return next
}

// FilterUnsent keeps the invoices whose number is not in the ledger
func FilterUnsent(invoices []Invoice, ledger SentLedger) []Invoice {
	unsent := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if !ledger.Has(NormalizeInvoiceNumber(inv.Number)) {
			unsent = append(unsent, inv)
		}
	}
	return unsent
}

// NoContactSet holds lower-cased, trimmed customer names that must never
// be contacted
type NoContactSet map[string]struct{}

// NewNoContactSet builds the set from display names
func NewNoContactSet(names []string) NoContactSet {
	set := make(NoContactSet, len(names))
	for _, name := range names {
		if key := noContactKey(name); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// NoContactFromRows reads customer names from one column of an uploaded sheet
func NoContactFromRows(rows []Row, column string) NoContactSet {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, Stringify(row[column]))
	}
	return NewNoContactSet(names)
}

// Contains matches a customer name ignoring case and surrounding whitespace
func (s NoContactSet) Contains(name string) bool {
	_, ok := s[noContactKey(name)]
	return ok
}

func noContactKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
