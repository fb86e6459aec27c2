package invoice

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCustomerName(t *testing.T) {
	tests := []struct {
		name     string
		row      Row
		expected string
	}{
		{name: "full name column wins", row: Row{"Customer full name": " Acme Corp ", "Customer": "Other"}, expected: "Acme Corp"},
		{name: "falls back to Customer", row: Row{"Customer full name": "", "Customer": "Globex"}, expected: "Globex"},
		{name: "lower case key", row: Row{"customer": "Initech"}, expected: "Initech"},
		{name: "header with odd spacing and case", row: Row{" CUSTOMER ": "Umbrella"}, expected: "Umbrella"},
		{name: "missing", row: Row{"Amount": 10.0}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CustomerName(tt.row))
		})
	}
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "1001", InvoiceNumber(Row{"Num": " 1001 "}))
	assert.Equal(t, "#7", InvoiceNumber(Row{"number": "#7"}))
	assert.Equal(t, "42", InvoiceNumber(Row{"Num": 42.0}))
	assert.Equal(t, NotAvailable, InvoiceNumber(Row{"Customer": "Acme"}))
}

func TestNormalizeInvoiceNumber(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "#1001", expected: "1001"},
		{in: " #1001 ", expected: "1001"},
		{in: "##5", expected: "#5"},
		{in: "inv-9", expected: "inv-9"},
		{in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeInvoiceNumber(tt.in))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float64
	}{
		{name: "plain string", value: "100", expected: 100},
		{name: "thousands separator", value: "1,234.50", expected: 1234.5},
		{name: "currency sign", value: "$99.99", expected: 99.99},
		{name: "negative currency", value: "-$20", expected: -20},
		{name: "accounting negative", value: "(15.25)", expected: -15.25},
		{name: "trailing text", value: "12abc", expected: 12},
		{name: "float cell", value: 250.75, expected: 250.75},
		{name: "int cell", value: 3, expected: 3},
		{name: "nil", value: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ParseAmount(tt.value), 1e-9)
		})
	}

	t.Run("garbage is NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(ParseAmount("n/a")))
	})
}

func TestAmount_MissingIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Amount(Row{"Customer": "Acme"}))
	assert.Equal(t, 12.0, Amount(Row{"amount": "12"}))
}

func TestParseDueDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
	}{
		{name: "iso date", value: "2024-01-15"},
		{name: "us date", value: "01/15/2024"},
		{name: "short us date", value: "1/15/2024"},
		{name: "long month", value: "January 15, 2024"},
		{name: "time value", value: want},
		{name: "excel serial", value: 45306.0},
		{name: "excel serial as text", value: "45306"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDueDate(tt.value)
			require.True(t, ok)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	t.Run("invalid values", func(t *testing.T) {
		for _, v := range []any{nil, "", "soon", -3.0, time.Time{}} {
			_, ok := ParseDueDate(v)
			assert.False(t, ok, "value %v", v)
		}
	})
}

func TestDaysPastDue(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 60, DaysPastDue(due, true, testNow))
	assert.Equal(t, 0, DaysPastDue(testNow, true, testNow))
	assert.Equal(t, 1, DaysPastDue(testNow.Add(-time.Hour), true, testNow))
	assert.Equal(t, -9, DaysPastDue(testNow.AddDate(0, 0, 10).Add(-time.Hour), true, testNow))
	assert.Equal(t, 0, DaysPastDue(time.Time{}, false, testNow))
}

func TestNormalize(t *testing.T) {
	row := Row{
		"Customer": " Acme ",
		"Num":      "#1001",
		"Amount":   "$1,000.00",
		"Due date": "2024-02-20",
	}

	inv := Normalize(row, testNow)

	assert.Equal(t, "Acme", inv.CustomerName)
	assert.Equal(t, "1001", inv.Number)
	assert.Equal(t, 1000.0, inv.Amount)
	assert.True(t, inv.DueDateValid)
	assert.Equal(t, 10, inv.DaysPastDue)
	assert.Equal(t, Bucket1To30, inv.Bucket())
	assert.True(t, inv.IsOverdue())
}

func TestNormalize_InvalidDateIsCurrent(t *testing.T) {
	inv := Normalize(Row{"Customer": "Acme", "Amount": 5.0, "Due date": "someday"}, testNow)

	assert.False(t, inv.DueDateValid)
	assert.Equal(t, 0, inv.DaysPastDue)
	assert.Equal(t, BucketCurrent, inv.Bucket())
}
