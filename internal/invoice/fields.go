package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// NotAvailable is returned for invoices without a number column
const NotAvailable = "N/A"

var (
	customerField = Field("Customer full name", "Customer", "customer")
	amountField   = Field("Amount", "amount")
	dueDateField  = Field("Due date", "due date", "duedate")
	numberField   = Field("Num", "num", "Number", "number")
)

// Accepted due date layouts, tried in order
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2-Jan-06",
}

var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// Excel stores dates as day serials between 1 (1900-01-01) and 2958465 (9999-12-31)
const maxExcelSerial = 2958465

// CustomerName returns the trimmed customer name or ""
func CustomerName(row Row) string {
	v, _ := customerField(row)
	return strings.TrimSpace(Stringify(v))
}

// InvoiceNumber returns the trimmed invoice number or "N/A"
func InvoiceNumber(row Row) string {
	v, ok := numberField(row)
	if !ok {
		return NotAvailable
	}
	return strings.TrimSpace(Stringify(v))
}

// NormalizeInvoiceNumber trims the number and strips one leading "#"
func NormalizeInvoiceNumber(num string) string {
	normalized := strings.TrimSpace(num)
	return strings.TrimPrefix(normalized, "#")
}

// DueDateValue returns the raw due date cell, or nil when absent
func DueDateValue(row Row) any {
	v, _ := dueDateField(row)
	return v
}

// Amount returns the parsed invoice amount. A missing amount counts as 0,
// an unparseable one as NaN.
func Amount(row Row) float64 {
	v, ok := amountField(row)
	if !ok {
		return 0
	}
	return ParseAmount(v)
}

// ParseAmount parses a cell into a float using the leading numeric prefix.
// Thousands separators, a currency sign and accounting parentheses are
// accepted. Returns NaN when no number can be read.
func ParseAmount(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	}

	s := strings.TrimSpace(Stringify(v))
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "-$") {
		s = "-" + s[2:]
	}
	s = strings.TrimPrefix(s, "$")

	match := numericPrefix.FindString(s)
	if match == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return math.NaN()
	}
	if negative {
		f = -f
	}
	return f
}

// ParseDueDate converts a cell value into a date. ok is false when the
// value is missing or cannot be read as a date.
func ParseDueDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t.UTC(), !t.IsZero()
	case float64:
		return fromExcelSerial(t)
	case float32:
		return fromExcelSerial(float64(t))
	case int:
		return fromExcelSerial(float64(t))
	case int64:
		return fromExcelSerial(float64(t))
	}

	s := strings.TrimSpace(Stringify(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return parsed.UTC(), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromExcelSerial(serial)
	}
	return time.Time{}, false
}

func fromExcelSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial <= 0 || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
