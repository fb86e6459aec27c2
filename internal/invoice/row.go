package invoice

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Row is a single spreadsheet row keyed by its header cell
type Row map[string]any

// Accessor extracts a value from a row. ok is false when the row has no
// usable value for the accessor.
type Accessor func(row Row) (value any, ok bool)

// FirstOf combines accessors so that the first one returning a value wins
func FirstOf(accessors ...Accessor) Accessor {
	return func(row Row) (any, bool) {
		for _, acc := range accessors {
			if v, ok := acc(row); ok {
				return v, true
			}
		}
		return nil, false
	}
}

// Key returns an accessor for a header that skips blank values
// (nil, "", false, 0 and NaN). A header that does not exist verbatim is
// matched ignoring case and surrounding/duplicate whitespace.
func Key(name string) Accessor {
	return keyAccessor(name, isBlank)
}

// DefinedKey is like Key but only treats nil and "" as missing, so a
// numeric zero is kept.
func DefinedKey(name string) Accessor {
	return keyAccessor(name, func(v any) bool {
		if v == nil {
			return true
		}
		s, ok := v.(string)
		return ok && s == ""
	})
}

// Field probes header names in order and returns the first usable value
func Field(names ...string) Accessor {
	accs := make([]Accessor, 0, len(names))
	for _, n := range names {
		accs = append(accs, Key(n))
	}
	return FirstOf(accs...)
}

func keyAccessor(name string, blank func(any) bool) Accessor {
	want := normalizeHeader(name)
	return func(row Row) (any, bool) {
		if row == nil {
			return nil, false
		}
		if v, exists := row[name]; exists && !blank(v) {
			return v, true
		}

		// Header variants like "Due Date " or "CUSTOMER"
		var candidates []string
		for header := range row {
			if header != name && normalizeHeader(header) == want {
				candidates = append(candidates, header)
			}
		}
		sort.Strings(candidates)
		for _, header := range candidates {
			if v := row[header]; !blank(v) {
				return v, true
			}
		}
		return nil, false
	}
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// isBlank mirrors how a spreadsheet-to-JSON consumer treats empty cells
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0 || math.IsNaN(t)
	case float32:
		return t == 0 || math.IsNaN(float64(t))
	case int:
		return t == 0
	case int64:
		return t == 0
	case int32:
		return t == 0
	case uint:
		return t == 0
	case uint64:
		return t == 0
	case time.Time:
		return t.IsZero()
	default:
		return false
	}
}

// Stringify renders a cell value the way it would appear as text
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
