package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/xuri/excelize/v2"
)

// WIPSheet is the worksheet LabelWIP annotates
const WIPSheet = "Collection Notes"

const (
	LabelNoContact     = "No Contact Customer"
	LabelReminderSent  = "Reminder Already Sent"
	noContactFill      = "808080"
	reminderSentFill   = "6A0DAD"
	wipLabelColumn     = "C"
	wipFilenameDateFmt = "2006-01-02"
)

type wipSection int

const (
	sectionNone wipSection = iota
	sectionCurrent
	section1To30
	section31To60
	section61To90
	section91Plus
)

var xlsxSuffix = regexp.MustCompile(`(?i)\.xlsx$`)

// sectionOf recognises the aging section headers of column A
func sectionOf(cell string) (wipSection, bool) {
	switch {
	case strings.Contains(cell, "Current"):
		return sectionCurrent, true
	case strings.Contains(cell, "91 + Days"):
		return section91Plus, true
	case strings.Contains(cell, "61-90 Days"):
		return section61To90, true
	case strings.Contains(cell, "31 - 60 Days"):
		return section31To60, true
	case strings.Contains(cell, "1 - 30 Days"):
		return section1To30, true
	}
	return sectionNone, false
}

// LabelWIP copies the workbook read from r to w with a status label in
// column C of every customer row of the Collection Notes sheet. No-contact
// customers are labelled in any section; customers whose reminder went out
// are labelled only under Current. Names match case-insensitively. It
// returns the number of labelled rows.
func LabelWIP(r io.Reader, w io.Writer, noContact, reminderSent []string) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to open WIP workbook: %w", err)
	}
	defer f.Close()

	found := false
	for _, name := range f.GetSheetList() {
		if name == WIPSheet {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, WIPSheet)
	}

	rows, err := f.GetRows(WIPSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("failed to read WIP sheet: %w", err)
	}

	styles, err := newLabelStyles(f)
	if err != nil {
		return 0, err
	}

	noContactSet := invoice.NewNoContactSet(noContact)
	sentSet := invoice.NewNoContactSet(reminderSent)

	section := sectionNone
	updated := 0
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if s, ok := sectionOf(name); ok {
			section = s
			continue
		}
		if strings.Contains(strings.ToLower(name), "total") {
			continue
		}
		if len(row) < 2 || !hasBalance(row[1]) {
			continue
		}

		var label string
		switch {
		case noContactSet.Contains(name):
			label = LabelNoContact
		case section == sectionCurrent && sentSet.Contains(name):
			label = LabelReminderSent
		default:
			continue
		}

		cell := fmt.Sprintf("%s%d", wipLabelColumn, i+1)
		if err := f.SetCellValue(WIPSheet, cell, label); err != nil {
			return 0, fmt.Errorf("failed to label %s: %w", cell, err)
		}
		if err := f.SetCellStyle(WIPSheet, cell, cell, styles[label]); err != nil {
			return 0, fmt.Errorf("failed to style %s: %w", cell, err)
		}
		updated++
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write WIP workbook: %w", err)
	}
	return updated, nil
}

// hasBalance reports whether column B carries a non-zero number
func hasBalance(v string) bool {
	amount := invoice.ParseAmount(v)
	return !math.IsNaN(amount) && amount != 0
}

func newLabelStyles(f *excelize.File) (map[string]int, error) {
	fills := map[string]string{
		LabelNoContact:    noContactFill,
		LabelReminderSent: reminderSentFill,
	}
	styles := make(map[string]int, len(fills))
	for label, color := range fills {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create label style: %w", err)
		}
		styles[label] = id
	}
	return styles, nil
}

// WIPFilename names the labelled download after the original file. Names
// without an .xlsx extension are returned unchanged.
func WIPFilename(original string, now time.Time) string {
	if original == "" {
		original = "WIP.xlsx"
	}
	return xlsxSuffix.ReplaceAllLiteralString(original, "_updated_"+now.Format(wipFilenameDateFmt)+".xlsx")
}
