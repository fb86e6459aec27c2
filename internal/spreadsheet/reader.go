package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptyWorkbook     = errors.New("workbook has no sheets")
	ErrSheetNotFound     = errors.New("sheet not found")
)

// emptyHeader names columns whose header cell is blank
const emptyHeader = "__EMPTY"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sheet is the first worksheet of an upload, one Row per non-blank line
// below the header
type Sheet struct {
	Name    string
	Headers []string
	Rows    []invoice.Row
}

// FirstHeader returns the header of the first column, empty when there is none
func (s *Sheet) FirstHeader() string {
	if s == nil || len(s.Headers) == 0 {
		return ""
	}
	return s.Headers[0]
}

// FirstColumn returns the trimmed, non-empty values of the first header's
// column in row order
func (s *Sheet) FirstColumn() []string {
	col := s.FirstHeader()
	if col == "" {
		return []string{}
	}
	values := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		v := strings.TrimSpace(invoice.Stringify(row[col]))
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

// ReadFile opens path and reads its first sheet
func ReadFile(path string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer file.Close()

	return Read(file, filepath.Base(path))
}

// Read parses an upload. name picks the format by extension: .xlsx and
// .xlsm go through excelize, .csv through encoding/csv.
func Read(r io.Reader, name string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(r)
	case ".csv":
		return readCSV(r, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

func readWorkbook(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return buildSheet(sheets[0], records), nil
}

func readCSV(r io.Reader, name string) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		if data, err = charmap.Windows1252.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("failed to decode csv: %w", err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	sheetName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return buildSheet(sheetName, records), nil
}

// buildSheet turns raw records into keyed rows. The first record is the
// header row; duplicate headers get a _N suffix, blank ones become
// __EMPTY. Empty cells are left out of a row and rows without any value
// are skipped.
func buildSheet(name string, records [][]string) *Sheet {
	sheet := &Sheet{Name: name, Headers: []string{}, Rows: []invoice.Row{}}
	if len(records) == 0 {
		return sheet
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	sheet.Headers = uniqueHeaders(records[0], width)

	for _, rec := range records[1:] {
		row := invoice.Row{}
		for i, cell := range rec {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[sheet.Headers[i]] = cell
		}
		if len(row) > 0 {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	return sheet
}

func uniqueHeaders(raw []string, width int) []string {
	headers := make([]string, width)
	taken := make(map[string]bool, width)
	suffix := make(map[string]int)
	for i := 0; i < width; i++ {
		base := ""
		if i < len(raw) {
			base = strings.TrimSpace(raw[i])
		}
		if base == "" {
			base = emptyHeader
		}

		header := base
		for taken[header] {
			suffix[base]++
			header = base + "_" + strconv.Itoa(suffix[base])
		}
		taken[header] = true
		headers[i] = header
	}
	return headers
}
