// Package sheets loads spreadsheet data into tables and writes results back
// out.
//
// Supported inputs are CSV/TSV files, XLSX workbooks (first sheet) and text
// pasted from a spreadsheet. Exports are XLSX workbooks with one sheet per
// table, or a single CSV.
//
// Example usage:
//
//	leads, err := sheets.ReadFile("bats.xlsx", sheets.Options{Header: sheets.HeaderLeads})
//	sales, err := sheets.ParsePasted(text)
package sheets

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// HeaderMode selects how the header row is located.
type HeaderMode int

const (
	// HeaderAuto skips up to three leading title rows.
	HeaderAuto HeaderMode = iota
	// HeaderLeads searches for the BATS header (phone, assigned, source),
	// falling back to HeaderAuto.
	HeaderLeads
	// HeaderFirstRow uses the first row as the header.
	HeaderFirstRow
)

// Options controls how a sheet is read.
type Options struct {
	Header  HeaderMode
	MaxRows int // 0 reads every row; the original viewer previewed 30
}

// ErrUnsupportedFormat is returned for file types other than csv/tsv/txt/xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoData is returned when the input holds no header row.
var ErrNoData = errors.New("no data found")

// ReadFile loads a table from a file on disk, choosing the parser by extension.
func ReadFile(path string, opts Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, filepath.Base(path), opts)
}

// Read loads a table from r. name is only used for its extension.
func Read(r io.Reader, name string, opts Options) (*table.Table, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".csv", ".txt":
		rows, err = readDelimited(r, 0)
	case ".tsv":
		rows, err = readDelimited(r, '\t')
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return fromRows(rows, opts)
}

// ParsePasted converts text copied from a spreadsheet or CSV into a table.
// Text containing a tab is read as tab-delimited, anything else as CSV.
// The first non-blank line is the header. Leading tabs are kept so a
// range whose first header cell is blank stays aligned with its data.
func ParsePasted(text string) (*table.Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoData
	}
	text = strings.Trim(text, "\r\n")
	delim := ','
	if strings.Contains(text, "\t") {
		delim = '\t'
	}
	rows, err := readDelimited(strings.NewReader(text), delim)
	if err != nil {
		return nil, fmt.Errorf("parse pasted data: %w", err)
	}
	return fromRows(rows, Options{Header: HeaderFirstRow})
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}
	return f.GetRows(sheets[0])
}

// readDelimited reads CSV-style text. A zero delim sniffs the first line:
// tab if it contains one, otherwise comma.
func readDelimited(r io.Reader, delim rune) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if delim == 0 {
		delim = ','
		first, _, _ := bytes.Cut(data, []byte("\n"))
		if bytes.Contains(first, []byte("\t")) {
			delim = '\t'
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

// fromRows picks the header row and builds a rectangular table. Data rows
// with no content are skipped; short rows are padded and long rows cut to
// the header width.
func fromRows(rows [][]string, opts Options) (*table.Table, error) {
	hdr := headerIndex(rows, opts.Header)
	if hdr >= len(rows) {
		return nil, ErrNoData
	}

	header := make([]string, len(rows[hdr]))
	for i, c := range rows[hdr] {
		c = strings.TrimSpace(c)
		if c == "" {
			c = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = c
	}
	if len(header) == 0 {
		return nil, ErrNoData
	}

	var data [][]string
	for _, r := range rows[hdr+1:] {
		if nonEmpty(r) == 0 {
			continue
		}
		data = append(data, r)
		if opts.MaxRows > 0 && len(data) >= opts.MaxRows {
			break
		}
	}
	return table.New(header, data), nil
}

func headerIndex(rows [][]string, mode HeaderMode) int {
	switch mode {
	case HeaderFirstRow:
		for i, r := range rows {
			if nonEmpty(r) > 0 {
				return i
			}
		}
		return len(rows)
	case HeaderLeads:
		if i, ok := DetectLeadsHeaderRow(rows); ok {
			return i
		}
		return DetectHeaderRow(rows)
	default:
		return DetectHeaderRow(rows)
	}
}
