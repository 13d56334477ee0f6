package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// Sheet is one named worksheet of an exported workbook. The header row
// comes from Table. Values, when set, replaces Table.Rows so cells keep
// their Go types: numbers are written as numeric cells and float64 cells
// are shown with two decimals.
type Sheet struct {
	Name   string
	Table  *table.Table
	Values [][]interface{}
}

// WriteWorkbook writes the sheets, in order, as an XLSX workbook.
// The first sheet is active when the file is opened.
func WriteWorkbook(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	decimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), sheets[0].Name); err != nil {
		return fmt.Errorf("name sheet %q: %w", sheets[0].Name, err)
	}
	for _, s := range sheets[1:] {
		if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", s.Name, err)
		}
	}

	for _, s := range sheets {
		if err := writeSheet(f, s, decimals); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeSheet(f *excelize.File, s Sheet, decimals int) error {
	if s.Table == nil {
		return nil
	}
	if err := setRow(f, s.Name, 1, toValues(s.Table.Columns)); err != nil {
		return err
	}

	rows := s.Values
	if rows == nil {
		rows = make([][]interface{}, 0, len(s.Table.Rows))
		for _, r := range s.Table.Rows {
			rows = append(rows, toValues(r))
		}
	}
	for i, r := range rows {
		if err := setRow(f, s.Name, i+2, r); err != nil {
			return err
		}
		for j, v := range r {
			if _, ok := v.(float64); !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(s.Name, cell, cell, decimals); err != nil {
				return fmt.Errorf("style %s!%s: %w", s.Name, cell, err)
			}
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toValues(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// WriteCSV writes a table as comma-separated text with a header line.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
