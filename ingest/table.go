package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named grid of raw cell strings. Workbook cells are read raw
// so date cells surface as serial numbers for the value parsers instead of
// whatever display format the sheet applied.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadSheets loads every sheet of an uploaded tabular file. CSV files are
// presented as a single sheet named after the file.
func ReadSheets(path string) ([]Sheet, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xls":
		return readWorkbook(path)
	case ".csv", ".txt":
		rows, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return []Sheet{{Name: name, Rows: rows}}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func readWorkbook(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return sheets, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // human-produced exports have ragged rows
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// cell returns the trimmed value at the given column, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// cellAt looks a mapped field up in a row; missing mappings read as empty.
func cellAt(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok {
		return ""
	}
	return cell(row, idx)
}
