// Package source reads the three raw design exports: BOM and placement
// spreadsheets as tables of cells, and the netlist export as either an
// EasyEDA JSON document or plain text net blocks. It decodes structure
// only; interpreting cells is the normalizer's job.
package source

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"pcbfuse/internal/errors"
)

// Table is one decoded spreadsheet: a header row plus data rows. Rows
// are padded to the header width so column access never goes out of
// range.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// ReadTable decodes a spreadsheet file into a Table. Files with an
// .xlsx or .xlsm extension are read with excelize (first sheet);
// everything else is treated as CSV.
func ReadTable(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.InputMissing, "file not found", err).WithFile(path)
		}
		return nil, errors.New(errors.InputUnreadable, "cannot stat file", err).WithFile(path)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.InputEmpty, "spreadsheet has no rows", nil).WithFile(path)
	}

	header := rows[0]
	if blankRow(header) {
		return nil, errors.New(errors.TableInvalid, "header row is empty", nil).WithFile(path)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, padRow(row, len(header)))
	}
	if len(data) == 0 {
		return nil, errors.New(errors.InputEmpty, "spreadsheet has no data rows", nil).WithFile(path)
	}

	return &Table{Path: path, Header: header, Rows: data}, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.New(errors.InputUnreadable, "cannot open workbook", err).WithFile(path)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New(errors.TableInvalid, "workbook has no sheets", nil).WithFile(path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.New(errors.TableInvalid, "cannot read worksheet", err).WithFile(path)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.InputUnreadable, "cannot open file", err).WithFile(path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.New(errors.TableInvalid, "malformed CSV", err).WithFile(path)
	}
	return rows, nil
}

// padRow widens short rows to the header width. Rows wider than the
// header keep their extra cells; consumers index by header column and
// skip them, but the data is not silently dropped.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
