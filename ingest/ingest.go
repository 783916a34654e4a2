package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/fitstreak/models"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx, .xlsm, .xls or .csv")
	ErrNoSheet           = errors.New("workbook has no readable sheet")
	ErrNoHeader          = errors.New("first row with column names is missing")
)

// Read decodes an uploaded spreadsheet into a table of rows keyed by the
// header row. The format is picked from the file name extension.
func Read(fileName string, r io.Reader) (*models.Table, error) {
	var (
		cells [][]string
		err   error
	)

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		cells, err = readWorkbook(r)
	case ".xls":
		cells, err = readLegacyWorkbook(r)
	case ".csv":
		cells, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%s: %w", fileName, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}

	return toTable(cells)
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	// only the first sheet is used, raw values so number formats do not leak in
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("get rows of sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readLegacyWorkbook reads the first sheet of a BIFF (.xls) workbook
func readLegacyWorkbook(r io.Reader) (rows [][]string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	// the BIFF decoder panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			rows, err = nil, fmt.Errorf("open legacy workbook: malformed file: %v", rec)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open legacy workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoSheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoSheet
	}

	return sheetCells(int(sheet.MaxRow), func(i int) legacyRow {
		if row := sheet.Row(i); row != nil {
			return row
		}
		return nil
	}), nil
}

// legacyRow is the part of an xls row the reader needs
type legacyRow interface {
	LastCol() int
	Col(i int) string
}

// sheetCells collects rows 0..maxRow, missing rows become empty rows and
// are dropped later like any other empty row
func sheetCells(maxRow int, rowAt func(i int) legacyRow) [][]string {
	rows := make([][]string, 0, maxRow+1)
	for i := 0; i <= maxRow; i++ {
		row := rowAt(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func toTable(cells [][]string) (*models.Table, error) {
	if len(cells) == 0 || isEmptyRow(cells[0]) {
		return nil, ErrNoHeader
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &models.Table{
		Headers: headers,
		Rows:    make([]models.Row, 0, len(cells)-1),
	}
	for _, cellRow := range cells[1:] {
		if isEmptyRow(cellRow) {
			continue
		}
		row := make(models.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			// short rows get empty cells
			if i < len(cellRow) {
				row[h] = cellRow[i]
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
