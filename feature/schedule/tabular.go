package schedule

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"delivery-tracker/core/reconcile"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for datasets that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// TableOptions selects how a dataset is read.
type TableOptions struct {
	// Sheet is the worksheet to read; empty selects the first one.
	Sheet string
	// Raw returns unformatted cell values (dates as Excel serial numbers).
	Raw bool
	// Comma is the CSV delimiter; zero means ','.
	Comma rune
}

// ReadTable reads every row of a spreadsheet or CSV dataset.
// The format is chosen by the extension of name.
func ReadTable(r io.Reader, name string, opts TableOptions) ([][]string, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return readExcel(r, opts)
	case ".csv", ".txt":
		return readCSV(r, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func readCSV(r io.Reader, opts TableOptions) ([][]string, error) {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	if opts.Comma != 0 {
		csvReader.Comma = opts.Comma
	}

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readExcel(r io.Reader, opts TableOptions) ([][]string, error) {
	f, sheet, err := openSheet(r, opts.Sheet)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: opts.Raw})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func openSheet(r io.Reader, sheet string) (*excelize.File, string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open xlsx: %w", err)
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			_ = f.Close()
			return nil, "", errors.New("excel file has no sheets")
		}
		return f, sheets[0], nil
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		_ = f.Close()
		return nil, "", fmt.Errorf("sheet %q not found", sheet)
	}
	return f, sheet, nil
}

// Cells is a dataset read together with the source type of its cells.
// Values are unformatted: numbers as stored, date cells as YYYY-MM-DD
// (with the time of day when it is set) and booleans as true or false.
type Cells struct {
	Rows  [][]string
	kinds map[[2]int]reconcile.FieldKind
}

// Kind returns the type of the cell at zero-based row and column.
// Cells that were not recorded are text.
func (c *Cells) Kind(row, col int) reconcile.FieldKind {
	return c.kinds[[2]int{row, col}]
}

// ReadCells reads a dataset like ReadTable and records which cells hold
// numbers, dates and booleans. A number is a date only when its cell carries
// a date format. CSV cells are always text.
func ReadCells(r io.Reader, name string, opts TableOptions) (*Cells, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return readExcelCells(r, opts)
	case ".csv", ".txt":
		rows, err := readCSV(r, opts)
		if err != nil {
			return nil, err
		}
		return &Cells{Rows: rows}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func readExcelCells(r io.Reader, opts TableOptions) (*Cells, error) {
	f, sheet, err := openSheet(r, opts.Sheet)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	cells := &Cells{Rows: rows, kinds: make(map[[2]int]reconcile.FieldKind)}
	dateStyles := make(map[int]bool)
	for i, row := range rows {
		for j, v := range row {
			// Only numeric text can be a number, date or boolean cell.
			serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, ref)
			if err != nil {
				return nil, fmt.Errorf("read cell %s: %w", ref, err)
			}

			switch typ {
			case excelize.CellTypeBool:
				row[j] = strconv.FormatBool(serial != 0)
				cells.kinds[[2]int{i, j}] = reconcile.BoolField
				continue
			case excelize.CellTypeUnset, excelize.CellTypeNumber:
			default:
				continue
			}

			kind := reconcile.NumberField
			dated, err := dateFormatted(f, sheet, ref, dateStyles)
			if err != nil {
				return nil, err
			}
			if dated && serial > 0 {
				if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
					row[j] = formatCellDate(t)
					kind = reconcile.DateField
				}
			}
			cells.kinds[[2]int{i, j}] = kind
		}
	}
	return cells, nil
}

// dateFormatted reports whether the number format of a cell shows a date.
// Results are cached per style.
func dateFormatted(f *excelize.File, sheet, ref string, cache map[int]bool) (bool, error) {
	id, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return false, fmt.Errorf("read style of %s: %w", ref, err)
	}
	if dated, ok := cache[id]; ok {
		return dated, nil
	}
	// An unresolvable style id shows the stored number.
	style, err := f.GetStyle(id)
	dated := err == nil && isDateFormat(style)
	cache[id] = dated
	return dated, nil
}

// formatLiterals matches quoted text, bracketed sections and escaped
// characters of a number format code.
var formatLiterals = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDateFormat(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
		code := strings.ToLower(formatLiterals.ReplaceAllString(*style.CustomNumFmt, ""))
		return strings.ContainsAny(code, "dmy")
	}
	// Built-in date and time formats, including the East Asian ones.
	switch n := style.NumFmt; {
	case n >= 14 && n <= 22, n >= 27 && n <= 36, n >= 45 && n <= 47, n >= 50 && n <= 58:
		return true
	}
	return false
}

func formatCellDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// cell returns the trimmed value at a zero-based column, or "" when the row is short.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
