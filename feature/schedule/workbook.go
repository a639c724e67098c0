package schedule

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"delivery-tracker/core/reconcile"

	"github.com/xuri/excelize/v2"
)

// Output column labels.
const (
	ExpectedHeader = "Data prevista avanzamento"
	ActualHeader   = "Data effettiva avanzamento"
	DeltaHeader    = "Delta"

	resultSheet = "Avanzamento"
	errorSheet  = "Errors"
	dateFormat  = "yyyy-mm-dd"
	dateWidth   = 20
)

// SnapshotHeader is the label of the planned date column of one snapshot.
func SnapshotHeader(h reconcile.SnapshotHandle) string {
	return fmt.Sprintf("%s (%s)", ExpectedHeader, h.Label)
}

// WorkbookWriter writes the reconciled records as a spreadsheet.
type WorkbookWriter struct {
	fs   FileSystem
	name string
}

// NewWorkbookWriter returns a sink writing name on fs.
func NewWorkbookWriter(fs FileSystem, name string) *WorkbookWriter {
	return &WorkbookWriter{fs: fs, name: name}
}

func (w *WorkbookWriter) Name() string {
	return "workbook " + w.name
}

// Write implements reconcile.Sink.
func (w *WorkbookWriter) Write(ctx context.Context, res *reconcile.Result) error {
	f, err := BuildWorkbook(res)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return w.fs.WriteFile(ctx, w.name, buf.Bytes())
}

// BuildWorkbook lays out a result: passthrough columns, one planned date column
// per snapshot, the consolidated planned date, the actual date and the delta.
// Resolution errors go to a second sheet.
func BuildWorkbook(res *reconcile.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	format := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return nil, err
	}

	headers := append([]string{}, res.Headers...)
	firstDate := len(headers) + 1
	for _, h := range res.Snapshots {
		headers = append(headers, SnapshotHeader(h))
	}
	headers = append(headers, ExpectedHeader, ActualHeader, DeltaHeader)
	lastDate := len(headers) - 1

	if err := setRow(f, resultSheet, 1, toAny(headers)); err != nil {
		return nil, err
	}

	for i, rec := range res.Records {
		row := make([]any, 0, len(headers))
		var dated []int
		for j, h := range res.Headers {
			v := fieldCell(rec.MasterRecord, h)
			if _, ok := v.(time.Time); ok {
				dated = append(dated, j+1)
			}
			row = append(row, v)
		}
		for _, v := range rec.Timeline {
			// Sentinels and free text stay visible as text.
			if t, ok := reconcile.ParseDate(v, reconcile.DefaultDateLayouts); ok {
				row = append(row, t)
			} else {
				row = append(row, v)
			}
		}
		row = append(row, dateCell(rec.ExpectedDate), dateCell(rec.ActualDate))
		if rec.Delta != nil {
			row = append(row, *rec.Delta)
		} else {
			row = append(row, nil)
		}
		if err := setRow(f, resultSheet, i+2, row); err != nil {
			return nil, err
		}
		for _, col := range dated {
			ref, _ := excelize.CoordinatesToCellName(col, i+2)
			if err := f.SetCellStyle(resultSheet, ref, ref, dateStyle); err != nil {
				return nil, err
			}
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(resultSheet, "A1", last, bold); err != nil {
		return nil, err
	}
	if len(res.Records) > 0 && lastDate >= firstDate {
		from, _ := excelize.CoordinatesToCellName(firstDate, 2)
		to, _ := excelize.CoordinatesToCellName(lastDate, len(res.Records)+1)
		if err := f.SetCellStyle(resultSheet, from, to, dateStyle); err != nil {
			return nil, err
		}
	}
	startCol, _ := excelize.ColumnNumberToName(firstDate)
	endCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(resultSheet, startCol, endCol, dateWidth); err != nil {
		return nil, err
	}
	if err := f.SetPanes(resultSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	if err := writeErrorSheet(f, res.Errors, bold); err != nil {
		return nil, err
	}
	return f, nil
}

func writeErrorSheet(f *excelize.File, errs []reconcile.ResolutionError, bold int) error {
	if _, err := f.NewSheet(errorSheet); err != nil {
		return err
	}
	if err := setRow(f, errorSheet, 1, []any{"Row", "Identifier", "Revision", "Error"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(errorSheet, "A1", "D1", bold); err != nil {
		return err
	}
	for i, e := range errs {
		// Row numbers refer to the result sheet.
		if err := setRow(f, errorSheet, i+2, []any{e.Row + 2, e.Identifier, e.Revision, e.Err.Error()}); err != nil {
			return err
		}
	}
	return f.SetColWidth(errorSheet, "D", "D", 80)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// fieldCell restores the source type of a passthrough field.
func fieldCell(rec *reconcile.MasterRecord, label string) any {
	v := rec.Fields[label]
	switch rec.Kind(label) {
	case reconcile.NumberField:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	case reconcile.DateField:
		for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	case reconcile.BoolField:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}

func dateCell(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
