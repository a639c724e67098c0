package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"delivery-tracker/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *reconcile.Result {
	expected := date(2025, 1, 10)
	actual := date(2025, 1, 5)
	delta := -5
	return &reconcile.Result{
		RunID:   "run-1",
		Headers: []string{"Cliente", "Articolo"},
		Snapshots: []reconcile.SnapshotHandle{
			{Date: date(2025, 1, 1), Label: "2025-01-01"},
			{Date: date(2025, 2, 1), Label: "2025-02-01"},
		},
		Records: []reconcile.ReconciledRecord{
			{
				MasterRecord: &reconcile.MasterRecord{Row: 0, SecondaryKey: "A1", Identifier: "A1", Fields: map[string]string{"Cliente": "ACME", "Articolo": "A1"}},
				Timeline:     reconcile.Timeline{"2025-01-10", "KOM"},
				ExpectedDate: &expected,
				ActualDate:   &actual,
				Delta:        &delta,
				LogName:      "A1",
			},
			{
				MasterRecord: &reconcile.MasterRecord{Row: 1, SecondaryKey: "A2", Identifier: "A2", Fields: map[string]string{"Cliente": "Beta", "Articolo": "A2"}},
				Timeline:     reconcile.Timeline{"", ""},
			},
		},
		Errors: []reconcile.ResolutionError{
			{Row: 1, Identifier: "A2", Err: reconcile.ErrNoMatchingLog},
		},
		Coverage: reconcile.Coverage{Total: 2, Expected: 1, Actual: 1, Delta: 1},
	}
}

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook(sampleResult())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{resultSheet, errorSheet}, f.GetSheetList())

	rows, err := f.GetRows(resultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Cliente", "Articolo",
		"Data prevista avanzamento (2025-01-01)", "Data prevista avanzamento (2025-02-01)",
		ExpectedHeader, ActualHeader, DeltaHeader,
	}, rows[0])
	assert.Equal(t, []string{"ACME", "A1", "2025-01-10", "KOM", "2025-01-10", "2025-01-05", "-5"}, rows[1])
	require.GreaterOrEqual(t, len(rows[2]), 2)
	assert.Equal(t, []string{"Beta", "A2"}, rows[2][:2])
	for _, v := range rows[2][2:] {
		assert.Empty(t, v)
	}

	errs, err := f.GetRows(errorSheet)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"3", "A2", "", reconcile.ErrNoMatchingLog.Error()}, errs[1])
}

func TestBuildWorkbook_TypedFields(t *testing.T) {
	res := &reconcile.Result{
		Headers: []string{"Quantita", "Consegna", "Urgente", "Codice"},
		Records: []reconcile.ReconciledRecord{{
			MasterRecord: &reconcile.MasterRecord{
				Fields: map[string]string{"Quantita": "12", "Consegna": "2025-07-04", "Urgente": "true", "Codice": "00123"},
				Kinds: map[string]reconcile.FieldKind{
					"Quantita": reconcile.NumberField,
					"Consegna": reconcile.DateField,
					"Urgente":  reconcile.BoolField,
				},
			},
		}},
	}

	f, err := BuildWorkbook(res)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cells, err := ReadCells(bytes.NewReader(buf.Bytes()), "out.xlsx", TableOptions{Sheet: resultSheet})
	require.NoError(t, err)
	require.Len(t, cells.Rows, 2)

	assert.Equal(t, []string{"12", "2025-07-04", "true", "00123"}, cells.Rows[1][:4])
	assert.Equal(t, reconcile.NumberField, cells.Kind(1, 0))
	assert.Equal(t, reconcile.DateField, cells.Kind(1, 1))
	assert.Equal(t, reconcile.BoolField, cells.Kind(1, 2))
	assert.Equal(t, reconcile.TextField, cells.Kind(1, 3))
}

func TestWorkbookWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewWorkbookWriter(&LocalFS{Root: dir}, "out/result.xlsx")
	assert.Equal(t, "workbook out/result.xlsx", w.Name())

	require.NoError(t, w.Write(context.Background(), sampleResult()))

	f, err := excelize.OpenFile(filepath.Join(dir, "out", "result.xlsx"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue(resultSheet, "G2")
	require.NoError(t, err)
	assert.Equal(t, "-5", v)
}

func TestJSONWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONWriter(&LocalFS{Root: dir}, "result.json")
	require.NoError(t, w.Write(context.Background(), sampleResult()))

	rc, err := (&LocalFS{Root: dir}).Open(context.Background(), "result.json")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)

	var decoded struct {
		RunID   string `json:"run_id"`
		Records []struct {
			Identifier   string     `json:"identifier"`
			ExpectedDate *time.Time `json:"expected_date"`
			Delta        *int       `json:"delta"`
		} `json:"records"`
		Errors []struct {
			Row   int    `json:"row"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(&decoded))

	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, "A1", decoded.Records[0].Identifier)
	assert.Equal(t, -5, *decoded.Records[0].Delta)
	assert.Nil(t, decoded.Records[1].Delta)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, reconcile.ErrNoMatchingLog.Error(), decoded.Errors[0].Error)
}

func TestNewFileSink(t *testing.T) {
	fsys := &LocalFS{Root: t.TempDir()}
	assert.IsType(t, &JSONWriter{}, NewFileSink(fsys, "out.JSON"))
	assert.IsType(t, &WorkbookWriter{}, NewFileSink(fsys, "out.xlsx"))
}

type failingFS struct{ LocalFS }

func (failingFS) WriteFile(ctx context.Context, name string, data []byte) error {
	return errors.New("read-only")
}

func TestWorkbookWriter_WriteError(t *testing.T) {
	w := NewWorkbookWriter(&failingFS{}, "x.xlsx")
	assert.EqualError(t, w.Write(context.Background(), sampleResult()), "read-only")
}
