package schedule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"delivery-tracker/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTable_CSV(t *testing.T) {
	rows, err := ReadTable(strings.NewReader("\xEF\xBB\xBFMatricola,Articolo\nM1, A1\nM2\n"), "master.csv", TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Matricola", "Articolo"}, {"M1", "A1"}, {"M2"}}, rows)

	rows, err = ReadTable(strings.NewReader("a;b\n1;2\n"), "master.CSV", TableOptions{Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestReadTable_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path, 1, [][]any{
		{"Articolo", "Data"},
		{"A1", date(2025, 7, 4)},
	})

	open := func() *os.File {
		f, err := os.Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		return f
	}

	raw, err := ReadTable(open(), path, TableOptions{Raw: true})
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, []string{"A1", "45842"}, raw[1])

	_, err = ReadTable(open(), path, TableOptions{Sheet: "Missing"})
	assert.ErrorContains(t, err, `sheet "Missing" not found`)

	rows, err := ReadTable(open(), path, TableOptions{Sheet: "Sheet1"})
	require.NoError(t, err)
	assert.Equal(t, "Articolo", rows[0][0])
}

func TestReadCells_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed.xlsx")
	f := excelize.NewFile()
	numFmt := func(id int) int {
		style, err := f.NewStyle(&excelize.Style{NumFmt: id})
		require.NoError(t, err)
		return style
	}
	customFmt := func(code string) int {
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
		require.NoError(t, err)
		return style
	}

	tests := []struct {
		name  string
		value any
		style int
		want  string
		kind  reconcile.FieldKind
	}{
		{name: "written date", value: date(2025, 7, 4), want: "2025-07-04", kind: reconcile.DateField},
		{name: "date with time", value: time.Date(2025, 7, 4, 13, 30, 0, 0, time.UTC), want: "2025-07-04 13:30:00", kind: reconcile.DateField},
		{name: "serial with built-in date format", value: 45842, style: numFmt(14), want: "2025-07-04", kind: reconcile.DateField},
		{name: "serial with custom date format", value: 45842, style: customFmt("dd/mm/yyyy"), want: "2025-07-04", kind: reconcile.DateField},
		{name: "plain number", value: 12, want: "12", kind: reconcile.NumberField},
		{name: "fraction", value: 2.5, want: "2.5", kind: reconcile.NumberField},
		{name: "decimal format", value: 45842, style: numFmt(2), want: "45842", kind: reconcile.NumberField},
		{name: "quoted letters in format", value: 3, style: customFmt(`0" days"`), want: "3", kind: reconcile.NumberField},
		{name: "colour section in format", value: 7, style: customFmt("[Red]0"), want: "7", kind: reconcile.NumberField},
		{name: "negative date", value: -3, style: numFmt(14), want: "-3", kind: reconcile.NumberField},
		{name: "boolean", value: true, want: "true", kind: reconcile.BoolField},
		{name: "numeric text", value: "00123", want: "00123", kind: reconcile.TextField},
		{name: "text", value: "KOM", want: "KOM", kind: reconcile.TextField},
	}

	for i, tt := range tests {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", ref, tt.value))
		if tt.style != 0 {
			require.NoError(t, f.SetCellStyle("Sheet1", ref, ref, tt.style))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	cells, err := ReadCells(file, path, TableOptions{})
	require.NoError(t, err)
	require.Len(t, cells.Rows, len(tests))

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cells.Rows[i][0])
			assert.Equal(t, tt.kind, cells.Kind(i, 0))
		})
	}
}

func TestReadCells_CSV(t *testing.T) {
	cells, err := ReadCells(strings.NewReader("Articolo,Data\nA1,45842\n"), "snap.csv", TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Articolo", "Data"}, {"A1", "45842"}}, cells.Rows)
	assert.Equal(t, reconcile.TextField, cells.Kind(1, 1))

	_, err = ReadCells(strings.NewReader(""), "snap.ods", TableOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadTable_Unsupported(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""), "master.ods", TableOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadTable(strings.NewReader("not a zip"), "master.xlsx", TableOptions{})
	assert.ErrorContains(t, err, "failed to open xlsx")
}
