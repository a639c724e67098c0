package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves rows to an xlsx file, starting at the given 1-based row.
func writeWorkbook(t *testing.T, path string, startRow int, rows [][]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	require.NoError(t, f.SaveAs(path))
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// planningRow places the keys and value in the default snapshot columns.
func planningRow(primary, secondary string, value any) []any {
	row := make([]any, 31)
	row[1] = primary
	row[3] = secondary
	row[30] = value
	return row
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testConfig returns the default layout rooted at dir.
func testConfig(dir string) Config {
	return Config{
		Backend:         "local",
		Root:            dir,
		MasterFile:      "master.xlsx",
		PrimaryColumn:   "Matricola",
		SecondaryColumn: "Articolo",
		RevisionColumn:  "Revisione",
		DropColumns:     []string{"Data prevista avanzamento", "Data effettiva avanzamento"},
		SnapshotDir:     "Planning",
		SnapshotPrefix:  "Planning_",
		SnapshotExt:     ".xlsx",
		StartRow:        5,
		PrimaryCol:      2,
		SecondaryCol:    4,
		ValueCol:        31,
		LogDir:          "logs",
		LogExt:          ".csv",
		Output:          "out/reconciled.xlsx",
		ErrorLimit:      20,
	}
}

// seedDatasets writes a master file, two snapshots and three event logs.
//
//	row 0: M1 / A1 rev 2  planned 2025-01-10 then KOM -> expected 2025-01-10, actual 2025-01-05
//	row 1: -  / A2        planned 2025-02-01 by item code -> actual 2025-02-04
//	row 2: M3 / A3        KOM only, no log
//	row 3: M4 / A4/B rev 0 -> log A4_B_rev0
func seedDatasets(t *testing.T, dir string) {
	t.Helper()

	writeWorkbook(t, filepath.Join(dir, "master.xlsx"), 1, [][]any{
		{"Cliente", "Matricola", "Articolo", "Revisione", "Data prevista avanzamento", "Data effettiva avanzamento"},
		{"ACME", "M1", "A1", "2", "old", "old"},
		{"ACME", "", "A2", "", "", ""},
		{"Beta", "M3", "A3", "", "", ""},
		{"Beta", "M4", "A4/B", "0", "", ""},
	})

	writeWorkbook(t, filepath.Join(dir, "Planning", "Planning_25_01_15.xlsx"), 5, [][]any{
		planningRow("M1", "A1", date(2025, 1, 10)),
		planningRow("X2", "A2", date(2025, 2, 1)),
		planningRow("M4", "A4/B", date(2025, 5, 1)),
	})
	writeWorkbook(t, filepath.Join(dir, "Planning", "Planning_25_02_15.xlsx"), 5, [][]any{
		planningRow("M1", "A1", "KOM"),
		planningRow("M3", "A3", "KOM"),
		planningRow("M4", "A4/B", -5),
	})
	writeText(t, filepath.Join(dir, "Planning", "notes.txt"), "ignored")

	writeText(t, filepath.Join(dir, "logs", "A1_rev2.csv"), "Seq,Data\n10,01/01/25\n90,05/01/25\n")
	writeText(t, filepath.Join(dir, "logs", "A2.csv"), "Seq,Data\n90,04/02/25\n")
	writeText(t, filepath.Join(dir, "logs", "A4_B_rev0.csv"), "Seq,Data\n90,11/05/25\n")
}
