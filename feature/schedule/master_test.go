package schedule

import (
	"context"
	"path/filepath"
	"testing"

	"delivery-tracker/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterReader_LoadMaster(t *testing.T) {
	dir := t.TempDir()
	seedDatasets(t, dir)
	cfg := testConfig(dir)

	set, err := NewMasterReader(&LocalFS{Root: dir}, cfg).LoadMaster(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Cliente", "Matricola", "Articolo", "Revisione"}, set.Headers)
	require.Len(t, set.Records, 4)

	first := set.Records[0]
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, "M1", first.PrimaryKey)
	assert.Equal(t, "A1", first.SecondaryKey)
	assert.Equal(t, "A1", first.Identifier)
	assert.Equal(t, "2", first.Revision)
	assert.Equal(t, map[string]string{"Cliente": "ACME", "Matricola": "M1", "Articolo": "A1", "Revisione": "2"}, first.Fields)

	assert.Equal(t, "", set.Records[1].PrimaryKey)
	assert.Equal(t, "0", set.Records[3].Revision)
	assert.Equal(t, "A4/B", set.Records[3].Identifier)
}

func TestMasterReader_Parse(t *testing.T) {
	cfg := testConfig("")
	cfg.MasterFile = "master.csv"

	tests := []struct {
		name    string
		cfg     func(Config) Config
		rows    [][]string
		headers []string
		records int
		err     error
	}{
		{
			name:    "blank rows skipped and short rows padded",
			rows:    [][]string{{"Matricola", "Articolo", "Note"}, {"M1", "A1"}, {"", " ", ""}, {"M2", "A2", "x"}},
			headers: []string{"Matricola", "Articolo", "Note"},
			records: 2,
		},
		{
			name:    "blank and duplicate headers",
			rows:    [][]string{{"Matricola", "Articolo", "", "Note", "Note"}, {"M1", "A1", "a", "b", "c"}},
			headers: []string{"Matricola", "Articolo", "Column 3", "Note", "Note (2)"},
			records: 1,
		},
		{
			name: "missing primary column",
			rows: [][]string{{"Serial", "Articolo"}, {"M1", "A1"}},
			err:  reconcile.ErrMissingKeyColumns,
		},
		{
			name: "missing identifier column",
			cfg: func(c Config) Config {
				c.IdentifierColumn = "Codice log"
				return c
			},
			rows: [][]string{{"Matricola", "Articolo"}, {"M1", "A1"}},
			err:  reconcile.ErrMissingKeyColumns,
		},
		{
			name: "empty dataset",
			err:  reconcile.ErrMissingKeyColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			if tt.cfg != nil {
				c = tt.cfg(c)
			}
			set, err := NewMasterReader(nil, c).parse(&Cells{Rows: tt.rows})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.headers, set.Headers)
			assert.Len(t, set.Records, tt.records)
			for i, rec := range set.Records {
				assert.Equal(t, i, rec.Row)
				assert.Len(t, rec.Fields, len(tt.headers))
			}
		})
	}
}

func TestMasterReader_RevisionNormalized(t *testing.T) {
	set, err := NewMasterReader(nil, testConfig("")).parse(&Cells{Rows: [][]string{
		{"Matricola", "Articolo", "Revisione"},
		{"M1", "A1", "2.0"},
		{"M2", "A2", " "},
		{"M3", "A3", "0"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "2", set.Records[0].Revision)
	assert.Equal(t, "", set.Records[1].Revision)
	assert.Equal(t, "0", set.Records[2].Revision)
}

func TestMasterReader_FieldKinds(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "master.xlsx"), 1, [][]any{
		{"Matricola", "Articolo", "Quantita", "Consegna", "Urgente", "Codice"},
		{"M1", "A1", 12, date(2025, 7, 4), true, "00123"},
		{"M2", "A2", 2.5, "da definire", false, 42},
	})

	set, err := NewMasterReader(&LocalFS{Root: dir}, testConfig(dir)).LoadMaster(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Records, 2)

	first := set.Records[0]
	assert.Equal(t, map[string]string{
		"Matricola": "M1", "Articolo": "A1", "Quantita": "12",
		"Consegna": "2025-07-04", "Urgente": "true", "Codice": "00123",
	}, first.Fields)
	assert.Equal(t, map[string]reconcile.FieldKind{
		"Quantita": reconcile.NumberField,
		"Consegna": reconcile.DateField,
		"Urgente":  reconcile.BoolField,
	}, first.Kinds)

	second := set.Records[1]
	assert.Equal(t, "2.5", second.Fields["Quantita"])
	assert.Equal(t, reconcile.NumberField, second.Kind("Quantita"))
	assert.Equal(t, reconcile.TextField, second.Kind("Consegna"))
	assert.Equal(t, "false", second.Fields["Urgente"])
	assert.Equal(t, reconcile.NumberField, second.Kind("Codice"))
}

func TestMasterReader_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := NewMasterReader(&LocalFS{Root: dir}, testConfig(dir)).LoadMaster(context.Background())
	assert.ErrorContains(t, err, "open master master.xlsx")

	writeText(t, filepath.Join(dir, "master.xlsx"), "garbage")
	_, err = NewMasterReader(&LocalFS{Root: dir}, testConfig(dir)).LoadMaster(context.Background())
	assert.ErrorContains(t, err, "read master master.xlsx")
}
