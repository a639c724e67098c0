package schedule

import (
	"context"
	"fmt"
	"strings"

	"delivery-tracker/core/reconcile"
	"delivery-tracker/core/utils"
)

// MasterReader loads the master dataset and resolves its columns by header label.
type MasterReader struct {
	fs  FileSystem
	cfg Config
}

// NewMasterReader returns a reader for cfg.MasterFile on fs.
func NewMasterReader(fs FileSystem, cfg Config) *MasterReader {
	return &MasterReader{fs: fs, cfg: cfg}
}

// LoadMaster implements reconcile.MasterSource.
func (m *MasterReader) LoadMaster(ctx context.Context) (*reconcile.MasterSet, error) {
	rc, err := m.fs.Open(ctx, m.cfg.MasterFile)
	if err != nil {
		return nil, fmt.Errorf("open master %s: %w", m.cfg.MasterFile, err)
	}
	defer rc.Close()

	cells, err := ReadCells(rc, m.cfg.MasterFile, TableOptions{Sheet: m.cfg.MasterSheet})
	if err != nil {
		return nil, fmt.Errorf("read master %s: %w", m.cfg.MasterFile, err)
	}
	return m.parse(cells)
}

func (m *MasterReader) parse(cells *Cells) (*reconcile.MasterSet, error) {
	rows := cells.Rows
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w: no header row", m.cfg.MasterFile, reconcile.ErrMissingKeyColumns)
	}

	header := rows[0]
	labels := uniqueLabels(header)
	column := func(label string) int {
		for i, h := range header {
			if strings.TrimSpace(h) == label {
				return i
			}
		}
		return -1
	}

	primary := column(m.cfg.PrimaryColumn)
	secondary := column(m.cfg.SecondaryColumn)
	identifier := column(m.cfg.identifierColumn())
	revision := column(m.cfg.RevisionColumn)

	var missing []string
	if primary < 0 {
		missing = append(missing, m.cfg.PrimaryColumn)
	}
	if secondary < 0 {
		missing = append(missing, m.cfg.SecondaryColumn)
	}
	if identifier < 0 && m.cfg.identifierColumn() != m.cfg.SecondaryColumn {
		missing = append(missing, m.cfg.identifierColumn())
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", m.cfg.MasterFile, reconcile.ErrMissingKeyColumns, strings.Join(missing, ", "))
	}

	var kept []int
	set := &reconcile.MasterSet{}
	for i, label := range labels {
		if m.dropped(label) {
			continue
		}
		kept = append(kept, i)
		set.Headers = append(set.Headers, label)
	}

	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := &reconcile.MasterRecord{
			Row:          len(set.Records),
			PrimaryKey:   cell(row, primary),
			SecondaryKey: cell(row, secondary),
			Identifier:   cell(row, identifier),
			Revision:     utils.NormalizeNumber(cell(row, revision)),
			Fields:       make(map[string]string, len(kept)),
		}
		for _, i := range kept {
			if i >= len(row) {
				rec.Fields[labels[i]] = ""
				continue
			}
			rec.Fields[labels[i]] = row[i]
			if kind := cells.Kind(n+1, i); kind != reconcile.TextField {
				if rec.Kinds == nil {
					rec.Kinds = make(map[string]reconcile.FieldKind)
				}
				rec.Kinds[labels[i]] = kind
			}
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}

// dropped reports whether a master column is a stale computed column.
func (m *MasterReader) dropped(label string) bool {
	for _, d := range m.cfg.DropColumns {
		if d = strings.TrimSpace(d); d != "" && strings.Contains(label, d) {
			return true
		}
	}
	return false
}

// uniqueLabels trims header labels, names blank ones by position and
// suffixes duplicates so every column has a distinct field name.
func uniqueLabels(header []string) []string {
	seen := make(map[string]int, len(header))
	labels := make([]string, len(header))
	for i, h := range header {
		label := strings.TrimSpace(h)
		if label == "" {
			label = fmt.Sprintf("Column %d", i+1)
		}
		seen[label]++
		if n := seen[label]; n > 1 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		labels[i] = label
	}
	return labels
}
