package schedule

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"time"

	"delivery-tracker/core/reconcile"
	"delivery-tracker/core/utils"
)

// PlanningSource discovers dated planning snapshots and reads their fixed columns.
type PlanningSource struct {
	fs      FileSystem
	cfg     Config
	pattern *regexp.Regexp
}

// NewPlanningSource returns a snapshot source over cfg.SnapshotDir.
func NewPlanningSource(fs FileSystem, cfg Config) *PlanningSource {
	return &PlanningSource{
		fs:      fs,
		cfg:     cfg,
		pattern: snapshotPattern(cfg.SnapshotPrefix, cfg.SnapshotExt),
	}
}

func snapshotPattern(prefix, ext string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d{2})_(\d{2})_(\d{2})` + regexp.QuoteMeta(ext) + `$`)
}

// ParseSnapshotDate extracts the date of a snapshot named <prefix>yy_mm_dd<ext>.
// Years are placed in the 2000s.
func ParseSnapshotDate(name, prefix, ext string) (time.Time, bool) {
	return parseSnapshotName(snapshotPattern(prefix, ext), name)
}

func parseSnapshotName(pattern *regexp.Regexp, name string) (time.Time, bool) {
	m := pattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	yy, mm, dd := utils.ToInt(m[1]), utils.ToInt(m[2]), utils.ToInt(m[3])
	d := time.Date(2000+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if d.Month() != time.Month(mm) || d.Day() != dd {
		return time.Time{}, false
	}
	return d, true
}

// ListSnapshots implements reconcile.SnapshotSource. Names that do not carry
// a valid date are ignored.
func (p *PlanningSource) ListSnapshots(ctx context.Context) ([]reconcile.SnapshotHandle, error) {
	names, err := p.fs.List(ctx, p.cfg.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots in %s: %w", p.cfg.SnapshotDir, err)
	}

	var handles []reconcile.SnapshotHandle
	for _, name := range names {
		d, ok := parseSnapshotName(p.pattern, name)
		if !ok {
			continue
		}
		handles = append(handles, reconcile.SnapshotHandle{
			Date:  d,
			Label: d.Format("2006-01-02"),
			Name:  path.Join(p.cfg.SnapshotDir, name),
		})
	}
	sort.SliceStable(handles, func(i, j int) bool {
		return handles[i].Date.Before(handles[j].Date)
	})
	return handles, nil
}

// LoadSnapshot implements reconcile.SnapshotSource.
func (p *PlanningSource) LoadSnapshot(ctx context.Context, h reconcile.SnapshotHandle) (*reconcile.Snapshot, error) {
	rc, err := p.fs.Open(ctx, h.Name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	cells, err := ReadCells(rc, h.Name, TableOptions{Sheet: p.cfg.SnapshotSheet})
	if err != nil {
		return nil, err
	}
	rows := cells.Rows

	snap := &reconcile.Snapshot{SnapshotHandle: h}
	start := p.cfg.StartRow - 1
	if start < 0 {
		start = 0
	}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		pk := cell(row, p.cfg.PrimaryCol-1)
		sk := cell(row, p.cfg.SecondaryCol-1)
		if pk == "" && sk == "" {
			continue
		}
		value, ok := snapshotValue(cells, i, p.cfg.ValueCol-1)
		if !ok {
			snap.Warnings++
		}
		snap.Entries = append(snap.Entries, reconcile.SnapshotEntry{
			PrimaryKey:   pk,
			SecondaryKey: sk,
			Value:        value,
		})
	}
	return snap, nil
}

// snapshotValue reads a planned date cell. Date cells come back as
// YYYY-MM-DD and text is kept for the consolidator to judge. A number
// without a date format is not a planned date: it is reported as malformed
// and read as absent.
func snapshotValue(cells *Cells, row, col int) (string, bool) {
	switch cells.Kind(row, col) {
	case reconcile.NumberField, reconcile.BoolField:
		return "", false
	}
	return cell(cells.Rows[row], col), true
}
