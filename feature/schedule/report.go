package schedule

import (
	"fmt"
	"io"

	"delivery-tracker/core/reconcile"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Distribution classifies the populated deltas of a run.
type Distribution struct {
	Early  int     `json:"early"`
	OnTime int     `json:"on_time"`
	Late   int     `json:"late"`
	Mean   float64 `json:"mean"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Distribute computes the delta distribution of the records.
func Distribute(records []reconcile.ReconciledRecord) Distribution {
	var d Distribution
	var sum, n int
	for _, r := range records {
		if r.Delta == nil {
			continue
		}
		v := *r.Delta
		switch {
		case v < 0:
			d.Early++
		case v == 0:
			d.OnTime++
		default:
			d.Late++
		}
		if n == 0 || v < d.Min {
			d.Min = v
		}
		if n == 0 || v > d.Max {
			d.Max = v
		}
		sum += v
		n++
	}
	if n > 0 {
		d.Mean = float64(sum) / float64(n)
	}
	return d
}

// Summary is the diagnostic view of a run.
type Summary struct {
	RunID        string                       `json:"run_id"`
	Snapshots    []string                     `json:"snapshots"`
	Matches      []reconcile.MatchStats       `json:"matches"`
	Coverage     reconcile.Coverage           `json:"coverage"`
	DeltaRate    float64                      `json:"delta_rate"`
	Distribution Distribution                 `json:"distribution"`
	ErrorCount   int                          `json:"error_count"`
	Errors       []reconcile.ResolutionError  `json:"errors"`
	Records      []reconcile.ReconciledRecord `json:"records,omitempty"`
}

// Summarize builds the summary of res, listing at most errorLimit errors
// (all of them when errorLimit is not positive).
func Summarize(res *reconcile.Result, errorLimit int, withRecords bool) Summary {
	s := Summary{
		RunID:        res.RunID,
		Snapshots:    make([]string, len(res.Snapshots)),
		Matches:      res.Matches,
		Coverage:     res.Coverage,
		DeltaRate:    res.Coverage.DeltaRate(),
		Distribution: Distribute(res.Records),
		ErrorCount:   len(res.Errors),
		Errors:       res.Errors,
	}
	for i, h := range res.Snapshots {
		s.Snapshots[i] = h.Label
	}
	if errorLimit > 0 && len(s.Errors) > errorLimit {
		s.Errors = s.Errors[:errorLimit]
	}
	if withRecords {
		s.Records = res.Records
	}
	return s
}

// RenderSummary prints match counts, coverage and resolution errors as tables.
func RenderSummary(w io.Writer, res *reconcile.Result, errorLimit int) error {
	s := Summarize(res, errorLimit, false)

	matches := newTable("Snapshot matches")
	matches.AppendHeader(table.Row{"Snapshot", "Primary", "Secondary", "Unmatched", "Warnings"})
	for _, m := range s.Matches {
		matches.AppendRow(table.Row{m.Snapshot, humanize.Comma(int64(m.Primary)), humanize.Comma(int64(m.Secondary)), humanize.Comma(int64(m.Unmatched)), m.Warnings})
	}
	matches.AppendFooter(table.Row{fmt.Sprintf("Total: %d snapshots", len(s.Matches))})

	coverage := newTable("Coverage")
	coverage.AppendHeader(table.Row{"Field", "Records", "Share"})
	for _, row := range []struct {
		label string
		n     int
	}{
		{ExpectedHeader, s.Coverage.Expected},
		{ActualHeader, s.Coverage.Actual},
		{DeltaHeader, s.Coverage.Delta},
	} {
		coverage.AppendRow(table.Row{row.label, humanize.Comma(int64(row.n)), percent(row.n, s.Coverage.Total)})
	}
	coverage.AppendFooter(table.Row{"Total", humanize.Comma(int64(s.Coverage.Total)), ""})

	dist := newTable("Delta (days)")
	dist.AppendHeader(table.Row{"Early", "On time", "Late", "Mean", "Min", "Max"})
	dist.AppendRow(table.Row{
		s.Distribution.Early, s.Distribution.OnTime, s.Distribution.Late,
		humanize.FormatFloat("#,###.#", s.Distribution.Mean), s.Distribution.Min, s.Distribution.Max,
	})

	parts := []string{matches.Render(), coverage.Render(), dist.Render()}

	if s.ErrorCount > 0 {
		errs := newTable(fmt.Sprintf("Resolution errors (%s)", humanize.Comma(int64(s.ErrorCount))))
		errs.AppendHeader(table.Row{"Row", "Identifier", "Revision", "Error"})
		for _, e := range s.Errors {
			errs.AppendRow(table.Row{e.Row + 2, e.Identifier, e.Revision, e.Err.Error()})
		}
		if hidden := s.ErrorCount - len(s.Errors); hidden > 0 {
			errs.AppendFooter(table.Row{fmt.Sprintf("... %d more", hidden)})
		}
		parts = append(parts, errs.Render())
	}

	for _, p := range parts {
		if _, err := fmt.Fprintf(w, "%s\n\n", p); err != nil {
			return err
		}
	}
	return nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(title)
	tbl.Style().Title.Align = text.AlignLeft
	tbl.Style().Format.Footer = text.FormatDefault
	return tbl
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return humanize.FormatFloat("#.#", 100*float64(n)/float64(total)) + "%"
}
