package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MasterSource supplies the master dataset.
type MasterSource interface {
	// LoadMaster returns the master records. A dataset without key columns
	// yields an error wrapping ErrMissingKeyColumns.
	LoadMaster(ctx context.Context) (*MasterSet, error)
}

// SnapshotSource supplies the dated snapshots.
type SnapshotSource interface {
	// ListSnapshots returns the available snapshots sorted ascending by date.
	ListSnapshots(ctx context.Context) ([]SnapshotHandle, error)
	// LoadSnapshot reads the entries of one snapshot.
	LoadSnapshot(ctx context.Context, h SnapshotHandle) (*Snapshot, error)
}

// LogResolver resolves the completion date of an item from its event log.
type LogResolver interface {
	Resolve(ctx context.Context, identifier, revision string) (Resolution, error)
}

// Sink receives the result of a run.
type Sink interface {
	Name() string
	Write(ctx context.Context, res *Result) error
}

// Options tunes a pipeline.
type Options struct {
	// Workers bounds parallelism; values below 1 run sequentially.
	Workers int
	// Sinks receive the result in order once every record is reconciled.
	Sinks []Sink
	// Logger receives progress and diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Pipeline reconciles a master dataset against snapshots and event logs.
type Pipeline struct {
	master       MasterSource
	snapshots    SnapshotSource
	resolver     LogResolver
	consolidator *Consolidator
	opts         Options
	log          *zap.Logger
}

// NewPipeline wires the pipeline collaborators. A nil consolidator uses the defaults.
func NewPipeline(master MasterSource, snapshots SnapshotSource, resolver LogResolver, consolidator *Consolidator, opts Options) *Pipeline {
	if consolidator == nil {
		consolidator = NewConsolidator(nil, nil)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		master:       master,
		snapshots:    snapshots,
		resolver:     resolver,
		consolidator: consolidator,
		opts:         opts,
		log:          log,
	}
}

// Run executes one reconciliation. Only structural failures are returned as
// errors; per-record failures are collected in Result.Errors.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.With(zap.String("run_id", runID))
	started := time.Now()

	master, err := p.master.LoadMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}
	log.Info("Master dataset loaded", zap.Int("records", len(master.Records)))

	handles, err := p.snapshots.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	sort.SliceStable(handles, func(i, j int) bool {
		return handles[i].Date.Before(handles[j].Date)
	})

	matchers, err := p.loadMatchers(ctx, handles)
	if err != nil {
		return nil, err
	}

	records := make([]ReconciledRecord, len(master.Records))
	failures := make([]*ResolutionError, len(master.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, rec := range master.Records {
		g.Go(func() error {
			out, failure, err := p.reconcileRecord(gctx, rec, matchers)
			if err != nil {
				return err
			}
			records[i] = out
			failures[i] = failure
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     runID,
		Headers:   master.Headers,
		Snapshots: handles,
		Records:   records,
		Matches:   make([]MatchStats, len(matchers)),
		Errors:    []ResolutionError{},
	}
	for i, m := range matchers {
		res.Matches[i] = m.Stats()
		log.Info("Snapshot matched",
			zap.String("snapshot", res.Matches[i].Snapshot),
			zap.Int("primary", res.Matches[i].Primary),
			zap.Int("secondary", res.Matches[i].Secondary),
			zap.Int("unmatched", res.Matches[i].Unmatched),
		)
	}
	for _, f := range failures {
		if f != nil {
			res.Errors = append(res.Errors, *f)
			log.Warn("Event log resolution failed", zap.Int("row", f.Row), zap.String("identifier", f.Identifier), zap.Error(f.Err))
		}
	}
	res.Coverage = coverageOf(records)

	log.Info("Reconciliation finished",
		zap.Int("records", res.Coverage.Total),
		zap.Int("expected", res.Coverage.Expected),
		zap.Int("actual", res.Coverage.Actual),
		zap.Int("delta", res.Coverage.Delta),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("duration", time.Since(started)),
	)

	for _, sink := range p.opts.Sinks {
		if err := sink.Write(ctx, res); err != nil {
			return res, fmt.Errorf("write %s: %w", sink.Name(), err)
		}
		log.Info("Result written", zap.String("sink", sink.Name()))
	}

	return res, nil
}

// loadMatchers reads every snapshot and indexes it. An unreadable snapshot aborts the run.
func (p *Pipeline) loadMatchers(ctx context.Context, handles []SnapshotHandle) ([]*SnapshotMatcher, error) {
	matchers := make([]*SnapshotMatcher, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, h := range handles {
		g.Go(func() error {
			snap, err := p.snapshots.LoadSnapshot(gctx, h)
			if err != nil {
				return fmt.Errorf("load snapshot %s: %w", h.Name, err)
			}
			if snap.Warnings > 0 {
				p.log.Warn("Snapshot values read as absent", zap.String("snapshot", snap.Label), zap.Int("warnings", snap.Warnings))
			}
			matchers[i] = NewSnapshotMatcher(snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matchers, nil
}

// reconcileRecord builds the timeline, expected date, actual date and delta of one record.
func (p *Pipeline) reconcileRecord(ctx context.Context, rec *MasterRecord, matchers []*SnapshotMatcher) (ReconciledRecord, *ResolutionError, error) {
	out := ReconciledRecord{
		MasterRecord: rec,
		Timeline:     make(Timeline, len(matchers)),
	}
	for s, m := range matchers {
		out.Timeline[s], _ = m.Resolve(rec)
	}

	if t, ok := p.consolidator.Consolidate(out.Timeline.NewestFirst()); ok {
		out.ExpectedDate = &t
	}

	res, err := p.resolver.Resolve(ctx, rec.Identifier, rec.Revision)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return out, nil, err
		}
		return out, &ResolutionError{Row: rec.Row, Identifier: rec.Identifier, Revision: rec.Revision, Err: err}, nil
	}
	out.LogName = res.LogName
	out.ActualDate = res.Date
	out.Delta = Delta(out.ExpectedDate, out.ActualDate)
	return out, nil, nil
}

func coverageOf(records []ReconciledRecord) Coverage {
	c := Coverage{Total: len(records)}
	for _, r := range records {
		if r.ExpectedDate != nil {
			c.Expected++
		}
		if r.ActualDate != nil {
			c.Actual++
		}
		if r.Delta != nil {
			c.Delta++
		}
	}
	return c
}
