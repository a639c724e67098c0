package schedule

import (
	"context"
	"fmt"
	"path"
	"strings"

	"delivery-tracker/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Service runs schedule reconciliations over the configured datasets.
type Service struct {
	cfg    Config
	engine reconcile.Config
	fs     FileSystem
	db     *gorm.DB
	logger *zap.Logger
	sf     singleflight.Group
}

// NewService creates a new schedule service. db may be nil, in which case
// results are not persisted to the database.
func NewService(cfg Config, engine reconcile.Config, fs FileSystem, db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:    cfg,
		engine: engine,
		fs:     fs,
		db:     db,
		logger: logger,
	}
}

// RunOptions tunes one run.
type RunOptions struct {
	// Persist writes the result to the output file and, when configured, the database.
	Persist bool
	// Output overrides the configured output file.
	Output string
}

// Run reconciles the datasets once. Concurrent calls with the same options
// share one run.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*reconcile.Result, error) {
	key := fmt.Sprintf("persist=%t output=%s", opts.Persist, opts.Output)
	v, err, shared := s.sf.Do(key, func() (interface{}, error) {
		return s.run(ctx, opts)
	})
	if shared {
		s.logger.Debug("Joined in-flight reconciliation", zap.String("key", key))
	}
	if err != nil {
		return nil, err
	}
	return v.(*reconcile.Result), nil
}

func (s *Service) run(ctx context.Context, opts RunOptions) (*reconcile.Result, error) {
	var sinks []reconcile.Sink
	if opts.Persist {
		var err error
		if sinks, err = s.sinks(ctx, opts.Output); err != nil {
			return nil, err
		}
	}

	resolver := reconcile.NewEventLogResolver(NewLogDirectory(s.fs, s.cfg), s.engine.ResolverOptions())
	pipeline := reconcile.NewPipeline(
		NewMasterReader(s.fs, s.cfg),
		NewPlanningSource(s.fs, s.cfg),
		resolver,
		reconcile.NewConsolidator(s.engine.Sentinels, nil),
		reconcile.Options{
			Workers: s.engine.Workers,
			Sinks:   sinks,
			Logger:  s.logger,
		},
	)
	return pipeline.Run(ctx)
}

// sinks returns the output file sink and, when a database is connected, the database sink.
func (s *Service) sinks(ctx context.Context, output string) ([]reconcile.Sink, error) {
	if output == "" {
		output = s.cfg.Output
	}

	var sinks []reconcile.Sink
	if output != "" {
		sinks = append(sinks, NewFileSink(s.fs, output))
	}
	if s.db != nil {
		store := NewDatabaseSink(s.db, 0)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, store)
	}
	return sinks, nil
}

// NewFileSink returns the JSON writer for .json outputs and the workbook writer otherwise.
func NewFileSink(fs FileSystem, name string) reconcile.Sink {
	if strings.EqualFold(path.Ext(name), ".json") {
		return NewJSONWriter(fs, name)
	}
	return NewWorkbookWriter(fs, name)
}

// Config returns the dataset configuration of the service.
func (s *Service) Config() Config {
	return s.cfg
}
