package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"delivery-tracker/core/config"
	"delivery-tracker/core/database"
	"delivery-tracker/core/logger"
	"delivery-tracker/core/reconcile"
	"delivery-tracker/core/storage"
	"delivery-tracker/feature/schedule"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reconcileFlags override the configuration for one run.
type reconcileFlags struct {
	master    string
	snapshots string
	logs      string
	output    string
	format    string
	workers   int
	useDB     bool
	dryRun    bool
}

var reconcileOpts reconcileFlags

// reconcileCmd runs one schedule reconciliation.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the master list against planning snapshots and event logs",
	Long: `Join every master record to the dated planning snapshots, pick the latest
committed planned date, read the actual completion date from the item's event
log and compute the delta in days.

Examples:
  # Report only, nothing written
  reconcile --dry-run

  # Write the reconciled workbook and print a JSON summary
  reconcile --output Avanzamento_schede_automated.xlsx --format json

  # Also persist every record to the configured database
  reconcile --db`,
	RunE: runReconcile,
}

func init() {
	f := reconcileCmd.Flags()
	f.StringVar(&reconcileOpts.master, "master", "", "Master dataset (overrides schedule.master_file)")
	f.StringVar(&reconcileOpts.snapshots, "snapshots", "", "Planning snapshot directory (overrides schedule.snapshot_dir)")
	f.StringVar(&reconcileOpts.logs, "logs", "", "Event log directory (overrides schedule.log_dir)")
	f.StringVar(&reconcileOpts.output, "output", "", "Output file, .xlsx or .json (overrides schedule.output)")
	f.StringVar(&reconcileOpts.format, "format", "table", "Summary format: table, json or log")
	f.IntVar(&reconcileOpts.workers, "workers", 0, "Parallel workers (overrides reconcile.workers)")
	f.BoolVar(&reconcileOpts.useDB, "db", false, "Persist records to the configured database (also database.enabled)")
	f.BoolVar(&reconcileOpts.dryRun, "dry-run", false, "Report only, write no output")

	RootCmd.AddCommand(reconcileCmd)
}

// apply copies the set flags onto the configuration.
func (o reconcileFlags) apply(cfg *config.Config) {
	if o.master != "" {
		cfg.Schedule.MasterFile = o.master
	}
	if o.snapshots != "" {
		cfg.Schedule.SnapshotDir = o.snapshots
	}
	if o.logs != "" {
		cfg.Schedule.LogDir = o.logs
	}
	if o.output != "" {
		cfg.Schedule.Output = o.output
	}
	if o.workers > 0 {
		cfg.Reconcile.Workers = o.workers
	}
}

func runReconcile(cmd *cobra.Command, args []string) error {
	switch reconcileOpts.format {
	case "table", "json", "log":
	default:
		return fmt.Errorf("unknown summary format: %s", reconcileOpts.format)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	reconcileOpts.apply(cfg)

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	svc, err := buildService(cfg, l, (reconcileOpts.useDB || cfg.Database.Enabled) && !reconcileOpts.dryRun)
	if err != nil {
		return err
	}

	l.Info("Starting schedule reconciliation",
		zap.String("master", cfg.Schedule.MasterFile),
		zap.String("snapshots", cfg.Schedule.SnapshotDir),
		zap.Bool("dry_run", reconcileOpts.dryRun),
	)

	res, err := svc.Run(ctx, schedule.RunOptions{Persist: !reconcileOpts.dryRun})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	return printSummary(cmd.OutOrStdout(), logger.WithRun(l, res.RunID), res, cfg.Schedule.ErrorLimit)
}

// buildService wires the file system, the optional database and the schedule service.
func buildService(cfg *config.Config, l *zap.Logger, useDB bool) (*schedule.Service, error) {
	var client storage.Client
	if cfg.Schedule.Backend == "s3" {
		c, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		client = c
	}

	fsys, err := schedule.NewFileSystem(cfg.Schedule, client, cfg.Storage.Bucket)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	if useDB {
		conn, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db = conn
		l.Info("Connected to result database", zap.String("driver", cfg.Database.Driver))
	}

	return schedule.NewService(cfg.Schedule, cfg.Reconcile, fsys, db, l), nil
}

// printSummary reports the run diagnostics in the requested format.
func printSummary(w io.Writer, l *zap.Logger, res *reconcile.Result, errorLimit int) error {
	switch reconcileOpts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(schedule.Summarize(res, errorLimit, false))
	case "log":
		for _, m := range res.Matches {
			l.Info("Snapshot matches",
				zap.String("snapshot", m.Snapshot),
				zap.Int("primary", m.Primary),
				zap.Int("secondary", m.Secondary),
				zap.Int("unmatched", m.Unmatched),
			)
		}
		l.Info("Coverage",
			zap.Int("records", res.Coverage.Total),
			zap.Int("expected", res.Coverage.Expected),
			zap.Int("actual", res.Coverage.Actual),
			zap.Int("delta", res.Coverage.Delta),
			zap.Float64("delta_rate", res.Coverage.DeltaRate()),
			zap.Int("errors", len(res.Errors)),
		)
		return nil
	default:
		return schedule.RenderSummary(w, res, errorLimit)
	}
}
