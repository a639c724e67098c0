// Package reconcile implements the schedule reconciliation engine.
//
// A run joins every master record to a sequence of dated planning snapshots,
// consolidates the per-snapshot planned dates into one expected date, reads the
// actual completion date from the item's event log and derives the deviation
// in days.
//
// # Components
//
//   - KeyIndex: trimmed-key lookup tables, last write wins.
//   - SnapshotMatcher: primary key first, secondary key as fallback, with match counters.
//   - Consolidator: newest-to-oldest scan skipping sentinel tokens such as "KOM".
//   - EventLogResolver: "<id>_rev<rev>" then "<id>" log selection, marker row extraction,
//     cached per log name.
//   - Delta: actual minus expected, in whole days.
//   - Pipeline: orchestrates the above with bounded parallelism.
//
// # Failures
//
// Missing master key columns, an unreadable master dataset or an unreadable
// snapshot abort the run. Event log failures are collected per record and the
// run continues. Unparsable dates are treated as absent.
//
// # Usage Example
//
//	resolver := reconcile.NewEventLogResolver(logs, cfg.ResolverOptions())
//	p := reconcile.NewPipeline(master, snapshots, resolver,
//	    reconcile.NewConsolidator(cfg.Sentinels, nil),
//	    reconcile.Options{Workers: cfg.Workers, Logger: log})
//
//	result, err := p.Run(ctx)
package reconcile
