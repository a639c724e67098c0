// Package schedule connects the reconciliation engine to the planning datasets.
//
// It reads the master workbook and the dated Planning_yy_mm_dd snapshots from a
// local directory or a storage bucket, resolves per-item event logs, and writes
// the reconciled records to a workbook, a JSON file or the database.
//
// Routes:
//   - GET /schedule/reconcile runs a reconciliation and returns its summary.
//   - GET /schedule/health checks that the datasets are reachable.
package schedule
