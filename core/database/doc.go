// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections
// based on the application's configuration. The database only backs the
// optional sink that stores reconciled rows.
//
// # Connect
//
// Connect selects the dialector from Config.Driver, applies pool settings and
// verifies the connection with a bounded ping.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the database sink verify, after
// migration, that the target table carries every column it writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "reconciled_items", []string{"run_id"})
package database
