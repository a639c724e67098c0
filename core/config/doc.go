// Package config provides configuration management for the delivery tracker.
//
// It utilizes Viper for loading configuration from an optional config.yaml,
// a .env file and environment variables. Defaults come from the `default`
// struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key)
//   - Storage: S3/MinIO credentials and bucket holding the datasets
//   - Log: Logging level and format
//   - Database: optional result database
//   - Schedule: dataset locations and column layouts (SCHEDULE_MASTER_FILE, ...)
//   - Reconcile: sentinels, event marker, log naming and worker count
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Schedule.SnapshotDir)
package config
