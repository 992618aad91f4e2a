// Package config loads the application configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//  1. Default() values
//  2. A YAML file: $GRADEBOOK_CONFIG_FILE, config.yaml or configs/config.yaml
//  3. Environment variables prefixed with GRADEBOOK_
//
// # Environment Variables
//
// Nested sections map to underscore separated names:
//
//	GRADEBOOK_SERVER_PORT=8080
//	GRADEBOOK_LOGGING_LEVEL=debug
//	GRADEBOOK_STORAGE_DRIVER=sqlite
//	GRADEBOOK_STORAGE_SQLITE_PATH=/var/lib/gradebook/journal.db
//	GRADEBOOK_STORAGE_S3_BUCKET=journals
//	GRADEBOOK_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Storage Drivers
//
// storage.driver selects where the journal snapshot is kept: memory, file,
// sqlite, postgres or s3. The file driver is the default and writes to
// storage.dir.
package config
