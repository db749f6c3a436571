// Package config loads tablekit settings from a YAML file with environment
// overrides.
//
// Loading order:
//  1. Defaults
//  2. YAML file values, when a path is given
//  3. Environment variables TABLEKIT_DB_PATH, TABLEKIT_DB_DRIVER and
//     TABLEKIT_LOG_LEVEL
//
// Example file:
//
//	database:
//	  path: ./data/app.db
//	  driver: sqlite3
//	  wal_mode: true
//	  busy_timeout: 5000
//	rows:
//	  form: struct
//	  page_size: 200
//	logging:
//	  level: debug
//	  format: json
package config
