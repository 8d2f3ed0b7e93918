// Package store provides a SQLite fixture database for exercising rendered
// queries.
//
// ApplyCatalog creates one table per class in a metadata catalog, Insert
// loads fixture rows keyed by attribute name, and SelectIDs runs SQL from
// querysql and returns the matching primary keys in order.
//
// # Stored representation
//
//   - String, Character: TEXT
//   - Boolean, Integer, Long: INTEGER
//   - Float, Double: REAL
//   - Instant, AsOf: TEXT in ir.InstantLayout (UTC, millisecond precision)
//   - LocalDate: TEXT as YYYY-MM-DD
//
// OpenCatalog is the usual entry point: a fresh in-memory database with the
// catalog's tables and a set of fixtures already loaded.
//
// # Database Configuration
//
// Settings are passed in the go-sqlite3 DSN:
//
//   - foreign_keys=ON: Enforce referential integrity
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - WAL mode with synchronous=NORMAL: file databases only
package store
