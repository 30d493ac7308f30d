// Package sqlite persists the vector index as a single SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Snapshots
//
// Every Save writes the complete index to index.db.tmp inside one transaction
// and then renames it over index.db. Readers therefore only ever observe the
// previous snapshot or the new one, and a crash mid-write leaves the old file
// untouched.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the index is stored at ~/.lectern/index/index.db
package sqlite
