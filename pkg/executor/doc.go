// Package executor is the record-store boundary of the search engine.
//
// The engine compiles conditions; it never touches the database itself.
// Everything I/O-shaped lives behind the Executor interface: column
// introspection for registration-time validation, and Find for running a
// compiled query.
//
// SQLExecutor is the database/sql reference implementation. It supports
// Postgres, SQLite, and MySQL, rebinding ?-placeholders to $N where the
// dialect requires it and expanding slice parameters positionally into IN
// lists. Column introspection results are held in a small LRU cache since
// registration may probe the same table repeatedly.
//
// An optional Redis-backed ResultCache short-circuits repeated identical
// queries; entries are keyed by a digest of the final statement and
// invalidated per table.
package executor
