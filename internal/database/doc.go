// Package database is the storage adapter for the catalog. It owns the sqlite
// connection lifecycle and the table schema; per-aggregate repositories live in
// subpackages (customers, books, loans) and translate gorm errors into the
// domain taxonomy in internal/entities.
//
// The adapter enforces column-level constraints only (non-null, primary key
// uniqueness). Cross-entity rules, such as refusing to delete a customer who
// still holds open loans, belong to internal/integrity.
package database
