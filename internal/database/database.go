package database

import (
	"github.com/nylssoft/bibsearch/internal/entry"
)

// Provides a sqlite record store for bibliographic entries.
//
// Each entry is stored with a hash of its source text, so unchanged entries are
// skipped on repeated imports. The database is opened on first use.
//
// Use NewDatabase to create a new database object.
type Database interface {
	// Stores the entry under its citation key, replacing a previous version.
	// Returns true if the entry was skipped because the hash is unchanged.
	Store(e entry.Entry, hash string) (bool, error)
	// Deletes all entries whose citation key is not in the specified keys.
	// Returns the number of deleted entries.
	Retain(keys []string) (int, error)
	// Returns all entries ordered by citation key.
	Entries() ([]entry.Entry, error)
	// Closes the database. It is reopened on next use.
	Close()
}

// Creates a new database object for the specified sqlite file.
func NewDatabase(filename string) Database {
	var db database_impl
	db.filename = filename
	return &db
}
