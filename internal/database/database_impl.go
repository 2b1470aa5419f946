package database

import (
	"database/sql"
	"errors"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nylssoft/bibsearch/internal/entry"
)

type database_impl struct {
	filename   string
	db         *sql.DB
	hashStmt   *sql.Stmt
	entryStmt  *sql.Stmt
	deleteStmt *sql.Stmt
	fieldStmt  *sql.Stmt
}

const size_1K = 1024
const size_1M = size_1K * size_1K
const size_1G = size_1M * size_1K

var errTooLarge = errors.New("database file is too large")

func (database *database_impl) Store(e entry.Entry, hash string) (bool, error) {
	if err := database.init(); err != nil {
		return false, err
	}
	rows, err := database.hashStmt.Query(e.Key(), hash)
	if err != nil {
		return false, err
	}
	found := rows.Next()
	rows.Close()
	if found {
		return true, nil
	}
	tx, err := database.db.Begin()
	if err != nil {
		return false, err
	}
	_, err = tx.Stmt(database.deleteStmt).Exec(e.Key())
	if err == nil {
		_, err = tx.Stmt(database.entryStmt).Exec(e.Key(), e.Type(), hash)
	}
	if err == nil {
		fieldStmt := tx.Stmt(database.fieldStmt)
		for _, name := range e.FieldNames() {
			value, _ := e.Field(name)
			_, err = fieldStmt.Exec(e.Key(), name, value)
			if err != nil {
				break
			}
		}
	}
	if err != nil {
		tx.Rollback()
		return false, err
	}
	return false, tx.Commit()
}

func (database *database_impl) Retain(keys []string) (int, error) {
	if err := database.init(); err != nil {
		return 0, err
	}
	keep := make(map[string]bool, len(keys))
	for _, key := range keys {
		keep[key] = true
	}
	stored, err := database.keys()
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, key := range stored {
		if keep[key] {
			continue
		}
		_, err = database.db.Exec("DELETE FROM field WHERE entry_key=$1", key)
		if err == nil {
			_, err = database.db.Exec("DELETE FROM entry WHERE key=$1", key)
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (database *database_impl) Entries() ([]entry.Entry, error) {
	if err := database.init(); err != nil {
		return nil, err
	}
	rows, err := database.db.Query("SELECT key, entry_type FROM entry ORDER BY key")
	if err != nil {
		return nil, err
	}
	var entries []*entry.MemEntry
	byKey := make(map[string]*entry.MemEntry)
	for rows.Next() {
		var key, entryType string
		if err = rows.Scan(&key, &entryType); err != nil {
			rows.Close()
			return nil, err
		}
		e := entry.NewEntry(key, entryType)
		entries = append(entries, e)
		byKey[key] = e
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}
	rows, err = database.db.Query("SELECT entry_key, name, value FROM field")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key, name, value string
		if err = rows.Scan(&key, &name, &value); err != nil {
			return nil, err
		}
		e, ok := byKey[key]
		if !ok {
			continue
		}
		if err = e.SetField(name, value); err != nil {
			log.Printf("WARN: Skip field '%s' of entry '%s': %s\n", name, key, err.Error())
		}
	}
	ret := make([]entry.Entry, len(entries))
	for i, e := range entries {
		ret[i] = e
	}
	return ret, rows.Err()
}

func (database *database_impl) keys() ([]string, error) {
	rows, err := database.db.Query("SELECT key FROM entry")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, err
		}
		ret = append(ret, key)
	}
	return ret, rows.Err()
}

func (database *database_impl) init() error {
	var err error
	if database.db == nil {
		var fileInfo os.FileInfo
		fileInfo, err = os.Stat(database.filename)
		if err == nil && fileInfo.Size() > size_1G {
			return errTooLarge
		}
		var db *sql.DB
		db, err = sql.Open("sqlite3", database.filename)
		if err == nil {
			stmt := `CREATE TABLE IF NOT EXISTS entry (
			key TEXT PRIMARY KEY,
			entry_type TEXT,
			hash TEXT)`
			_, err = db.Exec(stmt)
			if err == nil {
				stmt = `CREATE TABLE IF NOT EXISTS field (
				entry_key TEXT,
				name TEXT,
				value TEXT)`
				_, err = db.Exec(stmt)
			}
			if err == nil {
				stmt = "CREATE INDEX IF NOT EXISTS field_entry_key_idx ON field (entry_key)"
				_, err = db.Exec(stmt)
			}
			if err != nil {
				db.Close()
			} else {
				database.db = db
			}
		}
	}
	if err == nil && database.hashStmt == nil {
		database.hashStmt, err = database.db.Prepare("SELECT 1 FROM entry WHERE key=$1 AND hash=$2")
	}
	if err == nil && database.deleteStmt == nil {
		database.deleteStmt, err = database.db.Prepare("DELETE FROM field WHERE entry_key=$1")
	}
	if err == nil && database.entryStmt == nil {
		database.entryStmt, err = database.db.Prepare("INSERT OR REPLACE INTO entry (key,entry_type,hash) VALUES ($1,$2,$3)")
	}
	if err == nil && database.fieldStmt == nil {
		database.fieldStmt, err = database.db.Prepare("INSERT INTO field (entry_key,name,value) VALUES ($1,$2,$3)")
	}
	return err
}

func (database *database_impl) Close() {
	for _, stmt := range []**sql.Stmt{&database.hashStmt, &database.deleteStmt, &database.entryStmt, &database.fieldStmt} {
		if *stmt != nil {
			(*stmt).Close()
			*stmt = nil
		}
	}
	if database.db != nil {
		database.db.Close()
		database.db = nil
	}
}
