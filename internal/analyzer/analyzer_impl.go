package analyzer

import (
	"crypto/md5"
	"encoding/hex"
	"log"
	"os"

	"github.com/nylssoft/bibsearch/internal/bibtex"
	"github.com/nylssoft/bibsearch/internal/config"
	"github.com/nylssoft/bibsearch/internal/database"
	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/hook"
	"github.com/nylssoft/bibsearch/internal/rule"
)

type analyzer_impl struct {
	// dependencies
	config config.Config
	db     database.Database
	hook   hook.Hook
}

func (analyzer *analyzer_impl) Analyze() (Stats, error) {
	var stats Stats
	if analyzer.config.IsVerbose() {
		log.Printf("Import entries from BibTeX file '%s'.\n", analyzer.config.BibtexFilename())
	}
	bytes, err := os.ReadFile(analyzer.config.BibtexFilename())
	if err != nil {
		return stats, err
	}
	records, err := bibtex.Parse(string(bytes))
	if err != nil {
		return stats, err
	}
	keys := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	errCnt := 0
	for _, record := range records {
		if seen[record.Entry.Key()] {
			log.Printf("WARN: Ignore duplicate entry '%s'.\n", record.Entry.Key())
			continue
		}
		seen[record.Entry.Key()] = true
		keys = append(keys, record.Entry.Key())
		skipped, err := analyzer.db.Store(record.Entry, hashEntry(record.Raw))
		if err != nil {
			log.Printf("ERROR: Failed to store entry '%s': %s\n", record.Entry.Key(), err.Error())
			errCnt++
			continue
		}
		if skipped {
			stats.Skipped++
			continue
		}
		stats.Inserted++
		for _, search := range analyzer.config.MatchingSearches(record.Entry) {
			stats.Matched++
			if err := analyzer.hook.Fire(search, record.Entry); err != nil {
				errCnt++
			}
		}
	}
	stats.Deleted, err = analyzer.db.Retain(keys)
	if analyzer.config.IsVerbose() && (stats.Inserted > 0 || stats.Deleted > 0 || errCnt > 0) {
		log.Printf("Inserted %d entries. Skipped %d entries. Deleted %d entries. %d search matches. Errors occurred in %d entries.\n",
			stats.Inserted, stats.Skipped, stats.Deleted, stats.Matched, errCnt)
	}
	return stats, err
}

func (analyzer *analyzer_impl) Search(r rule.Rule, query string) ([]entry.Entry, error) {
	entries, err := analyzer.db.Entries()
	if err != nil {
		return nil, err
	}
	var ret []entry.Entry
	for _, e := range entries {
		matches, err := r.Apply(query, e)
		if err != nil {
			return nil, err
		}
		if matches {
			ret = append(ret, e)
		}
	}
	return ret, nil
}

func hashEntry(raw string) string {
	hasher := md5.New()
	hasher.Write([]byte(raw))
	return hex.EncodeToString(hasher.Sum(nil))
}
