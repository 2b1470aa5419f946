package analyzer

import (
	"encoding/json"
	"errors"
	"os"
	"path"
	"testing"
	"text/template"

	"github.com/nylssoft/bibsearch/internal/config"
	"github.com/nylssoft/bibsearch/internal/database"
	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/grammar"
	"github.com/nylssoft/bibsearch/internal/hook"
	"github.com/nylssoft/bibsearch/internal/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExecuter struct {
	err   error
	calls [][]string
}

func (e *mockExecuter) Exec(cmdName string, args ...string) ([]byte, error) {
	e.calls = append(e.calls, args)
	return nil, e.err
}

const library = `
@article{lecun2015,
  author = {LeCun, Yann and Bengio, Yoshua and Hinton, Geoffrey},
  title  = {Deep Learning},
  year   = {2015}
}

@book{goodfellow2016,
  author    = {Goodfellow, Ian and Bengio, Yoshua and Courville, Aaron},
  title     = {Deep Learning},
  publisher = {MIT Press},
  year      = {2016}
}
`

func setup(t *testing.T) (string, config.Config, database.Database) {
	tempDir := t.TempDir()
	filename := path.Join(tempDir, "config.json")
	bibfile := path.Join(tempDir, "library.bib")
	logfile := path.Join(tempDir, "test.log")
	dbfile := path.Join(tempDir, "test.db")
	err := os.WriteFile(bibfile, []byte(""), 0666)
	require.NoError(t, err)
	createConfigFile(t, filename, logfile, dbfile, bibfile, "books", "entrytype == book", "bengio", "author = bengio")

	cfg := config.NewConfig()
	err = cfg.Init(filename)
	require.Nil(t, err)
	db := database.NewDatabase(dbfile)
	t.Cleanup(db.Close)
	return bibfile, cfg, db
}

func TestAnalyze(t *testing.T) {
	bibfile, cfg, db := setup(t)
	e := mockExecuter{}
	analyzer := NewAnalyzer(cfg, db, hook.NewHook(&e, "notify", []string{"{search}", "{key}"}))
	assert.NotNil(t, analyzer)

	// empty file
	stats, err := analyzer.Analyze()
	assert.Nil(t, err)
	assert.Equal(t, Stats{}, stats)

	// insert entries and fire hook for every match
	err = os.WriteFile(bibfile, []byte(library), 0666)
	require.NoError(t, err)
	stats, err = analyzer.Analyze()
	assert.Nil(t, err)
	assert.Equal(t, Stats{Inserted: 2, Matched: 3}, stats)
	assert.Equal(t, [][]string{{"bengio", "lecun2015"}, {"books", "goodfellow2016"}, {"bengio", "goodfellow2016"}}, e.calls)

	// skip unchanged entries
	stats, err = analyzer.Analyze()
	assert.Nil(t, err)
	assert.Equal(t, Stats{Skipped: 2}, stats)

	// changed entry is evaluated again, removed entry is deleted
	err = os.WriteFile(bibfile, []byte(`@article{lecun2015, author = {LeCun, Yann}, title = {Deep Learning}}`), 0666)
	require.NoError(t, err)
	e.calls = nil
	stats, err = analyzer.Analyze()
	assert.Nil(t, err)
	assert.Equal(t, Stats{Inserted: 1, Deleted: 1}, stats)
	assert.Empty(t, e.calls)

	// hook errors do not stop the import
	err = os.WriteFile(bibfile, []byte(library), 0666)
	require.NoError(t, err)
	e.err = errors.New("simulate error")
	stats, err = analyzer.Analyze()
	assert.Nil(t, err)
	assert.Equal(t, Stats{Inserted: 2, Matched: 3}, stats)

	// parse error
	err = os.WriteFile(bibfile, []byte(`@article{broken, title = {x}`), 0666)
	require.NoError(t, err)
	_, err = analyzer.Analyze()
	assert.Error(t, err)

	// missing file
	require.NoError(t, os.Remove(bibfile))
	_, err = analyzer.Analyze()
	assert.Error(t, err)
}

func TestAnalyzeDuplicateKeys(t *testing.T) {
	bibfile, cfg, db := setup(t)
	e := mockExecuter{}
	analyzer := NewAnalyzer(cfg, db, hook.NewHook(&e, "notify", []string{"{search}", "{key}"}))
	err := os.WriteFile(bibfile, []byte(`
@book{k, author = {Bengio, Yoshua}, title = {First}}
@book{k, author = {Hinton, Geoffrey}, title = {Second}}
@article{a, author = {Bengio, Yoshua}}
`), 0666)
	require.NoError(t, err)

	// first occurrence wins
	stats, err := analyzer.Analyze()
	assert.Nil(t, err)
	assert.Equal(t, Stats{Inserted: 2, Matched: 3}, stats)
	assert.Equal(t, [][]string{{"books", "k"}, {"bengio", "k"}, {"bengio", "a"}}, e.calls)

	// unchanged file is skipped on every later import
	e.calls = nil
	for i := 0; i < 3; i++ {
		stats, err = analyzer.Analyze()
		assert.Nil(t, err)
		assert.Equal(t, Stats{Skipped: 2}, stats)
	}
	assert.Empty(t, e.calls)

	entries, err := db.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	title, ok := entries[1].Field("title")
	assert.True(t, ok)
	assert.Equal(t, "k", entries[1].Key())
	assert.Equal(t, "First", title)
}

func TestSearch(t *testing.T) {
	bibfile, cfg, db := setup(t)
	err := os.WriteFile(bibfile, []byte(library), 0666)
	require.NoError(t, err)
	analyzer := NewAnalyzer(cfg, db, hook.NewHook(&mockExecuter{}, "", nil))
	_, err = analyzer.Analyze()
	require.NoError(t, err)

	r := rule.NewGrammarRule(false, false)
	entries, err := analyzer.Search(r, "title == \"deep learning\" AND year = 2016")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "goodfellow2016", entries[0].Key())

	entries, err = analyzer.Search(r, "publisher != press")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lecun2015", entries[0].Key())

	_, err = analyzer.Search(r, "publisher !=")
	assert.ErrorIs(t, err, grammar.ErrUnexpectedEOF)

	// configured searches combined in a rule set
	books, ok := cfg.Rule("books")
	require.True(t, ok)
	bengio, ok := cfg.Rule("bengio")
	require.True(t, ok)
	entries, err = analyzer.Search(rule.NewRuleSet(rule.All, books, bengio), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"goodfellow2016"}, keys(entries))
	entries, err = analyzer.Search(rule.NewRuleSet(rule.Any, books, bengio), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"goodfellow2016", "lecun2015"}, keys(entries))
}

func keys(entries []entry.Entry) []string {
	var ret []string
	for _, e := range entries {
		ret = append(ret, e.Key())
	}
	return ret
}

func createConfigFile(t *testing.T, configFilename, logFilename, databaseFilename, bibtexFilename, searchName1, searchQuery1, searchName2, searchQuery2 string) {
	data := `{
    "Bibtex": {
        "Filename": {{json .BibtexFilename}}
    },
    "Database": {
        "Filename": {{json .DatabaseFilename}}
    },
    "Logger": {
        "Filename": {{json .LogFilename}},
        "MaxSize": 10,
        "MaxAge": 7,
        "Verbose": true
    },
    "Searches": [
        {
            "name": {{json .SearchName1}},
            "query": {{json .SearchQuery1}}
        },
        {
            "name": {{json .SearchName2}},
            "query": {{json .SearchQuery2}}
        }
    ]}`
	funcs := template.FuncMap{
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
	}
	tmpl, err := template.New("test").Funcs(funcs).Parse(data)
	require.NoError(t, err)
	file, err := os.Create(configFilename)
	require.NoError(t, err)
	var a struct {
		BibtexFilename   string
		DatabaseFilename string
		LogFilename      string
		SearchName1      string
		SearchQuery1     string
		SearchName2      string
		SearchQuery2     string
	}
	a.BibtexFilename = bibtexFilename
	a.DatabaseFilename = databaseFilename
	a.LogFilename = logFilename
	a.SearchName1 = searchName1
	a.SearchQuery1 = searchQuery1
	a.SearchName2 = searchName2
	a.SearchQuery2 = searchQuery2
	err = tmpl.Execute(file, a)
	require.NoError(t, err)
	file.Close()
}
