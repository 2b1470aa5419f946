package config

import (
	"encoding/json"
	"os"
	"path"
	"testing"
	"text/template"

	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/grammar"
	"github.com/nylssoft/bibsearch/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	LogFilename      string
	DatabaseFilename string
	BibtexFilename   string
	Searches         []configSearch
	Filters          []configFilter
}

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	filename := path.Join(tempDir, "test-invalid.json")

	// config constructor
	config := NewConfig()
	assert.NotNil(t, config)

	// file not found
	err := config.Init("fiiledoesnotexist.json")
	assert.Error(t, err)

	// json parse error
	err = os.WriteFile(filename, []byte(`content`), 0666)
	require.NoError(t, err)
	err = config.Init(filename)
	assert.Error(t, err)

	// missing log filename in config
	filename = path.Join(tempDir, "config.json")
	tc := testConfig{}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// missing database filename in config
	tc.LogFilename = path.Join(tempDir, "test.log")
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// missing bibtex filename in config
	tc.DatabaseFilename = path.Join(tempDir, "test.db")
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// bibtex file does not exist
	tc.BibtexFilename = path.Join(tempDir, "library.bib")
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// no searches at all
	err = os.WriteFile(tc.BibtexFilename, []byte(""), 0666)
	require.NoError(t, err)
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.NoError(t, err)
	assert.Empty(t, config.SearchNames())

	// missing search name
	tc.Searches = []configSearch{{Query: "title = deep"}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// missing query
	tc.Searches = []configSearch{{Name: "deep"}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// invalid query
	tc.Searches = []configSearch{{Name: "deep", Query: "title = (deep"}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.ErrorIs(t, err, grammar.ErrUnexpectedToken)

	// invalid regular expression
	tc.Searches = []configSearch{{Name: "deep", Query: `title = "deep("`, Regex: true}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.ErrorIs(t, err, pattern.ErrMalformedPattern)

	// search name reused
	tc.Searches = []configSearch{{Name: "deep", Query: "title = deep"}, {Name: "deep", Query: "year = 2020"}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// filter with unknown search
	tc.Searches = []configSearch{{Name: "deep", Query: "title = deep"}}
	tc.Filters = []configFilter{{Name: "f", Mode: "all", Searches: []string{"unknown"}}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// filter with unknown mode
	tc.Filters = []configFilter{{Name: "f", Mode: "xor", Searches: []string{"deep"}}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// filter without name
	tc.Filters = []configFilter{{Mode: "all", Searches: []string{"deep"}}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// filter name reuses search name
	tc.Filters = []configFilter{{Name: "deep", Mode: "all", Searches: []string{"deep"}}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.Error(t, err)

	// valid config, no error
	tc.Filters = []configFilter{{Name: "f", Mode: "any", Searches: []string{"deep"}}}
	createConfigFile(t, filename, tc)
	err = config.Init(filename)
	assert.NoError(t, err)
	assert.True(t, config.IsVerbose())
	assert.Equal(t, tc.BibtexFilename, config.BibtexFilename())
	assert.Equal(t, tc.DatabaseFilename, config.DatabaseFilename())
	assert.Equal(t, []string{"deep", "f"}, config.SearchNames())
	command, args := config.HookCommand()
	assert.Equal(t, "echo", command)
	assert.Equal(t, []string{"{search}", "{key}"}, args)
	_, ok := config.Rule("f")
	assert.True(t, ok)
	_, ok = config.Rule("unknown")
	assert.False(t, ok)
}

func TestMatchingSearches(t *testing.T) {
	// prepare valid config
	tempDir := t.TempDir()
	filename := path.Join(tempDir, "config.json")
	tc := testConfig{
		LogFilename:      path.Join(tempDir, "test.log"),
		DatabaseFilename: path.Join(tempDir, "test.db"),
		BibtexFilename:   path.Join(tempDir, "library.bib"),
		Searches: []configSearch{
			{Name: "deep", Query: "title = deep"},
			{Name: "Deep", Query: "title = Deep", CaseSensitive: true},
			{Name: "recent", Query: `year == "20[2-9][0-9]"`, Regex: true},
			{Name: "no-books", Query: "NOT entrytype == book"},
		},
		Filters: []configFilter{
			{Name: "deep-and-recent", Mode: "all", Searches: []string{"deep", "recent"}},
			{Name: "deep-or-recent", Mode: "any", Searches: []string{"Deep", "recent"}},
			{Name: "nested", Mode: "all", Searches: []string{"deep-or-recent", "no-books"}},
			{Name: "nothing", Mode: "any"},
			{Name: "everything", Mode: "all"},
		},
	}
	err := os.WriteFile(tc.BibtexFilename, []byte(""), 0666)
	require.NoError(t, err)
	createConfigFile(t, filename, tc)
	config := NewConfig()
	err = config.Init(filename)
	require.NoError(t, err)

	e := entry.NewEntry("lecun2015", "article")
	require.NoError(t, e.SetField("title", "deep learning"))
	require.NoError(t, e.SetField("year", "2015"))
	assert.Equal(t, []string{"deep", "no-books", "everything"}, config.MatchingSearches(e))

	e = entry.NewEntry("x2021", "book")
	require.NoError(t, e.SetField("title", "Deep Learning"))
	require.NoError(t, e.SetField("year", "2021"))
	assert.Equal(t, []string{"deep", "Deep", "recent", "deep-and-recent", "deep-or-recent", "everything"}, config.MatchingSearches(e))
}

func createConfigFile(t *testing.T, configFilename string, tc testConfig) {
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
    "Hook": {
        "Command": "echo",
        "Args": ["{search}", "{key}"]
    },
    "Searches": {{json .Searches}},
    "Filters": {{json .Filters}}
    }`
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
	err = tmpl.Execute(file, tc)
	require.NoError(t, err)
	file.Close()
}
