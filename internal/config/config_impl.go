package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/rule"
	"gopkg.in/natefinch/lumberjack.v2"
)

type configSearch struct {
	Name          string `json:"name"`
	Query         string `json:"query"`
	CaseSensitive bool   `json:"caseSensitive"`
	Regex         bool   `json:"regex"`
}

type configFilter struct {
	Name     string   `json:"name"`
	Mode     string   `json:"mode"`
	Searches []string `json:"searches"`
}

type config_impl struct {
	rules  map[string]rule.Rule
	names  []string
	Bibtex struct {
		Filename string `json:"filename"`
	} `json:"bibtex"`
	Database struct {
		Filename string `json:"filename"`
	} `json:"database"`
	Logger struct {
		Filename string `json:"filename"`
		MaxSize  int    `json:"maxsize"`
		MaxAge   int    `json:"maxage"`
		Verbose  bool   `json:"verbose"`
	} `json:"logger"`
	Hook struct {
		Command string   `json:"command"`
		Args    []string `json:"args"`
	} `json:"hook"`
	Searches []configSearch `json:"searches"`
	Filters  []configFilter `json:"filters"`
}

func (cfg *config_impl) Init(filename string) error {
	*cfg = config_impl{}
	data, err := os.ReadFile(filename)
	if err == nil {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return err
	}
	fmt.Println("Imports BibTeX entries into a sqlite database and evaluates saved searches.")
	fmt.Println("  config file     :", filename)
	fmt.Println("  log file        :", cfg.Logger.Filename)
	fmt.Println("  bibtex file     :", cfg.Bibtex.Filename)
	fmt.Println("  sqlite database :", cfg.Database.Filename)
	err = canWriteFile(cfg.Logger.Filename, "log")
	if err == nil {
		err = canWriteFile(cfg.Database.Filename, "database")
	}
	if err == nil {
		err = canReadFile(cfg.Bibtex.Filename, "bibtex")
	}
	if err == nil {
		err = cfg.updateRules()
	}
	if err != nil {
		return err
	}
	log.SetOutput(&lumberjack.Logger{
		Filename: cfg.Logger.Filename,
		MaxSize:  cfg.Logger.MaxSize,
		MaxAge:   cfg.Logger.MaxAge,
		Compress: true})
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
	log.Println("bibsearch version 0.1.0")
	log.Println()
	log.Println("Saved searches:")
	for _, search := range cfg.Searches {
		log.Printf("  %s: %s (case sensitive: %t, regex: %t)\n", search.Name, search.Query, search.CaseSensitive, search.Regex)
	}
	log.Println()
	log.Println("Filters:")
	for _, filter := range cfg.Filters {
		log.Printf("  %s: %s of %v\n", filter.Name, filter.Mode, filter.Searches)
	}
	log.Println()
	return nil
}

func (cfg *config_impl) IsVerbose() bool {
	return cfg.Logger.Verbose
}

func (cfg *config_impl) BibtexFilename() string {
	return cfg.Bibtex.Filename
}

func (cfg *config_impl) DatabaseFilename() string {
	return cfg.Database.Filename
}

func (cfg *config_impl) HookCommand() (string, []string) {
	return cfg.Hook.Command, cfg.Hook.Args
}

func (cfg *config_impl) SearchNames() []string {
	return append([]string(nil), cfg.names...)
}

func (cfg *config_impl) Rule(name string) (rule.Rule, bool) {
	r, ok := cfg.rules[name]
	return r, ok
}

func (cfg *config_impl) MatchingSearches(e entry.Entry) []string {
	var ret []string
	for _, name := range cfg.names {
		matches, err := cfg.rules[name].Apply("", e)
		if err != nil {
			log.Printf("ERROR: Failed to evaluate search '%s' for entry '%s': %s\n", name, e.Key(), err.Error())
			continue
		}
		if matches {
			log.Printf("Entry '%s' matches search '%s'.\n", e.Key(), name)
			ret = append(ret, name)
		}
	}
	return ret
}

func (cfg *config_impl) updateRules() error {
	cfg.rules = make(map[string]rule.Rule)
	cfg.names = nil
	for _, search := range cfg.Searches {
		r, err := parseSearch(search)
		if err == nil {
			err = cfg.addRule(search.Name, r)
		}
		if err != nil {
			return err
		}
	}
	for _, filter := range cfg.Filters {
		r, err := cfg.parseFilter(filter)
		if err == nil {
			err = cfg.addRule(filter.Name, r)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (cfg *config_impl) addRule(name string, r rule.Rule) error {
	if _, contains := cfg.rules[name]; contains {
		return fmt.Errorf("search name '%s' is not unique", name)
	}
	cfg.rules[name] = r
	cfg.names = append(cfg.names, name)
	return nil
}

func parseSearch(cs configSearch) (rule.Rule, error) {
	if len(cs.Name) == 0 {
		return nil, errors.New("missing 'name' in search definition")
	}
	if len(cs.Query) == 0 {
		return nil, fmt.Errorf("missing 'query' in search '%s'", cs.Name)
	}
	r := rule.NewGrammarRule(cs.CaseSensitive, cs.Regex)
	if err := r.Check(cs.Query); err != nil {
		return nil, fmt.Errorf("failed to parse search '%s': %w", cs.Name, err)
	}
	return rule.Bind(r, cs.Query), nil
}

func (cfg *config_impl) parseFilter(cf configFilter) (rule.Rule, error) {
	if len(cf.Name) == 0 {
		return nil, errors.New("missing 'name' in filter definition")
	}
	mode, err := rule.ParseMode(cf.Mode)
	if err != nil {
		return nil, fmt.Errorf("filter '%s': %w", cf.Name, err)
	}
	rs := rule.NewRuleSet(mode)
	for _, name := range cf.Searches {
		r, ok := cfg.rules[name]
		if !ok {
			return nil, fmt.Errorf("filter '%s' references unknown search '%s'", cf.Name, name)
		}
		rs.Add(r)
	}
	return rs, nil
}

func canReadFile(filename string, desc string) error {
	return canOpenFile(filename, desc, true)
}

func canWriteFile(filename string, desc string) error {
	return canOpenFile(filename, desc, false)
}

func canOpenFile(filename string, desc string, readonly bool) error {
	if len(filename) == 0 {
		return fmt.Errorf("missing %s filename in config", desc)
	}
	var err error
	var file *os.File
	if readonly {
		file, err = os.Open(filename)
	} else {
		file, err = os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0640)
	}
	if err == nil {
		file.Close()
	}
	return err
}
