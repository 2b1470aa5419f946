package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nylssoft/bibsearch/internal/analyzer"
	"github.com/nylssoft/bibsearch/internal/config"
	"github.com/nylssoft/bibsearch/internal/database"
	"github.com/nylssoft/bibsearch/internal/hook"
	"github.com/nylssoft/bibsearch/internal/rule"
)

var flagConfig = flag.String("config", "", "config file")
var flagQuery = flag.String("query", "", "search expression, e.g. author = smith AND year == 2020")
var flagFilter = flag.String("filter", "", "name of a saved search or filter")
var flagCase = flag.Bool("case", false, "case sensitive search")
var flagRegex = flag.Bool("regex", false, "use regular expressions")
var flagExplain = flag.Bool("explain", false, "print the parsed search expression")
var flagWatch = flag.Bool("watch", false, "watch the BibTeX file and evaluate saved searches on changes")

func main() {
	flag.Parse()
	if len(*flagConfig) == 0 {
		fmt.Println("Usage: bibsearch -config <config-file> [-query <expression> [-case] [-regex] [-explain] | -filter <name> | -watch]")
		os.Exit(1)
	}
	os.Exit(run())
}

// run returns the exit code, deferred cleanup is done before the process exits.
func run() int {
	cfg := config.NewConfig()
	err := cfg.Init(*flagConfig)
	if err != nil {
		fmt.Println("ERROR:", err)
		return 1
	}
	db := database.NewDatabase(cfg.DatabaseFilename())
	defer db.Close()
	command, args := cfg.HookCommand()
	a := analyzer.NewAnalyzer(cfg, db, hook.NewHook(hook.NewExecuter(), command, args))
	if *flagWatch {
		watch(cfg, a)
		return 0
	}
	if _, err = a.Analyze(); err != nil {
		fmt.Println("ERROR: Failed to import BibTeX file.", err)
		return 1
	}
	if err = search(cfg, a); err != nil {
		fmt.Println("ERROR:", err)
		return 1
	}
	return 0
}

func search(cfg config.Config, a analyzer.Analyzer) error {
	var r rule.Rule
	query := *flagQuery
	if len(*flagFilter) > 0 {
		var ok bool
		r, ok = cfg.Rule(*flagFilter)
		if !ok {
			return fmt.Errorf("unknown search or filter '%s'", *flagFilter)
		}
	} else {
		gr := rule.NewGrammarRule(*flagCase, *flagRegex)
		if err := gr.Check(query); err != nil {
			return fmt.Errorf("invalid query '%s': %w", query, err)
		}
		if *flagExplain {
			fmt.Println(gr.Tree().String())
		}
		r = gr
	}
	entries, err := a.Search(r, query)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e.Key())
	}
	return nil
}

func watch(cfg config.Config, a analyzer.Analyzer) {
	ticker := time.NewTicker(10 * time.Second)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal("Failed to create file watcher.", err)
	}
	defer watcher.Close()
	bibFile, err := filepath.Abs(cfg.BibtexFilename())
	if err != nil {
		log.Fatal("Failed to resolve BibTeX filename.", err)
	}
	shutdown := make(chan bool, 1)
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		// import once on startup
		update := true
	loop:
		for {
			select {
			case sig := <-stop:
				log.Printf("Shutdown signal %v received.\n", sig)
				shutdown <- true
				break loop
			case event := <-watcher.Events:
				if !update && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && event.Name == bibFile {
					update = true
					if cfg.IsVerbose() {
						log.Println("Detected modified BibTeX file. Import entries on next schedule.")
					}
				}
			case <-ticker.C:
				if update {
					update = false
					if _, err := a.Analyze(); err != nil {
						log.Println("ERROR: Failed to import BibTeX file.", err)
					}
				}
			case err := <-watcher.Errors:
				log.Println("ERROR: Failed to watch directory.", err)
			}
		}
	}()
	err = watcher.Add(filepath.Dir(bibFile))
	if err != nil {
		log.Fatal("Failed to add directory to file watcher.", err)
	}
	<-shutdown
}
