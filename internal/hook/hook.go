package hook

import (
	"github.com/nylssoft/bibsearch/internal/entry"
)

// Runs an external command.
type Executer interface {
	Exec(cmdName string, args ...string) ([]byte, error)
}

// Notifies about newly imported entries that match a saved search.
//
// The command arguments may contain the placeholders {search}, {key} and {type}
// which are replaced by the name of the matching search, the citation key and
// the entry type. An empty command disables the hook.
//
// Use NewHook to create a new hook object.
type Hook interface {
	// Runs the command for the search and entry.
	Fire(search string, e entry.Entry) error
	// Returns how often the command was run successfully.
	Fired() int
}

// Creates a new hook that runs the command with the executer.
func NewHook(executer Executer, command string, args []string) Hook {
	var h hook_impl
	h.executer = executer
	h.command = command
	h.args = args
	return &h
}

// Creates an executer that runs operating system commands.
func NewExecuter() Executer {
	var e executer_impl
	return &e
}
