package hook

import (
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/nylssoft/bibsearch/internal/entry"
)

type hook_impl struct {
	executer Executer
	command  string
	args     []string
	fired    int
}

type executer_impl struct{}

func (e *executer_impl) Exec(cmdName string, args ...string) ([]byte, error) {
	return exec.Command(cmdName, args...).CombinedOutput()
}

func (h *hook_impl) Fire(search string, e entry.Entry) error {
	if len(h.command) == 0 {
		return nil
	}
	replacer := strings.NewReplacer("{search}", search, "{key}", e.Key(), "{type}", e.Type())
	args := make([]string, len(h.args))
	for i, arg := range h.args {
		args[i] = replacer.Replace(arg)
	}
	res, err := h.executer.Exec(h.command, args...)
	if err != nil {
		log.Println("ERROR:", h.command, strings.Join(args, " "), err, string(res))
		return fmt.Errorf("hook command '%s' failed: %w", h.command, err)
	}
	h.fired++
	return nil
}

func (h *hook_impl) Fired() int {
	return h.fired
}
