package builtin

import (
	"fmt"
	"strings"

	"github.com/ardenvoss/minish/shellstate"
)

func exportBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	if len(args) == 0 {
		for _, kv := range state.Environ() {
			fmt.Fprintf(io.Stdout, "export %s\n", kv)
		}
		return 0, nil
	}
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok {
			// "export NAME" with no "=value" exports the variable's
			// current shell-local value, if any.
			value, _ = state.Lookup(name)
		}
		state.Export(name, value)
		persistIfEnabled(state.Options.PersistRCEdits, "export", name, value)
	}
	return 0, nil
}
