package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ardenvoss/minish/shellstate"
)

func aliasBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	if len(args) == 0 {
		names := make([]string, 0, len(state.Aliases))
		for name := range state.Aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(io.Stdout, "alias %s=%s\n", name, state.Aliases[name])
		}
		return 0, nil
	}
	status := 0
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok {
			if v, exists := state.Alias(name); exists {
				fmt.Fprintf(io.Stdout, "alias %s=%s\n", name, v)
			} else {
				fmt.Fprintf(io.Stderr, "alias: %s: not found\n", name)
				status = 1
			}
			continue
		}
		state.SetAlias(name, value)
		persistIfEnabled(state.Options.PersistRCEdits, "alias", name, value)
	}
	return status, nil
}
