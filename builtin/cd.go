package builtin

import (
	"fmt"
	"os/user"

	"github.com/ardenvoss/minish/shellstate"
)

func cdBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	dir, err := cdTarget(args, state)
	if err != nil {
		fmt.Fprintf(io.Stderr, "cd: %v\n", err)
		return 1, nil
	}
	if err := state.Chdir(dir); err != nil {
		fmt.Fprintf(io.Stderr, "cd: %v\n", err)
		return 1, nil
	}
	return 0, nil
}

// cdTarget resolves "cd" (home), "cd -" (OLDPWD), and "cd DIR" in that
// order, matching conventional shell behavior for the bare-argument cases
// spec §4.5's builtin list implies "cd" must support.
func cdTarget(args []string, state *shellstate.State) (string, error) {
	if len(args) == 0 {
		if home, ok := state.Lookup("HOME"); ok && home != "" {
			return home, nil
		}
		if u, err := user.Current(); err == nil {
			return u.HomeDir, nil
		}
		return "", fmt.Errorf("HOME not set")
	}
	if args[0] == "-" {
		if state.OldCwd == "" {
			return "", fmt.Errorf("OLDPWD not set")
		}
		return state.OldCwd, nil
	}
	return args[0], nil
}
