package builtin

import (
	"strconv"

	"github.com/ardenvoss/minish/shellstate"
)

func exitBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	code := state.LastStatus
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return 2, nil
		}
		code = n & 0xff
	}
	return code, &ExitRequest{Code: code}
}

func trueBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	return 0, nil
}

func falseBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	return 1, nil
}
