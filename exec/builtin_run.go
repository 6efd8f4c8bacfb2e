package exec

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardenvoss/minish/builtin"
	"github.com/ardenvoss/minish/expand"
	"github.com/ardenvoss/minish/syntax"
)

// runBuiltin runs a builtin in the shell process. Its redirections are
// resolved to streams passed in builtin.IO, and files opened for them are
// closed on return; the shell's own fds are not touched.
func (e *Executor) runBuiltin(cmd *syntax.SimpleCommand, name string) (int, error) {
	fn, _ := e.Builtins.Lookup(name)

	expanded, err := expand.Command(cmd, e.ExpandConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		return 1, nil
	}
	// A builtin always has words (runPipeline routes assignment-only
	// commands to runAssignmentOnly instead), so any leading
	// assignments here are scoped to this one invocation and never
	// reach ShellState (spec §3 "for this scope only").

	stdin, stdout, stderr, restore, err := e.openRedirFiles(expanded.Redirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		return 1, nil
	}
	defer restore()

	io := builtin.IO{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	status, err := fn(expanded.Argv[1:], e.State, io)
	var exitReq *builtin.ExitRequest
	if errors.As(err, &exitReq) {
		return status, err
	}
	return status, nil
}
