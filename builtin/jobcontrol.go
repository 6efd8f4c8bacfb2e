package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardenvoss/minish/shellstate"
)

// Resumer continues a stopped job's process group with SIGCONT and,
// for fg, transfers the controlling terminal to it and blocks until the
// job is done or stopped again. It is supplied by the exec package
// (which owns pgid/tty syscalls) to keep builtin free of unix-specific
// code, mirroring expand.CmdSubstFunc's cross-package hook pattern.
type Resumer func(jobID int, foreground bool) error

// resumer is package-level because Func's signature (fixed by the
// registry contract) has no room for extra dependencies; Configure sets
// it once during shell startup, before any command runs.
var resumer Resumer

// Configure installs the Resumer hook. Called once from cmd/minish's
// startup wiring.
func Configure(r Resumer) {
	resumer = r
}

func jobsBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	jobs := state.Jobs.List()
	for _, j := range jobs {
		fmt.Fprintf(io.Stdout, "[%d] %s\t%s\n", j.ID, j.State, j.CommandLine)
	}
	return 0, nil
}

func fgBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	return resumeJob(args, state, io, true)
}

func bgBuiltin(args []string, state *shellstate.State, io IO) (int, error) {
	return resumeJob(args, state, io, false)
}

func resumeJob(args []string, state *shellstate.State, io IO, foreground bool) (int, error) {
	id, err := jobArg(args, state)
	if err != nil {
		fmt.Fprintf(io.Stderr, "%v\n", err)
		return 1, nil
	}
	if resumer == nil {
		fmt.Fprintf(io.Stderr, "job control is not available\n")
		return 1, nil
	}
	if err := resumer(id, foreground); err != nil {
		fmt.Fprintf(io.Stderr, "%v\n", err)
		return 1, nil
	}
	return 0, nil
}

// jobArg parses "%N"/"N", defaulting to the most recently registered job
// when no argument is given (conventional shell behavior for bare
// "fg"/"bg").
func jobArg(args []string, state *shellstate.State) (int, error) {
	if len(args) == 0 {
		jobs := state.Jobs.List()
		if len(jobs) == 0 {
			return 0, fmt.Errorf("no current job")
		}
		best := jobs[0]
		for _, j := range jobs[1:] {
			if j.ID > best.ID {
				best = j
			}
		}
		return best.ID, nil
	}
	spec := strings.TrimPrefix(args[0], "%")
	id, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid job spec %q", args[0])
	}
	return id, nil
}
