//go:build unix

package exec

import (
	"fmt"
	"os"
	goexec "os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ardenvoss/minish/expand"
	"github.com/ardenvoss/minish/job"
	"github.com/ardenvoss/minish/syntax"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// runExternalPipeline implements spec §4.5 "Pipeline spawn" for N
// external commands, grounded on mvdan-sh's interp/handler_unix.go
// SysProcAttr{Setpgid: true} pattern, generalized from "one command" to
// "N commands sharing one process group".
func (e *Executor) runExternalPipeline(pl *syntax.Pipeline) (int, error) {
	n := len(pl.Commands)
	expandedCmds := make([]*expand.Expanded, n)
	for i, cmd := range pl.Commands {
		exp, err := expand.Command(cmd, e.ExpandConfig())
		if err != nil {
			return 1, err
		}
		if len(exp.Argv) == 0 {
			return 1, fmt.Errorf("expand: assignment-only pipeline stage has no command")
		}
		expandedCmds[i] = exp
	}

	cmds := make([]*goexec.Cmd, n)
	streamSets := make([]*streams, n)
	var pipeReaders, pipeWriters []*os.File

	for i, exp := range expandedCmds {
		argv := e.Transform(exp.Argv)
		c := goexec.Command(argv[0], argv[1:]...)
		c.Env = mergeAssignmentEnv(e.State.Environ(), exp.Assignments)
		c.Dir = e.State.Cwd

		st, err := e.buildStreams(exp.Redirs)
		if err != nil {
			closeAll(cmds[:i])
			return 1, &SpawnError{Argv: argv, Err: err}
		}
		streamSets[i] = st
		c.Stdin, c.Stdout, c.Stderr = st.in, st.out, st.err

		if i > 0 {
			r, w, err := os.Pipe()
			if err != nil {
				closeAll(cmds[:i])
				return 1, &SpawnError{Argv: argv, Err: err}
			}
			pipeReaders = append(pipeReaders, r)
			pipeWriters = append(pipeWriters, w)
			cmds[i-1].Stdout = w
			c.Stdin = r
		}

		c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		cmds[i] = c
	}

	// No signal dispositions are reset here. Exec resets caught signals to
	// default but keeps ignored ones; the shell's ignore-while-prompting
	// policy (spec §4.5 "Interactive signal policy") is undone by
	// cmd/minish's REPL (restoreExecSignals) right after a line is read,
	// before anything is spawned.

	for i, c := range cmds {
		if err := c.Start(); err != nil {
			closeAll(cmds[:i])
			return 1, &SpawnError{Argv: c.Args, Err: err}
		}
		if i == 0 {
			continue
		}
		// Parent also sets each child's pgid, closing the fork/setpgid
		// race described in spec §4.5 step 2.
		_ = unix.Setpgid(c.Process.Pid, cmds[0].Process.Pid)
	}
	pgid := cmds[0].Process.Pid

	for _, r := range pipeReaders {
		r.Close()
	}
	for _, w := range pipeWriters {
		w.Close()
	}

	procs := make([]*job.Process, n)
	for i, c := range cmds {
		procs[i] = &job.Process{Pid: c.Process.Pid, CmdString: c.Args[0]}
	}
	cmdline := syntax.Print(&syntax.Sequence{Items: []syntax.SeqItem{{Pipeline: pl, Connector: syntax.EndConn}}})

	if pl.Background {
		id := e.State.Jobs.Register(pgid, procs, false, cmdline)
		fmt.Fprintf(os.Stdout, "[%d] %d\n", id, pgid)
		go e.reapInBackground(streamSets, id)
		return 0, nil
	}

	id := e.State.Jobs.Register(pgid, procs, true, cmdline)
	status := e.waitForeground(streamSets, pgid, id)
	return status, nil
}

// waitForeground transfers the controlling terminal to pgid, blocks until
// the job table reports the job Stopped or Done, then restores the
// shell's own pgid as foreground (spec §4.5 step 5, §5 "Shared
// resources"). It never calls os/exec's Wait: job.Reaper is the sole
// wait4 caller (spec §4.4's single SIGCHLD handler); a second caller
// here would race it for the same child's exit status.
func (e *Executor) waitForeground(sets []*streams, pgid, jobID int) int {
	tty, shellPgid, canControlTTY := ttyHandles()
	if canControlTTY {
		setForegroundPgrp(tty, pgid)
	}

	state, status, _ := e.State.Jobs.WaitUntilSettled(jobID)

	for _, s := range sets {
		s.close()
	}

	if canControlTTY {
		setForegroundPgrp(tty, shellPgid)
	}

	if state == job.Done {
		e.State.Jobs.ReapDone()
	}
	return status
}

// setForegroundPgrp reassigns the controlling terminal's foreground
// process group (TIOCSPGRP). A process outside the foreground group
// raises SIGTTOU against itself for this call (POSIX tcsetpgrp
// semantics), so SIGTTOU is ignored only around the ioctl and restored
// right after; children forked later still see the default disposition.
func setForegroundPgrp(tty *os.File, pgid int) {
	signal.Ignore(syscall.SIGTTOU)
	unix.IoctlSetPointerInt(int(tty.Fd()), unix.TIOCSPGRP, pgid)
	signal.Reset(syscall.SIGTTOU)
}

// reapInBackground waits for a backgrounded job to finish (surviving any
// number of stop/continue cycles) and releases its redirected streams
// once the job table confirms Done, again never calling os/exec's Wait
// directly.
func (e *Executor) reapInBackground(sets []*streams, jobID int) {
	e.State.Jobs.WaitUntilDone(jobID)
	for _, s := range sets {
		s.close()
	}
}

// mergeAssignmentEnv overlays a command's own leading "NAME=value"
// assignments onto the shell's environment, scoping them to this one
// child (spec §3 "for this scope only") rather than ShellState. Any
// existing entry for the same name is dropped first so the assignment
// wins regardless of how the child's libc resolves duplicate keys.
func mergeAssignmentEnv(base []string, assignments map[string]string) []string {
	if len(assignments) == 0 {
		return base
	}
	env := make([]string, 0, len(base)+len(assignments))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, overridden := assignments[name]; overridden {
			continue
		}
		env = append(env, kv)
	}
	for name, value := range assignments {
		env = append(env, name+"="+value)
	}
	return env
}

func closeAll(cmds []*goexec.Cmd) {
	for _, c := range cmds {
		if c.Process != nil {
			c.Process.Kill()
		}
	}
}

// ttyHandles returns the controlling terminal and the shell's own pgid,
// or ok=false when stdin isn't a terminal (piped/non-interactive mode),
// in which case foreground job control is skipped entirely.
func ttyHandles() (tty *os.File, shellPgid int, ok bool) {
	if !isTerminal(os.Stdin.Fd()) {
		return nil, 0, false
	}
	pgid, err := unix.Getpgid(os.Getpid())
	if err != nil {
		return nil, 0, false
	}
	return os.Stdin, pgid, true
}

func isTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}
