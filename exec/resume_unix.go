//go:build unix

package exec

import (
	"fmt"

	"github.com/ardenvoss/minish/job"
	"golang.org/x/sys/unix"
)

// Resume implements builtin.Resumer (spec §4.5 fg/bg), the exec-side half
// of the cross-package hook wired once at startup via builtin.Configure,
// mirroring expand.CmdSubstFunc's pattern: builtin stays free of unix
// syscalls, exec owns pgid/tty here exactly as it does in
// runExternalPipeline/waitForeground.
func (e *Executor) Resume(jobID int, foreground bool) error {
	j, ok := e.State.Jobs.Get(jobID)
	if !ok {
		return fmt.Errorf("no such job %d", jobID)
	}
	if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil {
		return fmt.Errorf("resume job %d: %w", jobID, err)
	}
	e.State.Jobs.SetRunning(jobID)
	e.State.Jobs.SetForeground(jobID, foreground)

	if !foreground {
		fmt.Fprintf(e.stdout(), "[%d] %s\n", jobID, j.CommandLine)
		go e.reapBackgrounded(jobID)
		return nil
	}

	tty, shellPgid, canControlTTY := ttyHandles()
	if canControlTTY {
		setForegroundPgrp(tty, j.Pgid)
	}

	state, _, _ := e.State.Jobs.WaitUntilSettled(jobID)

	if canControlTTY {
		setForegroundPgrp(tty, shellPgid)
	}

	if state == job.Done {
		e.State.Jobs.ReapDone()
	}
	return nil
}

// reapBackgrounded waits out a job resumed with "bg". Its streams were
// already handed to reapInBackground's goroutine at registration; this
// just lets ReapDone pick it up once it finishes.
func (e *Executor) reapBackgrounded(jobID int) {
	e.State.Jobs.WaitUntilDone(jobID)
}
