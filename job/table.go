package job

import "sync"

// Table is the registry contract from spec §4.4: register, list, fg/bg,
// and reap_done, all safe for concurrent use since on_sigchld runs from a
// signal-driven goroutine while the main loop calls the rest.
type Table struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   map[int]*Job
	nextID int
}

func NewTable() *Table {
	t := &Table{jobs: map[int]*Job{}, nextID: 1}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Register atomically adds a new job and returns its id.
func (t *Table) Register(pgid int, procs []*Process, foreground bool, cmdline string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.jobs[id] = &Job{
		ID:          id,
		Pgid:        pgid,
		State:       Running,
		Processes:   procs,
		Foreground:  foreground,
		CommandLine: cmdline,
	}
	return id
}

// Get returns the job with the given id, if any.
func (t *Table) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	return j, ok
}

// byPgidLocked finds the job that owns the process with this pid, used by
// the SIGCHLD reap loop to map a reaped pid back to its job. The caller
// holds t.mu.
func (t *Table) byPgidLocked(pid int) *Job {
	for _, j := range t.jobs {
		for _, p := range j.Processes {
			if p.Pid == pid {
				return j
			}
		}
	}
	return nil
}

// UpdateProcess records a terminated or stopped child's status and
// recomputes its job's aggregate State. Called from the reap loop with one
// (pid, status) pair per terminated/stopped child.
func (t *Table) UpdateProcess(pid, status int, stopped, signaled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j := t.byPgidLocked(pid)
	if j == nil {
		return
	}
	for _, p := range j.Processes {
		if p.Pid != pid {
			continue
		}
		if stopped {
			p.Stopped = true
		} else {
			p.Exited = true
			p.Stopped = false
			p.LastStatus = status
		}
	}
	j.State = aggregateState(j.Processes)
	t.cond.Broadcast()
}

func aggregateState(procs []*Process) State {
	anyRunning, anyStopped := false, false
	for _, p := range procs {
		if !p.Exited && !p.Stopped {
			anyRunning = true
		}
		if p.Stopped {
			anyStopped = true
		}
	}
	switch {
	case anyRunning:
		return Running
	case anyStopped:
		return Stopped
	default:
		return Done
	}
}

// List returns a snapshot of all known jobs, for the "jobs" builtin.
func (t *Table) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j)
	}
	return out
}

// ReapDone returns and removes every Done job that has not yet been
// reported, so each is surfaced to the user exactly once (spec §3
// invariant).
func (t *Table) ReapDone() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	var done []*Job
	for id, j := range t.jobs {
		if j.State == Done && !j.reported {
			j.reported = true
			done = append(done, j)
			delete(t.jobs, id)
		}
	}
	return done
}

// SetForeground flips a job between foreground and background tracking;
// Fg/Bg in the exec package call this once they've resumed the pgid with
// SIGCONT.
func (t *Table) SetForeground(id int, fg bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[id]; ok {
		j.Foreground = fg
		if fg {
			j.State = Running
		}
	}
	t.cond.Broadcast()
}

// SetRunning marks every process in a job Running again, used after a
// SIGCONT resume (fg/bg).
func (t *Table) SetRunning(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return
	}
	for _, p := range j.Processes {
		p.Stopped = false
	}
	j.State = Running
	t.cond.Broadcast()
}

// lastStatusLocked reads the rightmost process's recorded status; the
// caller must hold t.mu.
func (j *Job) lastStatusLocked() int {
	if len(j.Processes) == 0 {
		return 0
	}
	return j.Processes[len(j.Processes)-1].LastStatus
}

// WaitUntilSettled blocks until job id leaves the Running state (either
// Stopped by a signal or Done), returning its new state and rightmost
// exit status. Only the Reaper calls wait4; this just observes the
// table. Returns ok=false if the job is already gone (already reaped).
func (t *Table) WaitUntilSettled(id int) (state State, lastStatus int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		j, exists := t.jobs[id]
		if !exists {
			return Done, 0, false
		}
		if j.State != Running {
			return j.State, j.lastStatusLocked(), true
		}
		t.cond.Wait()
	}
}

// WaitUntilDone blocks past any number of Stopped/Running transitions
// until job id reaches Done, for background pipelines: a backgrounded
// job that gets stopped (e.g. "kill -STOP") isn't finished yet, unlike
// the foreground case where WaitUntilSettled must return control to the
// REPL on a stop.
func (t *Table) WaitUntilDone(id int) (lastStatus int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		j, exists := t.jobs[id]
		if !exists {
			return 0
		}
		if j.State == Done {
			return j.lastStatusLocked()
		}
		t.cond.Wait()
	}
}
