//go:build unix

package job

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// Reaper drains SIGCHLD notifications and feeds terminated/stopped child
// status back into a Table. It implements the "minimum work in the
// handler" discipline from spec §4.4/§9: Go's os/signal already does the
// self-pipe trick for us, so the handler side is just a buffered channel;
// the actual non-blocking waitpid loop runs on the goroutine Start launches.
type Reaper struct {
	Table *Table
	sigCh chan os.Signal
	done  chan struct{}
}

// NewReaper installs the SIGCHLD notification channel. Call Start to begin
// draining it.
func NewReaper(t *Table) *Reaper {
	r := &Reaper{Table: t, sigCh: make(chan os.Signal, 4), done: make(chan struct{})}
	signal.Notify(r.sigCh, syscall.SIGCHLD)
	return r
}

// Start runs the reap loop in a goroutine until Stop is called.
func (r *Reaper) Start() {
	go func() {
		for {
			select {
			case <-r.sigCh:
				r.Drain()
			case <-r.done:
				return
			}
		}
	}()
}

func (r *Reaper) Stop() {
	signal.Stop(r.sigCh)
	close(r.done)
}

// Drain reaps every terminated or stopped child it can find without
// blocking ("no-hang, any child, also stopped"), as spec §4.4 requires.
// Start's goroutine calls it on every SIGCHLD notification.
func (r *Reaper) Drain() {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err != nil || pid <= 0 {
			return
		}
		switch {
		case ws.Stopped():
			r.Table.UpdateProcess(pid, 0, true, false)
		case ws.Continued():
			// nothing to record; SetRunning already flips this on resume.
		case ws.Signaled():
			r.Table.UpdateProcess(pid, 128+int(ws.Signal()), false, true)
		default:
			r.Table.UpdateProcess(pid, ws.ExitStatus(), false, false)
		}
	}
}
