package exec

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ardenvoss/minish/expand"
)

// streams is the resolved {stdin, stdout, stderr} triple for one command,
// built by applying its redirections in order (spec §4.5: "redirections
// open files and dup2 in the order given, with 2>&1 evaluated against the
// *current* stdout").
type streams struct {
	in      io.Reader
	out     io.Writer
	err     io.Writer
	closers []io.Closer
}

func (s *streams) close() {
	for _, c := range s.closers {
		c.Close()
	}
}

// buildStreams starts from the executor's own stdio (or the command
// substitution capture pipe, via e.stdout()) and applies each
// redirection in turn.
func (e *Executor) buildStreams(redirs []expand.ExpandedRedir) (*streams, error) {
	s := &streams{in: os.Stdin, out: e.stdout(), err: os.Stderr}
	for _, r := range redirs {
		if err := applyRedir(s, r); err != nil {
			s.close()
			return nil, err
		}
	}
	return s, nil
}

func applyRedir(s *streams, r expand.ExpandedRedir) error {
	switch r.Op {
	case "<":
		f, err := os.Open(r.Target)
		if err != nil {
			return err
		}
		s.in = f
		s.closers = append(s.closers, f)
	case ">":
		f, err := os.Create(r.Target)
		if err != nil {
			return err
		}
		assignOutput(s, r.Fd, f)
		s.closers = append(s.closers, f)
	case ">>":
		f, err := os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		assignOutput(s, r.Fd, f)
		s.closers = append(s.closers, f)
	case "&>":
		f, err := os.Create(r.Target)
		if err != nil {
			return err
		}
		s.out, s.err = f, f
		s.closers = append(s.closers, f)
	case "<<":
		s.in = strings.NewReader(r.HeredocBody)
	case "<<<":
		s.in = strings.NewReader(r.Target + "\n")
	case ">&":
		if r.Target == "-" {
			assignOutput(s, r.Fd, io.Discard)
			return nil
		}
		fd, err := strconv.Atoi(r.Target)
		if err != nil {
			return fmt.Errorf("bad fd-duplication target %q", r.Target)
		}
		assignOutput(s, r.Fd, outputByFd(s, fd))
	case "<&":
		// This shell tracks a single input stream; duplicating anything
		// other than fd 0 onto stdin has no source to copy from, so it's
		// a documented no-op beyond leaving the current stdin in place.
	default:
		return fmt.Errorf("unsupported redirection operator %q", r.Op)
	}
	return nil
}

func assignOutput(s *streams, fd int, w io.Writer) {
	if fd == 2 {
		s.err = w
		return
	}
	s.out = w
}

func outputByFd(s *streams, fd int) io.Writer {
	if fd == 2 {
		return s.err
	}
	return s.out
}

// openRedirFiles adapts buildStreams for the builtin fast path, which
// needs a restore closure rather than a struct (builtins never own
// process-wide fds, so "restore" just means "close whatever files this
// redirection opened").
func (e *Executor) openRedirFiles(redirs []expand.ExpandedRedir) (io.Reader, io.Writer, io.Writer, func(), error) {
	s, err := e.buildStreams(redirs)
	if err != nil {
		return nil, nil, nil, func() {}, err
	}
	return s.in, s.out, s.err, s.close, nil
}
