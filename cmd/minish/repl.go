//go:build unix

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ardenvoss/minish/builtin"
	"github.com/ardenvoss/minish/exec"
	"github.com/ardenvoss/minish/lineedit"
	"github.com/ardenvoss/minish/shellstate"
	"github.com/ardenvoss/minish/syntax"
)

// lineReader is the "blocking read_line() -> String" collaborator from
// spec §1, satisfied either by *lineedit.Editor (interactive) or
// scannerReader (piped stdin).
type lineReader interface {
	ReadLine() (string, error)
}

// REPL drives the read-parse-execute loop (spec §6): prompt, read a
// logical line (pulling extra lines for heredocs), parse, execute, report
// status, drain finished jobs.
type REPL struct {
	state  *shellstate.State
	ex     *exec.Executor
	reader lineReader
}

func (r *REPL) closeReader() {
	if c, ok := r.reader.(interface{ Close() error }); ok {
		c.Close()
	}
}

// Run executes the loop until EOF or an "exit" builtin, returning the
// process exit code.
func (r *REPL) Run() int {
	for {
		r.reportDoneJobs()

		if ed, ok := r.reader.(*lineedit.Editor); ok {
			ed.SetPrompt(renderPrompt(r.state))
		}

		ignorePromptSignals()
		line, err := r.reader.ReadLine()
		restoreExecSignals()

		if errors.Is(err, lineedit.ErrInterrupt) {
			fmt.Println("^C")
			continue
		}
		if errors.Is(err, io.EOF) {
			return r.state.LastStatus
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "minish:", err)
			return r.state.LastStatus
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		seq, err := r.parseContinued(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "minish: parse error:", err)
			continue
		}

		_, err = r.ex.Execute(seq)
		var exitReq *builtin.ExitRequest
		if errors.As(err, &exitReq) {
			return exitReq.Code
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "minish:", err)
		}
	}
}

// parseContinued parses line, and on an *syntax.Incomplete (trailing "\"
// or an unclosed quote, spec §6 "continuation on trailing \ or unclosed
// quote") keeps pulling more physical lines and reparsing the
// concatenation until it gets a complete parse or a real syntax error.
func (r *REPL) parseContinued(line string) (*syntax.Sequence, error) {
	for {
		seq, err := syntax.NewParser().Parse([]byte(line), heredocSource{r.reader})
		var inc *syntax.Incomplete
		if !errors.As(err, &inc) {
			return seq, err
		}
		if ed, ok := r.reader.(*lineedit.Editor); ok {
			ed.SetPrompt("> ")
		}
		next, rerr := r.reader.ReadLine()
		if rerr != nil {
			return nil, err
		}
		line = line + "\n" + next
	}
}

func (r *REPL) reportDoneJobs() {
	for _, j := range r.state.Jobs.ReapDone() {
		fmt.Printf("[%d]+ Done\t%s\n", j.ID, j.CommandLine)
	}
}

// heredocSource adapts a lineReader to syntax.LineSource, so the same
// blocking read_line collaborator used for the prompt also supplies
// heredoc body lines (spec §1 scope note).
type heredocSource struct {
	r lineReader
}

func (h heredocSource) NextLine() (string, bool) {
	line, err := h.r.ReadLine()
	if err != nil {
		return "", false
	}
	return line, true
}

// scannerReader implements lineReader over a plain stream (piped stdin,
// used when lineedit.IsInteractive reports false), the same
// bufio.Scanner line-at-a-time pattern diillson-chatcli's cli package
// uses for non-terminal input.
type scannerReader struct {
	sc *bufio.Scanner
}

func newScannerReader(r io.Reader) *scannerReader {
	return &scannerReader{sc: bufio.NewScanner(r)}
}

func (s *scannerReader) ReadLine() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}
