// Package lineedit implements the "blocking read_line() -> String"
// collaborator named in spec §1, backed by a real line editor rather
// than a bare bufio.Scanner.
package lineedit

import (
	"errors"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// ErrEOF is returned by ReadLine when the input stream closes (Ctrl-D),
// distinct from ErrInterrupt (Ctrl-C), so the REPL can tell "quit" from
// "cancel this line" apart.
var ErrEOF = io.EOF

// ErrInterrupt is returned when the user presses Ctrl-C while editing a
// line.
var ErrInterrupt = readline.ErrInterrupt

// Editor wraps github.com/chzyer/readline, grounded on the pack's own
// "agentic-shell" reference (readline.NewEx + Config{Prompt,
// HistoryFile, HistorySearchFold, InterruptPrompt, EOFPrompt}).
type Editor struct {
	rl *readline.Instance
}

// New builds an Editor. historyFile may be empty to disable persistent
// history. vimMode enables vi keybindings, gated by cmd/minish on
// MINISHELL_EDITMODE=vi (SPEC_FULL.md §3 domain stack entry for
// chzyer/readline).
func New(prompt, historyFile string, vimMode bool) (*Editor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		HistorySearchFold: true,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		VimMode:           vimMode,
	})
	if err != nil {
		return nil, err
	}
	return &Editor{rl: rl}, nil
}

// ReadLine blocks for one line of input, per spec §1's "blocking
// read_line() -> String" collaborator contract. A plain EOF/Interrupt is
// returned verbatim (errors.Is(err, ErrEOF)/(err, ErrInterrupt)) so the
// caller decides what each means for the shell's own lifecycle.
func (e *Editor) ReadLine() (string, error) {
	line, err := e.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return line, ErrInterrupt
	}
	if err != nil {
		return line, err
	}
	return line, nil
}

// SetPrompt updates the prompt shown before the next ReadLine call, used
// to re-render {cwd}/{jobs}/{status} placeholders after each command.
func (e *Editor) SetPrompt(prompt string) {
	e.rl.SetPrompt(prompt)
}

// Close releases the underlying terminal state.
func (e *Editor) Close() error {
	return e.rl.Close()
}

// IsInteractive reports whether stdin looks like a real terminal; a
// false result means the shell is reading a script/pipe and should skip
// prompting and line-editing ceremony entirely.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
