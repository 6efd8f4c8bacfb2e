// Package exec implements spec §4.5's Executor: sequence evaluation,
// pipeline spawn (builtin fast path or forked external processes),
// redirection wiring, and exit-status bookkeeping.
package exec

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ardenvoss/minish/builtin"
	"github.com/ardenvoss/minish/expand"
	"github.com/ardenvoss/minish/job"
	"github.com/ardenvoss/minish/shellstate"
	"github.com/ardenvoss/minish/syntax"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SpawnError wraps a failure to start an external command, distinguished
// from the command's own nonzero exit status (spec §7 "errors are
// values").
type SpawnError struct {
	Argv []string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("exec: %v: %v", e.Argv, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Executor runs a parsed Sequence against a ShellState, exactly the
// "execute(sequence, &mut ShellState) -> int" contract from spec §4.5.
type Executor struct {
	State     *shellstate.State
	Builtins  *builtin.Registry
	Transform Transform
	Log       *zap.Logger

	reaper *job.Reaper

	// defaultStdout, when non-nil, replaces os.Stdout as the fd external
	// commands and builtins inherit when a command carries no explicit
	// ">"-style redirection. Set only while running inside a command
	// substitution's nested evaluation (see cmdSubst/executeWithStdout).
	defaultStdout *os.File
}

func (e *Executor) stdout() *os.File {
	if e.defaultStdout != nil {
		return e.defaultStdout
	}
	return os.Stdout
}

// New builds an Executor. log may be nil, in which case a no-op logger is
// used (mirrors diillson-chatcli's "logger is always present, defaulting
// to zap.NewNop()" convention).
func New(state *shellstate.State, builtins *builtin.Registry, transform Transform, log *zap.Logger) *Executor {
	if transform == nil {
		transform = identityTransform
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Executor{State: state, Builtins: builtins, Transform: transform, Log: log}
	e.reaper = job.NewReaper(state.Jobs)
	e.reaper.Start()
	return e
}

// Close stops the background SIGCHLD reap loop.
func (e *Executor) Close() {
	if e.reaper != nil {
		e.reaper.Stop()
	}
}

// ExpandConfig returns an expand.Config wired to this Executor's command
// substitution hook, for use by the parser-adjacent layers (the REPL) that
// need to expand a word outside of a full Execute call (e.g. prompt
// templates).
func (e *Executor) ExpandConfig() *expand.Config {
	return &expand.Config{State: e.State, CmdSubst: e.cmdSubst}
}

// Execute runs a full Sequence, honoring connector short-circuiting (spec
// §4.5 "Sequence evaluation") and updating State.LastStatus after every
// pipeline.
func (e *Executor) Execute(seq *syntax.Sequence) (int, error) {
	status := e.State.LastStatus
	run := true
	for _, item := range seq.Items {
		if run {
			s, err := e.runPipeline(item.Pipeline)
			status = s
			e.State.LastStatus = status
			if err != nil {
				return status, err
			}
		}
		switch item.Connector {
		case syntax.AndConn:
			run = status == 0
		case syntax.OrConn:
			run = status != 0
		default:
			run = true
		}
	}
	return status, nil
}

// runPipeline implements spec §4.5 "Pipeline spawn".
func (e *Executor) runPipeline(pl *syntax.Pipeline) (int, error) {
	if len(pl.Commands) == 1 {
		if len(pl.Commands[0].Words) == 0 {
			return e.runAssignmentOnly(pl.Commands[0])
		}
		if name, ok := e.builtinName(pl.Commands[0]); ok {
			if pl.Background {
				// Backgrounding a builtin is an explicit non-goal (spec
				// §4.5/Non-goals); run it synchronously instead of
				// silently forking.
				e.Log.Warn("backgrounding a builtin is unsupported; running in foreground", zap.String("name", name))
			}
			return e.runBuiltin(pl.Commands[0], name)
		}
		return e.runExternalPipeline(pl)
	}

	for _, cmd := range pl.Commands {
		if name, ok := e.builtinName(cmd); ok {
			return 1, fmt.Errorf("pipes only work with external commands (builtin %q)", name)
		}
	}
	return e.runExternalPipeline(pl)
}

// runAssignmentOnly implements spec §3's top-level exception: a pipeline
// that is just "NAME=value" assignments with no words persists them into
// ShellState, unlike a command-prefix assignment (command with words),
// which scopes to that single invocation only (see mergeAssignmentEnv
// for the external-command case).
func (e *Executor) runAssignmentOnly(cmd *syntax.SimpleCommand) (int, error) {
	expanded, err := expand.Command(cmd, e.ExpandConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, nil
	}
	for name, value := range expanded.Assignments {
		e.State.SetVar(name, value)
	}
	return 0, nil
}

// builtinName reports the command's resolved builtin name, if the
// command's head word (after alias substitution would apply) names one.
// Alias expansion happens inside expand.Command, so this peeks at the raw
// head word; a head word that is an alias is never reported as a builtin,
// and runExternalPipeline runs whatever argv[0] the alias expands to as an
// external command.
func (e *Executor) builtinName(cmd *syntax.SimpleCommand) (string, bool) {
	if len(cmd.Words) == 0 {
		return "", false
	}
	name := string(cmd.Words[0].Token.Raw())
	if _, isAlias := e.State.Alias(name); isAlias {
		return "", false
	}
	_, ok := e.Builtins.Lookup(name)
	return name, ok
}

func (e *Executor) cmdSubst(state *shellstate.State, command string) (string, int, error) {
	sub := state.Copy()
	p := syntax.NewParser()
	seq, err := p.Parse([]byte(command), nil)
	if err != nil {
		return "", 1, err
	}

	r, w, err := os.Pipe()
	if err != nil {
		return "", 1, err
	}

	// The capture pipe has a bounded kernel buffer, so a command that
	// writes more than that before exiting would deadlock against a
	// reader that only starts once the child is done (spec §9 "beware of
	// deadlock on large outputs"). errgroup.Group runs the drain
	// concurrently with the write side below.
	var out string
	var g errgroup.Group
	g.Go(func() error {
		buf, err := io.ReadAll(r)
		out = string(buf)
		return err
	})

	child := &Executor{State: sub, Builtins: e.Builtins, Transform: e.Transform, Log: e.Log}
	sub.Jobs = state.Jobs // background jobs started inside a substitution still land in the same table
	status, runErr := child.executeWithStdout(seq, w)
	w.Close()
	_ = g.Wait()
	r.Close()

	var exitReq *builtin.ExitRequest
	if errors.As(runErr, &exitReq) {
		runErr = nil
	}
	return out, status, runErr
}

// executeWithStdout runs seq with e.defaultStdout set to w. buildStreams
// (redir.go) uses it as the stdout of every command without its own
// stdout redirection; the process-wide os.Stdout is left unchanged.
func (e *Executor) executeWithStdout(seq *syntax.Sequence, w *os.File) (int, error) {
	prev := e.defaultStdout
	e.defaultStdout = w
	defer func() { e.defaultStdout = prev }()
	return e.Execute(seq)
}
