// Package builtin implements the shell's built-in commands and the
// registry that dispatches to them (spec §4.5 "Builtin runtime
// interface").
package builtin

import (
	"fmt"
	"io"

	"github.com/ardenvoss/minish/shellstate"
)

// IO bundles the three streams a builtin writes to/reads from. For a
// foreground builtin these are the shell's own stdio, or the streams the
// caller opened for its redirections (closed again on return; no fd is
// duplicated or replaced); for a builtin invoked
// during command substitution, Stdout is the capture pipe.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Func is the registry's function signature: name → (args, &mut
// ShellState, io) → int, per spec §4.5. The error return is non-nil only
// for control-flow signals (currently just *ExitRequest from "exit");
// ordinary failures are reported through the int status, matching shell
// convention, not through error.
type Func func(args []string, state *shellstate.State, io IO) (int, error)

// Registry maps builtin names to their implementations.
type Registry struct {
	funcs map[string]Func
}

// New returns a Registry pre-populated with the builtin set named in
// SPEC_FULL.md §1: cd, export, alias, exit, true, false, jobs, fg, bg.
func New() *Registry {
	r := &Registry{funcs: map[string]Func{}}
	r.Register("cd", cdBuiltin)
	r.Register("export", exportBuiltin)
	r.Register("alias", aliasBuiltin)
	r.Register("exit", exitBuiltin)
	r.Register("true", trueBuiltin)
	r.Register("false", falseBuiltin)
	r.Register("jobs", jobsBuiltin)
	r.Register("fg", fgBuiltin)
	r.Register("bg", bgBuiltin)
	return r
}

// Register installs or overwrites a builtin, letting callers (or a future
// plugin mechanism) extend the registry (spec §2 item 5: "new builtins
// plug into a registry").
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Lookup resolves a builtin by name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// ExitRequest is returned as the error half of Func's result by the
// "exit" builtin. The executor propagates it up through pipeline and
// sequence evaluation (spec §4.5/§7 "errors are values, not unwinding
// exceptions") so cmd/minish's REPL loop can unwrap it with errors.As and
// terminate with the requested code.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
