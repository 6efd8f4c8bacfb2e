// Package shellstate holds the mutable state threaded explicitly through
// every stage of the shell: environment, aliases, variables, last exit
// status, cwd, and the job table handle (spec §3 ShellState).
package shellstate

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ardenvoss/minish/job"
)

// Options groups the small interactive knobs spec §3 lists under
// ShellState.options.
type Options struct {
	EditMode        string // "vi" or "" (emacs-style default)
	SandboxEnabled  bool
	PromptTemplate  string
	FailGlob        bool // see SPEC_FULL.md open question decision
	PersistRCEdits  bool
}

// State is passed explicitly to every stage, never stored in a package
// global, mirroring how mvdan/sh threads *Runner through every call.
type State struct {
	mu sync.Mutex

	Env     map[string]string
	Aliases map[string]string
	Vars    map[string]string

	// Args holds the positional parameters: Args[0] is "$0" (the shell's
	// invocation name), Args[1:] are "$1".."$9"/"$@"/"$*"/"$#".
	Args []string

	LastStatus int
	Cwd        string
	OldCwd     string

	Jobs *job.Table

	Options Options
}

// New builds a State seeded from the current process environment and cwd.
func New() *State {
	cwd, _ := os.Getwd()
	s := &State{
		Env:     environMap(),
		Aliases: map[string]string{},
		Vars:    map[string]string{},
		Args:    []string{"minish"},
		Cwd:     cwd,
		Jobs:    job.NewTable(),
	}
	s.Env["PWD"] = cwd
	return s
}

func environMap() map[string]string {
	m := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				m[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return m
}

// Lookup resolves a parameter by name, consulting Vars first and then Env,
// matching how real shells let a local variable shadow the environment.
func (s *State) Lookup(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case "?":
		return itoa(s.LastStatus), true
	case "$":
		return itoa(os.Getpid()), true
	case "PWD":
		return s.Cwd, true
	case "OLDPWD":
		return s.OldCwd, true
	case "#":
		return itoa(len(s.Args) - 1), true
	case "0":
		if len(s.Args) > 0 {
			return s.Args[0], true
		}
		return "", true
	}
	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		idx := int(name[0] - '0')
		if idx < len(s.Args) {
			return s.Args[idx], true
		}
		return "", false
	}
	if v, ok := s.Vars[name]; ok {
		return v, true
	}
	if v, ok := s.Env[name]; ok {
		return v, true
	}
	return "", false
}

// SetVar sets a shell-only variable (not exported to children).
func (s *State) SetVar(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Vars[name] = value
}

// Export sets both the shell variable and the process-visible environment
// entry, per the "export NAME=value" config directive and builtin.
func (s *State) Export(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Env[name] = value
	delete(s.Vars, name)
}

// Environ returns the KEY=value pairs to hand to a spawned child, combining
// Env with any exported Vars (minish keeps them separate in memory; see
// Export).
func (s *State) Environ() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Env))
	for k, v := range s.Env {
		out = append(out, k+"="+v)
	}
	return out
}

// Alias resolves an alias by name.
func (s *State) Alias(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.Aliases[name]
	return v, ok
}

// SetAlias installs or overwrites an alias.
func (s *State) SetAlias(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Aliases[name] = value
}

// Chdir updates Cwd/OldCwd/PWD/OLDPWD together, the way "cd" must.
// A relative dir is resolved against Cwd.
func (s *State) Chdir(dir string) error {
	s.mu.Lock()
	base := s.Cwd
	s.mu.Unlock()
	if !filepath.IsAbs(dir) && base != "" {
		dir = filepath.Join(base, dir)
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	abs, err := os.Getwd()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.OldCwd = s.Cwd
	s.Cwd = abs
	s.Env["OLDPWD"] = s.OldCwd
	s.Env["PWD"] = s.Cwd
	s.mu.Unlock()
	return nil
}

// Copy produces a shallow-but-independent copy for command substitution's
// nested evaluation (spec §5: "a substitution creates a logically nested
// evaluation that sees the same ShellState but writes to a captured pipe
// instead of the terminal"). Mutations to maps in the child are not
// reflected back, matching "shares ShellState by copy".
func (s *State) Copy() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := &State{
		Env:        cloneMap(s.Env),
		Aliases:    cloneMap(s.Aliases),
		Vars:       cloneMap(s.Vars),
		Args:       append([]string(nil), s.Args...),
		LastStatus: s.LastStatus,
		Cwd:        s.Cwd,
		OldCwd:     s.OldCwd,
		Jobs:       s.Jobs,
		Options:    s.Options,
	}
	return cp
}

func cloneMap(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
