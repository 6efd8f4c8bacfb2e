// Package expand implements the per-word substitution pipeline from spec
// §4.3: alias substitution (head only), tilde, parameter substitution,
// command substitution, glob expansion, then a marker scrub.
package expand

import (
	"github.com/ardenvoss/minish/shellstate"
	"github.com/ardenvoss/minish/syntax"
)

// CmdSubstFunc runs a nested command line for "$(...)"/backtick expansion
// and returns its captured stdout. It is supplied by the exec package
// (which owns the executor) to avoid an import cycle, the same way
// mvdan/sh's interp package hands expand.Config a CmdSubst closure instead
// of expand depending on interp.
type CmdSubstFunc func(state *shellstate.State, command string) (stdout string, status int, err error)

// Config bundles everything the expander needs beyond the ShellState
// itself.
type Config struct {
	State      *shellstate.State
	CmdSubst   CmdSubstFunc
	AliasDepth int // 0 means DefaultAliasDepth
}

// DefaultAliasDepth bounds alias re-expansion recursion (spec §4.3.1 and
// §9 "Alias re-tokenization").
const DefaultAliasDepth = 16

// ExpandedRedir is a Redirection with its target fully resolved to a
// string (or fd number, for "<&"/">&" with a bare integer target).
type ExpandedRedir struct {
	Fd          int
	Op          string
	Target      string
	HeredocBody string
}

// Expanded is what Command hands to the executor: ready-to-exec
// argv, resolved assignments, and resolved redirections.
type Expanded struct {
	Assignments map[string]string
	Argv        []string
	Redirs      []ExpandedRedir
}

// Command runs the full stage pipeline over one parsed SimpleCommand.
func Command(cmd *syntax.SimpleCommand, cfg *Config) (*Expanded, error) {
	cmd, err := expandAlias(cmd, cfg)
	if err != nil {
		return nil, err
	}

	out := &Expanded{Assignments: map[string]string{}}

	for _, a := range cmd.Assignments {
		v, err := expandAssignmentValue(a.Value, cfg)
		if err != nil {
			return nil, err
		}
		out.Assignments[a.Name] = v
	}

	for _, w := range cmd.Words {
		fields, err := expandWordToFields(w.Token.Text, cfg)
		if err != nil {
			return nil, err
		}
		out.Argv = append(out.Argv, fields...)
	}

	for _, r := range cmd.Redirs {
		target, err := expandRedirTarget(r.Target.Token.Text, cfg)
		if err != nil {
			return nil, err
		}
		heredoc := string(r.HeredocBody)
		if r.Op == "<<" {
			heredoc, err = expandHeredocBody(heredoc, cfg)
			if err != nil {
				return nil, err
			}
		}
		out.Redirs = append(out.Redirs, ExpandedRedir{
			Fd: r.Fd, Op: r.Op, Target: target, HeredocBody: heredoc,
		})
	}
	return out, nil
}

// expandAssignmentValue runs tilde + parameter/command substitution with
// no field splitting and no globbing, since assignment RHS values are not
// subject to either (spec §4.3 rationale mirrors POSIX here).
func expandAssignmentValue(text []byte, cfg *Config) (string, error) {
	text = expandTilde(text, cfg)
	parts, err := substituteParts(text, cfg)
	if err != nil {
		return "", err
	}
	var out []byte
	for _, p := range parts {
		out = append(out, p.bytes...)
	}
	return string(scrub(out)), nil
}

func expandRedirTarget(text []byte, cfg *Config) (string, error) {
	text = expandTilde(text, cfg)
	parts, err := substituteParts(text, cfg)
	if err != nil {
		return "", err
	}
	var out []byte
	for _, p := range parts {
		out = append(out, p.bytes...)
	}
	return string(scrub(out)), nil
}

func expandHeredocBody(body string, cfg *Config) (string, error) {
	// Heredoc bodies behave like a double-quoted word: "$"/backtick are
	// active, nothing is split or globbed (spec §4.4 supplement).
	parts, err := substituteParts([]byte(body), cfg)
	if err != nil {
		return "", err
	}
	var out []byte
	for _, p := range parts {
		out = append(out, p.bytes...)
	}
	return string(scrub(out)), nil
}

// expandWordToFields runs the full word pipeline: tilde, parameter/command
// substitution, field splitting, and glob expansion, in that order (spec
// §4.3 "Ordering rationale").
func expandWordToFields(text []byte, cfg *Config) ([]string, error) {
	text = expandTilde(text, cfg)
	parts, err := substituteParts(text, cfg)
	if err != nil {
		return nil, err
	}
	fields := splitFields(parts, cfg)
	var out []string
	for _, f := range fields {
		matches := globField(f, cfg)
		out = append(out, matches...)
	}
	return out, nil
}

// scrub strips every marker byte, the last step of expansion (spec §4.3
// stage 6) and the invariant that markers never reach execve (spec §3).
func scrub(text []byte) []byte {
	out := make([]byte, 0, len(text))
	for _, b := range text {
		if syntax.IsMarker(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}
