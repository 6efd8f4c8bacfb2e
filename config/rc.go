// Package config loads and hot-reloads ~/.minishellrc (spec §6 "Config
// file"): a line-based directive file for aliases, exports, and the
// prompt, plus a small named-theme table.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ardenvoss/minish/shellstate"
)

// Snapshot is one parsed rc file: the alias/export bindings it declares
// and the prompt settings, applied to a ShellState in one pass so a
// reload never leaves variables half-updated.
type Snapshot struct {
	Aliases     map[string]string
	Exports     map[string]string
	Prompt      string
	PromptTheme string
}

// DefaultPath returns ~/.minishellrc, or "" if HOME can't be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.minishellrc"
}

// Load reads and parses the rc file at path. A missing file is not an
// error; it yields an empty Snapshot, the same way a shell with no rc
// file just starts with nothing configured.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Snapshot{Aliases: map[string]string{}, Exports: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	snap := &Snapshot{Aliases: map[string]string{}, Exports: map[string]string{}}
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseDirective(line, snap); err != nil {
			return nil, fmt.Errorf("config: %s:%d: %w", path, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return snap, nil
}

func parseDirective(line string, snap *Snapshot) error {
	directive, rest, ok := strings.Cut(line, " ")
	if !ok {
		return fmt.Errorf("expected a directive, got %q", line)
	}
	rest = strings.TrimSpace(rest)

	switch directive {
	case "alias":
		name, value, ok := strings.Cut(rest, "=")
		if !ok {
			return fmt.Errorf("alias directive needs NAME=value, got %q", rest)
		}
		snap.Aliases[name] = unquote(value)
	case "export":
		name, value, ok := strings.Cut(rest, "=")
		if !ok {
			return fmt.Errorf("export directive needs NAME=value, got %q", rest)
		}
		snap.Exports[name] = unquote(value)
	case "prompt":
		_, value, ok := strings.Cut(rest, "=")
		if !ok {
			return fmt.Errorf("prompt directive needs \"= TEMPLATE\", got %q", rest)
		}
		snap.Prompt = strings.TrimSpace(unquote(value))
	case "prompt_theme":
		_, value, ok := strings.Cut(rest, "=")
		if !ok {
			return fmt.Errorf("prompt_theme directive needs \"= NAME\", got %q", rest)
		}
		snap.PromptTheme = strings.TrimSpace(unquote(value))
	default:
		return fmt.Errorf("unknown directive %q", directive)
	}
	return nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}

// Apply merges a Snapshot into a ShellState: every alias and export
// becomes a live binding. Existing bindings of the same name are
// overwritten, matching a reload re-asserting the file's current content.
// It returns the stable "config: unknown theme" error (spec §6) if
// prompt_theme names a theme absent from the built-in table; the rest of
// the snapshot (aliases, exports, an explicit prompt template) is still
// applied.
func Apply(snap *Snapshot, state *shellstate.State) error {
	for name, value := range snap.Aliases {
		state.SetAlias(name, value)
	}
	for name, value := range snap.Exports {
		state.Export(name, value)
	}
	if snap.Prompt != "" {
		state.Options.PromptTemplate = snap.Prompt
	}
	if snap.PromptTheme == "" {
		return nil
	}
	theme, ok := Theme(snap.PromptTheme)
	if !ok {
		return errors.New("config: unknown theme")
	}
	if snap.Prompt == "" {
		state.Options.PromptTemplate = theme.Prompt
	}
	return nil
}
