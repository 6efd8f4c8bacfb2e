package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio/v2/maybe"
)

// Persist appends (or rewrites in place, if already present) one
// "alias NAME=value" / "export NAME=value" directive in the rc file at
// path, atomically (SPEC_FULL.md §4 "--persist flag"), grounded on
// mvdan-sh's cmd/shfmt/main.go use of renameio/v2/maybe.WriteFile for
// atomic rewrite-in-place.
func Persist(path, kind, name, value string) error {
	directive := fmt.Sprintf("%s %s=%s", kind, name, value)

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: %w", err)
	}

	lines := splitLines(string(existing))
	prefix := kind + " " + name + "="
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			lines[i] = directive
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, directive)
	}

	out := strings.Join(lines, "\n")
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out += "\n"
	}
	if err := maybe.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
