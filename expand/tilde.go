package expand

import (
	"os/user"

	"github.com/ardenvoss/minish/syntax"
)

// expandTilde resolves a leading unquoted "~" or "~user" (spec §4.3 stage
// 2). A tagged leading byte (ESC from a backslash or single quotes, NGM
// from double quotes) means the
// user wrote a literal tilde, so it is left untouched. Bare "~" resolves
// against $HOME in cfg's ShellState first, falling back to the OS user
// record if HOME is unset.
func expandTilde(text []byte, cfg *Config) []byte {
	if len(text) == 0 || text[0] != '~' {
		return text
	}
	if len(text) > 1 && syntax.IsMarker(text[1]) {
		return text
	}

	i := 1
	for i < len(text) && text[i] != '/' && !syntax.IsMarker(text[i]) {
		i++
	}
	name := string(text[1:i])

	var home string
	if name == "" {
		if cfg != nil && cfg.State != nil {
			home, _ = cfg.State.Lookup("HOME")
		}
		if home == "" {
			if u, err := user.Current(); err == nil {
				home = u.HomeDir
			}
		}
	} else if u, err := user.Lookup(name); err == nil {
		home = u.HomeDir
	} else {
		// Unresolved "~user" stays literal (spec §4.3 stage 2).
		return text
	}
	if home == "" {
		return text
	}
	out := append([]byte(home), text[i:]...)
	return out
}
