package expand

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ardenvoss/minish/syntax"
)

// globField runs spec §4.3 stage 5 over one post-split field: if it
// contains an unmarked glob metacharacter, match it against the
// filesystem directory-segment by directory-segment; otherwise return the
// marker-stripped literal. No matches falls back to the literal word
// (Bourne-style), unless Options.FailGlob is set.
func globField(f field, cfg *Config) []string {
	if !hasGlobMeta(f.bytes) {
		return []string{string(scrub(f.bytes))}
	}

	matches := globPath(f.bytes, cfg)
	sort.Strings(matches)
	if len(matches) > 0 {
		return matches
	}
	if cfg.State != nil && cfg.State.Options.FailGlob {
		return nil
	}
	return []string{string(scrub(f.bytes))}
}

// hasGlobMeta reports whether any of '*', '?', '[' appears untagged (not
// ESC/NGM-suppressed) in text.
func hasGlobMeta(text []byte) bool {
	for i := 0; i < len(text); i++ {
		b := text[i]
		tagged := i+1 < len(text) && syntax.IsMarker(text[i+1])
		switch b {
		case '*', '?', '[':
			if !tagged {
				return true
			}
		}
		if tagged {
			i++
		}
	}
	return false
}

// globPath walks the pattern one path segment at a time, matching each
// segment's regexp translation against directory entries (spec §4.3
// "Glob semantics"): never descending through a non-directory, never
// following symlinks for enumeration purposes (os.ReadDir's Lstat-based
// entries already avoid that).
func globPath(pattern []byte, cfg *Config) []string {
	segments := splitPatternSegments(pattern)
	base := "."
	if cfg.State != nil && cfg.State.Cwd != "" {
		base = cfg.State.Cwd
	}
	absolute := len(segments) > 0 && segments[0] == ""
	if absolute {
		segments = segments[1:]
		base = "/"
	}

	dirs := []string{base}
	for si, seg := range segments {
		if !hasGlobMeta(seg) {
			var next []string
			for _, d := range dirs {
				cand := filepath.Join(d, string(scrub(seg)))
				if _, err := os.Lstat(cand); err == nil {
					next = append(next, cand)
				}
			}
			dirs = next
			continue
		}
		re := translatePattern(seg)
		var next []string
		for _, d := range dirs {
			entries, err := os.ReadDir(d)
			if err != nil {
				continue
			}
			leadingDot := len(seg) > 0 && seg[0] == '.'
			for _, ent := range entries {
				name := ent.Name()
				if strings.HasPrefix(name, ".") && !leadingDot {
					continue
				}
				if si < len(segments)-1 && !ent.IsDir() {
					continue
				}
				if re.MatchString(name) {
					next = append(next, filepath.Join(d, name))
				}
			}
		}
		dirs = next
	}

	var out []string
	for _, d := range dirs {
		out = append(out, relativeTo(base, d, absolute))
	}
	return out
}

func relativeTo(base, path string, absolute bool) string {
	if absolute {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

// splitPatternSegments splits a marker-tagged pattern on unmarked '/'
// bytes, keeping each segment's marker tags intact.
func splitPatternSegments(pattern []byte) [][]byte {
	var segs [][]byte
	var cur []byte
	i := 0
	for i < len(pattern) {
		b := pattern[i]
		tagged := i+1 < len(pattern) && syntax.IsMarker(pattern[i+1])
		if b == '/' && !tagged {
			segs = append(segs, cur)
			cur = nil
			i++
			continue
		}
		cur = append(cur, b)
		if tagged {
			cur = append(cur, pattern[i+1])
			i += 2
		} else {
			i++
		}
	}
	segs = append(segs, cur)
	return segs
}

// translatePattern turns one marker-tagged glob segment into an anchored
// regexp: "*" -> "[^/]*", "?" -> "[^/]", "[...]"/"[!...]" -> a character
// class, with "!" flipped to "^" for negation. Marker-suppressed
// metacharacters are emitted as quoted literals.
func translatePattern(seg []byte) *regexp.Regexp {
	var b strings.Builder
	b.WriteByte('^')
	i := 0
	for i < len(seg) {
		ch := seg[i]
		tagged := i+1 < len(seg) && syntax.IsMarker(seg[i+1])
		if tagged {
			b.WriteString(regexp.QuoteMeta(string(ch)))
			i += 2
			continue
		}
		switch ch {
		case '*':
			b.WriteString("[^/]*")
			i++
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			class, n := scanClass(seg[i:])
			b.WriteString(class)
			i += n
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
			i++
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		// A malformed class (e.g. unterminated "[") falls back to a
		// pattern that can never match, same effect as "no matches".
		return regexp.MustCompile(`\x00never`)
	}
	return re
}

// scanClass consumes a "[...]" class starting at seg[0] == '[' and
// returns its Go-regexp translation plus how many source bytes it
// consumed. Marker tags inside the class are stripped since a
// user-escaped "]" or "-" inside brackets is still a class member, not a
// terminator change.
func scanClass(seg []byte) (string, int) {
	var b strings.Builder
	b.WriteByte('[')
	i := 1
	if i < len(seg) && seg[i] == '!' {
		b.WriteByte('^')
		i++
	}
	start := i
	for i < len(seg) {
		ch := seg[i]
		tagged := i+1 < len(seg) && syntax.IsMarker(seg[i+1])
		if ch == ']' && i > start && !tagged {
			b.WriteByte(']')
			i++
			return b.String(), i
		}
		switch {
		case ch == '\\', ch == '^', tagged && (ch == ']' || ch == '-'):
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
		if tagged {
			i += 2
		} else {
			i++
		}
	}
	// Unterminated class: treat the leading "[" as a literal.
	return `\[`, 1
}
