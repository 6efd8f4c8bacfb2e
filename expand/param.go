package expand

import (
	"fmt"
	"strings"

	"github.com/ardenvoss/minish/syntax"
)

// part is one piece of a word's text after the parameter/command
// substitution pass. splittable pieces are eligible for IFS field
// splitting and for glob expansion afterward; non-splittable pieces
// (everything that wasn't the unquoted result of a substitution) pass
// through a single field untouched, matching how double quotes and plain
// literal text behave in spec §4.3 stage 3/4.
type part struct {
	bytes      []byte
	splittable bool
}

// substituteParts walks a word's marker-tagged text left to right,
// replacing "$NAME"/"${NAME}"/"$(...)"/backtick spans with their resolved
// values and leaving everything else as literal bytes (markers intact, so
// later stages still see ESC/NGM tags for glob suppression).
func substituteParts(text []byte, cfg *Config) ([]part, error) {
	var parts []part
	var lit []byte

	flush := func() {
		if lit != nil {
			parts = append(parts, part{bytes: lit})
			lit = nil
		}
	}

	i := 0
	for i < len(text) {
		b := text[i]
		nextTag := byte(0)
		tagged := i+1 < len(text) && syntax.IsMarker(text[i+1])
		if tagged {
			nextTag = text[i+1]
		}

		if (b == '$' || b == '`') && nextTag != syntax.ESC {
			quoted := nextTag == syntax.NGM
			skip := 1
			if tagged {
				skip = 2
			}
			rest := text[i+skip:]
			value, consumed, err := expandOneSubstitution(b, rest, quoted, cfg)
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, part{bytes: []byte(value), splittable: !quoted})
			i += skip + consumed
			continue
		}

		lit = append(lit, b)
		if tagged {
			lit = append(lit, nextTag)
			i += 2
		} else {
			i++
		}
	}
	flush()
	return parts, nil
}

// expandOneSubstitution resolves the substitution starting at lead
// ('$' or '`'), whose remaining raw text (post-delimiter) is rest. It
// returns the resolved value and how many bytes of rest it consumed.
func expandOneSubstitution(lead byte, rest []byte, quoted bool, cfg *Config) (string, int, error) {
	if lead == '`' {
		inner, n, err := scanUntilBacktick(rest)
		if err != nil {
			return "", 0, err
		}
		val, err := runCommandSubst(inner, cfg)
		return val, n, err
	}

	if len(rest) == 0 {
		return "$", 0, nil
	}

	switch rest[0] {
	case '(':
		inner, n, err := scanBalanced(rest[1:], '(', ')')
		if err != nil {
			return "", 0, err
		}
		val, err := runCommandSubst(inner, cfg)
		return val, 1 + n, err
	case '{':
		inner, n, err := scanBalanced(rest[1:], '{', '}')
		if err != nil {
			return "", 0, err
		}
		val := lookupParam(string(inner), cfg)
		return val, 1 + n, nil
	default:
		name, n := scanParamName(rest)
		if n == 0 {
			return "$", 0, nil
		}
		return lookupParam(name, cfg), n, nil
	}
}

// scanParamName consumes a bare "$NAME"/"$?"/"$$"/"$#"/"$0".."$9" name
// with no braces.
func scanParamName(rest []byte) (string, int) {
	if len(rest) == 0 {
		return "", 0
	}
	switch rest[0] {
	case '?', '$', '#', '@', '*':
		return string(rest[0]), 1
	}
	if rest[0] >= '0' && rest[0] <= '9' {
		return string(rest[0]), 1
	}
	n := 0
	for n < len(rest) && isNameByte(rest[n], n == 0) {
		n++
	}
	return string(rest[:n]), n
}

func isNameByte(b byte, first bool) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_':
		return true
	case b >= '0' && b <= '9':
		return !first
	}
	return false
}

func lookupParam(name string, cfg *Config) string {
	switch name {
	case "@", "*":
		if len(cfg.State.Args) <= 1 {
			return ""
		}
		return strings.Join(cfg.State.Args[1:], " ")
	}
	v, _ := cfg.State.Lookup(name)
	return v
}

func runCommandSubst(inner []byte, cfg *Config) (string, error) {
	if cfg.CmdSubst == nil {
		return "", nil
	}
	out, status, err := cfg.CmdSubst(cfg.State, string(inner))
	if err != nil {
		return "", err
	}
	_ = status // the outer last_status is set by the caller, not here (spec §5)
	return strings.TrimRight(out, "\n"), nil
}

// scanBalanced consumes rest up to and including the matching close byte,
// honoring nested occurrences of open and skipping over quoted regions so
// an unbalanced paren/brace inside a string literal doesn't end the span
// early. It mirrors syntax.lexer.consumeBalanced, which produced this raw
// (marker-free) span in the first place.
func scanBalanced(rest []byte, open, close byte) ([]byte, int, error) {
	depth := 1
	i := 0
	for i < len(rest) {
		b := rest[i]
		switch {
		case b == '\\' && i+1 < len(rest):
			i += 2
		case b == '\'':
			i++
			for i < len(rest) && rest[i] != '\'' {
				i++
			}
			if i < len(rest) {
				i++
			}
		case b == '"':
			i++
			for i < len(rest) && rest[i] != '"' {
				if rest[i] == '\\' && i+1 < len(rest) {
					i += 2
					continue
				}
				i++
			}
			if i < len(rest) {
				i++
			}
		case b == open:
			depth++
			i++
		case b == close:
			depth--
			i++
			if depth == 0 {
				return rest[:i-1], i, nil
			}
		default:
			i++
		}
	}
	return nil, 0, fmt.Errorf("expand: unterminated substitution (unbalanced %q/%q)", open, close)
}

func scanUntilBacktick(rest []byte) ([]byte, int, error) {
	i := 0
	for i < len(rest) {
		if rest[i] == '\\' && i+1 < len(rest) {
			i += 2
			continue
		}
		if rest[i] == '`' {
			return rest[:i], i + 1, nil
		}
		i++
	}
	return nil, 0, fmt.Errorf("expand: unterminated backtick substitution")
}
