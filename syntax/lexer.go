package syntax

import "fmt"

// ParseError is returned by Tokenize and Parse. Offset is a byte offset into
// the line that was being scanned.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Msg)
}

// Incomplete wraps a ParseError that should be resolved by feeding the
// tokenizer more input (an unclosed quote or a trailing backslash) rather
// than reported to the user. The REPL checks for this with errors.As.
type Incomplete struct {
	*ParseError
}

func incomplete(msg string, off int) error {
	return &Incomplete{&ParseError{Offset: off, Msg: msg}}
}

func syntaxErr(msg string, off int) error {
	return &ParseError{Offset: off, Msg: msg}
}

type quoteState int

const (
	qNone quoteState = iota
	qSingle
	qDouble
)

type lexer struct {
	src []byte
	pos int
}

// Tokenize lexes a single logical line (continuations already joined by the
// caller) into an ordered token sequence. A forbidden marker byte anywhere
// in src is rejected immediately, since markers must never occur in
// legitimate input (spec §6).
func Tokenize(src []byte) ([]Token, error) {
	for i, b := range src {
		if IsMarker(b) {
			return nil, syntaxErr("forbidden marker byte in input", i)
		}
	}
	l := &lexer{src: src}
	var toks []Token
	spaceBefore := true // start of line counts as preceded by space
	for {
		n := l.skipSpace()
		if n > 0 {
			spaceBefore = true
		}
		if l.pos >= len(l.src) {
			break
		}
		start := l.pos
		var tok Token
		var err error
		if op, ok := matchOperator(l.src, l.pos); ok {
			tok = Token{Kind: Operator, Text: append([]byte{OTM}, op...), Pos: start}
			l.pos += len(op)
		} else {
			tok, err = l.lexWord()
			if err != nil {
				return nil, err
			}
		}
		tok.spaceBefore = spaceBefore
		toks = append(toks, tok)
		spaceBefore = false
	}
	toks = append(toks, Token{Kind: EOF, Pos: l.pos})
	classify(toks)
	return toks, nil
}

func (l *lexer) skipSpace() int {
	start := l.pos
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	return l.pos - start
}

func isOperatorStart(b byte) bool {
	switch b {
	case '&', '|', ';', '<', '>', '(', ')':
		return true
	}
	return false
}

// isWordBreak reports whether b ends an in-progress word. "(" and ")" are
// deliberately excluded: the only place they occur inside a word is a
// command substitution "$(...)", which is consumed as a balanced span (see
// consumeBalanced) rather than via ordinary word-break scanning.
func isWordBreak(b byte) bool {
	switch b {
	case ' ', '\t', '&', '|', ';', '<', '>':
		return true
	}
	return false
}

// matchOperator performs maximal-munch matching of the operator set against
// src at pos.
func matchOperator(src []byte, pos int) (string, bool) {
	if !isOperatorStart(src[pos]) {
		return "", false
	}
	rest := src[pos:]
	for _, length := range []int{3, 2, 1} {
		if len(rest) < length {
			continue
		}
		cand := string(rest[:length])
		for _, op := range operators {
			if op == cand {
				return op, true
			}
		}
	}
	return "", false
}

// lexWord consumes a single Word token, honoring quoting and backslash
// escaping rules from spec §4.1.
func (l *lexer) lexWord() (Token, error) {
	start := l.pos
	var buf []byte
	quote := qNone
	for l.pos < len(l.src) {
		b := l.src[l.pos]
		switch quote {
		case qNone:
			switch {
			case b == '\'':
				quote = qSingle
				l.pos++
			case b == '"':
				quote = qDouble
				l.pos++
			case b == '\\':
				l.pos++
				if l.pos >= len(l.src) {
					return Token{}, incomplete("dangling backslash", start)
				}
				nb := l.src[l.pos]
				l.pos++
				if nb == '\n' {
					continue // backslash-newline disappears
				}
				buf = append(buf, nb, ESC)
			case (b == '$' || b == '`') && l.startsSubstitution(false):
				span, err := l.consumeSubstitution(false)
				if err != nil {
					return Token{}, err
				}
				buf = append(buf, span...)
			case isWordBreak(b):
				return Token{Kind: Word, Text: buf, Pos: start}, nil
			default:
				buf = append(buf, b)
				l.pos++
			}
		case qSingle:
			if b == '\'' {
				quote = qNone
				l.pos++
				continue
			}
			buf = append(buf, b, ESC)
			l.pos++
		case qDouble:
			switch {
			case b == '"':
				quote = qNone
				l.pos++
			case b == '\\':
				l.pos++
				if l.pos >= len(l.src) {
					return Token{}, incomplete("unterminated double quote", start)
				}
				nb := l.src[l.pos]
				switch nb {
				case '$', '`', '"', '\\':
					buf = append(buf, nb, ESC)
					l.pos++
				case '\n':
					l.pos++
				default:
					buf = append(buf, '\\', nb)
					l.pos++
				}
			case (b == '$' || b == '`') && l.startsSubstitution(true):
				span, err := l.consumeSubstitution(true)
				if err != nil {
					return Token{}, err
				}
				buf = append(buf, span...)
			case b == '$' || b == '`':
				buf = append(buf, b, NGM)
				l.pos++
			case b == '*' || b == '?' || b == '[':
				buf = append(buf, b, NGM)
				l.pos++
			case b == '~' && len(buf) == 0:
				// A leading tilde inside double quotes must not trigger
				// home-directory expansion; tag it the same as a
				// glob-suppressed byte so expand.expandTilde leaves it be.
				buf = append(buf, b, NGM)
				l.pos++
			default:
				buf = append(buf, b)
				l.pos++
			}
		}
	}
	switch quote {
	case qSingle:
		return Token{}, incomplete("unterminated single quote", start)
	case qDouble:
		return Token{}, incomplete("unterminated double quote", start)
	}
	return Token{Kind: Word, Text: buf, Pos: start}, nil
}

// startsSubstitution reports whether the byte at l.pos begins a
// "$(...)"/"${...}"/backtick span that must be consumed as a single
// balanced unit rather than broken on whitespace. quoted indicates we are
// scanning inside double quotes, where "$" and "`" stay active.
func (l *lexer) startsSubstitution(quoted bool) bool {
	_ = quoted
	if l.pos >= len(l.src) {
		return false
	}
	b := l.src[l.pos]
	if b == '`' {
		return true
	}
	if b == '$' && l.pos+1 < len(l.src) {
		nb := l.src[l.pos+1]
		return nb == '(' || nb == '{'
	}
	return false
}

// consumeSubstitution appends a full "$(...)"/"${...}"/backtick span
// (including its delimiters) to the running word buffer and advances l.pos
// past it. The leading "$"/backtick is tagged NGM when quoted is true, so
// the expander knows not to field-split or glob its result; everything
// else is copied through untagged, since expand re-parses the inner text
// from scratch.
func (l *lexer) consumeSubstitution(quoted bool) ([]byte, error) {
	start := l.pos
	var out []byte
	lead := l.src[l.pos]
	if quoted {
		out = append(out, lead, NGM)
	} else {
		out = append(out, lead)
	}
	l.pos++
	if lead == '`' {
		span, err := l.consumeUntilBacktick()
		if err != nil {
			return nil, err
		}
		out = append(out, span...)
		return out, nil
	}
	open := l.src[l.pos]
	close := byte(')')
	if open == '{' {
		close = '}'
	}
	out = append(out, open)
	l.pos++
	span, err := l.consumeBalanced(open, close, start)
	if err != nil {
		return nil, err
	}
	out = append(out, span...)
	return out, nil
}

// consumeBalanced consumes up to and including the matching close
// delimiter, honoring nested quotes (so a ")" or "}" inside a quoted
// string doesn't end the span early) and nested occurrences of open.
func (l *lexer) consumeBalanced(open, close byte, start int) ([]byte, error) {
	depth := 1
	var out []byte
	for l.pos < len(l.src) {
		b := l.src[l.pos]
		switch {
		case b == '\\' && l.pos+1 < len(l.src):
			out = append(out, b, l.src[l.pos+1])
			l.pos += 2
		case b == '\'':
			out = append(out, b)
			l.pos++
			for l.pos < len(l.src) && l.src[l.pos] != '\'' {
				out = append(out, l.src[l.pos])
				l.pos++
			}
			if l.pos < len(l.src) {
				out = append(out, l.src[l.pos])
				l.pos++
			}
		case b == '"':
			out = append(out, b)
			l.pos++
			for l.pos < len(l.src) && l.src[l.pos] != '"' {
				if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
					out = append(out, l.src[l.pos], l.src[l.pos+1])
					l.pos += 2
					continue
				}
				out = append(out, l.src[l.pos])
				l.pos++
			}
			if l.pos < len(l.src) {
				out = append(out, l.src[l.pos])
				l.pos++
			}
		case b == open:
			depth++
			out = append(out, b)
			l.pos++
		case b == close:
			depth--
			out = append(out, b)
			l.pos++
			if depth == 0 {
				return out, nil
			}
		default:
			out = append(out, b)
			l.pos++
		}
	}
	return nil, incomplete("unterminated substitution", start)
}

func (l *lexer) consumeUntilBacktick() ([]byte, error) {
	start := l.pos
	var out []byte
	for l.pos < len(l.src) {
		b := l.src[l.pos]
		if b == '\\' && l.pos+1 < len(l.src) {
			out = append(out, b, l.src[l.pos+1])
			l.pos += 2
			continue
		}
		if b == '`' {
			out = append(out, b)
			l.pos++
			return out, nil
		}
		out = append(out, b)
		l.pos++
	}
	return nil, incomplete("unterminated backtick substitution", start)
}

// pair is one decoded (byte, wasLiteral) unit of a token's marked text.
type pair struct {
	b       byte
	literal bool
}

func decodePairs(text []byte) []pair {
	pairs := make([]pair, 0, len(text))
	for i := 0; i < len(text); i++ {
		b := text[i]
		if i+1 < len(text) && IsMarker(text[i+1]) {
			pairs = append(pairs, pair{b, false})
			i++
			continue
		}
		pairs = append(pairs, pair{b, true})
	}
	return pairs
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

// classify walks the tokens produced by the raw lexer pass and retags Word
// tokens that are really Assignment or IoNumber tokens (spec §4.1).
func classify(toks []Token) {
	for i := range toks {
		if toks[i].Kind != Word {
			continue
		}
		if isAssignment(toks[i].Text) {
			toks[i].Kind = Assignment
		}
	}
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].Kind != Word || toks[i+1].Kind != Operator {
			continue
		}
		if toks[i+1].spaceBefore {
			continue
		}
		if !isRedirOp(toks[i+1].Op()) {
			continue
		}
		if allDigits(toks[i].Text) {
			toks[i].Kind = IoNumber
		}
	}
}

func allDigits(text []byte) bool {
	if len(text) == 0 {
		return false
	}
	for _, p := range decodePairs(text) {
		if !p.literal || p.b < '0' || p.b > '9' {
			return false
		}
	}
	return true
}

func isAssignment(text []byte) bool {
	pairs := decodePairs(text)
	if len(pairs) == 0 || !pairs[0].literal || !isNameByte(pairs[0].b, true) {
		return false
	}
	eq := -1
	for i := 1; i < len(pairs); i++ {
		if pairs[i].literal && pairs[i].b == '=' {
			eq = i
			break
		}
		if !isNameByte(pairs[i].b, false) {
			return false
		}
	}
	return eq > 0
}

// SplitAssignment splits an Assignment token into its name and value parts.
// The value retains any marker bytes, ready for the expander.
func SplitAssignment(t Token) (name string, value []byte) {
	pairs := decodePairs(t.Text)
	eq := -1
	for i, p := range pairs {
		if p.literal && p.b == '=' {
			eq = i
			break
		}
	}
	nameBytes := make([]byte, eq)
	for i := 0; i < eq; i++ {
		nameBytes[i] = pairs[i].b
	}
	// Re-slice the original Text after the literal '=' byte: find its
	// index in Text directly rather than in decoded pairs, since Text
	// offsets differ once markers are involved.
	idx := 0
	count := 0
	for idx < len(t.Text) {
		b := t.Text[idx]
		nextIsMarker := idx+1 < len(t.Text) && IsMarker(t.Text[idx+1])
		if count == eq && b == '=' && !nextIsMarker {
			idx++
			break
		}
		if nextIsMarker {
			idx += 2
		} else {
			idx++
		}
		count++
	}
	return string(nameBytes), t.Text[idx:]
}

func isRedirOp(op string) bool {
	switch op {
	case "<", ">", ">>", "<<", "<<<", "<&", ">&", "&>":
		return true
	}
	return false
}
