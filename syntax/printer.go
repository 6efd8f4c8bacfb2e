package syntax

import (
	"bytes"
	"strconv"
)

// Print renders seq back to shell source. It is the canonical
// pretty-printer used by the round-trip property in spec §8: printing a
// parsed Sequence and re-parsing it must yield the same tree modulo
// whitespace.
func Print(seq *Sequence) string {
	var buf bytes.Buffer
	for i, item := range seq.Items {
		if i > 0 {
			buf.WriteByte(' ')
		}
		printPipeline(&buf, item.Pipeline)
		switch item.Connector {
		case SeqConn:
			// A trailing "&" already separates this pipeline from the next.
			if !item.Pipeline.Background {
				buf.WriteString(" ;")
			}
		case AndConn:
			buf.WriteString(" &&")
		case OrConn:
			buf.WriteString(" ||")
		}
	}
	return buf.String()
}

func printPipeline(buf *bytes.Buffer, pl *Pipeline) {
	for i, cmd := range pl.Commands {
		if i > 0 {
			buf.WriteString(" | ")
		}
		printSimpleCommand(buf, cmd)
	}
	if pl.Background {
		buf.WriteString(" &")
	}
}

func printSimpleCommand(buf *bytes.Buffer, cmd *SimpleCommand) {
	first := true
	space := func() {
		if !first {
			buf.WriteByte(' ')
		}
		first = false
	}
	for _, a := range cmd.Assignments {
		space()
		buf.WriteString(a.Name)
		buf.WriteByte('=')
		buf.Write(renderWord(a.Value))
	}
	for _, w := range cmd.Words {
		space()
		buf.Write(renderWord(w.Token.Text))
	}
	for _, r := range cmd.Redirs {
		space()
		if r.Fd != defaultFd(r.Op) {
			buf.WriteString(strconv.Itoa(r.Fd))
		}
		buf.WriteString(r.Op)
		buf.WriteByte(' ')
		buf.Write(renderWord(r.Target.Token.Text))
	}
}

func stripMarkers(text []byte) []byte {
	out := make([]byte, 0, len(text))
	for _, b := range text {
		if IsMarker(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// renderWord re-quotes a marked word so that re-tokenizing the printed
// output reproduces the same glob/escape eligibility the original word
// carried (spec §8 property 2, "modulo whitespace").
func renderWord(text []byte) []byte {
	if len(text) == 0 {
		return []byte(`""`)
	}
	hasNGM, hasESC := false, false
	for i := 0; i+1 < len(text); i++ {
		switch text[i+1] {
		case NGM:
			hasNGM = true
		case ESC:
			hasESC = true
		}
	}
	literal := stripMarkers(text)
	switch {
	case !hasNGM && !hasESC:
		return literal
	case hasESC && !bytes.ContainsAny(string(literal), "$`"):
		var out bytes.Buffer
		out.WriteByte('\'')
		out.Write(bytes.ReplaceAll(literal, []byte("'"), []byte(`'\''`)))
		out.WriteByte('\'')
		return out.Bytes()
	default:
		var out bytes.Buffer
		out.WriteByte('"')
		for _, b := range literal {
			if b == '"' || b == '\\' {
				out.WriteByte('\\')
			}
			out.WriteByte(b)
		}
		out.WriteByte('"')
		return out.Bytes()
	}
}
