package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseLine(t *testing.T, s string) *Sequence {
	t.Helper()
	seq, err := NewParser().Parse([]byte(s), nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return seq
}

func wordStrings(words []Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = string(w.Token.Raw())
	}
	return out
}

func TestParsePipeline(t *testing.T) {
	seq := parseLine(t, `echo "a  b" | cat`)
	if len(seq.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(seq.Items))
	}
	pl := seq.Items[0].Pipeline
	if len(pl.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(pl.Commands))
	}
	want := []string{"echo", "a  b"}
	if diff := cmp.Diff(want, wordStrings(pl.Commands[0].Words)); diff != "" {
		t.Fatalf("first command words mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConnectors(t *testing.T) {
	seq := parseLine(t, `false && echo x ; echo y`)
	if len(seq.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(seq.Items))
	}
	if seq.Items[0].Connector != AndConn {
		t.Fatalf("expected AndConn, got %v", seq.Items[0].Connector)
	}
	if seq.Items[1].Connector != SeqConn {
		t.Fatalf("expected SeqConn, got %v", seq.Items[1].Connector)
	}
	if seq.Items[2].Connector != EndConn {
		t.Fatalf("expected EndConn, got %v", seq.Items[2].Connector)
	}
}

func TestParseBackground(t *testing.T) {
	seq := parseLine(t, `sleep 10 &`)
	if len(seq.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(seq.Items))
	}
	if !seq.Items[0].Pipeline.Background {
		t.Fatal("expected pipeline to be backgrounded")
	}
}

func TestParseAssignmentOnlyCommand(t *testing.T) {
	seq := parseLine(t, `X=1`)
	cmd := seq.Items[0].Pipeline.Commands[0]
	if len(cmd.Assignments) != 1 || len(cmd.Words) != 0 {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseRedirection(t *testing.T) {
	seq := parseLine(t, `ls /nope 2> /dev/null`)
	cmd := seq.Items[0].Pipeline.Commands[0]
	if len(cmd.Redirs) != 1 {
		t.Fatalf("expected 1 redir, got %d", len(cmd.Redirs))
	}
	r := cmd.Redirs[0]
	if r.Fd != 2 || r.Op != ">" || string(r.Target.Token.Raw()) != "/dev/null" {
		t.Fatalf("got %+v", r)
	}
}

func TestParseMissingRedirectionTarget(t *testing.T) {
	_, err := NewParser().Parse([]byte("echo foo >"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Msg != "missing redirection target" {
		t.Fatalf("got %v", err)
	}
}

func TestParseEmptyPipelineStage(t *testing.T) {
	_, err := NewParser().Parse([]byte("echo foo | | cat"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Msg != "expected command" {
		t.Fatalf("got %v", err)
	}
}

func TestParseDanglingConnector(t *testing.T) {
	_, err := NewParser().Parse([]byte("echo foo &&"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

type sliceLines struct {
	lines []string
	i     int
}

func (s *sliceLines) NextLine() (string, bool) {
	if s.i >= len(s.lines) {
		return "", false
	}
	l := s.lines[s.i]
	s.i++
	return l, true
}

func TestParseHeredoc(t *testing.T) {
	lines := &sliceLines{lines: []string{"line one", "line two", "EOF"}}
	seq, err := NewParser().Parse([]byte("cat <<EOF"), lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := seq.Items[0].Pipeline.Commands[0].Redirs[0]
	if string(r.HeredocBody) != "line one\nline two\n" {
		t.Fatalf("got %q", r.HeredocBody)
	}
}

func TestRoundTripPrinter(t *testing.T) {
	cases := []string{
		`echo hello world`,
		`false && echo x ; echo y`,
		`ls /nope 2> /dev/null`,
		`sleep 10 &`,
	}
	for _, s := range cases {
		seq := parseLine(t, s)
		printed := Print(seq)
		seq2, err := NewParser().Parse([]byte(printed), nil)
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", printed, err)
		}
		if Print(seq2) != printed {
			t.Fatalf("round trip mismatch: %q vs %q", printed, Print(seq2))
		}
	}
}
