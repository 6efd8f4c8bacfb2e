package expand

import (
	"reflect"
	"testing"

	"github.com/ardenvoss/minish/shellstate"
	"github.com/ardenvoss/minish/syntax"
)

func parseOne(t *testing.T, line string) *syntax.SimpleCommand {
	t.Helper()
	p := syntax.NewParser()
	seq, err := p.Parse([]byte(line), nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	if len(seq.Items) != 1 || len(seq.Items[0].Pipeline.Commands) != 1 {
		t.Fatalf("expected one simple command, got %+v", seq)
	}
	return seq.Items[0].Pipeline.Commands[0]
}

func newTestConfig() *Config {
	st := shellstate.New()
	st.SetVar("NAME", "world")
	st.SetVar("MULTI", "a b  c")
	st.SetVar("EMPTY", "")
	st.Args = []string{"minish", "one", "two"}
	return &Config{State: st}
}

func TestCommandExpandsBareParameter(t *testing.T) {
	cmd := parseOne(t, "echo $NAME")
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "world"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandQuotedParameterIsOneField(t *testing.T) {
	cmd := parseOne(t, `echo "$MULTI"`)
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "a b  c"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandUnquotedParameterFieldSplits(t *testing.T) {
	cmd := parseOne(t, "echo $MULTI")
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "a", "b", "c"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandUnquotedEmptyParameterVanishes(t *testing.T) {
	cmd := parseOne(t, "echo $EMPTY done")
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "done"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandQuotedEmptyStringSurvives(t *testing.T) {
	cmd := parseOne(t, `echo ""`)
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", ""}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandPositionalAndSpecialParams(t *testing.T) {
	cmd := parseOne(t, "echo $1 $# $0")
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "one", "2", "minish"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandGlobSuppressedInDoubleQuotes(t *testing.T) {
	cmd := parseOne(t, `echo "*.go"`)
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "*.go"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandGlobExpandsRealFiles(t *testing.T) {
	cmd := parseOne(t, "echo *.go")
	cfg := newTestConfig()
	got, err := Command(cmd, cfg)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if len(got.Argv) < 2 {
		t.Fatalf("expected at least one glob match in the expand package directory, got %v", got.Argv)
	}
	for _, a := range got.Argv[1:] {
		if a == "*.go" {
			t.Fatalf("glob did not expand: %v", got.Argv)
		}
	}
}

func TestCommandGlobNoMatchKeepsLiteral(t *testing.T) {
	cmd := parseOne(t, "echo *.nonexistent-ext")
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "*.nonexistent-ext"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandSubstitutionStripsTrailingNewlines(t *testing.T) {
	cmd := parseOne(t, "echo $(greet)")
	cfg := newTestConfig()
	cfg.CmdSubst = func(st *shellstate.State, command string) (string, int, error) {
		if command != "greet" {
			t.Fatalf("unexpected inner command %q", command)
		}
		return "hi\n\n", 0, nil
	}
	got, err := Command(cmd, cfg)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "hi"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestCommandAssignmentNoSplitNoGlob(t *testing.T) {
	cmd := parseOne(t, "X=$MULTI")
	got, err := Command(cmd, newTestConfig())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if got.Assignments["X"] != "a b  c" {
		t.Fatalf("got %q", got.Assignments["X"])
	}
}

func TestExpandAliasSubstitutesHeadWord(t *testing.T) {
	cfg := newTestConfig()
	cfg.State.SetAlias("ll", "ls -la")
	cmd := parseOne(t, "ll /tmp")
	got, err := Command(cmd, cfg)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"ls", "-la", "/tmp"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestExpandAliasSelfReferenceStopsExpanding(t *testing.T) {
	cfg := newTestConfig()
	cfg.State.SetAlias("loop", "loop")
	cmd := parseOne(t, "loop")
	got, err := Command(cmd, cfg)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"loop"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestExpandTildeHome(t *testing.T) {
	cfg := newTestConfig()
	cfg.State.Export("HOME", "/home/ava")
	cmd := parseOne(t, "echo ~/docs")
	got, err := Command(cmd, cfg)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "/home/ava/docs"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}

func TestExpandQuotedTildeStaysLiteral(t *testing.T) {
	cfg := newTestConfig()
	cfg.State.Export("HOME", "/home/ava")
	cmd := parseOne(t, `echo "~"`)
	got, err := Command(cmd, cfg)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"echo", "~"}
	if !reflect.DeepEqual(got.Argv, want) {
		t.Fatalf("got %v, want %v", got.Argv, want)
	}
}
