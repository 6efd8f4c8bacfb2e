package lineedit

import (
	"strings"
	"testing"

	"github.com/ardenvoss/minish/shellstate"
)

func TestRenderExpandsPlaceholders(t *testing.T) {
	state := shellstate.New()
	state.Cwd = "/home/user/project"
	state.LastStatus = 1

	got := Render("{cwd} [{status}] $ ", state)
	want := "/home/user/project [1] $ "
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderCountsRunningJobs(t *testing.T) {
	state := shellstate.New()
	state.Jobs.Register(111, nil, false, "sleep 10")
	state.Jobs.Register(222, nil, false, "sleep 20")

	got := Render("[{jobs}]", state)
	if got != "[2]" {
		t.Fatalf("Render = %q, want [2]", got)
	}
}

func TestTruncateCwdKeepsShortPathsWhole(t *testing.T) {
	got := truncateCwd("/tmp/x")
	if got != "/tmp/x" {
		t.Fatalf("truncateCwd = %q", got)
	}
}

func TestTruncateCwdTruncatesLongPathsKeepingTail(t *testing.T) {
	long := "/very/long/path/" + strings.Repeat("segment/", 10) + "leaf"
	got := truncateCwd(long)
	if !strings.HasSuffix(got, "leaf") {
		t.Fatalf("truncateCwd result %q should keep the tail", got)
	}
	if !strings.HasPrefix(got, "…") {
		t.Fatalf("truncateCwd result %q should be marked as truncated", got)
	}
}
