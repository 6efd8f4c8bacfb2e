package lineedit

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ardenvoss/minish/job"
	"github.com/ardenvoss/minish/shellstate"
)

// maxCwdWidth bounds how many display columns the "{cwd}" placeholder
// may occupy before it's truncated from the left (keeping the tail,
// since the current directory's leaf name matters most).
const maxCwdWidth = 40

// Render expands a prompt template's {cwd}/{jobs}/{status} placeholders
// against the current ShellState, grounded on SPEC_FULL.md §3's
// "prompt renderer's {cwd} truncation math (wide-rune-aware column
// counting)" domain-stack entry for github.com/mattn/go-runewidth: CJK
// and other wide runes in a path count as two display columns, so a
// naive len()-based truncation would misjudge where the prompt actually
// wraps.
func Render(template string, state *shellstate.State) string {
	runningJobs := 0
	for _, j := range state.Jobs.List() {
		if j.State != job.Done {
			runningJobs++
		}
	}

	r := strings.NewReplacer(
		"{cwd}", truncateCwd(state.Cwd),
		"{jobs}", strconv.Itoa(runningJobs),
		"{status}", strconv.Itoa(state.LastStatus),
	)
	return r.Replace(template)
}

func truncateCwd(cwd string) string {
	if runewidth.StringWidth(cwd) <= maxCwdWidth {
		return cwd
	}
	// Keep the tail: truncate from the left, prefixing an ellipsis,
	// since the leaf directory name matters more than the root.
	runes := []rune(cwd)
	for i := range runes {
		tail := string(runes[i:])
		if runewidth.StringWidth(tail)+1 <= maxCwdWidth {
			return "…" + tail
		}
	}
	return runewidth.Truncate(cwd, maxCwdWidth, "…")
}
