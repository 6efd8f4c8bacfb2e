//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// promptSignals are ignored only while the shell is blocked reading a
// line (spec §4.5 "Interactive signal policy"), reset to default right
// before a foreground pipeline spawns so children inherit the default
// disposition at exec time. SIGTTOU is handled separately, scoped around
// each TIOCSPGRP call (see exec.setForegroundPgrp).
var promptSignals = []os.Signal{syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN}

func ignorePromptSignals() {
	for _, s := range promptSignals {
		signal.Ignore(s)
	}
}

func restoreExecSignals() {
	for _, s := range promptSignals {
		signal.Reset(s)
	}
}
