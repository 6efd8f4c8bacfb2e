//go:build unix

// Command minish is the interactive shell's entry point: it wires
// together shellstate, config, logging, the builtin registry, the
// executor, and the line editor, then runs the REPL (spec §6
// "Interactive surface"). Job control (process groups, terminal
// ownership transfer) is unix-specific, so the whole program is built
// only for unix targets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ardenvoss/minish/builtin"
	"github.com/ardenvoss/minish/config"
	"github.com/ardenvoss/minish/exec"
	"github.com/ardenvoss/minish/lineedit"
	"github.com/ardenvoss/minish/logging"
	"github.com/ardenvoss/minish/shellstate"
)

func main() {
	os.Exit(run())
}

func run() int {
	persist := flag.Bool("persist", false, "write alias/export bindings back to ~/.minishellrc")
	rcPath := flag.String("rcfile", config.DefaultPath(), "path to the rc file")
	logLevel := flag.String("log-level", "", "override MINISHELL_LOG/RUST_LOG")
	flag.Parse()

	log, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "minish: logging setup:", err)
		return 1
	}
	defer log.Sync()

	state := shellstate.New()
	state.Options.PersistRCEdits = *persist

	snap, err := config.Load(*rcPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "minish: config:", err)
	} else if err := config.Apply(snap, state); err != nil {
		fmt.Fprintln(os.Stderr, "minish:", err)
	}
	if state.Options.PromptTemplate == "" {
		state.Options.PromptTemplate = "{cwd} $ "
	}

	if *persist {
		builtin.ConfigurePersister(func(kind, name, value string) error {
			return config.Persist(*rcPath, kind, name, value)
		})
	}

	watcher, err := config.NewWatcher(*rcPath, state, log)
	if err != nil {
		log.Warn("config watcher unavailable", zap.Error(err))
	} else if err := watcher.Start(); err != nil {
		log.Warn("config watcher failed to start", zap.Error(err))
		watcher = nil
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	registry := builtin.New()
	ex := exec.New(state, registry, nil, log)
	defer ex.Close()
	builtin.Configure(ex.Resume)

	editMode := os.Getenv("MINISHELL_EDITMODE")
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = home + "/.minishell_history"
	}

	var reader lineReader
	if lineedit.IsInteractive() {
		ed, err := lineedit.New(renderPrompt(state), historyFile, editMode == "vi")
		if err != nil {
			fmt.Fprintln(os.Stderr, "minish: line editor:", err)
			return 1
		}
		defer ed.Close()
		reader = ed
	} else {
		reader = newScannerReader(os.Stdin)
	}

	repl := &REPL{state: state, ex: ex, reader: reader}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	var g errgroup.Group
	g.Go(func() error {
		select {
		case <-sigCh:
			repl.closeReader()
		case <-ctx.Done():
		}
		return nil
	})

	code := repl.Run()

	cancel()
	signal.Stop(sigCh)
	g.Wait()
	return code
}

func renderPrompt(state *shellstate.State) string {
	return lineedit.Render(state.Options.PromptTemplate, state)
}
