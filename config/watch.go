package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ardenvoss/minish/shellstate"
)

// Watcher re-reads the rc file and re-applies it to a ShellState whenever
// the file changes on disk, grounded on tmc-covutil's
// cmd/covtree/json_watch.go (fsnotify.NewWatcher, a select loop over
// Events/Errors) and diillson-chatcli's own config-reload use of
// fsnotify.
type Watcher struct {
	path  string
	state *shellstate.State
	log   *zap.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher creates a Watcher for path. Call Start to begin watching;
// the rc file is not required to exist yet (a later create event still
// triggers a reload).
func NewWatcher(path string, state *shellstate.State, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{path: path, state: state, log: log, fsw: fsw, done: make(chan struct{})}
	return w, nil
}

// Start watches the rc file's parent directory (not the file itself --
// editors commonly replace a file via rename-on-save, which would
// otherwise silently stop a watch on the old inode) and reloads on every
// write/create/rename touching it.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	snap, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	if err := Apply(snap, w.state); err != nil {
		w.log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Info("config reloaded", zap.String("path", w.path))
}

// Stop ends the watch loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsw.Close()
}
