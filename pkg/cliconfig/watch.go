package cliconfig

import (
	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher is informational only: oomwatchd does not support
// live config reload (Thresholds is built once and shared read-only
// for the daemon's life), so a watched change is surfaced as a single
// log line telling the operator to restart, not acted on.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	onEvent func(name string)
}

// WatchConfigFile starts watching path and calls onEvent once per
// write/rename/remove event it observes.
func WatchConfigFile(path string, onEvent func(name string)) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	cw := &ConfigWatcher{watcher: w, onEvent: onEvent}
	go cw.loop()
	return cw, nil
}

func (cw *ConfigWatcher) loop() {
	for {
		select {
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				cw.onEvent(ev.Name)
			}
		case _, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher.
func (cw *ConfigWatcher) Close() error {
	return cw.watcher.Close()
}
