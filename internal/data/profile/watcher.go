package profile

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// Watcher reports writes to a single profile file. The parent directory is
// watched so that editors replacing the file by rename are noticed.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan model.FileEvent
	done    chan struct{}
}

// NewWatcher starts watching path. The parent directory must exist.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		path:    abs,
		events:  make(chan model.FileEvent, 16),
		done:    make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			select {
			case w.events <- model.FileEvent{Path: event.Name, Operation: event.Op.String()}:
			default:
				// a reload is already pending
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("profile watch error", util.F("path", w.path), util.F("error", err.Error()))
		}
	}
}

// Events delivers one event per observed change. It is closed by Close.
func (w *Watcher) Events() <-chan model.FileEvent {
	return w.events
}

// Path returns the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and waits for the event loop to exit
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
