package repository

import (
	"context"
	"strings"

	"MuseFM/logger"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the music directory for files removed behind the store's
// back (manual cleanup, external tools). It only reports the change so the
// caller can drop caches; the sidecar itself stays lazy-pruned per the
// library's read semantics.
type Watcher struct {
	fw       *fsnotify.Watcher
	onChange func()
}

// NewWatcher starts watching dir. onChange fires for every removed or
// renamed WAV file.
func NewWatcher(dir string, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{fw: fw, onChange: onChange}, nil
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".wav") {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				logger.Debug("music file removed externally", logger.String("path", event.Name))
				w.onChange()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("music directory watcher error", logger.ErrorField(err))
		}
	}
}
