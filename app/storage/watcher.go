package storage

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher observes the local artifact directory and reports artifacts
// modified or removed outside the application, so their backups can be
// flagged instead of silently restoring garbage later.
type Watcher struct {
	fw     *fsnotify.Watcher
	logger zerolog.Logger

	// OnTamper receives the artifact path. Write and Remove events both
	// count; the .part staging files used by LocalStore.Put are ignored.
	OnTamper func(path string)
}

func NewWatcher(dir string, logger zerolog.Logger, onTamper func(string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{fw: fw, logger: logger, OnTamper: onTamper}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if strings.HasSuffix(ev.Name, ".part") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Warn().Str("artifact", filepath.Base(ev.Name)).Str("op", ev.Op.String()).Msg("backup artifact changed on disk")
			if w.OnTamper != nil {
				w.OnTamper(ev.Name)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("artifact watcher error")
		}
	}
}

func (w *Watcher) Close() error { return w.fw.Close() }
