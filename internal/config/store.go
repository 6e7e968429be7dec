package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Store serializes access to live settings. Reads are frequent (every click
// path checks the editor command); writes happen on reload and when a
// fallback editor gets promoted to the configured one.
type Store struct {
	mu   sync.RWMutex
	path string
	s    Settings
	log  *logrus.Entry
}

func NewStore(path string, log *logrus.Entry) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, s: s, log: log}, nil
}

// Path returns the backing file location.
func (st *Store) Path() string {
	return st.path
}

// Snapshot returns a copy of the current settings.
func (st *Store) Snapshot() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Reload re-reads the backing file. On parse failure the previous settings
// stay in effect.
func (st *Store) Reload() error {
	s, err := Load(st.path)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.s = s
	st.mu.Unlock()
	return nil
}

// EditorCommand returns the configured editor command.
func (st *Store) EditorCommand() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.Editor.Command
}

// SetEditorCommand updates the editor command and persists it so the next
// start does not repeat the fallback scan.
func (st *Store) SetEditorCommand(cmd string) error {
	st.mu.Lock()
	st.s.Editor.Command = cmd
	s := st.s
	st.mu.Unlock()
	return Save(st.path, s)
}

// EnsureControlToken returns the control token, generating and persisting
// one when the control channel is enabled but no token is configured yet.
// First runs get a usable control channel without hand-editing the file.
func (st *Store) EnsureControlToken() (string, error) {
	st.mu.Lock()
	if !st.s.Control.Enabled || st.s.Control.Token != "" {
		token := st.s.Control.Token
		st.mu.Unlock()
		return token, nil
	}

	token, err := GenerateControlToken()
	if err != nil {
		st.mu.Unlock()
		return "", err
	}
	st.s.Control.Token = token
	s := st.s
	st.mu.Unlock()

	if err := Save(st.path, s); err != nil {
		return "", err
	}
	st.log.Info("control token generated and persisted")
	return token, nil
}

// debounce window for editors that write config files with multiple events.
const watchSettle = 300 * time.Millisecond

// Watch reloads the store when the backing file changes on disk. The watch
// covers the parent directory because most editors replace files by rename,
// which drops a watch set on the file itself.
func (st *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(st.path)); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != st.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(watchSettle, func() {
					if err := st.Reload(); err != nil {
						st.log.WithError(err).Warn("settings reload after file change failed")
						return
					}
					st.log.Info("settings reloaded after file change")
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				st.log.WithError(err).Warn("settings watcher error")
			}
		}
	}()
	return nil
}
