// cmd/nautilus-vscode-widget/logfile.go
package main

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/config"
)

var logInitOnce sync.Once

// initLogOutput points logrus at the configured destinations: a rotating
// file, stderr, or both. Safe to call more than once; only the first call
// takes effect.
func initLogOutput(s config.Settings) {
	logInitOnce.Do(func() {
		toStderr := true
		if s.Log.Stderr != nil {
			toStderr = *s.Log.Stderr
		}

		logFile := strings.TrimSpace(s.Log.File)
		if logFile == "" && strings.TrimSpace(s.Log.Dir) != "" {
			logFile = filepath.Join(strings.TrimSpace(s.Log.Dir), "widget.log")
		}
		if logFile == "" {
			logrus.SetOutput(os.Stderr)
			return
		}

		rotateMB := s.Log.RotateMB
		if rotateMB < 1 {
			rotateMB = 10
		}
		keep := s.Log.Keep
		if keep < 1 {
			keep = 10
		}

		w := &rotatingFileWriter{
			path:      logFile,
			maxBytes:  int64(rotateMB) * 1024 * 1024,
			keepFiles: keep,
		}
		_ = w.openIfNeeded()

		if toStderr {
			logrus.SetOutput(io.MultiWriter(os.Stderr, w))
		} else {
			logrus.SetOutput(w)
		}
	})
}

type rotatingFileWriter struct {
	mu        sync.Mutex
	path      string
	maxBytes  int64
	keepFiles int
	f         *os.File
}

func (w *rotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.openIfNeeded(); err != nil {
		return 0, err
	}

	if w.maxBytes > 0 {
		if fi, err := w.f.Stat(); err == nil {
			if fi.Size()+int64(len(p)) > w.maxBytes {
				_ = w.rotateLocked()
			}
		}
	}
	return w.f.Write(p)
}

func (w *rotatingFileWriter) openIfNeeded() error {
	if w.f != nil {
		return nil
	}
	_ = os.MkdirAll(filepath.Dir(w.path), 0755)
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

func (w *rotatingFileWriter) rotateLocked() error {
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}

	fi, err := os.Stat(w.path)
	if err != nil || fi.Size() == 0 {
		return w.openIfNeeded()
	}

	ts := time.Now().Format("20060102-150405")
	rotated := w.path + "." + ts
	_ = os.Rename(w.path, rotated)

	if err := w.openIfNeeded(); err != nil {
		return err
	}
	w.cleanupOldLocked()
	return nil
}

func (w *rotatingFileWriter) cleanupOldLocked() {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type cand struct {
		path string
		mod  time.Time
	}
	var cands []cand

	for _, e := range entries {
		name := e.Name()
		if name == base || !strings.HasPrefix(name, base+".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		cands = append(cands, cand{path: filepath.Join(dir, name), mod: info.ModTime()})
	}

	sort.Slice(cands, func(i, j int) bool { return cands[i].mod.After(cands[j].mod) })

	for i := w.keepFiles; i < len(cands); i++ {
		_ = os.Remove(cands[i].path)
	}
}
