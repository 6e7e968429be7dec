// Package widget ties detection, validation and launching together behind the
// operations the UI shell and the control channel call.
package widget

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/launch"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

var (
	// ErrNoDirectoryDetected means every detection strategy came up empty or
	// the winner failed validation.
	ErrNoDirectoryDetected = errors.New("no directory detected")
	// ErrNoEditorAvailable means neither the configured command nor any
	// fallback editor validated.
	ErrNoEditorAvailable = errors.New("no editor available")
)

// fallbackEditors are tried in order when the configured command fails
// validation. PATH names first, then the usual install locations.
var fallbackEditors = []string{
	"code", "code-insiders", "codium", "vscodium",
	"/usr/bin/code", "/usr/local/bin/code", "/snap/bin/code",
	"/var/lib/flatpak/app/com.visualstudio.code/current/active/export/bin/com.visualstudio.code",
	"/opt/visual-studio-code/bin/code",
	"~/.local/bin/code",
}

// DirectoryResolver is the detection pipeline.
type DirectoryResolver interface {
	Resolve(ctx context.Context) (string, bool)
}

// SettingsStore is the slice of the settings layer the service needs.
type SettingsStore interface {
	EditorCommand() string
	SetEditorCommand(cmd string) error
}

// Service performs the widget's core operations. Activate is what a click on
// the floating button runs; OpenPath backs the control channel's OPEN.
type Service struct {
	store    SettingsStore
	resolver DirectoryResolver
	log      *logrus.Entry

	validateCommand func(string) (safety.ValidatedCommand, error)
	validateDir     func(string) (safety.ValidatedPath, error)
	open            func(safety.ValidatedCommand, safety.ValidatedPath, *logrus.Entry) (launch.Handle, error)

	mu      sync.Mutex
	current string
	last    launch.Handle
}

type Option func(*Service)

// WithValidators overrides the safety validators.
func WithValidators(
	cmd func(string) (safety.ValidatedCommand, error),
	dir func(string) (safety.ValidatedPath, error),
) Option {
	return func(s *Service) {
		s.validateCommand = cmd
		s.validateDir = dir
	}
}

// WithOpener overrides the launcher.
func WithOpener(open func(safety.ValidatedCommand, safety.ValidatedPath, *logrus.Entry) (launch.Handle, error)) Option {
	return func(s *Service) { s.open = open }
}

func New(store SettingsStore, resolver DirectoryResolver, log *logrus.Entry, opts ...Option) *Service {
	s := &Service{
		store:           store,
		resolver:        resolver,
		log:             log,
		validateCommand: safety.ValidateCommand,
		validateDir:     safety.ValidateDirectory,
		open:            launch.Open,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate resolves the active directory and opens the editor on it. The
// directory lock covers detection and the current-directory write; the
// launch runs after release so a slow editor start never blocks the next
// detection.
func (s *Service) Activate(ctx context.Context) (launch.Handle, error) {
	dir, err := s.detectCurrent(ctx)
	if err != nil {
		return launch.Handle{}, err
	}
	return s.launchOn(dir)
}

// detectCurrent serializes detections: a double click resolves once, then
// again, never two racing detections sharing state.
func (s *Service) detectCurrent(ctx context.Context) (safety.ValidatedPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, ok := s.resolver.Resolve(ctx)
	if !ok {
		return safety.ValidatedPath{}, ErrNoDirectoryDetected
	}
	dir, err := s.validateDir(candidate)
	if err != nil {
		s.log.WithError(err).WithField("candidate", candidate).Warn("detected directory rejected")
		return safety.ValidatedPath{}, fmt.Errorf("%w: %v", ErrNoDirectoryDetected, err)
	}
	s.current = dir.String()
	return dir, nil
}

// OpenPath validates an explicitly requested directory and opens the editor
// on it, bypassing detection.
func (s *Service) OpenPath(_ context.Context, path string) (launch.Handle, error) {
	dir, err := s.validateDir(path)
	if err != nil {
		return launch.Handle{}, err
	}
	s.mu.Lock()
	s.current = dir.String()
	s.mu.Unlock()

	return s.launchOn(dir)
}

// ResolveAndAuthorize runs detection and editor selection without launching
// anything. The control channel's RESOLVE uses it as a dry run.
func (s *Service) ResolveAndAuthorize(ctx context.Context) (safety.ValidatedCommand, safety.ValidatedPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, ok := s.resolver.Resolve(ctx)
	if !ok {
		return safety.ValidatedCommand{}, safety.ValidatedPath{}, ErrNoDirectoryDetected
	}
	dir, err := s.validateDir(candidate)
	if err != nil {
		return safety.ValidatedCommand{}, safety.ValidatedPath{}, fmt.Errorf("%w: %v", ErrNoDirectoryDetected, err)
	}

	cmd, _, err := s.pickEditor()
	if err != nil {
		return safety.ValidatedCommand{}, safety.ValidatedPath{}, err
	}
	return cmd, dir, nil
}

// CurrentDirectory returns the last successfully validated directory.
func (s *Service) CurrentDirectory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastLaunch returns the most recent launch record.
func (s *Service) LastLaunch() launch.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Service) launchOn(dir safety.ValidatedPath) (launch.Handle, error) {
	cmd, fromFallback, err := s.pickEditor()
	if err != nil {
		return launch.Handle{}, err
	}

	h, err := s.open(cmd, dir, s.log)
	if err != nil {
		return launch.Handle{}, err
	}
	s.mu.Lock()
	s.last = h
	s.mu.Unlock()

	if fromFallback {
		// Remember the working editor so the next start skips the scan.
		if err := s.store.SetEditorCommand(cmd.String()); err != nil {
			s.log.WithError(err).Warn("could not persist fallback editor")
		} else {
			s.log.WithField("command", cmd.String()).Info("fallback editor persisted")
		}
	}
	return h, nil
}

// pickEditor validates the configured command, then walks the fallback list.
// The bool reports whether a fallback was used.
func (s *Service) pickEditor() (safety.ValidatedCommand, bool, error) {
	configured := s.store.EditorCommand()
	if configured != "" {
		if cmd, err := s.validateCommand(configured); err == nil {
			return cmd, false, nil
		} else {
			s.log.WithError(err).WithField("command", configured).Warn("configured editor rejected")
		}
	}

	for _, candidate := range fallbackEditors {
		if expanded, ok := expandHome(candidate); ok {
			if cmd, err := s.validateCommand(expanded); err == nil {
				return cmd, true, nil
			}
		}
	}
	return safety.ValidatedCommand{}, false, ErrNoEditorAvailable
}

func expandHome(path string) (string, bool) {
	if !filepath.IsAbs(path) && len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		return filepath.Join(home, path[2:]), true
	}
	return path, true
}
