// Package safety validates untrusted directory and editor-command candidates
// before anything derived from the desktop environment is handed to a process
// launch. Validation is best-effort hardening, not a trust boundary: a
// validate-then-use window is accepted.
package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrInvalidPath means a directory candidate failed validation and must not
// be used as a launch working directory.
var ErrInvalidPath = errors.New("invalid path")

// ValidatedPath is an absolute, symlink-resolved directory that existed, was
// readable, and passed the allow/deny policy at validation time. Only
// ValidateDirectory constructs it.
type ValidatedPath struct {
	path string
}

func (p ValidatedPath) String() string { return p.path }

// forbiddenDirs are rejected by exact match only. Subdirectories are not
// automatically excluded here; they fall through to the allow-list check,
// which rejects anything outside the allowed roots anyway.
var forbiddenDirs = map[string]struct{}{
	"/root":     {},
	"/etc":      {},
	"/sys":      {},
	"/proc":     {},
	"/dev":      {},
	"/boot":     {},
	"/var/log":  {},
	"/usr/sbin": {},
	"/sbin":     {},
}

// allowedRoots returns the prefix-matched roots under which directories may
// be opened. The user home is resolved at call time so tests can fake it via
// HOME.
func allowedRoots() []string {
	roots := []string{"/tmp", "/var/tmp", "/opt", "/usr/local", "/media", "/mnt"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		roots = append([]string{home}, roots...)
	}
	return roots
}

// ValidateDirectory resolves and checks a directory candidate. Any
// filesystem error, non-directory, unreadable path, exact forbidden match,
// or path outside the allowed roots fails with ErrInvalidPath.
func ValidateDirectory(candidate string) (ValidatedPath, error) {
	if strings.TrimSpace(candidate) == "" {
		return ValidatedPath{}, fmt.Errorf("%w: empty candidate", ErrInvalidPath)
	}

	real, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return ValidatedPath{}, fmt.Errorf("%w: resolving %q: %v", ErrInvalidPath, candidate, err)
	}
	real, err = filepath.Abs(real)
	if err != nil {
		return ValidatedPath{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	fi, err := os.Stat(real)
	if err != nil {
		return ValidatedPath{}, fmt.Errorf("%w: stat %q: %v", ErrInvalidPath, real, err)
	}
	if !fi.IsDir() {
		return ValidatedPath{}, fmt.Errorf("%w: %q is not a directory", ErrInvalidPath, real)
	}
	if err := unix.Access(real, unix.R_OK); err != nil {
		return ValidatedPath{}, fmt.Errorf("%w: %q not readable", ErrInvalidPath, real)
	}

	if isForbiddenDir(real) {
		return ValidatedPath{}, fmt.Errorf("%w: %q is a protected system directory", ErrInvalidPath, real)
	}
	if !underAllowedRoot(real, allowedRoots()) {
		return ValidatedPath{}, fmt.Errorf("%w: %q is outside allowed locations", ErrInvalidPath, real)
	}

	return ValidatedPath{path: real}, nil
}

// isForbiddenDir uses exact-match semantics: /etc is rejected, /etc/cron.d is
// not (it still has to clear the allow-list).
func isForbiddenDir(resolved string) bool {
	_, ok := forbiddenDirs[resolved]
	return ok
}

// underAllowedRoot uses prefix semantics: the root itself or any descendant.
func underAllowedRoot(resolved string, roots []string) bool {
	for _, root := range roots {
		if resolved == root || strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// IsDir reports whether a path currently exists as a directory. Detection
// strategies use this as a cheap pre-filter before full validation.
func IsDir(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
