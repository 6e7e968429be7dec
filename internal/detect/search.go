package detect

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	searchBudget   = 2 * time.Second
	maxSearchDepth = 2
)

// noiseDirs never contain anything the user would open from a file manager
// title and tend to be enormous.
var noiseDirs = map[string]struct{}{
	"node_modules": {}, "__pycache__": {}, ".git": {}, ".svn": {}, ".hg": {},
	".cache": {}, ".config": {}, ".local": {}, ".npm": {}, ".cargo": {}, ".rustup": {},
	"venv": {}, "env": {}, ".venv": {}, ".env": {}, "virtualenv": {},
	"site-packages": {}, "dist": {}, "build": {}, ".tox": {},
	"snap": {}, "flatpak": {}, ".wine": {}, ".steam": {},
	".mozilla": {}, ".thunderbird": {}, ".var": {},
}

// matchChildDir returns a direct child of dir whose name matches target
// case-insensitively, or "".
func matchChildDir(dir, target string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), target) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// searchFolder performs a depth-limited, case-insensitive directory-name
// search. The deadline is threaded through every recursive call so
// termination is guaranteed even on adversarial trees; symlinked
// directories are never followed, so cycles cannot occur.
func searchFolder(dir, target string, depth int, deadline time.Time) string {
	if depth <= 0 || time.Now().After(deadline) {
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, e := range entries {
		if time.Now().After(deadline) {
			return ""
		}
		if !e.IsDir() || e.Type()&fs.ModeSymlink != 0 {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, noisy := noiseDirs[name]; noisy {
			continue
		}

		full := filepath.Join(dir, name)
		if strings.EqualFold(name, target) {
			return full
		}
		if found := searchFolder(full, target, depth-1, deadline); found != "" {
			return found
		}
	}
	return ""
}
