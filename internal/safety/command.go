package safety

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrInvalidCommand means an editor-command candidate failed validation and
// must not be executed.
var ErrInvalidCommand = errors.New("invalid command")

// ValidatedCommand is an absolute, symlink-resolved executable that passed
// the deny-list, allow-list, size and ownership policy at validation time.
// Only ValidateCommand constructs it.
type ValidatedCommand struct {
	path string
}

func (c ValidatedCommand) String() string { return c.path }

// maxExecutableSize rejects implausibly large binaries.
const maxExecutableSize = 500 << 20 // 500 MiB

// deniedCommands are capable of destructive or privilege-altering effects.
// A deny-list hit wins over any allow-list match elsewhere in the string.
var deniedCommands = map[string]struct{}{
	"rm": {}, "sudo": {}, "su": {}, "chmod": {}, "chown": {},
	"dd": {}, "mkfs": {}, "fdisk": {},
	"shutdown": {}, "reboot": {}, "halt": {}, "poweroff": {}, "init": {},
	"killall": {}, "pkill": {}, "kill": {},
	"systemctl": {}, "service": {},
	"bash": {}, "sh": {}, "zsh": {},
	"python": {}, "perl": {}, "ruby": {}, "node": {},
	"wget": {}, "curl": {}, "nc": {}, "netcat": {},
}

// knownSafeEditors match either the token basename or, as a substring, the
// fully resolved path (so /snap/code/current/... still qualifies).
var knownSafeEditors = []string{
	"code", "code-insiders", "codium", "vscodium",
	"vim", "nvim", "vi", "nano", "emacs", "gedit", "kate",
	"sublime_text", "subl", "atom", "notepad++",
	"mousepad", "pluma", "xed", "geany", "brackets",
}

var systemBinDirs = []string{"/bin/", "/sbin/", "/usr/bin/", "/usr/sbin/", "/usr/local/bin/"}

// PATH is treated as stable for the process lifetime, so lookups are
// memoized with no invalidation.
var (
	lookPathMu    sync.Mutex
	lookPathCache = map[string]string{}
)

func cachedLookPath(name string) (string, bool) {
	lookPathMu.Lock()
	defer lookPathMu.Unlock()
	if p, ok := lookPathCache[name]; ok {
		return p, p != ""
	}
	p, err := exec.LookPath(name)
	if err != nil {
		lookPathCache[name] = ""
		return "", false
	}
	lookPathCache[name] = p
	return p, true
}

// ValidateCommand validates an editor-command setting. Only the first
// whitespace-delimited token is ever considered; embedded arguments are
// dropped, never executed.
func ValidateCommand(candidate string) (ValidatedCommand, error) {
	token := firstToken(candidate)
	if token == "" {
		return ValidatedCommand{}, fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}

	base := filepath.Base(token)
	if _, denied := deniedCommands[base]; denied || strings.HasPrefix(base, "rm") {
		return ValidatedCommand{}, fmt.Errorf("%w: %q is deny-listed", ErrInvalidCommand, base)
	}

	if filepath.IsAbs(token) {
		return validateAbsolute(token, base)
	}
	return validateFromPath(token, base)
}

func firstToken(candidate string) string {
	fields := strings.Fields(candidate)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func validateAbsolute(token, base string) (ValidatedCommand, error) {
	real, err := resolveExecutable(token)
	if err != nil {
		return ValidatedCommand{}, err
	}

	if matchesKnownEditor(base, real) {
		return ValidatedCommand{path: real}, nil
	}

	// Unrecognized binaries in system bin directories are never accepted.
	for _, dir := range systemBinDirs {
		if strings.HasPrefix(real, dir) {
			return ValidatedCommand{}, fmt.Errorf("%w: %q is in a system directory and not a known editor", ErrInvalidCommand, real)
		}
	}

	// Outside system directories: require current-user ownership and refuse
	// world-writable files.
	var st unix.Stat_t
	if err := unix.Stat(real, &st); err != nil {
		return ValidatedCommand{}, fmt.Errorf("%w: stat %q: %v", ErrInvalidCommand, real, err)
	}
	if st.Uid != uint32(os.Getuid()) {
		return ValidatedCommand{}, fmt.Errorf("%w: %q not owned by current user", ErrInvalidCommand, real)
	}
	if st.Mode&unix.S_IWOTH != 0 {
		return ValidatedCommand{}, fmt.Errorf("%w: %q is world-writable", ErrInvalidCommand, real)
	}
	return ValidatedCommand{path: real}, nil
}

func validateFromPath(token, base string) (ValidatedCommand, error) {
	found, ok := cachedLookPath(token)
	if !ok {
		return ValidatedCommand{}, fmt.Errorf("%w: %q not found in PATH", ErrInvalidCommand, token)
	}
	real, err := resolveExecutable(found)
	if err != nil {
		return ValidatedCommand{}, err
	}
	if !matchesKnownEditor(base, real) {
		return ValidatedCommand{}, fmt.Errorf("%w: %q is not a known editor", ErrInvalidCommand, token)
	}
	return ValidatedCommand{path: real}, nil
}

// resolveExecutable applies the checks shared by both branches: symlink
// resolution, regular-file, executable bit, size ceiling.
func resolveExecutable(path string) (string, error) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("%w: resolving %q: %v", ErrInvalidCommand, path, err)
	}
	fi, err := os.Stat(real)
	if err != nil {
		return "", fmt.Errorf("%w: stat %q: %v", ErrInvalidCommand, real, err)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q is not a regular file", ErrInvalidCommand, real)
	}
	if err := unix.Access(real, unix.X_OK); err != nil {
		return "", fmt.Errorf("%w: %q is not executable", ErrInvalidCommand, real)
	}
	if fi.Size() > maxExecutableSize {
		return "", fmt.Errorf("%w: %q exceeds size ceiling", ErrInvalidCommand, real)
	}
	return real, nil
}

func matchesKnownEditor(base, resolved string) bool {
	lower := strings.ToLower(resolved)
	for _, editor := range knownSafeEditors {
		if base == editor || strings.Contains(lower, editor) {
			return true
		}
	}
	return false
}
