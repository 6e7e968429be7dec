package safety

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDirectory_RejectsForbiddenSystemDirs(t *testing.T) {
	for _, dir := range []string{"/etc", "/proc", "/sys", "/dev", "/boot", "/var/log"} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		_, err := ValidateDirectory(dir)
		require.Error(t, err, dir)
		require.True(t, errors.Is(err, ErrInvalidPath), dir)
	}
}

func TestValidateDirectory_AcceptsHomeDescendant(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	project := filepath.Join(home, "Projects", "app")
	require.NoError(t, os.MkdirAll(project, 0o755))

	vp, err := ValidateDirectory(project)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(vp.String()))
	require.True(t, IsDir(vp.String()))
}

func TestValidateDirectory_ResolvesSymlinkBeforePolicy(t *testing.T) {
	// A benign-looking symlink under home that resolves to /etc must fail.
	home := t.TempDir()
	t.Setenv("HOME", home)

	link := filepath.Join(home, "harmless")
	require.NoError(t, os.Symlink("/etc", link))

	_, err := ValidateDirectory(link)
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestValidateDirectory_DefaultDeny(t *testing.T) {
	// /usr exists, is readable, is not literally forbidden, and is outside
	// every allowed root.
	_, err := ValidateDirectory("/usr")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestValidateDirectory_MissingAndNonDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := ValidateDirectory(filepath.Join(home, "nope"))
	require.ErrorIs(t, err, ErrInvalidPath)

	file := filepath.Join(home, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = ValidateDirectory(file)
	require.ErrorIs(t, err, ErrInvalidPath)

	_, err = ValidateDirectory("")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestValidateDirectory_Idempotent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, "stable")
	require.NoError(t, os.Mkdir(dir, 0o755))

	first, err := ValidateDirectory(dir)
	require.NoError(t, err)
	second, err := ValidateDirectory(dir)
	require.NoError(t, err)
	require.Equal(t, first.String(), second.String())
}

// The deny set is exact-match while the allow set is prefix-match. This
// asymmetry is deliberate: /var/log itself is refused, but a descendant of a
// forbidden directory is only refused because it falls outside the allowed
// roots, not because of its ancestry. Pinned here so a future "fix" is a
// conscious decision.
func TestForbiddenMatchIsExactAllowedMatchIsPrefix(t *testing.T) {
	require.True(t, isForbiddenDir("/var/log"))
	require.False(t, isForbiddenDir("/var/log/journal"))
	require.False(t, isForbiddenDir("/var"))

	roots := []string{"/tmp", "/home/alice"}
	require.True(t, underAllowedRoot("/tmp", roots))
	require.True(t, underAllowedRoot("/tmp/work", roots))
	require.True(t, underAllowedRoot("/home/alice/Projects/app", roots))
	require.False(t, underAllowedRoot("/home/alicettt", roots))
	require.False(t, underAllowedRoot("/var/log/journal", roots))
	require.False(t, underAllowedRoot("/etc", roots))
}
