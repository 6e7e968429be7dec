package detect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatchChildDir_CaseInsensitive(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "MyProject")
	require.NoError(t, os.Mkdir(want, 0o755))

	require.Equal(t, want, matchChildDir(root, "myproject"))
	require.Equal(t, want, matchChildDir(root, "MYPROJECT"))
	require.Empty(t, matchChildDir(root, "other"))
	require.Empty(t, matchChildDir(filepath.Join(root, "gone"), "myproject"))
}

func TestSearchFolder_DepthLimit(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "target")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	shallow := filepath.Join(root, "a", "target")
	require.NoError(t, os.Mkdir(shallow, 0o755))

	deadline := time.Now().Add(time.Minute)
	require.Equal(t, shallow, searchFolder(root, "target", maxSearchDepth, deadline))
	// At depth 2 the four-level-deep copy is out of reach.
	require.NoError(t, os.RemoveAll(shallow))
	require.Empty(t, searchFolder(root, "target", maxSearchDepth, deadline))
}

func TestSearchFolder_SkipsHiddenAndNoise(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden", "target"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "target"), 0o755))

	deadline := time.Now().Add(time.Minute)
	require.Empty(t, searchFolder(root, "target", maxSearchDepth, deadline))

	visible := filepath.Join(root, "src", "target")
	require.NoError(t, os.MkdirAll(visible, 0o755))
	require.Equal(t, visible, searchFolder(root, "target", maxSearchDepth, deadline))
}

func TestSearchFolder_DoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(real, "inner"), 0o755))
	// Cycle back to the root. Following it would recurse forever without
	// the depth bound; the walk must not descend through it at all.
	require.NoError(t, os.Symlink(root, filepath.Join(real, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(real, "inner"), filepath.Join(root, "alias")))

	deadline := time.Now().Add(time.Minute)
	require.Empty(t, searchFolder(root, "alias", maxSearchDepth, deadline))
	require.Equal(t, filepath.Join(real, "inner"), searchFolder(root, "inner", maxSearchDepth, deadline))
}

func TestSearchFolder_RespectsDeadline(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	require.NoError(t, os.Mkdir(target, 0o755))

	expired := time.Now().Add(-time.Second)
	require.Empty(t, searchFolder(root, "target", maxSearchDepth, expired))
}
