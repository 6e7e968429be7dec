package launch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func writeEditor(t *testing.T) safety.ValidatedCommand {
	t.Helper()
	script := filepath.Join(t.TempDir(), "gedit")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	cmd, err := safety.ValidateCommand(script)
	require.NoError(t, err)
	return cmd
}

func TestOpen_Detached(t *testing.T) {
	dir, err := safety.ValidateDirectory(t.TempDir())
	require.NoError(t, err)

	h, err := Open(writeEditor(t), dir, testLogger())
	require.NoError(t, err)
	require.Greater(t, h.PID, 0)
	require.Equal(t, dir.String(), h.Dir)
	require.False(t, h.At.IsZero())
}

func TestOpen_ExecutableRemovedAfterValidation(t *testing.T) {
	dir, err := safety.ValidateDirectory(t.TempDir())
	require.NoError(t, err)

	cmd := writeEditor(t)
	require.NoError(t, os.Remove(cmd.String()))

	_, err = Open(cmd, dir, testLogger())
	require.ErrorIs(t, err, ErrCommandNotFound)
}

func TestOpen_ExecutableBitRevokedAfterValidation(t *testing.T) {
	dir, err := safety.ValidateDirectory(t.TempDir())
	require.NoError(t, err)

	cmd := writeEditor(t)
	require.NoError(t, os.Chmod(cmd.String(), 0o644))

	_, err = Open(cmd, dir, testLogger())
	require.ErrorIs(t, err, ErrPermission)
}
