package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromWindowProperties_FileURI(t *testing.T) {
	dir := t.TempDir()
	xprop := `WM_NAME(STRING) = "Files"
_NET_WM_NAME(UTF8_STRING) = "file://` + dir + `"
`
	r := New(allToolsEnv(),
		WithRunner(stubRunner{outputs: map[string]string{
			"xprop -id 42 WM_NAME _NET_WM_NAME": xprop,
		}}),
		WithHome(t.TempDir()),
	)

	got, err := r.fromWindowProperties(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, dir, got)
}

func TestFromWindowProperties_QuotedPath(t *testing.T) {
	dir := t.TempDir()
	xprop := `WM_NAME(STRING) = "` + dir + `"
_NET_WM_NAME(UTF8_STRING) = "/does/not/exist"
`
	r := New(allToolsEnv(),
		WithRunner(stubRunner{outputs: map[string]string{
			"xprop -id 7 WM_NAME _NET_WM_NAME": xprop,
		}}),
		WithHome(t.TempDir()),
	)

	got, err := r.fromWindowProperties(context.Background(), "7")
	require.NoError(t, err)
	require.Equal(t, dir, got)
}

func TestFromWindowProperties_NothingUsable(t *testing.T) {
	r := New(allToolsEnv(),
		WithRunner(stubRunner{outputs: map[string]string{
			"xprop -id 7 WM_NAME _NET_WM_NAME": `WM_NAME(STRING) = "Untitled Document"`,
		}}),
		WithHome(t.TempDir()),
	)

	got, err := r.fromWindowProperties(context.Background(), "7")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFromWindowProperties_RequiresXprop(t *testing.T) {
	env := allToolsEnv()
	env.HasXprop = false
	r := New(env, WithRunner(stubRunner{}), WithHome(t.TempDir()))

	_, err := r.fromWindowProperties(context.Background(), "7")
	require.ErrorIs(t, err, errToolUnavailable)
}

func TestFromActiveWindow_FallsThroughToProperties(t *testing.T) {
	dir := t.TempDir()
	// Title classifies as a file manager but names no real folder, so the
	// strategy must go on to inspect the raw window properties.
	r := New(allToolsEnv(),
		WithRunner(stubRunner{outputs: map[string]string{
			"xdotool getactivewindow":           "31\n",
			"xdotool getwindowname 31":          "remembered place - Nautilus\n",
			"xprop -id 31 WM_NAME _NET_WM_NAME": `_NET_WM_NAME(UTF8_STRING) = "file://` + dir + `"`,
		}}),
		WithHome(t.TempDir()),
	)

	got, err := r.fromActiveWindow(context.Background())
	require.NoError(t, err)
	require.Equal(t, dir, got)
}

func TestFromActiveWindow_IgnoresForeignWindows(t *testing.T) {
	r := New(allToolsEnv(),
		WithRunner(stubRunner{outputs: map[string]string{
			"xdotool getactivewindow":  "31\n",
			"xdotool getwindowname 31": "Some IDE - main.go\n",
		}}),
		WithHome(t.TempDir()),
	)

	got, err := r.fromActiveWindow(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}
