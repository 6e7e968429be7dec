package envprobe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func noTools(string) bool  { return false }
func allTools(string) bool { return true }

func TestProbe_DefaultsToX11(t *testing.T) {
	s := probe(fakeEnv(map[string]string{"XDG_CURRENT_DESKTOP": "GNOME"}), noTools)
	require.Equal(t, DisplayX11, s.DisplayServer)
	require.Equal(t, "gnome", s.Desktop)
	require.False(t, s.HasXdotool)
	require.False(t, s.HasSessionBus)
}

func TestProbe_WaylandFromDisplayVariable(t *testing.T) {
	s := probe(fakeEnv(map[string]string{"WAYLAND_DISPLAY": "wayland-0"}), noTools)
	require.Equal(t, DisplayWayland, s.DisplayServer)
}

func TestProbe_WaylandFromSessionType(t *testing.T) {
	s := probe(fakeEnv(map[string]string{"XDG_SESSION_TYPE": "wayland"}), noTools)
	require.Equal(t, DisplayWayland, s.DisplayServer)
}

func TestProbe_ToolAndBusFlags(t *testing.T) {
	s := probe(fakeEnv(map[string]string{
		"DBUS_SESSION_BUS_ADDRESS": "unix:path=/run/user/1000/bus",
	}), allTools)
	require.True(t, s.HasXdotool)
	require.True(t, s.HasWmctrl)
	require.True(t, s.HasXprop)
	require.True(t, s.HasSessionBus)
}

func TestRefresh_RecomputesAndReplacesCache(t *testing.T) {
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/tmp/bus")
	s := Refresh()
	require.True(t, s.HasSessionBus)
	require.Equal(t, s, Detect())

	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "")
	s = Refresh()
	require.False(t, s.HasSessionBus)
	require.Equal(t, s, Detect())
}
