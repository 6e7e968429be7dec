// Package envprobe classifies the desktop session and records which
// auxiliary tools are available. The snapshot is computed once per process;
// environment changes mid-session are not tracked.
package envprobe

import (
	"os"
	"os/exec"
	"strings"
	"sync"
)

const (
	DisplayX11     = "x11"
	DisplayWayland = "wayland"
)

// Snapshot is an immutable record of the desktop environment at probe time.
type Snapshot struct {
	DisplayServer string
	Desktop       string

	HasXdotool    bool // window-query tool
	HasWmctrl     bool // window-control tool
	HasXprop      bool // window-property tool
	HasSessionBus bool // session message bus reachable
}

var (
	mu     sync.Mutex
	probed bool
	cached Snapshot
)

// Detect returns the cached snapshot, probing on first call.
func Detect() Snapshot {
	mu.Lock()
	defer mu.Unlock()
	if !probed {
		cached = probe(os.Getenv, toolAvailable)
		probed = true
	}
	return cached
}

// Refresh recomputes the snapshot on demand and replaces the cached value,
// so a tool installed mid-session gets picked up after a reload.
func Refresh() Snapshot {
	s := probe(os.Getenv, toolAvailable)
	mu.Lock()
	cached = s
	probed = true
	mu.Unlock()
	return s
}

// probe takes its inputs as functions so classification is testable with
// literal environments.
func probe(getenv func(string) string, have func(string) bool) Snapshot {
	s := Snapshot{
		DisplayServer: DisplayX11,
		Desktop:       strings.ToLower(getenv("XDG_CURRENT_DESKTOP")),
		HasXdotool:    have("xdotool"),
		HasWmctrl:     have("wmctrl"),
		HasXprop:      have("xprop"),
		HasSessionBus: getenv("DBUS_SESSION_BUS_ADDRESS") != "",
	}
	if getenv("WAYLAND_DISPLAY") != "" || getenv("XDG_SESSION_TYPE") == "wayland" {
		s.DisplayServer = DisplayWayland
	}
	return s
}

func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
