package main

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/config"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/envprobe"
)

// logDiagnostics writes the startup banner: what the environment looks like
// and which detection strategies will actually be able to run.
func logDiagnostics(env envprobe.Snapshot, store *config.Store) {
	log := logrus.WithField("component", "diagnostics")
	s := store.Snapshot()

	log.WithFields(logrus.Fields{
		"version":        version,
		"built":          buildDate,
		"go":             runtime.Version(),
		"os":             runtime.GOOS + "/" + runtime.GOARCH,
		"config":         store.Path(),
		"display_server": env.DisplayServer,
		"desktop":        env.Desktop,
	}).Info("starting")

	log.WithFields(logrus.Fields{
		"DESKTOP_SESSION":  os.Getenv("DESKTOP_SESSION"),
		"XDG_SESSION_TYPE": os.Getenv("XDG_SESSION_TYPE"),
		"WAYLAND_DISPLAY":  os.Getenv("WAYLAND_DISPLAY"),
		"DISPLAY":          os.Getenv("DISPLAY"),
	}).Info("session environment")

	log.WithFields(logrus.Fields{
		"xdotool":     env.HasXdotool,
		"wmctrl":      env.HasWmctrl,
		"xprop":       env.HasXprop,
		"session_bus": env.HasSessionBus,
	}).Info("detection tooling")

	if env.DisplayServer == envprobe.DisplayWayland {
		log.Warn("wayland session: window-title detection degraded, session-bus and fallback strategies carry the load")
	}
	if !env.HasXdotool {
		log.Warn("xdotool not installed: active-window detection unavailable")
	}
	if !env.HasSessionBus {
		log.Warn("no session bus address: file-manager query unavailable")
	}
	if !editorOnPath() {
		log.Warn("no code or codium on PATH: fallback scan will check install locations")
	}

	log.WithFields(logrus.Fields{
		"editor":          s.Editor.Command,
		"favorites":       len(s.FavoriteFolders),
		"control_enabled": s.Control.Enabled,
	}).Info("settings loaded")
}

func editorOnPath() bool {
	for _, name := range []string{"code", "codium"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
