// Package config holds the widget's persisted settings: the editor command,
// favorite folders, the local control channel and logging. YAML is the native
// format; JSON is accepted for hand-migrated files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Version int `json:"version" yaml:"version"`

	Editor struct {
		// Command may carry arguments ("code --new-window"); only the first
		// token is ever executed.
		Command string `json:"command" yaml:"command"`
	} `json:"editor" yaml:"editor"`

	// FavoriteFolders are offered by the OPEN control command and the tray
	// menu; they are validated like any other candidate at use time.
	FavoriteFolders []string `json:"favorite_folders" yaml:"favorite_folders"`

	// Position is the floating button's last screen position. Opaque here;
	// only the UI shell reads or writes it.
	Position struct {
		X int `json:"x" yaml:"x"`
		Y int `json:"y" yaml:"y"`
	} `json:"position" yaml:"position"`

	Control struct {
		Enabled       bool   `json:"enabled" yaml:"enabled"`
		ListenAddress string `json:"listen_address" yaml:"listen_address"`
		ListenPort    int    `json:"listen_port" yaml:"listen_port"`
		Token         string `json:"token" yaml:"token"`
	} `json:"control" yaml:"control"`

	// Logging. If File is set, logs rotate there; else if Dir is set, logs go
	// to Dir/widget.log. Stderr defaults to true.
	Log struct {
		File     string `json:"file" yaml:"file"`
		Dir      string `json:"dir" yaml:"dir"`
		RotateMB int    `json:"rotate_mb" yaml:"rotate_mb"`
		Keep     int    `json:"keep" yaml:"keep"`
		Stderr   *bool  `json:"stderr" yaml:"stderr"`
	} `json:"log" yaml:"log"`
}

// DefaultPath is where the widget looks for its settings when no --config
// flag is given.
func DefaultPath() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "nautilus-vscode-widget", "config.yaml")
	}
	return "config.yaml"
}

// Load reads and parses a settings file by extension. A missing file is not
// an error: defaults are returned so first runs work unconfigured.
func Load(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyDefaults(&s)
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return s, fmt.Errorf("unsupported config extension %q (use .json/.yaml/.yml)", ext)
	}

	applyDefaults(&s)
	return s, nil
}

// Save writes the settings as YAML, creating parent directories as needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&s); err != nil {
		return err
	}
	return enc.Close()
}

func applyDefaults(s *Settings) {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Editor.Command == "" {
		s.Editor.Command = "code"
	}
	if s.Control.ListenAddress == "" {
		s.Control.ListenAddress = "127.0.0.1"
	}
	if s.Control.ListenPort == 0 {
		s.Control.ListenPort = 60770
	}
	if s.Log.RotateMB == 0 {
		s.Log.RotateMB = 10
	}
	if s.Log.Keep == 0 {
		s.Log.Keep = 10
	}
	if s.Log.Stderr == nil {
		v := true
		s.Log.Stderr = &v
	}
}
