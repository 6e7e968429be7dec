package detect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

const (
	nautilusBusName    = "org.gnome.Nautilus"
	nautilusWindowPath = "/org/gnome/Nautilus/window/1"
	nautilusWindowIfce = "org.gnome.Nautilus.Window"
)

var errToolUnavailable = errors.New("tool unavailable")

// BusClient reads the file manager's current location over the session bus.
type BusClient interface {
	FileManagerLocation(ctx context.Context) (string, error)
}

// sessionBus lazily opens one shared connection to the session message bus.
type sessionBus struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

func (b *sessionBus) connect() (*dbus.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return b.conn, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	b.conn = conn
	return conn, nil
}

func (b *sessionBus) FileManagerLocation(ctx context.Context) (string, error) {
	conn, err := b.connect()
	if err != nil {
		return "", err
	}

	obj := conn.Object(nautilusBusName, dbus.ObjectPath(nautilusWindowPath))
	call := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0,
		nautilusWindowIfce, "location")
	if call.Err != nil {
		return "", fmt.Errorf("location property: %w", call.Err)
	}

	var loc dbus.Variant
	if err := call.Store(&loc); err != nil {
		return "", fmt.Errorf("location property: %w", err)
	}
	uri, ok := loc.Value().(string)
	if !ok {
		return "", fmt.Errorf("location property: unexpected type %T", loc.Value())
	}
	return uri, nil
}

// fromSessionBus asks Nautilus itself for its location, but only when a
// Nautilus window currently has focus. The most reliable strategy on modern
// GNOME, so it runs first.
func (r *Resolver) fromSessionBus(ctx context.Context) (string, error) {
	if env := r.environment(); !env.HasSessionBus || !env.HasXdotool {
		return "", errToolUnavailable
	}

	qctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	windows, err := r.run.Output(qctx, "xdotool", "search", "--class", "nautilus")
	if err != nil || strings.TrimSpace(windows) == "" {
		return "", nil
	}

	fctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	focused, err := r.run.Output(fctx, "xdotool", "getwindowfocus")
	if err != nil {
		return "", nil
	}
	focused = strings.TrimSpace(focused)

	if !containsLine(windows, focused) {
		return "", nil
	}

	bctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	uri, err := r.bus.FileManagerLocation(bctx)
	if err != nil {
		return "", nil
	}

	path, ok := fileURIToPath(uri)
	if !ok || !safety.IsDir(path) {
		return "", nil
	}
	return path, nil
}

func containsLine(out, want string) bool {
	if want == "" {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

// fileURIToPath strips a file:// scheme and percent-decodes the remainder.
func fileURIToPath(s string) (string, bool) {
	idx := strings.Index(s, "file://")
	if idx < 0 {
		return "", false
	}
	raw := s[idx+len("file://"):]
	// Trim anything after the closing quote of a D-Bus variant rendering.
	if cut := strings.IndexAny(raw, "'\""); cut >= 0 {
		raw = raw[:cut]
	}
	path, err := url.PathUnescape(raw)
	if err != nil || !strings.HasPrefix(path, "/") {
		return "", false
	}
	return path, true
}
