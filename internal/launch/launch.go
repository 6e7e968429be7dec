// Package launch starts the editor on a validated directory, fully detached
// from the widget process.
package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

var (
	ErrCommandNotFound = errors.New("editor executable not found")
	ErrPermission      = errors.New("editor executable not permitted")
)

// Handle records a successful launch.
type Handle struct {
	PID int
	Cmd string
	Dir string
	At  time.Time
}

// Open starts cmd on dir in its own session. The child keeps running if the
// widget exits; stdio is left at the os/exec default of /dev/null so the
// editor cannot block on our pipes.
func Open(cmd safety.ValidatedCommand, dir safety.ValidatedPath, log *logrus.Entry) (Handle, error) {
	c := exec.Command(cmd.String(), dir.String())
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	c.Env = os.Environ()

	if err := c.Start(); err != nil {
		return Handle{}, classifyStartError(cmd.String(), err)
	}

	h := Handle{PID: c.Process.Pid, Cmd: cmd.String(), Dir: dir.String(), At: time.Now()}
	log.WithFields(logrus.Fields{
		"command":   h.Cmd,
		"directory": h.Dir,
		"pid":       h.PID,
	}).Info("editor launched")

	// Reap the child when it eventually exits so it never lingers as a
	// zombie under the daemon.
	go func() { _ = c.Wait() }()

	return h, nil
}

func classifyStartError(cmd string, err error) error {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrCommandNotFound, cmd)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermission, cmd)
	default:
		return fmt.Errorf("launch %s: %w", cmd, err)
	}
}
