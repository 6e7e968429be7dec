package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/config"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/detect"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/envprobe"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/widget"
)

const controlTimeout = 10 * time.Second

// startControlListener exposes a line-oriented local command channel:
//
//	ACTIVATE <token>
//	RESOLVE  <token>
//	OPEN     <token> <path>
//	RELOAD   <token>
//
// One command per connection, token required on every line.
func startControlListener(ctx context.Context, store *config.Store, svc *widget.Service, resolver *detect.Resolver) {
	s := store.Snapshot()
	log := logrus.WithField("component", "control")

	if !s.Control.Enabled {
		log.Info("control listener disabled by config")
		return
	}
	if _, err := store.EnsureControlToken(); err != nil {
		log.WithError(err).Error("control listener disabled: could not provision token")
		return
	}

	listenAddr := strings.TrimSpace(s.Control.ListenAddress)
	if listenAddr == "" {
		listenAddr = "127.0.0.1"
	}
	addr := fmt.Sprintf("%s:%d", listenAddr, s.Control.ListenPort)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Error("control listener failed to start")
		return
	}

	if listenAddr == "0.0.0.0" || listenAddr == "::" {
		log.Warn("control listener bound to wildcard address")
	}
	log.Infof("control listener active on %s", addr)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			go handleControlConn(ctx, conn, store, svc, resolver, log)
		}
	}()
}

func handleControlConn(ctx context.Context, conn net.Conn, store *config.Store, svc *widget.Service, resolver *detect.Resolver, log *logrus.Entry) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(controlTimeout))

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}

	cmd, token, arg, err := parseControlLine(scanner.Text())
	if err != nil {
		log.WithError(err).Error("control command rejected")
		fmt.Fprintln(conn, "ERR malformed command")
		return
	}
	if token != store.Snapshot().Control.Token {
		log.Error("control command rejected: invalid token")
		fmt.Fprintln(conn, "ERR invalid token")
		return
	}

	switch cmd {
	case "ACTIVATE":
		h, err := svc.Activate(ctx)
		if err != nil {
			log.WithError(err).Error("activate via control channel failed")
			fmt.Fprintf(conn, "ERR %v\n", err)
			return
		}
		fmt.Fprintf(conn, "OK launched %s on %s (pid %d)\n", h.Cmd, h.Dir, h.PID)

	case "RESOLVE":
		editor, dir, err := svc.ResolveAndAuthorize(ctx)
		if err != nil {
			fmt.Fprintf(conn, "ERR %v\n", err)
			return
		}
		fmt.Fprintf(conn, "OK %s %s\n", editor.String(), dir.String())

	case "OPEN":
		h, err := svc.OpenPath(ctx, arg)
		if err != nil {
			log.WithError(err).WithField("path", arg).Error("open via control channel failed")
			fmt.Fprintf(conn, "ERR %v\n", err)
			return
		}
		fmt.Fprintf(conn, "OK launched %s on %s (pid %d)\n", h.Cmd, h.Dir, h.PID)

	case "RELOAD":
		if err := store.Reload(); err != nil {
			log.WithError(err).Error("config reload via control channel failed")
			fmt.Fprintf(conn, "ERR %v\n", err)
			return
		}
		// Re-probe the session too: a tool installed since startup should
		// start counting after a reload.
		resolver.SetEnv(envprobe.Refresh())
		log.Info("config reloaded via control channel")
		fmt.Fprintln(conn, "OK reloaded")

	default:
		log.Errorf("unknown control command: %s", cmd)
		fmt.Fprintln(conn, "ERR unknown command")
	}
}

var errMalformedControl = errors.New("malformed control line")

// parseControlLine splits a command line into verb, token and optional
// argument. Only OPEN takes an argument; it may contain spaces.
func parseControlLine(line string) (cmd, token, arg string, err error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return "", "", "", errMalformedControl
	}

	cmd = strings.ToUpper(fields[0])
	token = fields[1]

	switch cmd {
	case "OPEN":
		if len(fields) < 3 {
			return "", "", "", errMalformedControl
		}
		arg = strings.Join(fields[2:], " ")
	case "ACTIVATE", "RESOLVE", "RELOAD":
		if len(fields) != 2 {
			return "", "", "", errMalformedControl
		}
	default:
		// Unknown verbs pass through so the handler can log them; token
		// still had to be present.
	}
	return cmd, token, arg, nil
}
