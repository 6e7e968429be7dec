// cmd/nautilus-vscode-widget/main.go
// Floating-button companion for Nautilus: detects the active directory and
// opens the configured editor on it.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kardianos/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/config"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/detect"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/envprobe"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/widget"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
}

type program struct {
	configPath string

	quit   chan struct{}
	cancel context.CancelFunc
}

func (p *program) Start(s service.Service) error {
	p.quit = make(chan struct{})
	go p.run()
	return nil
}

func (p *program) run() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	defer cancel()

	log := logrus.WithField("component", "widget")

	store, err := config.NewStore(p.configPath, logrus.WithField("component", "config"))
	if err != nil {
		logrus.Fatalf("settings: %v", err)
	}
	initLogOutput(store.Snapshot())

	env := envprobe.Detect()
	logDiagnostics(env, store)

	resolver := detect.New(env, detect.WithLogger(logrus.WithField("component", "detect")))
	svc := widget.New(store, resolver, log)

	if err := store.Watch(ctx); err != nil {
		log.WithError(err).Warn("settings watcher unavailable")
	}
	startControlListener(ctx, store, svc, resolver)

	log.Infof("widget started (version %s)", version)
	<-p.quit
	log.Info("widget stopped")
}

func (p *program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
	}
	close(p.quit)
	return nil
}

func main() {
	configPath := pflag.String("config", config.DefaultPath(), "settings file (.yaml/.yml/.json)")
	resolveOnly := pflag.Bool("resolve", false, "resolve the active directory and editor, print them, and exit")
	openPath := pflag.String("open", "", "open the editor on a directory and exit")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("nautilus-vscode-widget %s (built %s)\n", version, buildDate)
		return
	}

	if *resolveOnly || *openPath != "" {
		os.Exit(runOnce(*configPath, *resolveOnly, *openPath))
	}

	svcConfig := &service.Config{
		Name:        "nautilus-vscode-widget",
		DisplayName: "Nautilus VSCode Widget",
		Description: "Opens an editor on the active Nautilus directory",
	}

	prg := &program{configPath: *configPath}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		logrus.Fatal(err)
	}

	if args := pflag.Args(); len(args) > 0 {
		if err := service.Control(s, args[0]); err != nil {
			logrus.Fatal(err)
		}
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() { <-c; _ = s.Stop() }()

	if err := s.Run(); err != nil {
		logrus.Fatal(err)
	}
}

// runOnce services the one-shot CLI modes without starting the daemon.
func runOnce(configPath string, resolveOnly bool, openPath string) int {
	log := logrus.WithField("component", "cli")

	store, err := config.NewStore(configPath, logrus.WithField("component", "config"))
	if err != nil {
		log.Error(err)
		return 1
	}

	env := envprobe.Detect()
	resolver := detect.New(env, detect.WithLogger(logrus.WithField("component", "detect")))
	svc := widget.New(store, resolver, log)
	ctx := context.Background()

	if openPath != "" {
		h, err := svc.OpenPath(ctx, openPath)
		if err != nil {
			log.Error(err)
			return 1
		}
		fmt.Printf("launched %s on %s (pid %d)\n", h.Cmd, h.Dir, h.PID)
		return 0
	}

	cmd, dir, err := svc.ResolveAndAuthorize(ctx)
	if err != nil {
		log.Error(err)
		return 1
	}
	fmt.Printf("directory: %s\neditor:    %s\n", dir.String(), cmd.String())
	return 0
}
