// Package detect guesses which directory the user is currently acting on in
// their file manager. Strategies are tried in a fixed priority order; each
// one swallows its own failures so a broken tool only costs one candidate.
package detect

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/envprobe"
	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

// Per-invocation budgets for external tools. The recursive name search has
// its own 2-second budget in search.go.
const (
	toolTimeout  = 2 * time.Second
	queryTimeout = 1 * time.Second
)

// Outcome of a single detection attempt.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Attempt is a transient diagnostic record, one per strategy per resolution.
type Attempt struct {
	Strategy string
	Elapsed  time.Duration
	Outcome  string
	Path     string
	Reason   string
}

// Resolver orchestrates the detection strategies.
type Resolver struct {
	env   envprobe.Snapshot
	run   ToolRunner
	bus   BusClient
	home  string
	getwd func() (string, error)
	log   *logrus.Entry

	mu       sync.Mutex
	attempts []Attempt
}

type Option func(*Resolver)

// WithRunner replaces the external tool runner.
func WithRunner(run ToolRunner) Option { return func(r *Resolver) { r.run = run } }

// WithBus replaces the session-bus client.
func WithBus(bus BusClient) Option { return func(r *Resolver) { r.bus = bus } }

// WithHome overrides the user home directory.
func WithHome(home string) Option { return func(r *Resolver) { r.home = home } }

// WithGetwd overrides the working-directory lookup used by the fallback.
func WithGetwd(fn func() (string, error)) Option { return func(r *Resolver) { r.getwd = fn } }

// WithLogger attaches a log entry for per-attempt diagnostics.
func WithLogger(log *logrus.Entry) Option { return func(r *Resolver) { r.log = log } }

func New(env envprobe.Snapshot, opts ...Option) *Resolver {
	r := &Resolver{
		env:   env,
		run:   execRunner{},
		bus:   &sessionBus{},
		getwd: os.Getwd,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.home = home
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the strategies in priority order and returns the first
// candidate that exists as a directory. The boolean is false when every
// strategy came up empty. Full allow/deny validation of the winner is the
// caller's job; the resolver only guarantees "exists and is a directory".
func (r *Resolver) Resolve(ctx context.Context) (string, bool) {
	strategies := []struct {
		name string
		fn   func(context.Context) (string, error)
	}{
		{"session-bus", r.fromSessionBus},
		{"active-window", r.fromActiveWindow},
		{"fallback", r.fromFallback},
	}

	attempts := make([]Attempt, 0, len(strategies))
	defer func() {
		r.mu.Lock()
		r.attempts = attempts
		r.mu.Unlock()
	}()

	for _, s := range strategies {
		start := time.Now()
		dir, err := s.fn(ctx)
		elapsed := time.Since(start)

		a := Attempt{Strategy: s.name, Elapsed: elapsed}
		switch {
		case err != nil:
			a.Outcome = OutcomeError
			a.Reason = err.Error()
		case dir == "" || !safety.IsDir(dir):
			a.Outcome = OutcomeNotFound
		default:
			a.Outcome = OutcomeFound
			a.Path = dir
		}
		attempts = append(attempts, a)

		r.log.WithFields(logrus.Fields{
			"strategy": a.Strategy,
			"elapsed":  a.Elapsed,
			"outcome":  a.Outcome,
		}).Debug("detection attempt")

		if a.Outcome == OutcomeFound {
			r.log.WithField("directory", dir).Infof("directory detected via %s", s.name)
			return dir, true
		}
	}

	r.log.Warn("no directory detected by any strategy")
	return "", false
}

// SetEnv replaces the environment snapshot gating the strategies, typically
// after an envprobe.Refresh.
func (r *Resolver) SetEnv(env envprobe.Snapshot) {
	r.mu.Lock()
	r.env = env
	r.mu.Unlock()
}

func (r *Resolver) environment() envprobe.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.env
}

// LastAttempts returns the diagnostic records from the most recent Resolve.
func (r *Resolver) LastAttempts() []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}
