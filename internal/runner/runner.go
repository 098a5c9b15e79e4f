// Package runner executes the compiled server bundle as a child process and
// restarts it after each successful rebuild. The child owns the declared
// application port; this process never listens on it.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/blitz-web/blitz/internal/eventbus"
)

// Options configures a Runner.
type Options struct {
	// Interpreter is the executable the bundle runs under. Defaults to node.
	Interpreter string

	// Script is the compiled server bundle path.
	Script string

	// Port is exported to the child as PORT.
	Port int

	Logger *slog.Logger
}

// Runner manages the server child process.
type Runner struct {
	mu   sync.Mutex
	opts Options
	ctx  context.Context
	cmd  *exec.Cmd
}

// New creates a Runner. Children are bound to ctx: canceling it kills the
// running server.
func New(ctx context.Context, opts Options) *Runner {
	if opts.Interpreter == "" {
		opts.Interpreter = "node"
	}
	return &Runner{opts: opts, ctx: ctx}
}

// Handle is an eventbus.Listener: every successful node-target build restarts
// the server process.
func (r *Runner) Handle(e eventbus.Event) {
	if e.Type != eventbus.BuildSucceeded || e.Target != "node" {
		return
	}
	if err := r.Restart(); err != nil && r.opts.Logger != nil {
		r.opts.Logger.Error("restarting server bundle", slog.Any("error", err))
	}
}

// Restart stops any running child and starts a fresh one.
func (r *Runner) Restart() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()

	cmd := exec.CommandContext(r.ctx, r.opts.Interpreter, r.opts.Script)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PORT="+strconv.Itoa(r.opts.Port))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s %s: %w", r.opts.Interpreter, r.opts.Script, err)
	}
	r.cmd = cmd

	if r.opts.Logger != nil {
		r.opts.Logger.Info("server bundle started",
			slog.String("script", r.opts.Script),
			slog.Int("pid", cmd.Process.Pid),
		)
	}

	// Reap the child when it exits on its own.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Stop kills the running child, if any.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Running reports whether a child process is currently managed.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

func (r *Runner) stopLocked() {
	if r.cmd == nil {
		return
	}
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	r.cmd = nil
}
