// Package toolexec runs delegated tools as blocking subprocesses and reports
// how they exited. Output is never captured or transformed: the child
// inherits the streams it is given.
package toolexec

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// Exit codes used when the tool never produced one itself.
const (
	ExitFailure       = 1
	ExitNotExecutable = 126
	ExitNotFound      = 127
	exitSignalBase    = 128
)

// Invocation describes one delegated tool call.
type Invocation struct {
	Name string
	Args []string
	// Dir is the working directory of the child; it is always set by callers.
	Dir string
	// Env is layered over the parent environment.
	Env map[string]string
}

// Argv returns the full command line.
func (i Invocation) Argv() []string {
	return append([]string{i.Name}, i.Args...)
}

func (i Invocation) String() string { return strings.Join(i.Argv(), " ") }

// Result is the outcome of an Invocation.
type Result struct {
	ExitCode int
	Duration time.Duration
	// Err is set when the process could not be started or waited on.
	Err error
}

// OK reports a zero exit status.
func (r Result) OK() bool { return r.ExitCode == 0 && r.Err == nil }

// Runner executes invocations one at a time.
type Runner interface {
	Run(ctx context.Context, inv Invocation) Result
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *log.Logger
}

// Run starts inv and waits for it to finish. There is no timeout.
func (e Exec) Run(ctx context.Context, inv Invocation) Result {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = applyEnvOverlay(os.Environ(), inv.Env)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	e.logger().WithFields(log.Fields{
		"argv": inv.String(),
		"dir":  inv.Dir,
		"env":  envKeys(inv.Env),
	}).Debug("invoke")

	start := time.Now()
	err := cmd.Run()
	res := Result{ExitCode: exitCode(err), Duration: time.Since(start)}
	var ee *exec.ExitError
	if err != nil && !errors.As(err, &ee) {
		res.Err = err
	}

	e.logger().WithFields(log.Fields{
		"argv":     inv.String(),
		"code":     res.ExitCode,
		"duration": res.Duration.Round(time.Millisecond).String(),
	}).Debug("exited")
	return res
}

func (e Exec) logger() *log.Logger {
	if e.Log != nil {
		return e.Log
	}
	return log.StandardLogger()
}

// DryRun reports success for every invocation without starting anything.
type DryRun struct{}

func (DryRun) Run(context.Context, Invocation) Result { return Result{} }

// exitCode maps a Run error to a process status the way a POSIX shell would.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return exitSignalBase + int(ws.Signal())
		}
		if c := ee.ExitCode(); c > 0 {
			return c
		}
		return ExitFailure
	}
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ExitNotFound
	case errors.Is(err, fs.ErrPermission):
		return ExitNotExecutable
	}
	return ExitFailure
}

// LookPath resolves a required executable on PATH.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func applyEnvOverlay(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return append([]string(nil), base...)
	}
	m := map[string]string{}
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		m[kv[:i]] = kv[i+1:]
	}
	for k, v := range overlay {
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func envKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
