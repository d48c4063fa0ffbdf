// Package dispatch maps the first command-line token to a task handler.
//
// Ordering is fixed: the tool precondition is checked before the token is
// looked at, and an unknown or missing token prints the usage listing
// without invoking anything.
package dispatch

import (
	"context"
	"fmt"
	"io"

	"github.com/flarebyte/chore/internal/task"
	"github.com/flarebyte/chore/internal/toolexec"
)

// Program is the name shown in the usage listing.
const Program = "chore"

// Exit codes of the two dispatcher failures.
const (
	ExitUsage       = 2
	ExitEnvironment = toolexec.ExitNotFound
)

// Startup is the precondition state, computed once before dispatch.
type Startup struct {
	// Tool is the required executable.
	Tool string
	// ToolPath is where Tool resolved; empty when it was not found.
	ToolPath string
}

// Probe resolves tool with look and records the outcome.
func Probe(tool string, look func(string) (string, error)) Startup {
	s := Startup{Tool: tool}
	if p, err := look(tool); err == nil {
		s.ToolPath = p
	}
	return s
}

// EnvironmentError reports a missing required tool.
type EnvironmentError struct{ Tool string }

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("required tool %q not found on PATH", e.Tool)
}

func (e *EnvironmentError) ExitCode() int { return ExitEnvironment }

// UsageError reports a missing or unrecognized command token.
type UsageError struct{ Token string }

func (e *UsageError) Error() string {
	if e.Token == "" {
		return "missing command"
	}
	return fmt.Sprintf("unknown command %q", e.Token)
}

func (e *UsageError) ExitCode() int { return ExitUsage }

// Dispatch runs args against the command registry. The handler's error is
// returned unchanged so its exit code reaches the process status.
func Dispatch(ctx context.Context, s Startup, env *task.Env, args []string) error {
	if s.ToolPath == "" {
		return &EnvironmentError{Tool: s.Tool}
	}
	if len(args) == 0 {
		task.Usage(usageWriter(env), Program)
		return &UsageError{}
	}
	cmd, ok := task.Lookup(args[0])
	if !ok {
		task.Usage(usageWriter(env), Program)
		return &UsageError{Token: args[0]}
	}
	if env.Log != nil {
		env.Log.WithField("command", cmd.String()).WithField("args", args[1:]).Debug("dispatch")
	}
	return cmd.Run(ctx, env, args[1:])
}

func usageWriter(env *task.Env) io.Writer {
	if env != nil && env.Diag != nil {
		return env.Diag.Writer()
	}
	return io.Discard
}
