package task

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/flarebyte/chore/internal/config"
	"github.com/flarebyte/chore/internal/term"
	"github.com/flarebyte/chore/internal/toolexec"
)

// Env carries the startup values handlers need. It is built once per
// invocation; handlers never consult globals or the process cwd.
type Env struct {
	// Dir is the normalized working directory of every delegated call.
	Dir    string
	Config config.Config
	Runner toolexec.Runner
	Diag   *term.Diag
	Log    *log.Logger

	// Outcomes collects every step that ran, in order.
	Outcomes []Outcome
}

// Outcome is the result of one step: success, or failure carrying the
// delegated exit code.
type Outcome struct {
	Step     string
	Argv     []string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Failed reports whether the step ended the sequence.
func (o Outcome) Failed() bool { return o.ExitCode != 0 || o.Err != nil }

// AsError converts a failed outcome into a *StepError, nil otherwise.
func (o Outcome) AsError() error {
	if !o.Failed() {
		return nil
	}
	code := o.ExitCode
	if code == 0 {
		code = toolexec.ExitFailure
	}
	return &StepError{Step: o.Step, Argv: o.Argv, Code: code, Err: o.Err}
}

func (e *Env) logger() *log.Logger {
	if e.Log != nil {
		return e.Log
	}
	return log.StandardLogger()
}
