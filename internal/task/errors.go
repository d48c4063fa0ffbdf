package task

import (
	"fmt"
	"strings"
)

// StepError is a delegated failure. Its exit code becomes the process status.
type StepError struct {
	Step string
	Argv []string
	Code int
	// Err is set when the tool could not be run at all.
	Err error
}

func (e *StepError) Error() string {
	cmd := strings.Join(e.Argv, " ")
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, cmd, e.Err)
	}
	return fmt.Sprintf("%s failed: %s exited with status %d", e.Step, cmd, e.Code)
}

func (e *StepError) ExitCode() int { return e.Code }

func (e *StepError) Unwrap() error { return e.Err }
