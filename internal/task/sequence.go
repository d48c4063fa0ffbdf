package task

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/flarebyte/chore/internal/toolexec"
)

// Step is one delegated tool call inside a handler.
type Step struct {
	Name string
	Inv  toolexec.Invocation
}

// Sequence runs steps in order and stops at the first failure, returning
// its *StepError. Steps after a failure are never started.
func (e *Env) Sequence(ctx context.Context, steps ...Step) error {
	for _, s := range steps {
		o := e.run(ctx, s)
		if err := o.AsError(); err != nil {
			e.logger().WithFields(log.Fields{"step": s.Name, "code": o.ExitCode}).Debug("sequence stopped")
			return err
		}
	}
	return nil
}

func (e *Env) run(ctx context.Context, s Step) Outcome {
	if e.Diag != nil {
		e.Diag.Infof("%s", s.Name)
		e.Diag.Command(s.Inv.Argv())
	}
	res := e.Runner.Run(ctx, s.Inv)
	o := Outcome{
		Step:     s.Name,
		Argv:     s.Inv.Argv(),
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Err:      res.Err,
	}
	e.Outcomes = append(e.Outcomes, o)
	return o
}
