package task

import (
	"context"

	"github.com/flarebyte/chore/internal/config"
	"github.com/flarebyte/chore/internal/toolexec"
)

// runCheck is fix, fmt, lint, then doc with warnings denied. The pass-through
// arguments are accepted but the sub-steps keep their configured argv.
func runCheck(ctx context.Context, env *Env, args []string) error {
	if len(args) > 0 {
		env.logger().WithField("args", args).Debug("check: pass-through arguments not forwarded to sub-steps")
	}
	return env.Sequence(ctx,
		env.step("fix", env.Config.Fix, nil),
		env.fmtStep(nil),
		env.step("lint", env.Config.Lint, nil),
		env.step("doc", env.Config.Doc, nil),
	)
}

// runFmt is a single formatter call on the configured toolchain channel; the
// pass-through arguments are appended to it.
func runFmt(ctx context.Context, env *Env, args []string) error {
	return env.Sequence(ctx, env.fmtStep(args))
}

func (e *Env) fmtStep(extra []string) Step {
	s := e.step("fmt", e.Config.Fmt, extra)
	if tc := e.Config.Toolchain; tc != "" {
		s.Inv.Args = append([]string{"+" + tc}, s.Inv.Args...)
	}
	return s
}

func (e *Env) step(name string, c config.Step, extra []string) Step {
	args := append(append([]string(nil), c.Args...), extra...)
	return Step{
		Name: name,
		Inv: toolexec.Invocation{
			Name: e.Config.Tool,
			Args: args,
			Dir:  e.Dir,
			Env:  c.Env,
		},
	}
}
