package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

var stepFields = []string{"args", "env"}

func parseSteps(v cue.Value, cfg *Config) error {
	sv := v.LookupPath(cue.ParsePath("steps"))
	if !sv.Exists() {
		return nil
	}
	if sv.Kind() != cue.StructKind {
		return fmt.Errorf("%w: invalid type for field: steps (expected struct)", ErrInvalid)
	}
	if err := rejectUnknownFields(sv, "steps.", StepNames); err != nil {
		return err
	}
	for _, name := range StepNames {
		stv := sv.LookupPath(cue.ParsePath(name))
		if !stv.Exists() {
			continue
		}
		if err := parseStep(stv, "steps."+name, cfg.stepRef(name)); err != nil {
			return err
		}
	}
	return nil
}

func parseStep(v cue.Value, path string, dst *Step) error {
	if v.Kind() != cue.StructKind {
		return fmt.Errorf("%w: invalid type for field: %s (expected struct)", ErrInvalid, path)
	}
	if err := rejectUnknownFields(v, path+".", stepFields); err != nil {
		return err
	}
	if av := v.LookupPath(cue.ParsePath("args")); av.Exists() {
		if av.Kind() != cue.ListKind {
			return fmt.Errorf("%w: invalid type for field: %s.args (expected list of strings)", ErrInvalid, path)
		}
		var args []string
		if err := av.Decode(&args); err != nil {
			return fmt.Errorf("%w: invalid value for %s.args: %v", ErrInvalid, path, err)
		}
		if len(args) == 0 {
			return fmt.Errorf("%w: %s.args must not be empty", ErrInvalid, path)
		}
		dst.Args = args
	}
	if ev := v.LookupPath(cue.ParsePath("env")); ev.Exists() {
		if ev.Kind() != cue.StructKind {
			return fmt.Errorf("%w: invalid type for field: %s.env (expected struct of strings)", ErrInvalid, path)
		}
		env := map[string]string{}
		if err := ev.Decode(&env); err != nil {
			return fmt.Errorf("%w: invalid value for %s.env: %v", ErrInvalid, path, err)
		}
		dst.Env = env
	}
	return nil
}
