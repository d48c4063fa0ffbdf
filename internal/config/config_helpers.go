package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

var topLevelFields = []string{"configVersion", "tool", "toolchain", "steps"}

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, ErrUnsupportedFormat
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return v, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("%w: missing required field: %s", ErrInvalid, name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("%w: invalid type for field: %s (expected string)", ErrInvalid, name)
	}
	return nil
}

func decodeString(v cue.Value, name string) (string, error) {
	var s string
	if err := v.LookupPath(cue.ParsePath(name)).Decode(&s); err != nil {
		return "", fmt.Errorf("%w: invalid value for %s: %v", ErrInvalid, name, err)
	}
	return s, nil
}

// optionalString decodes name when present; ok is false when absent.
func optionalString(v cue.Value, name string) (s string, ok bool, err error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return "", false, nil
	}
	if err := requireStringField(v, name); err != nil {
		return "", false, err
	}
	s, err = decodeString(v, name)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(s), true, nil
}

// rejectUnknownFields fails on regular fields of v that are not in allowed.
// prefix is used in messages for nested structs.
func rejectUnknownFields(v cue.Value, prefix string, allowed []string) error {
	it, err := v.Fields()
	if err != nil {
		return fmt.Errorf("%w: %s must be a struct", ErrInvalid, strings.TrimSuffix(prefix, "."))
	}
	var unknown []string
	for it.Next() {
		name := it.Selector().String()
		if !contains(allowed, name) {
			unknown = append(unknown, prefix+name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: unknown field(s): %s", ErrInvalid, strings.Join(unknown, ", "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
