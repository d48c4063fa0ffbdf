// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/flarebyte/chore/internal/toolexec"
)

// Recorder is a toolexec.Runner that records every invocation and answers
// the i-th call with Codes[i] (0 once Codes is exhausted).
type Recorder struct {
	Codes []int
	Calls []toolexec.Invocation
}

func (r *Recorder) Run(_ context.Context, inv toolexec.Invocation) toolexec.Result {
	i := len(r.Calls)
	r.Calls = append(r.Calls, inv)
	code := 0
	if i < len(r.Codes) {
		code = r.Codes[i]
	}
	return toolexec.Result{ExitCode: code}
}

// Argvs returns the recorded command lines.
func (r *Recorder) Argvs() []string {
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.String())
	}
	return out
}

// WriteFile writes content under dir, creating parents.
func WriteFile(t *testing.T, dir, rel, content string, perm os.FileMode) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), perm); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
