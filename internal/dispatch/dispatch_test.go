package dispatch

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/flarebyte/chore/internal/config"
	"github.com/flarebyte/chore/internal/logging"
	"github.com/flarebyte/chore/internal/task"
	"github.com/flarebyte/chore/internal/term"
	"github.com/flarebyte/chore/internal/testutil"
)

var present = Startup{Tool: "cargo", ToolPath: "/usr/bin/cargo"}

func newEnv(rec *testutil.Recorder, diag *bytes.Buffer) *task.Env {
	return &task.Env{
		Dir:    "/repo",
		Config: config.Defaults(),
		Runner: rec,
		Diag:   term.New(diag, true),
		Log:    logging.Discard(),
	}
}

func exitCodeOf(t *testing.T, err error) int {
	t.Helper()
	ec, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatalf("error %v carries no exit code", err)
	}
	return ec.ExitCode()
}

func TestDispatch_UsageOnMissingOrUnknownToken(t *testing.T) {
	cases := map[string][]string{
		"empty":        nil,
		"unknown":      {"build"},
		"flag-like":    {"--check"},
		"case differs": {"CHECK", "x"},
		"blank":        {""},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var diag bytes.Buffer
			rec := &testutil.Recorder{}
			err := Dispatch(context.Background(), present, newEnv(rec, &diag), args)

			var ue *UsageError
			if !errors.As(err, &ue) {
				t.Fatalf("expected *UsageError, got %v", err)
			}
			if exitCodeOf(t, err) != ExitUsage {
				t.Fatalf("unexpected exit code")
			}
			if len(rec.Calls) != 0 {
				t.Fatalf("no tool may run on usage error, got %v", rec.Argvs())
			}
			out := diag.String()
			for _, c := range task.Commands() {
				if !strings.Contains(out, c.String()) || !strings.Contains(out, c.Summary()) {
					t.Fatalf("usage is missing %s:\n%s", c, out)
				}
			}
		})
	}
}

func TestDispatch_MissingToolBeforeToken(t *testing.T) {
	for _, args := range [][]string{nil, {"nope"}, {"check"}, {"fmt"}} {
		var diag bytes.Buffer
		rec := &testutil.Recorder{}
		err := Dispatch(context.Background(), Startup{Tool: "cargo"}, newEnv(rec, &diag), args)

		var ee *EnvironmentError
		if !errors.As(err, &ee) {
			t.Fatalf("args %v: expected *EnvironmentError, got %v", args, err)
		}
		if exitCodeOf(t, err) != ExitEnvironment {
			t.Fatalf("unexpected exit code")
		}
		if err.Error() != `required tool "cargo" not found on PATH` {
			t.Fatalf("unexpected message: %v", err)
		}
		if diag.Len() != 0 {
			t.Fatalf("usage must not be evaluated, got %q", diag.String())
		}
		if len(rec.Calls) != 0 {
			t.Fatalf("no tool may run, got %v", rec.Argvs())
		}
	}
}

func TestDispatch_RoutesCheck(t *testing.T) {
	var diag bytes.Buffer
	rec := &testutil.Recorder{}
	if err := Dispatch(context.Background(), present, newEnv(rec, &diag), []string{"check"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	want := []string{"cargo fix --allow-dirty", "cargo +nightly fmt", "cargo clippy", "cargo doc"}
	if !reflect.DeepEqual(rec.Argvs(), want) {
		t.Fatalf("unexpected calls: %v", rec.Argvs())
	}
}

func TestDispatch_PropagatesHandlerStatus(t *testing.T) {
	var diag bytes.Buffer
	rec := &testutil.Recorder{Codes: []int{0, 0, 101}}
	err := Dispatch(context.Background(), present, newEnv(rec, &diag), []string{"check"})
	if exitCodeOf(t, err) != 101 {
		t.Fatalf("unexpected exit code for %v", err)
	}
	if len(rec.Calls) != 3 {
		t.Fatalf("doc must not run after lint failed: %v", rec.Argvs())
	}
}

func TestDispatch_FmtPassThrough(t *testing.T) {
	var diag bytes.Buffer
	rec := &testutil.Recorder{}
	if err := Dispatch(context.Background(), present, newEnv(rec, &diag), []string{"fmt", "--all"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !reflect.DeepEqual(rec.Argvs(), []string{"cargo +nightly fmt --all"}) {
		t.Fatalf("unexpected calls: %v", rec.Argvs())
	}
}

func TestProbe(t *testing.T) {
	found := Probe("cargo", func(string) (string, error) { return "/bin/cargo", nil })
	if found.ToolPath != "/bin/cargo" || found.Tool != "cargo" {
		t.Fatalf("unexpected startup: %+v", found)
	}
	missing := Probe("cargo", func(string) (string, error) { return "", errors.New("not found") })
	if missing.ToolPath != "" {
		t.Fatalf("unexpected startup: %+v", missing)
	}
}
