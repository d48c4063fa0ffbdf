package root

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/chore/internal/buildinfo"
	"github.com/flarebyte/chore/internal/testutil"
)

type outcome struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) outcome {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CHORE_LOG_LEVEL", "")
	var stdout, stderr bytes.Buffer
	code := Run(args, Streams{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr})
	return outcome{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func withTool(t *testing.T, found bool) {
	t.Helper()
	old := lookPath
	t.Cleanup(func() { lookPath = old })
	lookPath = func(name string) (string, error) {
		if !found {
			return "", errors.New("not found")
		}
		return "/fake/bin/" + name, nil
	}
}

func TestVersionOutputStable(t *testing.T) {
	oldVersion, oldCommit, oldDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	defer func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = oldVersion, oldCommit, oldDate }()
	buildinfo.Version, buildinfo.Commit, buildinfo.Date = "1.2.3", "", ""

	got := run(t, "--version")
	if got.code != 0 || got.stdout != "chore 1.2.3\n" {
		t.Fatalf("unexpected version output: %+v", got)
	}
}

func TestHelpSkipsPrecondition(t *testing.T) {
	withTool(t, false)
	got := run(t, "--help")
	if got.code != 0 {
		t.Fatalf("help must succeed, got %+v", got)
	}
	for _, want := range []string{"usage: chore", "check", "fmt", "--dry-run"} {
		if !strings.Contains(got.stdout, want) {
			t.Fatalf("help is missing %q:\n%s", want, got.stdout)
		}
	}
}

func TestMissingToolExits127(t *testing.T) {
	withTool(t, false)
	got := run(t, "--dir", t.TempDir(), "bogus")
	if got.code != 127 {
		t.Fatalf("expected 127, got %+v", got)
	}
	if !strings.Contains(got.stderr, `error: required tool "cargo" not found on PATH`) {
		t.Fatalf("unexpected stderr: %q", got.stderr)
	}
	if strings.Contains(got.stderr, "usage:") {
		t.Fatalf("usage must not be printed before the precondition passes")
	}
}

func TestUnknownCommandPrintsUsage(t *testing.T) {
	withTool(t, true)
	for _, args := range [][]string{{"--dir", t.TempDir()}, {"--dir", t.TempDir(), "build"}} {
		got := run(t, args...)
		if got.code != 2 {
			t.Fatalf("args %v: expected 2, got %+v", args, got)
		}
		if !strings.Contains(got.stderr, "usage: chore") || got.stdout != "" {
			t.Fatalf("usage belongs on stderr: %+v", got)
		}
	}
}

func TestUnknownFlagExits1(t *testing.T) {
	withTool(t, true)
	got := run(t, "--nope", "check")
	if got.code != 1 || !strings.Contains(got.stderr, "error: unknown flag: --nope") {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFlagsAfterTokenPassThrough(t *testing.T) {
	withTool(t, true)
	got := run(t, "--dir", t.TempDir(), "-n", "fmt", "--dry-run", "--", "--check")
	if got.code != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !strings.Contains(got.stderr, "+ cargo +nightly fmt --dry-run -- --check\n") {
		t.Fatalf("pass-through args must reach fmt verbatim:\n%s", got.stderr)
	}
	if !strings.Contains(got.stderr, "==> dry run: nothing was executed") {
		t.Fatalf("missing dry-run notice:\n%s", got.stderr)
	}
}

func TestDryRunCheckWithConfig(t *testing.T) {
	withTool(t, true)
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "chore.cue", `
configVersion: "1"
tool:          "cross"
toolchain:     "stable"
steps: lint: args: ["clippy", "--", "-D", "warnings"]
`, 0o644)

	got := run(t, "--dir", dir, "--dry-run", "check")
	if got.code != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
	want := []string{
		"==> fix\n+ cross fix --allow-dirty\n",
		"==> fmt\n+ cross +stable fmt\n",
		"==> lint\n+ cross clippy -- -D warnings\n",
		"==> doc\n+ cross doc\n",
	}
	last := -1
	for _, w := range want {
		i := strings.Index(got.stderr, w)
		if i <= last {
			t.Fatalf("step %q missing or out of order:\n%s", w, got.stderr)
		}
		last = i
	}
}

func TestInvalidConfigExits1(t *testing.T) {
	withTool(t, true)
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "chore.cue", "configVersion: \"1\"\ncommands: {}\n", 0o644)
	got := run(t, "--dir", dir, "check")
	if got.code != 1 || !strings.Contains(got.stderr, "unknown field") {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestMissingDirExits1(t *testing.T) {
	withTool(t, true)
	got := run(t, "--dir", filepath.Join(t.TempDir(), "absent"), "check")
	if got.code != 1 || !strings.Contains(got.stderr, "error: resolve working directory") {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestEntryDirUsedWithoutDirFlag(t *testing.T) {
	withTool(t, true)
	dir := t.TempDir()
	old := entryDir
	t.Cleanup(func() { entryDir = old })
	entryDir = func() (string, error) { return dir, nil }

	reportPath := filepath.Join(t.TempDir(), "run.yaml")
	got := run(t, "-n", "--report", reportPath, "fmt")
	if got.code != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
	b, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var r struct {
		Dir string `yaml:"dir"`
	}
	if err := yaml.Unmarshal(b, &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if r.Dir != dir && r.Dir != resolved {
		t.Fatalf("report dir = %q, want %q", r.Dir, dir)
	}
}

func TestReportSkippedOnUsageError(t *testing.T) {
	withTool(t, true)
	reportPath := filepath.Join(t.TempDir(), "run.yaml")
	got := run(t, "--dir", t.TempDir(), "--report", reportPath, "nope")
	if got.code != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if _, err := os.Stat(reportPath); !os.IsNotExist(err) {
		t.Fatalf("no report expected when nothing was dispatched")
	}
}
