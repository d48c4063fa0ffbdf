package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flarebyte/chore/internal/buildinfo"
	"github.com/flarebyte/chore/internal/config"
	"github.com/flarebyte/chore/internal/dispatch"
	"github.com/flarebyte/chore/internal/logging"
	"github.com/flarebyte/chore/internal/report"
	"github.com/flarebyte/chore/internal/task"
	"github.com/flarebyte/chore/internal/term"
	"github.com/flarebyte/chore/internal/toolexec"
	"github.com/flarebyte/chore/internal/workspace"
)

// Streams are the process streams handed to delegated tools and diagnostics.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type exitCoder interface {
	ExitCode() int
}

// Swapped in tests.
var (
	entryDir = workspace.EntryDir
	lookPath = toolexec.LookPath
)

type app struct {
	streams Streams
	diag    *term.Diag

	dir        string
	configPath string
	logLevel   string
	verbose    bool
	noColor    bool
	dryRun     bool
	reportPath string
}

// NewRootCmd creates the root command for chore. It has no cobra
// subcommands: the first positional token is routed by the dispatcher and
// flags are only recognized before it.
func NewRootCmd(s Streams) *cobra.Command {
	return newRootCmd(&app{streams: s})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chore [flags] <command> [args...]",
		Short:         "Run the workspace chores: fix, format, lint and doc checks",
		Version:       buildinfo.Summary(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.run,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate("chore {{.Version}}\n")
	cmd.SetIn(a.streams.Stdin)
	cmd.SetOut(a.streams.Stdout)
	cmd.SetErr(a.streams.Stderr)
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		w := c.OutOrStdout()
		task.Usage(w, dispatch.Program)
		_, _ = fmt.Fprintf(w, "\nflags:\n%s", c.Flags().FlagUsages())
	})

	f := cmd.Flags()
	f.SetInterspersed(false)
	f.StringVar(&a.dir, "dir", "", "Run tools in this directory instead of the detected workspace root")
	f.StringVar(&a.configPath, "config", "", "Path to config file (.cue), default <dir>/"+config.FileName)
	f.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.EnvLevel)
	f.BoolVarP(&a.verbose, "verbose", "v", false, "Shortcut for --log-level debug")
	f.BoolVar(&a.noColor, "no-color", false, "Disable colored diagnostics")
	f.BoolVarP(&a.dryRun, "dry-run", "n", false, "Print each step without running it")
	f.StringVar(&a.reportPath, "report", "", "Write a YAML run report to this path")
	return cmd
}

// Run executes chore with args and returns the process exit status.
func Run(args []string, s Streams) int {
	a := &app{streams: s}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	if a.diag == nil {
		a.diag = term.New(s.Stderr, noColorEnv())
	}
	// Single line, no usage dump or stack trace.
	if msg := strings.Join(strings.Fields(err.Error()), " "); msg != "" {
		a.diag.Fatalf("%s", msg)
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		if c := ec.ExitCode(); c != 0 {
			return c
		}
	}
	return toolexec.ExitFailure
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	a.diag = term.New(a.streams.Stderr, a.noColor || noColorEnv())
	logger := logging.New(a.streams.Stderr, a.level())

	ws, err := a.workspace()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	cfg, err := config.Load(ws.Dir, a.configPath)
	if err != nil {
		return err
	}
	startup := dispatch.Probe(cfg.Tool, lookPath)
	logger.WithFields(log.Fields{
		"dir":      ws.Dir,
		"repo":     ws.Repo,
		"config":   cfg.Source,
		"tool":     startup.Tool,
		"toolPath": startup.ToolPath,
		"dryRun":   a.dryRun,
	}).Debug("startup")

	var runner toolexec.Runner = toolexec.Exec{
		Stdin:  a.streams.Stdin,
		Stdout: a.streams.Stdout,
		Stderr: a.streams.Stderr,
		Log:    logger,
	}
	if a.dryRun {
		runner = toolexec.DryRun{}
	}
	env := &task.Env{
		Dir:    ws.Dir,
		Config: cfg,
		Runner: runner,
		Diag:   a.diag,
		Log:    logger,
	}

	runErr := dispatch.Dispatch(cmd.Context(), startup, env, args)
	if dispatched(runErr) && a.reportPath != "" {
		if err := a.writeReport(ws, env, args, runErr); err != nil {
			if runErr != nil {
				a.diag.Warnf("write report: %v", err)
				return runErr
			}
			return fmt.Errorf("write report: %w", err)
		}
	}
	if runErr == nil && a.dryRun {
		a.diag.Infof("dry run: nothing was executed")
	}
	return runErr
}

func (a *app) level() string {
	if a.verbose {
		return "debug"
	}
	if a.logLevel != "" {
		return a.logLevel
	}
	return os.Getenv(logging.EnvLevel)
}

func (a *app) workspace() (workspace.Workspace, error) {
	if a.dir != "" {
		return workspace.Locate(a.dir, false)
	}
	start, err := entryDir()
	if err != nil {
		return workspace.Workspace{}, err
	}
	return workspace.Locate(start, true)
}

func (a *app) writeReport(ws workspace.Workspace, env *task.Env, args []string, runErr error) error {
	r := report.Run{
		Command: args[0],
		Args:    args[1:],
		Dir:     ws.Dir,
		Commit:  ws.Commit,
		DryRun:  a.dryRun,
		Steps:   env.Outcomes,
	}
	if runErr != nil {
		r.ExitCode = toolexec.ExitFailure
		var ec exitCoder
		if errors.As(runErr, &ec) {
			r.ExitCode = ec.ExitCode()
		}
	}
	path, err := filepath.Abs(a.reportPath)
	if err != nil {
		return err
	}
	return report.Write(path, r)
}

// dispatched reports whether a handler ran, i.e. neither dispatcher
// failure stopped the invocation.
func dispatched(err error) bool {
	var ue *dispatch.UsageError
	var ee *dispatch.EnvironmentError
	return !errors.As(err, &ue) && !errors.As(err, &ee)
}

func noColorEnv() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}
