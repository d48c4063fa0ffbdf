// Package task holds the closed set of commands chore can dispatch to.
//
// Commands are an enum indexing a fixed-size descriptor table. The usage
// listing is generated from the same table, so a command without a usage
// line (or a usage line without a command) cannot exist.
package task

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Command is one dispatchable command.
type Command int

const (
	Check Command = iota
	Fmt

	numCommands
)

// Handler runs a command with the arguments that followed its name.
type Handler func(ctx context.Context, env *Env, args []string) error

type descriptor struct {
	name    string
	summary string
	run     Handler
}

var table = [numCommands]descriptor{
	Check: {
		name:    "check",
		summary: "apply fixes, format, lint, then build docs with warnings as errors",
		run:     runCheck,
	},
	Fmt: {
		name:    "fmt",
		summary: "format the workspace on the configured toolchain channel",
		run:     runFmt,
	},
}

// Commands returns every command in listing order.
func Commands() []Command {
	out := make([]Command, 0, numCommands)
	for c := Command(0); c < numCommands; c++ {
		out = append(out, c)
	}
	return out
}

// Lookup maps a command token to its Command.
func Lookup(name string) (Command, bool) {
	for _, c := range Commands() {
		if table[c].name == name {
			return c, true
		}
	}
	return 0, false
}

func (c Command) valid() bool { return c >= 0 && c < numCommands }

func (c Command) String() string {
	if !c.valid() {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return table[c].name
}

// Summary is the one-line description shown in the usage listing.
func (c Command) Summary() string {
	if !c.valid() {
		return ""
	}
	return table[c].summary
}

// Run invokes the command's handler.
func (c Command) Run(ctx context.Context, env *Env, args []string) error {
	if !c.valid() {
		return fmt.Errorf("unknown command %d", int(c))
	}
	return table[c].run(ctx, env, args)
}

// Usage writes the listing of every command.
func Usage(w io.Writer, program string) {
	width := 0
	for _, c := range Commands() {
		if n := len(c.String()); n > width {
			width = n
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "usage: %s [flags] <command> [args...]\n\ncommands:\n", program)
	for _, c := range Commands() {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, c.String(), c.Summary())
	}
	_, _ = io.WriteString(w, b.String())
}
