// Package report writes a YAML summary of one chore invocation.
package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/chore/internal/task"
)

// Run is what the report records. Keys are emitted in a fixed order so
// successive reports diff cleanly.
type Run struct {
	Command  string
	Args     []string
	Dir      string
	Commit   string
	DryRun   bool
	Steps    []task.Outcome
	ExitCode int
}

// Marshal returns the canonical YAML encoding of r.
func Marshal(r Run) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	add := func(k string, v *yaml.Node) { top.Content = append(top.Content, keyNode(k), v) }

	add("command", strNode(r.Command))
	add("args", strSeq(r.Args))
	add("dir", strNode(r.Dir))
	if r.Commit != "" {
		add("commit", strNode(r.Commit))
	}
	add("dryRun", boolNode(r.DryRun))
	steps := &yaml.Node{Kind: yaml.SequenceNode}
	for _, o := range r.Steps {
		steps.Content = append(steps.Content, stepNode(o))
	}
	add("steps", steps)
	add("exitCode", intNode(r.ExitCode))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return append(out, '\n'), nil
}

// Write encodes r to path, creating parent directories.
func Write(path string, r Run) error {
	b, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func stepNode(o task.Outcome) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	n.Content = append(n.Content,
		keyNode("name"), strNode(o.Step),
		keyNode("argv"), strSeq(o.Argv),
		keyNode("exitCode"), intNode(o.ExitCode),
		keyNode("durationMs"), intNode(int(o.Duration.Milliseconds())),
	)
	if o.Err != nil {
		msg := strings.Join(strings.Fields(o.Err.Error()), " ")
		n.Content = append(n.Content, keyNode("error"), strNode(msg))
	}
	return n
}

func keyNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// strNode lets the encoder pick quoting so values like "yes" or "1"
// stay strings when read back.
func strNode(v string) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func strSeq(vs []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range vs {
		n.Content = append(n.Content, strNode(v))
	}
	return n
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func boolNode(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
}
