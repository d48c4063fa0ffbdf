// Package term writes human-readable diagnostics to the diagnostic stream,
// highlighted by severity when the stream is a color terminal.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Severity selects the highlight used for a diagnostic line.
type Severity int

const (
	Info Severity = iota
	Warn
	Fatal
)

func (s Severity) prefix() string {
	switch s {
	case Warn:
		return "warning:"
	case Fatal:
		return "error:"
	default:
		return "==>"
	}
}

// Diag renders diagnostics onto a single writer.
type Diag struct {
	w      io.Writer
	plain  bool
	styles [3]lipgloss.Style
	dim    lipgloss.Style
}

// New returns a Diag writing to w. Color is used only when noColor is false
// and w is a terminal that supports it.
func New(w io.Writer, noColor bool) *Diag {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	d := &Diag{
		w:     w,
		plain: noColor || r.ColorProfile() == termenv.Ascii,
		dim:   r.NewStyle().Faint(true),
	}
	d.styles[Info] = r.NewStyle().Foreground(lipgloss.Color("#4ECDC4")).Bold(true)
	d.styles[Warn] = r.NewStyle().Foreground(lipgloss.Color("#F4D35E")).Bold(true)
	d.styles[Fatal] = r.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	return d
}

// Writer exposes the underlying stream for raw output (usage listings).
func (d *Diag) Writer() io.Writer { return d.w }

// Plain reports whether output carries no escape sequences.
func (d *Diag) Plain() bool { return d.plain }

// Line writes one diagnostic line at the given severity.
func (d *Diag) Line(sev Severity, msg string) {
	prefix := sev.prefix()
	if !d.plain {
		prefix = d.styles[sev].Render(prefix)
	}
	_, _ = fmt.Fprintf(d.w, "%s %s\n", prefix, msg)
}

func (d *Diag) Infof(format string, args ...any) { d.Line(Info, fmt.Sprintf(format, args...)) }

func (d *Diag) Warnf(format string, args ...any) { d.Line(Warn, fmt.Sprintf(format, args...)) }

func (d *Diag) Fatalf(format string, args ...any) { d.Line(Fatal, fmt.Sprintf(format, args...)) }

// Command echoes a command line the way a shell trace would (`+ cargo fmt`).
func (d *Diag) Command(argv []string) {
	line := "+ " + strings.Join(argv, " ")
	if !d.plain {
		line = d.dim.Render(line)
	}
	_, _ = fmt.Fprintln(d.w, line)
}
