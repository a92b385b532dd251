package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Printer writes user-facing status lines. In FormatText every method
// writes the message verbatim; in FormatTerminal it is styled.
type Printer struct {
	out    io.Writer
	format Format
	styles map[string]lipgloss.Style
}

// NewPrinter creates a Printer for w. FormatAuto is resolved with
// DetectFormat.
func NewPrinter(w io.Writer, format Format) *Printer {
	if format == FormatAuto {
		format = DetectFormat(w)
	}
	return newPrinter(w, format, termenv.EnvColorProfile())
}

func newPrinter(w io.Writer, format Format, profile termenv.Profile) *Printer {
	p := &Printer{out: w, format: format}
	if format == FormatTerminal {
		renderer := lipgloss.NewRenderer(w)
		renderer.SetColorProfile(profile)
		p.styles = DefaultStyles().Build(renderer)
	}
	return p
}

// Format reports the resolved output format.
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Style renders s with the named style, or returns it unchanged when
// output is plain or the style is unknown.
func (p *Printer) Style(name, s string) string {
	style, ok := p.styles[name]
	if !ok {
		return s
	}
	return style.Render(s)
}

// Highlight marks text that needs the reader's attention.
func (p *Printer) Highlight(s string) string {
	return p.Style(StyleMarked, s)
}

func (p *Printer) line(style, format string, args ...interface{}) {
	_, _ = fmt.Fprintln(p.out, p.Style(style, fmt.Sprintf(format, args...)))
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...interface{}) {
	p.line(StyleSuccess, format, args...)
}

// Errorf prints a failure line.
func (p *Printer) Errorf(format string, args ...interface{}) {
	p.line(StyleError, format, args...)
}

// Skipf prints a line for something left alone.
func (p *Printer) Skipf(format string, args ...interface{}) {
	p.line(StyleSkip, format, args...)
}

// Infof prints an informational line.
func (p *Printer) Infof(format string, args ...interface{}) {
	p.line(StyleInfo, format, args...)
}

// Println prints an unstyled line.
func (p *Printer) Println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}
