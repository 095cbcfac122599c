package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Banner is printed by PrintBanner
const Banner = `
 ┌─┐┌─┐┬  ┬┌┬┐┬ ┬┌─┐┌─┐┌─┐
 ├┤ ├─┤└┐┌┘ ││││ │├─┘├┤ └─┐
 └  ┴ ┴ └┘ ─┴┘└─┘┴  └─┘└─┘
  duplicate likes, found
`

// palette
const (
	colorCyan    = lipgloss.Color("86")
	colorYellow  = lipgloss.Color("220")
	colorRed     = lipgloss.Color("196")
	colorGreen   = lipgloss.Color("42")
	colorMagenta = lipgloss.Color("205")
	colorDim     = lipgloss.Color("241")
)

type styles struct {
	label     lipgloss.Style
	value     lipgloss.Style
	err       lipgloss.Style
	warning   lipgloss.Style
	success   lipgloss.Style
	highlight lipgloss.Style
	dim       lipgloss.Style
	bold      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		label:     r.NewStyle().Foreground(colorCyan),
		value:     r.NewStyle().Foreground(colorYellow),
		err:       r.NewStyle().Foreground(colorRed).Bold(true),
		warning:   r.NewStyle().Foreground(colorYellow),
		success:   r.NewStyle().Foreground(colorGreen),
		highlight: r.NewStyle().Foreground(colorMagenta).Bold(true),
		dim:       r.NewStyle().Foreground(colorDim),
		bold:      r.NewStyle().Bold(true),
	}
}

// Terminal writes styled messages. Results go to out, errors to errOut.
type Terminal struct {
	out     io.Writer
	errOut  io.Writer
	quiet   bool
	noColor bool
	styles  styles
}

// NewTerminal creates a Terminal whose colour support follows out
func NewTerminal(out, errOut io.Writer) *Terminal {
	return &Terminal{
		out:    out,
		errOut: errOut,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// SetQuiet suppresses everything but errors and rendered results
func (t *Terminal) SetQuiet(quiet bool) { t.quiet = quiet }

// SetNoColor disables styling
func (t *Terminal) SetNoColor(noColor bool) { t.noColor = noColor }

// Out returns the result writer
func (t *Terminal) Out() io.Writer { return t.out }

func (t *Terminal) paint(s lipgloss.Style, text string) string {
	if t.noColor {
		return text
	}
	return s.Render(text)
}

func joinArg(msg string, args []interface{}) string {
	if len(args) > 0 {
		return msg + ": " + fmt.Sprintf("%v", args[0])
	}
	return msg
}

func (t *Terminal) PrintBanner() {
	if t.quiet {
		return
	}
	fmt.Fprint(t.out, t.paint(t.styles.label, Banner))
	fmt.Fprintln(t.out)
}

// PrintError prints msg, and the first arg if given, to the error writer
func (t *Terminal) PrintError(msg string, args ...interface{}) {
	fmt.Fprintln(t.errOut, t.paint(t.styles.err, joinArg(msg, args)))
}

func (t *Terminal) PrintWarning(msg string, args ...interface{}) {
	if t.quiet {
		return
	}
	fmt.Fprintln(t.errOut, t.paint(t.styles.warning, joinArg(msg, args)))
}

func (t *Terminal) PrintSuccess(msg string) {
	if t.quiet {
		return
	}
	fmt.Fprintln(t.out, t.paint(t.styles.success, msg))
}

// PrintInfo prints a "label: value" line
func (t *Terminal) PrintInfo(label, value string) {
	if t.quiet {
		return
	}
	fmt.Fprintf(t.out, "%s: %s\n", t.paint(t.styles.label, label), t.paint(t.styles.value, value))
}

func (t *Terminal) PrintHighlight(msg string) {
	if t.quiet {
		return
	}
	fmt.Fprintln(t.out, t.paint(t.styles.highlight, msg))
}

var std = NewTerminal(os.Stdout, os.Stderr)

// Default returns the process-wide terminal
func Default() *Terminal { return std }
