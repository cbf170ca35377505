package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor   = lipgloss.Color("#B4A7D6")
	successColor   = lipgloss.Color("#A8E6CF")
	errorColor     = lipgloss.Color("#FFB3BA")
	warningColor   = lipgloss.Color("#FFE5B4")
	mutedColor     = lipgloss.Color("#C5C6C8")
	highlightColor = lipgloss.Color("#B3D9FF")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(18)

	PromptStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	dividerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)
)

const dividerWidth = 41

// Printer writes styled lines to one destination, usually a cobra command's
// output stream.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Title(text string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, TitleStyle.Render(text))
	fmt.Fprintln(p.w)
}

func (p *Printer) Success(message string) {
	fmt.Fprintln(p.w, SuccessStyle.Render("✓ "+message))
}

func (p *Printer) Error(message string) {
	fmt.Fprintln(p.w, ErrorStyle.Render("✗ "+message))
}

func (p *Printer) Warning(message string) {
	fmt.Fprintln(p.w, WarningStyle.Render("! "+message))
}

func (p *Printer) Muted(message string) {
	fmt.Fprintln(p.w, MutedStyle.Render(message))
}

// Field prints an aligned "key  value" row.
func (p *Printer) Field(key string, value any) {
	fmt.Fprintf(p.w, "%s %s\n", KeyStyle.Render(key), HighlightStyle.Render(fmt.Sprint(value)))
}

func (p *Printer) Divider() {
	fmt.Fprintln(p.w, dividerStyle.Render(strings.Repeat("─", dividerWidth)))
}

// Prompt renders a prompt without a trailing newline.
func Prompt(message string) string {
	return PromptStyle.Render(message)
}

// Bytes formats a byte count with a binary unit.
func Bytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
