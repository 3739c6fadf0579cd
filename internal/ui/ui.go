// Package ui renders command output: styled text when stdout is a terminal,
// plain text otherwise.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Printer writes styled output to one writer.
type Printer struct {
	w     io.Writer
	color bool
	st    styles
}

type styles struct {
	success, failure, warning, info, dim, path lipgloss.Style
	movie, episode, directory                lipgloss.Style
	topTier, midTier, lowTier                lipgloss.Style
}

// New returns a Printer for w. Colors are used only when w is a terminal
// and NO_COLOR is unset.
func New(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return newPrinter(w, color)
}

// Plain returns a Printer that never styles its output.
func Plain(w io.Writer) *Printer {
	return newPrinter(w, false)
}

func newPrinter(w io.Writer, color bool) *Printer {
	p := &Printer{w: w, color: color}
	plain := lipgloss.NewStyle()
	p.st = styles{plain, plain, plain, plain, plain, plain, plain, plain, plain, plain, plain, plain}
	if !color {
		return p
	}
	p.st = styles{
		success:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		failure:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		info:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		path:      lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		movie:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		episode:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		directory: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		topTier:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		midTier:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		lowTier:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
	return p
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Color reports whether output is styled.
func (p *Printer) Color() bool { return p.color }

func (p *Printer) Success(text string) string { return p.st.success.Render(text) }
func (p *Printer) Error(text string) string   { return p.st.failure.Render(text) }
func (p *Printer) Warning(text string) string { return p.st.warning.Render(text) }
func (p *Printer) Info(text string) string    { return p.st.info.Render(text) }
func (p *Printer) Dim(text string) string     { return p.st.dim.Render(text) }
func (p *Printer) Path(text string) string    { return p.st.path.Render(text) }

// Kind styles a name kind ("movie", "episode", "directory").
func (p *Printer) Kind(kind string) string {
	switch kind {
	case "movie":
		return p.st.movie.Render(kind)
	case "episode":
		return p.st.episode.Render(kind)
	case "directory":
		return p.st.directory.Render(kind)
	}
	return p.st.dim.Render(kind)
}

// Tier styles an encoder tier by its position in the ranking, 0 being the
// lowest of n tiers.
func (p *Printer) Tier(name string, rank, n int) string {
	switch {
	case n <= 0:
		return name
	case rank*3 >= n*2:
		return p.st.topTier.Render(name)
	case rank*3 >= n:
		return p.st.midTier.Render(name)
	default:
		return p.st.lowTier.Render(name)
	}
}

// Section prints a section header
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w)
	if p.color {
		fmt.Fprintln(p.w, p.st.info.Render("━━━ "+strings.ToUpper(title)+" ━━━"))
		return
	}
	fmt.Fprintln(p.w, strings.ToUpper(title))
	fmt.Fprintln(p.w, strings.Repeat("=", len(title)))
}

// Field prints an aligned "label: value" line.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.w, "  %-14s %s\n", label+":", value)
}

func (p *Printer) SuccessMsg(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.Success("✓")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) ErrorMsg(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.Error("✗")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) WarningMsg(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) InfoMsg(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.Info("ℹ")+" "+fmt.Sprintf(format, args...))
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatAgo formats a past time relative to now, "3 hours ago".
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatDuration formats duration to human-readable format
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
