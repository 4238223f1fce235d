// Package report renders comparison results as tables, JSON or plain
// text lines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// Format defines the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatPlain:
		return f, nil
	}
	return "", fmt.Errorf("%w: format %q (must be table, json, or plain)", aderrors.ErrInvalid, s)
}

// Printer writes reports to w in one format.
type Printer struct {
	w      io.Writer
	format Format

	title  lipgloss.Style
	header lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	muted  lipgloss.Style
}

// NewPrinter creates a Printer. Colours are only emitted when w is a
// terminal that supports them.
func NewPrinter(w io.Writer, format Format) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		format: format,
		title:  r.NewStyle().Bold(true),
		header: r.NewStyle().Bold(true).Underline(true),
		good:   r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:    r.NewStyle().Foreground(lipgloss.Color("1")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Format returns the output format.
func (p *Printer) Format() Format { return p.format }

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) newTable(headers ...any) table.Table {
	return table.New(headers...).
		WithWriter(p.w).
		WithWidthFunc(lipgloss.Width).
		WithHeaderFormatter(formatter(p.header))
}

func (p *Printer) println(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(p.w, style.Render(fmt.Sprintf(format, args...)))
}

func formatter(style lipgloss.Style) table.Formatter {
	return func(format string, vals ...any) string {
		return style.Render(fmt.Sprintf(format, vals...))
	}
}

var titleCaser = cases.Title(language.English)

// projectTitle renders "holoviz/panel" as "Panel".
func projectTitle(project string) string {
	return titleCaser.String(path.Base(project))
}
