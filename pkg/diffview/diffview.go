// Package diffview renders a character level diff between the clipboard text
// before and after formatting.
package diffview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pmezard/go-difflib/difflib"
)

// Styles decorates removed and inserted runs of text.
type Styles struct {
	Delete func(string) string
	Insert func(string) string
}

// PlainStyles marks changes without colour: [-removed-]{+inserted+}.
func PlainStyles() Styles {
	return Styles{
		Delete: func(s string) string { return "[-" + s + "-]" },
		Insert: func(s string) string { return "{+" + s + "+}" },
	}
}

// ColourStyles paints deletions red and insertions green for profile.
func ColourStyles(profile termenv.Profile) Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	del := r.NewStyle().Foreground(lipgloss.Color("1")).TabWidth(lipgloss.NoTabConversion)
	ins := r.NewStyle().Foreground(lipgloss.Color("2")).TabWidth(lipgloss.NoTabConversion)
	return Styles{
		Delete: func(s string) string { return del.Render(s) },
		Insert: func(s string) string { return ins.Render(s) },
	}
}

// StylesFor picks colour when w is a terminal and NO_COLOR is unset,
// plain markers otherwise.
func StylesFor(w io.Writer) Styles {
	if termenv.EnvNoColor() || !isTerminal(w) {
		return PlainStyles()
	}
	return ColourStyles(termenv.ANSI)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render returns formatted text interleaved with the removed runs of
// original. A replaced run shows the removal first.
func Render(original, formatted string, styles Styles) string {
	if original == formatted {
		return original
	}
	a, b := runes(original), runes(formatted)
	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)

	var sb strings.Builder
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			sb.WriteString(strings.Join(a[op.I1:op.I2], ""))
		case 'd':
			sb.WriteString(styles.Delete(strings.Join(a[op.I1:op.I2], "")))
		case 'i':
			sb.WriteString(styles.Insert(strings.Join(b[op.J1:op.J2], "")))
		case 'r':
			sb.WriteString(styles.Delete(strings.Join(a[op.I1:op.I2], "")))
			sb.WriteString(styles.Insert(strings.Join(b[op.J1:op.J2], "")))
		}
	}
	return sb.String()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Printer writes diffs to a terminal or log stream.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter chooses styles for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: StylesFor(w)}
}

// NewPrinterWithStyles uses the given styles regardless of w.
func NewPrinterWithStyles(w io.Writer, styles Styles) *Printer {
	return &Printer{w: w, styles: styles}
}

// Print writes the diff of original and formatted followed by a newline.
func (p *Printer) Print(original, formatted string) error {
	_, err := fmt.Fprintln(p.w, Render(original, formatted, p.styles))
	return err
}
