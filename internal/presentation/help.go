package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
	"github.com/zjrosen/sbin/internal/ui/styles"
)

const (
	columnGap = 2
	// Descriptions are never wrapped narrower than this.
	minDescriptionWidth = 20
)

// RenderHelp writes one line per entry in the given order: the name padded
// to the widest name, then the description. When width is positive the
// descriptions are word-wrapped to fit and continuation lines are indented
// under the description column. A width of zero never wraps.
func RenderHelp(w io.Writer, entries []*registry.Entry, width int) error {
	p := styles.NewPalette(lipgloss.NewRenderer(w))

	nameWidth := 0
	for _, e := range entries {
		nameWidth = max(nameWidth, runewidth.StringWidth(e.Name()))
	}
	indent := nameWidth + columnGap

	var b strings.Builder
	for _, e := range entries {
		desc := strings.TrimSpace(e.Description())
		if width > 0 {
			desc = wordwrap.String(desc, max(width-indent, minDescriptionWidth))
		}
		lines := strings.Split(desc, "\n")

		b.WriteString(p.Name.Render(styles.PadRight(e.Name(), nameWidth)))
		b.WriteString(strings.Repeat(" ", columnGap))
		b.WriteString(p.Description.Render(lines[0]))
		b.WriteByte('\n')
		for _, line := range lines[1:] {
			b.WriteString(strings.Repeat(" ", indent))
			b.WriteString(p.Description.Render(line))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderEntry writes the detail view of a single entry.
func RenderEntry(w io.Writer, e *registry.Entry) error {
	p := styles.NewPalette(lipgloss.NewRenderer(w))

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", p.Name.Render(e.Name()), p.Description.Render(strings.TrimSpace(e.Description())))
	fmt.Fprintf(&b, "  %s %s\n", p.Muted.Render("cmd:   "), p.Invocation.Render(e.Invocation()))
	if stages := e.Stages(); len(stages) > 1 {
		for i, s := range stages {
			fmt.Fprintf(&b, "  %s %s\n", p.Muted.Render(fmt.Sprintf("stage %d", i)), s.String())
		}
	}
	if tags := e.Tags(); len(tags) > 0 {
		rendered := make([]string, len(tags))
		for i, t := range tags {
			rendered[i] = p.Tag.Render(t)
		}
		fmt.Fprintf(&b, "  %s %s\n", p.Muted.Render("tags:  "), strings.Join(rendered, ", "))
	}
	fmt.Fprintf(&b, "  %s %s\n", p.Muted.Render("source:"), e.Source())
	_, err := io.WriteString(w, b.String())
	return err
}
