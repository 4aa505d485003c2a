// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"} // Entry names
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"} // Description text
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#9A9A9A", Dark: "#696969"} // Hints, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Input placeholders

	// Invocation text in detail views
	InvocationColor = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"}

	// Fuzzy match highlight
	MatchColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}

	TagColor = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	StatusErrorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#FFFFFF"}
)

// Palette holds the styles for one renderer. Writers that are not terminals
// get a renderer without colors, so output piped to a file stays plain.
type Palette struct {
	Name        lipgloss.Style
	Description lipgloss.Style
	Muted       lipgloss.Style
	Invocation  lipgloss.Style
	Tag         lipgloss.Style
	Match       lipgloss.Style
	Error       lipgloss.Style
	Selection   lipgloss.Style
	Box         lipgloss.Style
}

// NewPalette builds the styles for r.
func NewPalette(r *lipgloss.Renderer) Palette {
	return Palette{
		Name:        r.NewStyle().Bold(true).Foreground(TextPrimaryColor),
		Description: r.NewStyle().Foreground(TextDescriptionColor),
		Muted:       r.NewStyle().Foreground(TextMutedColor),
		Invocation:  r.NewStyle().Foreground(InvocationColor),
		Tag:         r.NewStyle().Foreground(TagColor),
		Match:       r.NewStyle().Bold(true).Foreground(MatchColor),
		Error:       r.NewStyle().Foreground(StatusErrorColor),
		Selection:   r.NewStyle().Bold(true).Foreground(SelectionIndicatorColor),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 1),
	}
}
