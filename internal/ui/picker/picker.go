// Package picker provides the interactive entry picker behind `sbin pick`.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
	"github.com/zjrosen/sbin/internal/log"
	"github.com/zjrosen/sbin/internal/pubsub"
	"github.com/zjrosen/sbin/internal/ui/styles"
)

// EntriesEvent carries a reloaded entry list.
type EntriesEvent = pubsub.Event[[]*registry.Entry]

// Option configures a Model.
type Option func(*Model)

// WithListener reloads the entry list whenever l delivers an event.
func WithListener(l *pubsub.Listener[[]*registry.Entry]) Option {
	return func(m *Model) {
		m.listener = l
	}
}

// WithRenderer styles output for r instead of the default renderer.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) {
		m.palette = styles.NewPalette(r)
	}
}

// WithQuery sets the initial filter text.
func WithQuery(q string) Option {
	return func(m *Model) {
		m.query = q
	}
}

type match struct {
	entry   *registry.Entry
	indexes []int
}

// Model holds the picker state.
type Model struct {
	entries   []*registry.Entry
	matches   []match
	query     string
	cursor    int
	width     int
	height    int
	chosen    *registry.Entry
	cancelled bool
	listener  *pubsub.Listener[[]*registry.Entry]
	palette   styles.Palette
}

// New creates a picker over entries, listed in registration order until the
// user types a filter.
func New(entries []*registry.Entry, opts ...Option) Model {
	m := Model{
		entries: entries,
		palette: styles.NewPalette(lipgloss.DefaultRenderer()),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.filter()
	return m
}

// Init starts listening for reloads.
func (m Model) Init() tea.Cmd {
	if m.listener == nil {
		return nil
	}
	return m.listener.Listen()
}

// Chosen returns the entry selected with enter.
func (m Model) Chosen() (*registry.Entry, bool) {
	return m.chosen, m.chosen != nil
}

// Cancelled reports whether the user left without choosing.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Query returns the current filter text.
func (m Model) Query() string {
	return m.query
}

// Current returns the highlighted entry, or nil when nothing matches.
func (m Model) Current() *registry.Entry {
	if m.cursor >= 0 && m.cursor < len(m.matches) {
		return m.matches[m.cursor].entry
	}
	return nil
}

// Visible returns the names of the entries passing the filter, best match first.
func (m Model) Visible() []string {
	names := make([]string, len(m.matches))
	for i, mt := range m.matches {
		names[i] = mt.entry.Name()
	}
	return names
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case EntriesEvent:
		m = m.reload(msg.Payload)
		return m, m.Init()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if cur := m.Current(); cur != nil {
				m.chosen = cur
				log.Debug(log.CatUI, "Entry picked", "name", cur.Name())
				return m, tea.Quit
			}
		case tea.KeyUp, tea.KeyCtrlP:
			if m.cursor > 0 {
				m.cursor--
			}
		case tea.KeyDown, tea.KeyCtrlN:
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
		case tea.KeyBackspace:
			if m.query != "" {
				r := []rune(m.query)
				m.query = string(r[:len(r)-1])
				m.filter()
			}
		case tea.KeyCtrlU:
			m.query = ""
			m.filter()
		case tea.KeySpace:
			m.query += " "
			m.filter()
		case tea.KeyRunes:
			m.query += string(msg.Runes)
			m.filter()
		}
	}
	return m, nil
}

func (m Model) reload(entries []*registry.Entry) Model {
	var current string
	if cur := m.Current(); cur != nil {
		current = cur.Name()
	}
	m.entries = entries
	m.filter()
	for i, mt := range m.matches {
		if mt.entry.Name() == current {
			m.cursor = i
			break
		}
	}
	log.Debug(log.CatUI, "Picker reloaded", "entries", len(entries), "matches", len(m.matches))
	return m
}

type entrySource []*registry.Entry

func (s entrySource) String(i int) string { return s[i].Name() }
func (s entrySource) Len() int            { return len(s) }

// filter recomputes the matches and resets the cursor to the best one.
func (m *Model) filter() {
	m.cursor = 0
	query := strings.TrimSpace(m.query)
	if query == "" {
		m.matches = make([]match, len(m.entries))
		for i, e := range m.entries {
			m.matches[i] = match{entry: e}
		}
		return
	}

	found := fuzzy.FindFrom(query, entrySource(m.entries))
	m.matches = make([]match, len(found))
	for i, f := range found {
		m.matches[i] = match{entry: m.entries[f.Index], indexes: f.MatchedIndexes}
	}
}

// View renders the prompt, the matching entries and a footer.
func (m Model) View() string {
	p := m.palette
	var b strings.Builder

	b.WriteString(p.Selection.Render("> "))
	b.WriteString(m.query)
	b.WriteString("\n\n")

	nameWidth := 0
	for _, mt := range m.matches {
		nameWidth = max(nameWidth, lipgloss.Width(mt.entry.Name()))
	}

	rows := m.matches
	if limit := m.listHeight(); limit > 0 && len(rows) > limit {
		start := max(0, min(m.cursor-limit+1, len(rows)-limit))
		rows = rows[start : start+limit]
	}

	if len(m.matches) == 0 {
		b.WriteString(p.Muted.Render("  no matching commands"))
		b.WriteString("\n")
	}
	for _, mt := range rows {
		prefix := "  "
		if mt.entry == m.Current() {
			prefix = p.Selection.Render("> ")
		}
		name := m.highlight(mt)
		pad := strings.Repeat(" ", nameWidth-lipgloss.Width(mt.entry.Name()))
		desc := strings.Join(strings.Fields(mt.entry.Description()), " ")
		if m.width > 0 {
			desc = styles.TruncateString(desc, max(m.width-nameWidth-4, 10))
		}
		b.WriteString(prefix + name + pad + "  " + p.Description.Render(desc) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(p.Muted.Render(fmt.Sprintf("%d/%d  enter run  esc cancel", len(m.matches), len(m.entries))))
	return b.String()
}

// listHeight is the number of rows available for entries, or 0 when the
// window size is unknown.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	// prompt, blank line, blank line, footer
	return max(m.height-4, 1)
}

func (m Model) highlight(mt match) string {
	name := mt.entry.Name()
	if len(mt.indexes) == 0 {
		return m.palette.Name.Render(name)
	}
	matched := make(map[int]bool, len(mt.indexes))
	for _, i := range mt.indexes {
		matched[i] = true
	}
	var b strings.Builder
	for i, r := range name {
		if matched[i] {
			b.WriteString(m.palette.Match.Render(string(r)))
		} else {
			b.WriteString(m.palette.Name.Render(string(r)))
		}
	}
	return b.String()
}
