package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"retrace/internal/engine"
	"retrace/internal/session"
)

const traceRows = 8

type keyMap struct {
	Forward key.Binding
	Back    key.Binding
	Start   key.Binding
	End     key.Binding
	Quit    key.Binding
}

var replayKeys = keyMap{
	Forward: key.NewBinding(key.WithKeys("n", " ", "right"), key.WithHelp("n/space", "next")),
	Back:    key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "back")),
	Start:   key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "start")),
	End:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "end")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

type replayModel struct {
	sess   *session.Session
	keys   keyMap
	lines  []string
	pos    int // entries applied so far, 0..len(sess.Entries)
	width  int
	height int
}

// NewReplayModel returns a Bubble Tea model that steps through a recorded
// run entry by entry.
func NewReplayModel(sess *session.Session) tea.Model {
	var lines []string
	if sess.Source != "" {
		lines = strings.Split(sess.Source, "\n")
	}
	return &replayModel{
		sess:  sess,
		keys:  replayKeys,
		lines: lines,
		width: 80,
	}
}

func (m *replayModel) Init() tea.Cmd {
	return nil
}

func (m *replayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Forward):
			if m.pos < len(m.sess.Entries) {
				m.pos++
			}
			return m, nil
		case key.Matches(msg, m.keys.Back):
			if m.pos > 0 {
				m.pos--
			}
			return m, nil
		case key.Matches(msg, m.keys.Start):
			m.pos = 0
			return m, nil
		case key.Matches(msg, m.keys.End):
			m.pos = len(m.sess.Entries)
			return m, nil
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
		return m, nil
	}
	return m, nil
}

func (m *replayModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	paneStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	header := fmt.Sprintf("replay: %s  [%d/%d]  outcome: %s",
		m.sess.Language, m.pos, len(m.sess.Entries), m.sess.Outcome)
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	b.WriteString(paneStyle.Render("source"))
	b.WriteString("\n")
	m.renderSource(&b)
	b.WriteString("\n")

	b.WriteString(paneStyle.Render("trace"))
	b.WriteString("\n")
	m.renderTrace(&b)
	b.WriteString("\n")

	b.WriteString(paneStyle.Render("variables"))
	b.WriteString("\n")
	m.renderVariables(&b)
	b.WriteString("\n")

	b.WriteString(dimStyle.Render("n/space next · p back · g/G ends · q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderSource prints every source line with a marker on the line the
// replay cursor sits on.
func (m *replayModel) renderSource(b *strings.Builder) {
	current := m.currentLine()
	markStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	numStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	codeWidth := m.width - 8
	if codeWidth < 20 {
		codeWidth = 20
	}
	for i, line := range m.lines {
		n := i + 1
		text := replayTruncate(line, codeWidth)
		if n == current {
			b.WriteString(markStyle.Render(fmt.Sprintf("▶ %3d  %s", n, text)))
		} else {
			b.WriteString(numStyle.Render(fmt.Sprintf("  %3d  ", n)))
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
	if len(m.lines) == 0 {
		b.WriteString("  (no source)\n")
	}
}

// renderTrace prints the tail of the applied entries, newest last.
func (m *replayModel) renderTrace(b *strings.Builder) {
	if m.pos == 0 {
		b.WriteString("  (not started)\n")
		return
	}
	start := m.pos - traceRows
	if start < 0 {
		start = 0
	}
	for _, e := range m.sess.Entries[start:m.pos] {
		b.WriteString("  ")
		b.WriteString(styleEntry(e.Kind).Render(replayTruncate(entryText(e), m.width-2)))
		b.WriteString("\n")
	}
}

// renderVariables prints variables observed so far, in name order.
func (m *replayModel) renderVariables(b *strings.Builder) {
	vars := m.variablesAt(m.pos)
	if len(vars) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(replayTruncate(fmt.Sprintf("  %s = %v", name, vars[name]), m.width-2))
		b.WriteString("\n")
	}
}

// currentLine is the line of the last applied entry, 0 before the first.
func (m *replayModel) currentLine() int {
	if m.pos == 0 {
		return 0
	}
	return m.sess.Entries[m.pos-1].Line
}

// variablesAt replays captures in the first pos entries. Sessions are small
// enough that recomputing per frame beats keeping undo state around.
func (m *replayModel) variablesAt(pos int) map[string]any {
	vars := make(map[string]any)
	for _, e := range m.sess.Entries[:pos] {
		if e.Kind == engine.EntryVarCapture {
			vars[e.Name] = e.Value
		}
	}
	return vars
}

// entryText formats one history entry for the trace pane.
func entryText(e engine.Entry) string {
	switch e.Kind {
	case engine.EntryLineVisit:
		return fmt.Sprintf("[step=%d] visit line %d", e.Step, e.Line)
	case engine.EntryVarCapture:
		return fmt.Sprintf("[step=%d] line %d: %s = %v", e.Step, e.Line, e.Name, e.Value)
	case engine.EntryConsole:
		return fmt.Sprintf("[step=%d] line %d: console: %s", e.Step, e.Line, e.Text)
	case engine.EntryError:
		return fmt.Sprintf("[step=%d] line %d: error: %s", e.Step, e.Line, e.Message)
	case engine.EntryWarning:
		return fmt.Sprintf("[step=%d] line %d: warning: %s", e.Step, e.Line, e.Message)
	default:
		return fmt.Sprintf("[step=%d] line %d", e.Step, e.Line)
	}
}

func styleEntry(kind engine.EntryKind) lipgloss.Style {
	switch kind {
	case engine.EntryError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case engine.EntryWarning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case engine.EntryConsole:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func replayTruncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
