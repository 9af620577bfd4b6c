// Package explorer provides the Bubble Tea interval explorer.
package explorer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/interval/pkg/duration"
	"github.com/verte-zerg/interval/pkg/interval"
)

const (
	detailsHeight = 7
	partsHeight   = 9
	maxHistory    = 200
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea explorer: every edit of the input is
// parsed again and the grammar, ISO text, elapsed span and projections are
// shown below it.
type Model struct {
	parser    *interval.Parser
	precision int

	input   textinput.Model
	parts   table.Model
	history viewport.Model
	entries []string

	result *interval.Result
	errMsg string

	width  int
	height int
}

// NewModel constructs an explorer over parser. precision is passed to
// Duration.Format.
func NewModel(parser *interval.Parser, precision int) *Model {
	m := &Model{parser: parser, precision: precision}
	m.input = textinput.New()
	m.input.Prompt = "Interval: "
	m.input.Placeholder = "1 year 2 mons 3 days 04:05:06"
	m.input.CharLimit = 0
	m.input.Cursor.SetMode(cursor.CursorBlink)
	m.input.Focus()
	m.parts = newPartsTable()
	m.history = viewport.New(0, 0)
	m.reparse()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc:
			return m, tea.Quit
		case msg.String() == "q" && m.input.Value() == "":
			return m, tea.Quit
		case msg.Type == tea.KeyEnter:
			m.record()
			return m, nil
		case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.reparse()
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	sections := []string{
		titleStyle.Render("interval explorer"),
		m.input.View(),
		m.renderDetails(),
		m.parts.View(),
		m.history.View(),
		helpStyle.Render("enter: keep  pgup/pgdn: scroll  esc: quit"),
	}
	return fitLines(strings.Join(sections, "\n"), m.width, m.height)
}

func (m *Model) reparse() {
	text := m.input.Value()
	res, err := m.parser.Match(text)
	if err != nil {
		m.result = nil
		m.errMsg = err.Error()
		m.parts.SetRows(nil)
		return
	}
	m.result = &res
	m.errMsg = ""
	m.parts.SetRows(partRows(res.Duration))
}

func (m *Model) record() {
	text := m.input.Value()
	var entry string
	if m.result != nil {
		entry = fmt.Sprintf("%-10s %q → %s", m.result.Grammar, text, m.result.Duration.Format(m.precision))
	} else {
		entry = fmt.Sprintf("%-10s %q → %s", "error", text, m.errMsg)
	}
	m.entries = append([]string{entry}, m.entries...)
	if len(m.entries) > maxHistory {
		m.entries = m.entries[:maxHistory]
	}
	m.history.SetContent(strings.Join(m.entries, "\n"))
	m.history.GotoTop()
	m.input.SetValue("")
	m.reparse()
}

func (m *Model) renderDetails() string {
	if m.result == nil {
		return errorStyle.Render(m.errMsg)
	}
	d := m.result.Duration
	clock := m.parser.Clock
	if clock == nil {
		clock = duration.SystemClock
	}
	now := clock.Now()
	since := m.parser.Projector.Advance(now, d.Totals())
	ago := m.parser.Projector.Advance(now, d.Totals().Neg())
	rows := [][2]string{
		{"Grammar", fmt.Sprintf("%s (%s)", m.result.Grammar, m.result.Match.Status)},
		{"ISO 8601", d.Format(m.precision)},
		{"Seconds", d.Seconds().String()},
		{"Sentence", d.String()},
		{"From now", since.Format("2006-01-02 15:04:05 MST")},
		{"Ago", ago.Format("2006-01-02 15:04:05 MST")},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-9s", r[0]))+" "+valueStyle.Render(r[1]))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) updateLayout() {
	m.input.Width = maxInt(1, m.width-lipgloss.Width(m.input.Prompt)-1)
	m.parts.SetWidth(m.width)
	used := lipgloss.Height(titleStyle.Render("X")) + 1 + detailsHeight + partsHeight + 1
	m.history.Width = m.width
	m.history.Height = maxInt(1, m.height-used)
}

func newPartsTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Unit", Width: 8},
		{Title: "Magnitude", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(partsHeight-1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell
	t.SetStyles(styles)
	return t
}

// partRows lists the parts in insertion order, unmerged.
func partRows(d duration.Duration) []table.Row {
	parts := d.Parts()
	rows := make([]table.Row, 0, len(parts))
	for i, p := range parts {
		rows = append(rows, table.Row{fmt.Sprintf("%d", i+1), p.Unit.String(), p.Magnitude.String()})
	}
	return rows
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
