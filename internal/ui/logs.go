package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/whisker/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	entries []logtail.Entry
	lines   []string // plain text, one per entry, used for search
	follow  bool
	err     error

	// Search
	searchActive   bool
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchInput    textinput.Model
	searchMatches  []int
	searchMatchIdx int
}

type logTailMsg struct {
	entries []logtail.Entry
	err     error
}

// initLogState initializes the log state.
func (m *Model) initLogState() {
	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.CharLimit = 100

	m.logState = logState{follow: true, searchInput: ti}
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-2, 1), max(m.contentHeight()-3, 1))
}

// updateLogViewport resizes the viewport and re-renders its content.
func (m *Model) updateLogViewport() {
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(m.contentHeight()-3, 1) // box borders and status line
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogTail replaces the buffered entries with a fresh tail of the file.
func (m *Model) handleLogTail(msg logTailMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
		m.logState.lines = make([]string, len(msg.entries))
		for i, e := range msg.entries {
			m.logState.lines[i] = formatLogEntry(e)
		}
		m.findSearchMatches()
	}
	m.updateLogViewport()
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	height := m.contentHeight() - 1

	title := "Log " + truncateMiddle(m.logPath, max(m.width-12, 10))
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, height, true)
	return box + "\n" + bg.FillLine(m.renderLogStatus(styles, bg), m.width)
}

// renderLogStatus renders the line below the log box.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logState.searchActive {
		return bg.Render("/", styles.AccentText) + m.logState.searchInput.View()
	}

	if m.logState.searchRegex != nil {
		if len(m.logState.searchMatches) == 0 {
			return bg.Render("Pattern not found: "+m.logState.searchQuery, styles.DangerText)
		}
		return bg.Render("/"+m.logState.searchQuery, styles.AccentText) +
			bg.Render(" - ", styles.FaintText) +
			bg.Render(fmt.Sprintf("%d/%d", m.logState.searchMatchIdx+1, len(m.logState.searchMatches)), styles.WarningText) +
			bg.Render(" - n next, N previous, Esc clears", styles.FaintText)
	}

	if m.logState.err != nil {
		return bg.Render("Log unavailable: "+m.logState.err.Error(), styles.DangerText)
	}

	status := fmt.Sprintf("%d entries auto-tail %s", len(m.logState.entries), ternary(m.logState.follow, "on", "off"))
	return bg.Render(status, styles.FaintText)
}

// renderLogContent renders the colorized log lines.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if len(m.logState.entries) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	matchSet := make(map[int]bool, len(m.logState.searchMatches))
	for _, idx := range m.logState.searchMatches {
		matchSet[idx] = true
	}
	active := -1
	if m.logState.searchMatchIdx < len(m.logState.searchMatches) {
		active = m.logState.searchMatches[m.logState.searchMatchIdx]
	}

	var b strings.Builder
	for i, e := range m.logState.entries {
		var line string
		switch {
		case i == active:
			line = lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background)).
				Render(m.logState.lines[i])
		case matchSet[i]:
			line = bg.Render(m.logState.lines[i], styles.AccentText)
		default:
			line = m.colorizeEntry(e, styles, bg)
		}
		b.WriteString(bg.FillLine(line, width))
		if i < len(m.logState.entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// colorizeEntry renders one entry with level and component colors.
func (m *Model) colorizeEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	parts := make([]string, 0, 5)
	if !e.Time.IsZero() {
		parts = append(parts, bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
	}
	parts = append(parts, bg.Render(padRight(levelLabel(e.Level), 5), m.levelStyle(e.Level, styles)))
	if e.Component != "" {
		parts = append(parts, bg.Render("["+e.Component+"]", styles.InfoText))
	}
	if e.Message != "" {
		parts = append(parts, bg.Render(e.Message, styles.Text))
	}
	if e.Error != "" {
		parts = append(parts, bg.Render("error="+e.Error, styles.DangerText))
	}
	if f := e.FieldString(); f != "" {
		parts = append(parts, bg.Render(f, styles.MutedText))
	}
	return strings.Join(parts, bg.Space())
}

func (m *Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug", "trace":
		return styles.FaintText
	default:
		return styles.SuccessText
	}
}

// formatLogEntry renders an entry as plain text.
func formatLogEntry(e logtail.Entry) string {
	parts := make([]string, 0, 6)
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.Local().Format("15:04:05"))
	}
	parts = append(parts, padRight(levelLabel(e.Level), 5))
	if e.Component != "" {
		parts = append(parts, "["+e.Component+"]")
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Error != "" {
		parts = append(parts, "error="+e.Error)
	}
	if f := e.FieldString(); f != "" {
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}

func levelLabel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "" {
		return "INFO"
	}
	return level
}

// handleLogsKey processes keyboard input for logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, refreshLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchInput.SetValue("")
		return m, m.logState.searchInput.Focus()

	case key.Matches(msg, m.keys.NextMatch):
		m.stepSearchMatch(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevMatch):
		m.stepSearchMatch(-1)
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
	}

	return m, nil
}

// handleLogSearchInput handles keyboard input during log search.
func (m Model) handleLogSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := strings.TrimSpace(m.logState.searchInput.Value())
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		if query == "" {
			m.clearLogSearch()
			m.updateLogViewport()
			return m, nil
		}

		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
		}
		m.logState.searchRegex = re
		m.logState.searchQuery = query
		m.findSearchMatches()
		if len(m.logState.searchMatches) > 0 {
			m.logState.searchMatchIdx = 0
			m.scrollToSearchMatch()
		}
		m.updateLogViewport()
		return m, nil

	case msg.Type == tea.KeyEsc:
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.logState.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return m, cmd
}

// clearLogSearch clears the search state.
func (m *Model) clearLogSearch() {
	m.logState.searchRegex = nil
	m.logState.searchQuery = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
}

// findSearchMatches finds all lines matching the current search regex.
func (m *Model) findSearchMatches() {
	m.logState.searchMatches = nil
	if m.logState.searchRegex == nil {
		return
	}
	for i, line := range m.logState.lines {
		if m.logState.searchRegex.MatchString(line) {
			m.logState.searchMatches = append(m.logState.searchMatches, i)
		}
	}
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		m.logState.searchMatchIdx = 0
	}
}

// stepSearchMatch moves the active match by delta, wrapping around.
func (m *Model) stepSearchMatch(delta int) {
	n := len(m.logState.searchMatches)
	if n == 0 {
		return
	}
	m.logState.searchMatchIdx = ((m.logState.searchMatchIdx+delta)%n + n) % n
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

// scrollToSearchMatch centres the active match and pauses following.
func (m *Model) scrollToSearchMatch() {
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		return
	}
	target := m.logState.searchMatches[m.logState.searchMatchIdx]
	m.logState.follow = false
	m.logViewport.SetYOffset(max(target-m.logViewport.Height/2, 0))
}

// refreshLogsCmd tails the log file off the UI goroutine.
func refreshLogsCmd(path string) tea.Cmd {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogTailLimit)
		return logTailMsg{entries: entries, err: err}
	}
}
