package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/state"
)

// contentHeight is the height left below the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

// listRows is the number of item rows that fit in the list pane.
func (m Model) listRows() int {
	return m.contentHeight() - 2
}

// paneWidths splits the terminal between list and detail panes.
func (m Model) paneWidths() (list, detail int) {
	if m.width >= LayoutExtraWideWidth {
		list = m.width * 30 / 100
	} else {
		list = m.width * 40 / 100
	}
	list = max(list, 20)
	return list, max(m.width-list, 0)
}

// renderBrowse renders the list and detail panes side by side.
func (m Model) renderBrowse() string {
	height := m.contentHeight()
	listWidth, detailWidth := m.paneWidths()

	list := m.renderTitledBox(m.listTitle(), m.renderList(listWidth-2), listWidth, height, true)
	if detailWidth < 10 {
		return list
	}
	detail := m.renderTitledBox(m.detailTitle(), m.renderDetail(detailWidth-2, height-2), detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// listTitle returns the list pane title with the page size and breed filter.
func (m Model) listTitle() string {
	title := fmt.Sprintf("Cats (%d)", len(m.snapshot.Items))
	if label := m.breedLabel(); label != "All" {
		title += " " + label
	}
	return title
}

// renderList renders the visible item rows, or an empty state.
func (m Model) renderList(width int) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.FocusBg)
	snap := m.snapshot

	if len(snap.Items) == 0 {
		var msg string
		var style lipgloss.Style
		switch snap.Phase {
		case state.Loading:
			msg, style = m.spinner.View()+" Fetching cats...", styles.AccentText
		case state.Failed:
			msg, style = catapi.Message(snap.Err)+" (r to retry)", styles.DangerText
		case state.Loaded:
			msg, style = "No cats matched", styles.MutedText
		default:
			msg, style = "No cats yet (r to load)", styles.MutedText
		}
		return bg.FillLine(bg.Render(truncate(msg, width), style), width)
	}

	visible := m.visibleItems()
	lines := make([]string, 0, len(visible))
	for i, item := range visible {
		selected := m.listOffset+i == m.selectedRow
		lines = append(lines, m.renderItemRow(item, width, selected))
	}
	return strings.Join(lines, "\n")
}

// renderItemRow renders one item: picture state glyph, favorite marker, title, id.
func (m Model) renderItemRow(item catapi.Image, width int, selected bool) string {
	rowBg := ternary(selected, m.theme.SelectionBg, m.theme.FocusBg)
	bg := NewBgStyle(rowBg)

	glyph, glyphColor := m.slotGlyph(item.ID)
	fav := " "
	if m.favorites != nil && m.favorites.Contains(item.ID) {
		fav = "★"
	}

	idStr := truncate(item.ID, 12)
	titleWidth := max(width-lipgloss.Width(glyph)-lipgloss.Width(idStr)-5, 4)

	var glyphStyle, favStyle, titleStyle, idStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		glyphStyle, favStyle, titleStyle, idStyle = selText, selText, selText.Bold(true), selText
	} else {
		styles := m.theme.Styles()
		glyphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(glyphColor))
		favStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor("favorite")))
		titleStyle = styles.Text
		idStyle = styles.FaintText
	}

	row := bg.Render(glyph, glyphStyle) + bg.Space() +
		bg.Render(fav, favStyle) + bg.Space() +
		bg.Render(padRight(truncate(item.Title(), titleWidth), titleWidth), titleStyle) + bg.Space() +
		bg.Render(idStr, idStyle)
	return bg.FillLine(row, width)
}

// slotGlyph returns the per-item picture state marker and its color.
func (m Model) slotGlyph(id string) (string, string) {
	if m.slots == nil {
		return "○", m.theme.StatusColor("idle")
	}
	st, ok := m.slots.Get(id)
	if !ok {
		return "○", m.theme.StatusColor("idle")
	}
	switch st.Phase {
	case state.Loading:
		return m.spinner.View(), m.theme.PhaseColor(st.Phase)
	case state.Loaded:
		return "●", m.theme.PhaseColor(st.Phase)
	case state.Failed:
		return "✗", m.theme.PhaseColor(st.Phase)
	default:
		return "○", m.theme.PhaseColor(st.Phase)
	}
}

// renderTitledBox renders content in a box with the title embedded in the top border:
// ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bg.Color())

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}
