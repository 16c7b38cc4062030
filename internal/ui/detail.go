package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/state"
)

// detailTitle returns the detail pane title for the selected item.
func (m Model) detailTitle() string {
	item, ok := m.selectedItem()
	if !ok {
		return "Details"
	}
	return item.Title()
}

// renderDetail renders the picture preview above the metadata of the selected item.
func (m Model) renderDetail(width, height int) string {
	styles := m.theme.Styles()
	item, ok := m.selectedItem()
	if !ok {
		return styles.MutedText.Render("Select a cat")
	}

	pic, hasSlot := state.State[catapi.Picture]{}, false
	if m.slots != nil {
		pic, hasSlot = m.slots.Get(item.ID)
	}

	meta := m.detailMeta(item, pic, width)
	status := m.pictureStatus(pic, hasSlot)

	previewRows := height - len(meta) - 1
	if status != "" {
		previewRows--
	}
	if previewRows < LayoutMinPreviewHeight {
		previewRows = min(LayoutMinPreviewHeight, max(height-2, 0))
		keep := max(height-previewRows-1-ternaryInt(status != "", 1, 0), 0)
		if len(meta) > keep {
			meta = meta[:keep]
		}
	}

	var lines []string
	if pic.HasValue && pic.Value.Image != nil && previewRows > 0 {
		preview := cachedPreview(m.previews, pic.Value.URL, pic.Value.Image, width, previewRows)
		if len(preview) > 0 {
			pad := strings.Repeat(" ", max((width-lipgloss.Width(preview[0]))/2, 0))
			for _, line := range preview {
				lines = append(lines, pad+line)
			}
		}
	}
	if status != "" {
		lines = append(lines, status)
	}
	lines = append(lines, "")
	lines = append(lines, meta...)
	return strings.Join(lines, "\n")
}

// pictureStatus describes the picture lifecycle when there is no fresh preview to show.
func (m Model) pictureStatus(pic state.State[catapi.Picture], hasSlot bool) string {
	styles := m.theme.Styles()
	if !hasSlot {
		return styles.MutedText.Render("Picture not requested")
	}
	switch pic.Phase {
	case state.Loading:
		label := ternary(pic.HasValue, "Refreshing picture...", "Loading picture...")
		return styles.AccentText.Render(m.spinner.View() + " " + label)
	case state.Failed:
		return styles.DangerText.Render("✗ "+catapi.Message(pic.Err)) +
			styles.MutedText.Render("  (R to retry)")
	case state.Idle:
		return styles.MutedText.Render("Waiting")
	default:
		return ""
	}
}

// detailMeta renders the breed and image metadata, wrapped to width.
func (m Model) detailMeta(item catapi.Image, pic state.State[catapi.Picture], width int) []string {
	styles := m.theme.Styles()
	label := func(k, v string) string {
		return styles.MutedText.Render(k+": ") + styles.Text.Render(v)
	}
	wrap := lipgloss.NewStyle().Width(max(width, 1))

	var lines []string

	header := styles.Text.Bold(true).Render(item.Title())
	if m.favorites != nil && m.favorites.Contains(item.ID) {
		favStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor("favorite")))
		header += "  " + favStyle.Render("★ favorite")
	}
	lines = append(lines, header)

	facts := []string{"id " + item.ID}
	if w, h, ok := item.Dimensions(); ok {
		facts = append(facts, fmt.Sprintf("%dx%d", w, h))
	}
	if pic.HasValue {
		facts = append(facts, fmt.Sprintf("%s %s", pic.Value.Format, formatBytes(int64(pic.Value.Bytes))))
	}
	lines = append(lines, styles.FaintText.Render(truncate(strings.Join(facts, " · "), width)))

	breed, ok := item.PrimaryBreed()
	if !ok {
		lines = append(lines, styles.MutedText.Render("No breed data for this picture"))
		return lines
	}

	if breed.Origin != "" {
		lines = append(lines, label("Origin", breed.Origin))
	}
	if breed.LifeSpan != "" {
		lines = append(lines, label("Life span", breed.LifeSpan+" years"))
	}
	if traits := breed.Traits(); len(traits) > 0 {
		lines = append(lines, strings.Split(wrap.Render(label("Temperament", strings.Join(traits, ", "))), "\n")...)
	}
	if breed.Description != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(wrap.Render(styles.Text.Render(breed.Description)), "\n")...)
	}
	if breed.WikipediaURL != "" {
		lines = append(lines, styles.AccentText.Render(truncateMiddle(breed.WikipediaURL, width)))
	}
	return lines
}
