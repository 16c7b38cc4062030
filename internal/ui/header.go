package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/state"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	content := m.buildStatusContent(styles, bg)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(content)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth
	snap := m.snapshot

	var parts []string

	parts = append(parts, bg.Render("whisker", styles.Logo))
	parts = append(parts, m.renderListIndicator(styles, bg))

	parts = append(parts,
		bg.Pair("Cats:", fmt.Sprintf("%d", len(snap.Items)), styles.MutedText, styles.Text),
	)

	if !compact {
		parts = append(parts,
			bg.Pair("Breed:", truncate(m.breedLabel(), 20), styles.MutedText, styles.InfoText),
		)
	}

	if m.cache != nil {
		parts = append(parts, m.renderCacheStats(compact, styles, bg))
	}

	if m.loads != nil {
		if inFlight := m.loads.Stats().InFlight; inFlight > 0 {
			parts = append(parts,
				bg.Pair("Fetching:", fmt.Sprintf("%d", inFlight), styles.MutedText, styles.AccentText),
			)
		}
	}

	if m.favorites != nil {
		favStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor("favorite")))
		parts = append(parts,
			bg.Pair("★", fmt.Sprintf("%d", m.favorites.Len()), favStyle, styles.Text),
		)
	}

	if ts := formatTimestamp(snap.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	// List error, kept visible while the previous items stay on screen.
	if snap.Phase == state.Failed && snap.Err != nil {
		maxErr := ternaryInt(compact, 40, 80)
		parts = append(parts,
			bg.Render(classifyFetchError(snap.Err), styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(catapi.Message(snap.Err), maxErr), styles.DangerText),
		)
	}

	if m.notice != "" {
		style := styles.InfoText
		marker := "•"
		if m.noticeErr {
			style = styles.WarningText
			marker = "!"
		}
		parts = append(parts,
			bg.Render(marker, style.Bold(true))+bg.Space()+
				bg.Render(truncate(m.notice, 60), style),
		)
	}

	return bg.Join(parts, "  ")
}

// renderListIndicator shows the bulk list phase.
func (m Model) renderListIndicator(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor("offline")))
		return bg.Render("● OFFLINE", style.Bold(true))
	case snap.Phase == state.Loading:
		return bg.Render(m.spinner.View(), styles.AccentText) + bg.Space() + bg.Render("SYNC", styles.AccentText)
	case snap.Phase == state.Failed:
		return bg.Render("● ERROR", styles.DangerText)
	case snap.Phase == state.Loaded:
		return bg.Render("● LIVE", styles.SuccessText)
	default:
		return bg.Render("○ IDLE", styles.MutedText)
	}
}

// renderCacheStats shows entries, weight and hit rate of the picture cache.
func (m Model) renderCacheStats(compact bool, styles Styles, bg BgStyle) string {
	st := m.cache.Stats()
	out := bg.Pair("Cache:", fmt.Sprintf("%d", st.Entries), styles.MutedText, styles.Text)
	if compact {
		return out
	}
	out += bg.Space() + bg.Render(formatBytes(st.Bytes), styles.FaintText)
	if lookups := st.Hits + st.Misses; lookups > 0 {
		rate := float64(st.Hits) / float64(lookups) * 100
		out += bg.Space() + bg.Render(fmt.Sprintf("%.0f%% hit", rate), styles.FaintText)
	}
	return out
}

// breedLabel names the active breed filter.
func (m Model) breedLabel() string {
	if m.breedIdx >= 0 && m.breedIdx < len(m.breeds) {
		return m.breeds[m.breedIdx].Name
	}
	if id := m.snapshot.Query.BreedID; id != "" {
		return id
	}
	return "All"
}

// formatTimestamp formats the last update time with relative indicator.
func formatTimestamp(last, now time.Time) string {
	if last.IsZero() {
		return ""
	}

	since := now.Sub(last)
	out := last.Format("15:04:05")

	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}

	return out
}

// classifyFetchError returns a short label for the failure kind.
func classifyFetchError(err error) string {
	switch catapi.KindOf(err) {
	case catapi.KindTransport:
		if strings.Contains(strings.ToLower(err.Error()), "timeout") ||
			strings.Contains(strings.ToLower(err.Error()), "deadline") {
			return "TIMEOUT"
		}
		return "OFFLINE"
	case catapi.KindHTTPStatus:
		if code := catapi.StatusOf(err); code > 0 {
			return fmt.Sprintf("HTTP %d", code)
		}
		return "HTTP"
	case catapi.KindDecode:
		return "BAD DATA"
	case catapi.KindNoData:
		return "EMPTY"
	case catapi.KindInvalidRequest:
		return "BAD REQUEST"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"b", "Browse"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"r", "Refresh"},
			{"R", "Retry"},
			{"f", "Favorite"},
			{"/", m.breedLabel()},
			{"+/-", fmt.Sprintf("%d/page", m.pageSize())},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewLogs && m.logState.searchQuery != "" {
		segments = append(segments,
			bg.Render("/"+truncate(m.logState.searchQuery, 18), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// pageSize returns the limit of the current list query.
func (m Model) pageSize() int {
	if n := m.snapshot.Limit(); n > 0 {
		return n
	}
	if m.collection != nil {
		return m.collection.Query().Limit
	}
	return 0
}

func ternaryInt(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
