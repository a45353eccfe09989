package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/gallery/internal/gallery"
	"github.com/five82/gallery/internal/state"
)

const (
	headerLines = 1
	footerLines = 3
)

// renderMain renders the header, the image list and the footer.
func (m Model) renderMain() string {
	bodyHeight := max(m.height-headerLines-footerLines, 1)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(m.renderBody(bodyHeight)))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	q := m.query
	items := q.Items()

	parts := []string{
		styles.Logo.Render("gallery"),
		styles.StatusStyle(q.Status.String()).Render(statusLabel(q.Status)),
	}
	if len(items) > 0 {
		parts = append(parts, styles.Text.Render(fmt.Sprintf("%d images", len(items))))
	}
	if q.HasMore() {
		parts = append(parts, styles.MutedText.Render("more available"))
	}
	if q.Stale {
		parts = append(parts, styles.WarningText.Render("refreshing"))
	}
	if isBusy(q.Status) {
		parts = append(parts, m.spinner.View())
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderBody(height int) string {
	styles := m.theme.Styles()
	q := m.query
	items := q.Items()

	switch {
	case q.Status == state.StatusError:
		lines := []string{
			styles.DangerText.Render("Could not load images"),
		}
		if q.Err != nil {
			lines = append(lines, styles.MutedText.Render(truncate(q.Err.Error(), max(m.width-4, 20))))
		}
		lines = append(lines, "", styles.Text.Render("Press r to retry"))
		return indent(lines)

	case len(items) == 0 && (q.Status == state.StatusIdle || q.Status == state.StatusLoading):
		return indent([]string{m.spinner.View() + " " + styles.MutedText.Render("Loading images...")})

	case len(items) == 0:
		return indent([]string{styles.MutedText.Render("No images yet. Press u to upload one.")})
	}

	return m.renderList(items, height)
}

func (m Model) renderList(items []gallery.Item, height int) string {
	styles := m.theme.Styles()
	rowsPerItem := 1
	if m.showDescriptions {
		rowsPerItem = 2
	}
	visible := max(height/rowsPerItem, 1)
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(items))

	titleWidth := max(min(m.width/2, 40), 12)
	now := m.now()

	lines := make([]string, 0, (end-start)*rowsPerItem)
	for i := start; i < end; i++ {
		item := items[i]
		marker := "  "
		if i == m.selected {
			marker = "▸ "
		}
		title := fmt.Sprintf("%-*s", titleWidth, truncate(item.Title, titleWidth))
		row := marker + title + "  " + relativeTime(item.CreatedAt(), now)

		if i == m.selected {
			lines = append(lines, styles.Selected.Width(m.width).Render(row))
		} else {
			lines = append(lines, styles.Text.Render(row))
		}
		if m.showDescriptions {
			lines = append(lines, "    "+styles.FaintText.Render(truncate(item.Description, max(m.width-6, 10))))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	q := m.query

	var status string
	switch {
	case q.Status == state.StatusLoadingMore:
		status = m.spinner.View() + " " + styles.MutedText.Render("Loading more...")
	case q.Status == state.StatusSuccess && q.HasMore():
		status = styles.AccentText.Render("m") + " " + styles.Text.Render("Load more")
	case q.Status == state.StatusSuccess && len(q.Pages) > 0:
		status = styles.FaintText.Render("End of gallery")
	}

	var notice string
	switch {
	case q.Status == state.StatusSuccess && q.Err != nil:
		notice = styles.DangerText.Render("Load more failed: ") + styles.MutedText.Render(q.Err.Error())
	case m.flash != "":
		notice = styles.SuccessText.Render(m.flash)
	}

	hints := styles.FaintText.Render("enter view · u upload · d descriptions · T theme · h help · e quit")

	return styles.Footer.Width(m.width).Render(strings.Join([]string{status, notice, hints}, "\n"))
}

func statusLabel(s state.Status) string {
	switch s {
	case state.StatusLoading:
		return "LOADING"
	case state.StatusLoadingMore:
		return "LOADING MORE"
	case state.StatusError:
		return "ERROR"
	case state.StatusSuccess:
		return "READY"
	default:
		return "IDLE"
	}
}

func isBusy(s state.Status) bool {
	return s == state.StatusLoading || s == state.StatusLoadingMore
}

func indent(lines []string) string {
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
