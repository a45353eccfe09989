package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/gallery/internal/gallery"
)

// viewerModal shows one image's details and the link to the original.
type viewerModal struct {
	item gallery.Item
	now  time.Time
}

func newViewerModal(item gallery.Item, now time.Time) viewerModal {
	return viewerModal{item: item, now: now}
}

func (v viewerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil, false
	}
	if key.Matches(keyMsg, keys.Escape, keys.View, keys.Quit) || keyMsg.String() == "q" {
		return v, nil, true
	}
	return v, nil, false
}

func (v viewerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(v.item.Title))
	b.WriteString("\n\n")
	if v.item.Description != "" {
		b.WriteString(styles.Text.Render(v.item.Description))
		b.WriteString("\n\n")
	}
	if created := v.item.CreatedAt(); !created.IsZero() {
		b.WriteString(styles.MutedText.Render("Added " + created.Local().Format("2006-01-02 15:04") + " (" + relativeTime(created, v.now) + ")"))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedText.Render("Open original: "))
	b.WriteString(styles.AccentText.Underline(true).Render(v.item.URL))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("esc close"))

	return placeModal(theme, width, height, 72, b.String())
}
