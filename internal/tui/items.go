package tui

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xfocus/internal/x11"
)

// allDesktops is the _NET_WM_DESKTOP value for windows shown on every desktop.
const allDesktops = 0xFFFFFFFF

var (
	activeMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	untitledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	inactiveMarker = " "
)

// windowItem is a list item for one client window.
type windowItem struct {
	window  *x11.Window
	summary x11.Summary
}

func (i windowItem) Title() string {
	title := i.summary.Title
	if title == "" {
		title = untitledStyle.Render("(untitled)")
	}
	marker := inactiveMarker
	if i.summary.Active {
		marker = activeMarker
	}
	return marker + " " + title
}

func (i windowItem) Description() string {
	parts := []string{
		classLabel(i.summary.Class, i.summary.Instance),
		desktopLabel(i.summary.Desktop),
		i.summary.ID,
	}
	return "  " + strings.Join(parts, "  ")
}

func (i windowItem) FilterValue() string {
	return strings.Join([]string{i.summary.Title, i.summary.Class, i.summary.Instance}, " ")
}

func buildItems(windows []*x11.Window, active xproto.Window) []list.Item {
	items := make([]list.Item, 0, len(windows))
	for _, w := range windows {
		items = append(items, windowItem{window: w, summary: w.Summary(active)})
	}
	return items
}

func classLabel(class, instance string) string {
	switch {
	case class == "" && instance == "":
		return "-"
	case instance == "":
		return class
	case class == "":
		return instance
	}
	return instance + "/" + class
}

func desktopLabel(desktop uint32) string {
	if desktop == allDesktops {
		return "desktop all"
	}
	return fmt.Sprintf("desktop %d", desktop)
}
