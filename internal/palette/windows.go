package palette

import (
	"fmt"
	"strings"

	"github.com/1broseidon/xfocus/internal/x11"
)

const allDesktops = 0xFFFFFFFF

// WindowChooser lets the user pick a client window from a launcher menu.
type WindowChooser struct {
	backend Backend
	prompt  string
}

func NewWindowChooser(backend Backend) *WindowChooser {
	return &WindowChooser{backend: backend, prompt: "focus"}
}

// Choose shows windows and returns the selected one. It returns
// ErrCancelled when the menu is dismissed.
func (c *WindowChooser) Choose(windows []x11.Summary, currentDesktop *uint32) (x11.Summary, error) {
	if len(windows) == 0 {
		return x11.Summary{}, fmt.Errorf("menu: no client windows")
	}

	items := WindowItems(windows)
	message := ""
	if currentDesktop != nil && c.backend.Capabilities().MessageBar {
		message = fmt.Sprintf("%d windows, current desktop %d", len(windows), *currentDesktop)
	}

	chosen, err := c.backend.Show(c.prompt, items, message)
	if err != nil {
		return x11.Summary{}, err
	}
	for _, w := range windows {
		if w.ID == chosen.Info {
			return w, nil
		}
	}
	return x11.Summary{}, fmt.Errorf("menu: selected window %s is gone", chosen.Info)
}

// WindowItems turns window summaries into menu rows. Info carries the
// window ID.
func WindowItems(windows []x11.Summary) []Item {
	items := make([]Item, 0, len(windows))
	for _, w := range windows {
		items = append(items, Item{
			Label:    windowLabel(w),
			Icon:     strings.ToLower(w.Instance),
			Info:     w.ID,
			Meta:     strings.TrimSpace(w.Class + " " + w.Instance),
			IsActive: w.Active,
		})
	}
	return items
}

func windowLabel(w x11.Summary) string {
	title := w.Title
	if title == "" {
		title = "(untitled)"
	}
	desktop := fmt.Sprintf("%d", w.Desktop)
	if w.Desktop == allDesktops {
		desktop = "all"
	}
	class := w.Class
	if class == "" {
		class = "-"
	}
	return fmt.Sprintf("%s  [%s]  desktop %s", title, class, desktop)
}
