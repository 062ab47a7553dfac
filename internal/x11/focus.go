package x11

import "github.com/1broseidon/xfocus/internal/config"

// Controller focuses the first client window that matches a title or a
// class/instance pair.
type Controller struct {
	desktop *Desktop
}

// NewController returns a controller scanning desktop's client list.
func NewController(desktop *Desktop) *Controller {
	return &Controller{desktop: desktop}
}

// FocusByTitle focuses the first window whose title is exactly title and
// returns it, or nil when no window matches.
func (c *Controller) FocusByTitle(title string) *Window {
	return c.focusFirst(func(w *Window) bool {
		return w.HasTitle(title)
	})
}

// FocusByClass focuses the first window whose class and instance both match
// and returns it, or nil when no window matches.
func (c *Controller) FocusByClass(class, instance string) *Window {
	return c.focusFirst(func(w *Window) bool {
		return w.HasClass(class, instance)
	})
}

// FocusTarget focuses a configured target, matching by class/instance when
// the target names a class and by title otherwise.
func (c *Controller) FocusTarget(t config.Target) *Window {
	if t.ByClass() {
		return c.FocusByClass(t.Class, t.Instance)
	}
	return c.FocusByTitle(t.Title)
}

// FocusID focuses the client whose ID, formatted as in Summary, is id. Only
// the matching window's properties are read.
func (c *Controller) FocusID(id string) *Window {
	for _, w := range c.desktop.ClientList() {
		if w.String() != id {
			continue
		}
		w.Update()
		w.Focus()
		return w
	}
	return nil
}

// Windows returns the client list with metadata read for every window.
func (c *Controller) Windows() []*Window {
	windows := c.desktop.ClientList()
	for _, w := range windows {
		w.Update()
	}
	return windows
}

// focusFirst updates windows in client-list order and stops at the first
// match. Windows after the match are never read.
func (c *Controller) focusFirst(match func(*Window) bool) *Window {
	for _, w := range c.desktop.ClientList() {
		w.Update()
		if match(w) {
			w.Focus()
			return w
		}
	}
	return nil
}
