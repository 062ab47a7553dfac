package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the menu without selecting
// an item.
var ErrCancelled = errors.New("menu cancelled")

// Item is a single selectable row.
type Item struct {
	Label    string // Display text
	Icon     string // Icon name for rofi -show-icons
	Info     string // Hidden data carried with the row
	Meta     string // Hidden search keywords (rofi meta field)
	IsActive bool   // Highlighted as current/active
}

// Capabilities describes what features a backend supports.
type Capabilities struct {
	Icons       bool // Supports icon display
	Markup      bool // Supports pango markup in labels
	IndexOutput bool // Can output the selection index, not just text
	MessageBar  bool // Supports a message line above the rows
	RowStates   bool // Supports active row highlighting
}

// Backend shows a menu to the user and returns the selected item.
type Backend interface {
	Show(prompt string, items []Item, message string) (Item, error)
	Capabilities() Capabilities
}

// Names lists the supported backends in detection order.
var Names = []string{"rofi", "fuzzel", "wofi", "dmenu"}

var lookPath = exec.LookPath

// DetectBackend returns the first backend found in PATH.
func DetectBackend() (string, error) {
	for _, name := range Names {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no menu backend found in PATH (looked for: %s)", strings.Join(Names, ", "))
}

// NewBackend creates a backend by name. "" and "auto" detect one.
func NewBackend(name string, fuzzy bool) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *dmenuLikeBackend
	switch name {
	case "rofi":
		b = newRofiBackend()
	case "fuzzel":
		b = newFuzzelBackend()
	case "wofi":
		b = newWofiBackend()
	case "dmenu":
		b = newDmenuBackend()
	default:
		return nil, fmt.Errorf("unknown menu backend: %q (expected: auto, %s)", name, strings.Join(Names, ", "))
	}
	if _, err := lookPath(b.command); err != nil {
		return nil, fmt.Errorf("menu backend %q not found in PATH", b.command)
	}
	b.fuzzyMatching = fuzzy
	return b, nil
}
