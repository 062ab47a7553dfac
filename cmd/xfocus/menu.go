package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/xfocus/internal/daemon"
	"github.com/1broseidon/xfocus/internal/palette"
)

func runMenu(args []string) int {
	fs, configPath := newFocusFlagSet("menu", "xfocus menu [--config PATH] [--backend NAME]",
		"Choose a client window from a launcher menu (rofi, fuzzel, wofi or dmenu)\nand focus it.")
	backendName := fs.String("backend", "", "Menu program: auto, rofi, fuzzel, wofi, dmenu (default: menu.backend from config)")
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return 2
	}

	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	if s.desktop.Inert() {
		fmt.Fprintln(os.Stderr, "No X display available")
		return 1
	}

	name := *backendName
	if name == "" {
		name = s.cfg.Menu.Backend
	}
	backend, err := palette.NewBackend(name, s.cfg.Menu.FuzzyMatching)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	listing := collectListing(s.desktop, s.controller.Windows())
	chosen, err := palette.NewWindowChooser(backend).Choose(listing.Windows, listing.CurrentDesktop)
	if err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return focusResult(s, s.controller.FocusID(chosen.ID), fmt.Sprintf("window %s", chosen.ID))
}

// newMenuChooser builds the chooser behind the daemon's menu hotkey. It
// returns nil when no hotkey is configured or no backend is usable.
func newMenuChooser(s *session) daemon.Chooser {
	if s.cfg.Menu.Hotkey == "" {
		return nil
	}
	backend, err := palette.NewBackend(s.cfg.Menu.Backend, s.cfg.Menu.FuzzyMatching)
	if err != nil {
		s.logger.Warn("menu hotkey disabled", "hotkey", s.cfg.Menu.Hotkey, "error", err)
		return nil
	}
	return palette.NewWindowChooser(backend)
}
