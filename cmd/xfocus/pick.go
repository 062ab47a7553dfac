package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/xfocus/internal/tui"
)

func runPick(args []string) int {
	fs, configPath := newFocusFlagSet("pick", "xfocus pick [--config PATH]",
		"Choose a client window from an interactive list and focus it. Press 's'\non a window to save it as a named target in the config file.")
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return 2
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "pick requires an interactive terminal (stdin/stdout must be TTYs)")
		return 1
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

	savePath := *configPath
	if savePath == "" {
		savePath = s.configFile
	}

	chosen, err := tui.Run(tui.Options{
		Source:     s.controller,
		Desktop:    s.desktop,
		Config:     s.cfg,
		ConfigPath: savePath,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if chosen == nil {
		return 0
	}

	chosen.Focus()
	fmt.Printf("focused %s %q (desktop %d)\n", chosen, chosen.Title, chosen.Desktop)
	return 0
}
