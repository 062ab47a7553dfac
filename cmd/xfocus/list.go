package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/term"

	"github.com/1broseidon/xfocus/internal/x11"
)

type windowListing struct {
	CurrentDesktop *uint32       `json:"current_desktop,omitempty"`
	Windows        []x11.Summary `json:"windows"`
}

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func runList(args []string) int {
	fs, configPath := newFocusFlagSet("list", "xfocus list [--config PATH] [--json]",
		"List the window manager's client windows in client-list order. On a\nterminal the output is an aligned table; otherwise tab-separated.")
	asJSON := fs.Bool("json", false, "Print JSON")
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

	listing := collectListing(s.desktop, s.controller.Windows())

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(listing); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if err := writeWindowTable(os.Stdout, listing, stdoutIsTerminal()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type desktopState interface {
	CurrentDesktop() (uint32, bool)
	ActiveWindow() xproto.Window
}

func collectListing(desktop desktopState, windows []*x11.Window) windowListing {
	listing := windowListing{Windows: make([]x11.Summary, 0, len(windows))}
	if current, ok := desktop.CurrentDesktop(); ok {
		listing.CurrentDesktop = &current
	}
	active := desktop.ActiveWindow()
	for _, w := range windows {
		listing.Windows = append(listing.Windows, w.Summary(active))
	}
	return listing
}

// writeWindowTable prints one row per window. tty selects an aligned table
// with a header; otherwise rows are plain tab-separated fields for scripts.
func writeWindowTable(w io.Writer, listing windowListing, tty bool) error {
	if !tty {
		for _, win := range listing.Windows {
			active := ""
			if win.Active {
				active = "*"
			}
			if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", win.ID, win.Desktop, win.Class, win.Instance, active, win.Title); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tDESKTOP\tCLASS\tINSTANCE\tTITLE")
	for _, win := range listing.Windows {
		marker := " "
		if win.Active {
			marker = "*"
		}
		desktop := fmt.Sprintf("%d", win.Desktop)
		if win.Desktop == 0xFFFFFFFF {
			desktop = "all"
		} else if listing.CurrentDesktop != nil && win.Desktop == *listing.CurrentDesktop {
			desktop += " (current)"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\t%s\n", marker, win.ID, desktop, win.Class, win.Instance, win.Title)
	}
	return tw.Flush()
}
