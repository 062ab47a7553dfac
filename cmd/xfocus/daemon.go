package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/xfocus/internal/daemon"
	"github.com/1broseidon/xfocus/internal/hotkeys"
	"github.com/1broseidon/xfocus/internal/ipc"
)

func runDaemon(args []string) int {
	fs, configPath := newFocusFlagSet("daemon", "xfocus daemon [--config PATH] [--watch DURATION]",
		"Run in the background, binding the hotkey of every configured target and\nanswering focus requests on the IPC socket.")
	watch := fs.Duration("watch", 2*time.Second, "Reload when the config file changes, checked at this interval (0 disables)")
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	xu := s.desktop.XUtil()
	if xu == nil {
		s.logger.Error("daemon requires a reachable X display")
		fmt.Fprintln(os.Stderr, "No X display available; the daemon cannot grab hotkeys")
		return 1
	}

	d := daemon.New(daemon.Options{
		Config:        s.cfg,
		ConfigPath:    *configPath,
		Display:       os.Getenv("DISPLAY"),
		Focuser:       s.controller,
		Desktop:       s.desktop,
		Hotkeys:       hotkeys.NewHandler(xu, s.desktop.Root(), s.logger),
		Chooser:       newMenuChooser(s),
		Logger:        s.logger,
		WatchInterval: *watch,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := d.Run(ctx); err != nil {
		s.logger.Error("daemon stopped", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newIPCFlagSet(name, usage, help string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	return fs
}

func runStatus(args []string) int {
	fs := newIPCFlagSet("status", "xfocus status", "Show daemon status via IPC.")
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	writeStatus(os.Stdout, status)
	return 0
}

func writeStatus(w io.Writer, status *ipc.StatusData) {
	hotkeys := "-"
	if len(status.Hotkeys) > 0 {
		hotkeys = strings.Join(status.Hotkeys, ", ")
	}
	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "display:        %s\n", status.Display)
	fmt.Fprintf(w, "targets:        %d\n", status.Targets)
	fmt.Fprintf(w, "hotkeys:        %s\n", hotkeys)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
}

func runReload(args []string) int {
	fs := newIPCFlagSet("reload", "xfocus reload", "Ask the running daemon to re-read its config file and rebind hotkeys.")
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}
