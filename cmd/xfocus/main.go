package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/displayenv"
	"github.com/1broseidon/xfocus/internal/ipc"
	"github.com/1broseidon/xfocus/internal/logging"
	"github.com/1broseidon/xfocus/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "title":
		os.Exit(runTitle(os.Args[2:]))
	case "class":
		os.Exit(runClass(os.Args[2:]))
	case "target":
		os.Exit(runTarget(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xfocus <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  title <title>              Focus the first window with this exact title")
	fmt.Fprintln(w, "  class <class> <instance>   Focus the first window with this WM_CLASS")
	fmt.Fprintln(w, "  target <name>              Focus a target from the config file")
	fmt.Fprintln(w, "  list                       List client windows")
	fmt.Fprintln(w, "  pick                       Choose a window interactively")
	fmt.Fprintln(w, "  menu                       Choose a window from rofi/dmenu")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate            Validate configuration")
	fmt.Fprintln(w, "  config print               Print configuration")
	fmt.Fprintln(w, "  config explain             Show where a config value was set")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  daemon                     Bind target hotkeys and serve IPC requests")
	fmt.Fprintln(w, "  status                     Show daemon status")
	fmt.Fprintln(w, "  reload                     Make the daemon re-read its config")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve                  Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'xfocus <command> --help' for command-specific options.")
}

// session is the state shared by commands that talk to the X server.
type session struct {
	cfg        *config.Config
	configFile string
	logger     *slog.Logger
	logCloser  io.Closer
	desktop    *x11.Desktop
	controller *x11.Controller
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// openSession loads config, builds the logger, resolves the display and
// connects. A missing display is not fatal: the desktop is inert and every
// focus request finds nothing.
func openSession(configPath string) (*session, error) {
	res, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := logging.New(res.Config.Logging, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	env, err := displayenv.Resolve(res.Config, os.Environ())
	if err != nil {
		logger.Warn("display not resolved", "error", err)
	} else if err := env.Apply(); err != nil {
		logger.Warn("failed to export display environment", "error", err)
	}
	logger.Debug("display resolved", "display", env.Display, "xauthority", env.XAuthority)

	desktop := x11.OpenDesktop(env.Display, logger)
	return &session{
		cfg:        res.Config,
		configFile: res.File,
		logger:     logger,
		logCloser:  closer,
		desktop:    desktop,
		controller: x11.NewController(desktop),
	}, nil
}

func (s *session) Close() {
	s.desktop.Close()
	if s.logCloser != nil {
		s.logCloser.Close()
	}
}

// focusResult reports the outcome of a focus request and returns the exit code.
func focusResult(s *session, w *x11.Window, what string) int {
	if w == nil {
		if s.desktop.Inert() {
			fmt.Fprintf(os.Stderr, "No X display available; cannot focus %s\n", what)
		} else {
			fmt.Fprintf(os.Stderr, "No window matches %s\n", what)
		}
		return 1
	}
	fmt.Printf("focused %s %q (desktop %d)\n", w, w.Title, w.Desktop)
	return 0
}

func newFocusFlagSet(name, usage, help string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/xfocus/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	return fs, configPath
}

func daemonFlag(fs *flag.FlagSet) *bool {
	return fs.Bool("daemon", false, "Send the request to the running daemon instead of connecting to X")
}

// focusViaDaemon forwards a focus request over IPC. The exit codes match a
// local focus.
func focusViaDaemon(req ipc.FocusPayload, what string) int {
	data, err := ipc.NewClient().Focus(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !data.Focused || data.Window == nil {
		fmt.Fprintf(os.Stderr, "No window matches %s\n", what)
		return 1
	}
	fmt.Printf("focused %s %q (desktop %d)\n", data.Window.ID, data.Window.Title, data.Window.Desktop)
	return 0
}

func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func runTitle(args []string) int {
	fs, configPath := newFocusFlagSet("title", "xfocus title [--config PATH] <title>",
		"Focus the first client window whose _NET_WM_NAME equals <title> exactly,\nswitching to its desktop first.")
	viaDaemon := daemonFlag(fs)
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	title := fs.Arg(0)
	if *viaDaemon {
		return focusViaDaemon(ipc.FocusPayload{By: ipc.MatchTitle, Title: title}, fmt.Sprintf("title %q", title))
	}

	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	return focusResult(s, s.controller.FocusByTitle(title), fmt.Sprintf("title %q", title))
}

func runClass(args []string) int {
	fs, configPath := newFocusFlagSet("class", "xfocus class [--config PATH] <class> <instance>",
		"Focus the first client window whose WM_CLASS class and instance both match,\nswitching to its desktop first.")
	viaDaemon := daemonFlag(fs)
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	class, instance := fs.Arg(0), fs.Arg(1)
	if *viaDaemon {
		return focusViaDaemon(ipc.FocusPayload{By: ipc.MatchClass, Class: class, Instance: instance}, fmt.Sprintf("class %q instance %q", class, instance))
	}

	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	return focusResult(s, s.controller.FocusByClass(class, instance), fmt.Sprintf("class %q instance %q", class, instance))
}

func runTarget(args []string) int {
	fs, configPath := newFocusFlagSet("target", "xfocus target [--config PATH] <name>",
		"Focus the window described by a named entry in the targets section of\nthe config file.")
	viaDaemon := daemonFlag(fs)
	if rc, ok := parseFlags(fs, args); !ok {
		return rc
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	name := fs.Arg(0)
	if *viaDaemon {
		return focusViaDaemon(ipc.FocusPayload{Target: name}, fmt.Sprintf("target %q", name))
	}

	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	target, err := s.cfg.Target(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if names := s.cfg.TargetNames(); len(names) > 0 {
			fmt.Fprintln(os.Stderr, "Configured targets:")
			for _, n := range names {
				fmt.Fprintf(os.Stderr, "  %-16s %s\n", n, s.cfg.Targets[n])
			}
		}
		return 1
	}

	return focusResult(s, s.controller.FocusTarget(target), fmt.Sprintf("target %q (%s)", name, target))
}
