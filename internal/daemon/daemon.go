package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/ipc"
	"github.com/1broseidon/xfocus/internal/palette"
	"github.com/1broseidon/xfocus/internal/x11"
)

// Focuser finds and focuses client windows.
type Focuser interface {
	FocusByTitle(title string) *x11.Window
	FocusByClass(class, instance string) *x11.Window
	FocusTarget(t config.Target) *x11.Window
	FocusID(id string) *x11.Window
	Windows() []*x11.Window
}

// Chooser asks the user to pick one of windows, returning
// palette.ErrCancelled when dismissed.
type Chooser interface {
	Choose(windows []x11.Summary, currentDesktop *uint32) (x11.Summary, error)
}

// DesktopState reports window manager state shown in listings.
type DesktopState interface {
	CurrentDesktop() (uint32, bool)
	ActiveWindow() xproto.Window
}

// Hotkeys grabs global key sequences and runs the event loop that
// dispatches them.
type Hotkeys interface {
	RegisterFunc(keySequence string, callback func()) error
	Reset()
	Main()
	Quit()
}

// Listener serves IPC clients.
type Listener interface {
	Start() error
	Stop()
}

type Options struct {
	Config     *config.Config
	ConfigPath string
	Display    string
	Focuser    Focuser
	Desktop    DesktopState
	Hotkeys    Hotkeys
	// Chooser backs the menu hotkey. Nil leaves menu.hotkey unbound.
	Chooser Chooser
	Logger  *slog.Logger
	// WatchInterval is how often the config file is checked for changes.
	// Zero disables watching.
	WatchInterval time.Duration
}

// Daemon binds target hotkeys and answers focus requests over IPC. All X
// access goes through mu: hotkey callbacks run on the event loop goroutine
// while IPC requests arrive on their own goroutines.
type Daemon struct {
	mu         sync.Mutex
	cfg        *config.Config
	configPath string
	display    string
	focuser    Focuser
	desktop    DesktopState
	hotkeys    Hotkeys
	chooser    Chooser
	bound      []string
	startTime  time.Time
	logger     *slog.Logger

	watchInterval time.Duration
	loadConfig    func(path string) (*config.Config, error)
	newListener   func(backend ipc.Backend) (Listener, error)
}

var _ ipc.Backend = (*Daemon)(nil)

func New(opts Options) *Daemon {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Daemon{
		cfg:           cfg,
		configPath:    opts.ConfigPath,
		display:       opts.Display,
		focuser:       opts.Focuser,
		desktop:       opts.Desktop,
		hotkeys:       opts.Hotkeys,
		chooser:       opts.Chooser,
		startTime:     time.Now(),
		logger:        logger,
		watchInterval: opts.WatchInterval,
		loadConfig:    loadConfigFile,
	}
	d.newListener = func(backend ipc.Backend) (Listener, error) {
		srv, err := ipc.NewServer(backend, d.logger)
		if err != nil {
			return nil, err
		}
		return srv, nil
	}
	return d
}

func loadConfigFile(path string) (*config.Config, error) {
	var (
		res *config.LoadResult
		err error
	)
	if path == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(path)
	}
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// Run binds hotkeys, starts the IPC listener and dispatches X events until
// ctx is cancelled. The caller closes the X connection afterwards, which
// unblocks the event loop.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	d.bindHotkeys()
	targets, hotkeys := len(d.cfg.Targets), len(d.bound)
	d.mu.Unlock()

	listener, err := d.newListener(d)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := listener.Start(); err != nil {
		return err
	}
	defer listener.Stop()

	if d.watchInterval > 0 {
		if w := d.newWatcher(); w != nil {
			go w.Run(ctx)
		}
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		d.hotkeys.Main()
	}()

	d.logger.Info("daemon started",
		"display", d.display,
		"targets", targets,
		"hotkeys", hotkeys)

	select {
	case <-ctx.Done():
		d.hotkeys.Quit()
		d.mu.Lock()
		d.hotkeys.Reset()
		d.bound = nil
		d.mu.Unlock()
		d.logger.Info("daemon stopped")
		return nil
	case <-loopDone:
		return errors.New("X event loop exited")
	}
}

func (d *Daemon) newWatcher() *configWatcher {
	path := d.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			d.logger.Warn("config watch disabled", "error", err)
			return nil
		}
		path = p
	}
	return newConfigWatcher(watcherConfig{
		Path:     path,
		Interval: d.watchInterval,
		Logger:   d.logger,
	}, d.Reload)
}

// bindHotkeys replaces every grab with the hotkeys of the current config.
// A hotkey that cannot be grabbed is logged and skipped. d.mu must be held.
func (d *Daemon) bindHotkeys() {
	d.hotkeys.Reset()
	d.bound = nil

	byKey := d.cfg.Hotkeys()
	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := byKey[key]
		if err := d.hotkeys.RegisterFunc(key, func() { d.focusNamed(name) }); err != nil {
			d.logger.Warn("hotkey not bound", "hotkey", key, "target", name, "error", err)
			continue
		}
		d.bound = append(d.bound, key)
		d.logger.Debug("hotkey bound", "hotkey", key, "target", name)
	}

	if key := d.cfg.Menu.Hotkey; key != "" && d.chooser != nil {
		// The menu blocks until the user picks, so it must not run on the
		// event loop goroutine.
		if err := d.hotkeys.RegisterFunc(key, func() { go d.showMenu() }); err != nil {
			d.logger.Warn("hotkey not bound", "hotkey", key, "menu", true, "error", err)
			return
		}
		d.bound = append(d.bound, key)
	}
}

func (d *Daemon) showMenu() {
	listing := d.Windows()
	chosen, err := d.chooser.Choose(listing.Windows, listing.CurrentDesktop)
	if err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			d.logger.Debug("menu cancelled")
			return
		}
		d.logger.Warn("menu failed", "error", err)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	w := d.focuser.FocusID(chosen.ID)
	d.logger.Info("menu focus", "window", chosen.ID, "title", chosen.Title, "focused", w != nil)
}

func (d *Daemon) focusNamed(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.cfg.Target(name)
	if err != nil {
		d.logger.Warn("hotkey target vanished", "target", name, "error", err)
		return
	}
	w := d.focuser.FocusTarget(t)
	d.logger.Info("hotkey focus", "target", name, "focused", w != nil)
}

// Focus resolves req to a target and focuses the first matching window. No
// match is not an error.
func (d *Daemon) Focus(req ipc.FocusPayload) (ipc.FocusData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		w    *x11.Window
		desc string
	)
	switch {
	case req.Target != "":
		if req.By != "" || req.Title != "" || req.Class != "" || req.Instance != "" {
			return ipc.FocusData{}, errors.New("target cannot be combined with title or class")
		}
		t, err := d.cfg.Target(req.Target)
		if err != nil {
			return ipc.FocusData{}, err
		}
		w, desc = d.focuser.FocusTarget(t), t.String()

	case req.By == ipc.MatchTitle:
		if req.Class != "" || req.Instance != "" {
			return ipc.FocusData{}, errors.New("title match cannot carry class or instance")
		}
		w, desc = d.focuser.FocusByTitle(req.Title), fmt.Sprintf("title=%q", req.Title)

	case req.By == ipc.MatchClass:
		if req.Title != "" {
			return ipc.FocusData{}, errors.New("class match cannot carry a title")
		}
		w, desc = d.focuser.FocusByClass(req.Class, req.Instance), fmt.Sprintf("class=%q instance=%q", req.Class, req.Instance)

	case req.By != "":
		return ipc.FocusData{}, fmt.Errorf("unknown match kind %q", req.By)

	default:
		t := config.Target{Title: req.Title, Class: req.Class, Instance: req.Instance}
		if err := t.Validate(); err != nil {
			return ipc.FocusData{}, err
		}
		w, desc = d.focuser.FocusTarget(t), t.String()
	}

	d.logger.Info("ipc focus", "target", desc, "focused", w != nil)
	if w == nil {
		return ipc.FocusData{}, nil
	}
	summary := w.Summary(xproto.WindowNone)
	return ipc.FocusData{Focused: true, Window: &summary}, nil
}

func (d *Daemon) Windows() ipc.WindowsData {
	d.mu.Lock()
	defer d.mu.Unlock()

	data := ipc.WindowsData{Windows: []x11.Summary{}}
	active := xproto.Window(xproto.WindowNone)
	if d.desktop != nil {
		if current, ok := d.desktop.CurrentDesktop(); ok {
			data.CurrentDesktop = &current
		}
		active = d.desktop.ActiveWindow()
	}
	for _, w := range d.focuser.Windows() {
		data.Windows = append(data.Windows, w.Summary(active))
	}
	return data
}

func (d *Daemon) Status() ipc.StatusData {
	d.mu.Lock()
	defer d.mu.Unlock()

	return ipc.StatusData{
		Display:       d.display,
		Targets:       len(d.cfg.Targets),
		Hotkeys:       append([]string(nil), d.bound...),
		UptimeSeconds: int64(time.Since(d.startTime).Seconds()),
		DaemonRunning: true,
	}
}

// Reload re-reads the config file and rebinds hotkeys. On error the
// previous config stays active.
func (d *Daemon) Reload() error {
	cfg, err := d.loadConfig(d.configPath)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
	d.bindHotkeys()
	d.logger.Info("config applied", "targets", len(cfg.Targets), "hotkeys", len(d.bound))
	return nil
}
