// Package tui implements the interactive window picker.
package tui

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/x11"
)

// WindowSource supplies the windows shown in the picker.
type WindowSource interface {
	Windows() []*x11.Window
}

// DesktopState reports window manager state for the status bar.
type DesktopState interface {
	CurrentDesktop() (uint32, bool)
	ActiveWindow() xproto.Window
}

// Options configures the picker.
type Options struct {
	Source  WindowSource
	Desktop DesktopState // optional
	Config  *config.Config
	// ConfigPath is where saved targets are written.
	ConfigPath string
}

// model is the bubbletea model for the picker.
type model struct {
	source     WindowSource
	desktop    DesktopState
	cfg        *config.Config
	configPath string
	saveFn     func(cfg *config.Config, path string) error

	list           list.Model
	currentDesktop uint32
	haveDesktop    bool

	form      *targetForm
	status    string
	statusErr bool

	chosen *x11.Window

	width  int
	height int
}

func newModel(opts Options) model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.Targets == nil {
		cfg.Targets = map[string]config.Target{}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	m := model{
		source:     opts.Source,
		desktop:    opts.Desktop,
		cfg:        cfg,
		configPath: opts.ConfigPath,
		saveFn: func(cfg *config.Config, path string) error {
			if path == "" {
				return cfg.Save()
			}
			return cfg.SaveTo(path)
		},
		list: l,
	}
	m.refresh()
	return m
}

// refresh re-reads the client list.
func (m *model) refresh() {
	active := xproto.Window(xproto.WindowNone)
	m.haveDesktop = false
	if m.desktop != nil {
		m.currentDesktop, m.haveDesktop = m.desktop.CurrentDesktop()
		active = m.desktop.ActiveWindow()
	}
	var windows []*x11.Window
	if m.source != nil {
		windows = m.source.Windows()
	}
	m.list.SetItems(buildItems(windows, active))
}

func (m model) selected() (windowItem, bool) {
	item, ok := m.list.SelectedItem().(windowItem)
	return item, ok
}

func (m *model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// While typing a filter every key belongs to the list.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc":
			if m.list.FilterState() == list.Unfiltered {
				return m, tea.Quit
			}
		case "enter":
			if item, ok := m.selected(); ok {
				m.chosen = item.window
				return m, tea.Quit
			}
			return m, nil
		case "r":
			m.refresh()
			m.setStatus(fmt.Sprintf("%d windows", len(m.list.Items())), false)
			return m, nil
		case "s":
			item, ok := m.selected()
			if !ok {
				return m, nil
			}
			form := newTargetForm(item.window, m.cfg.Targets, m.width-4)
			if form == nil {
				m.setStatus("window has no title or class to match on", true)
				return m, nil
			}
			m.form = form
			return m, m.form.form.Init()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.form = nil
			m.setStatus("save cancelled", false)
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}

	form, cmd := m.form.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form.form = f
	}

	switch m.form.form.State {
	case huh.StateCompleted:
		m.saveTarget(m.form.name, m.form.target())
		m.form = nil
		return m, nil
	case huh.StateAborted:
		m.form = nil
		m.setStatus("save cancelled", false)
		return m, nil
	}
	return m, cmd
}

// saveTarget records t under name and writes the config. The in-memory
// config is rolled back when the write fails.
func (m *model) saveTarget(name string, t config.Target) {
	name = strings.TrimSpace(name)
	prev, existed := m.cfg.Targets[name]
	m.cfg.Targets[name] = t

	if err := m.saveFn(m.cfg, m.configPath); err != nil {
		if existed {
			m.cfg.Targets[name] = prev
		} else {
			delete(m.cfg.Targets, name)
		}
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("saved target %q (%s)", name, t), false)
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	h := height - 2 // status bar + help bar
	if h < 1 {
		h = 1
	}
	m.list.SetSize(width, h)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.currentDesktop, m.haveDesktop, len(m.list.Items()), m.status, m.statusErr, m.width)
	helpBar := renderHelpBar(m.form != nil, m.width)

	var content string
	if m.form != nil {
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(m.height - lipgloss.Height(statusBar) - lipgloss.Height(helpBar)).
			Padding(1, 2).
			Render(m.form.form.View())
	} else {
		content = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, content, helpBar)
}

// Run shows the picker and returns the chosen window, or nil when the user
// quits without choosing.
func Run(opts Options) (*x11.Window, error) {
	final, err := tea.NewProgram(newModel(opts), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("window picker failed: %w", err)
	}
	if m, ok := final.(model); ok {
		return m.chosen, nil
	}
	return nil, nil
}
