package config

import (
	"fmt"
	"sort"
	"strings"
)

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is an optional log file; diagnostics always go to stderr as well.
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Target is a named window to focus, matched either by exact title or by
// class and instance.
type Target struct {
	Title    string `yaml:"title,omitempty"`
	Class    string `yaml:"class,omitempty"`
	Instance string `yaml:"instance,omitempty"`
	// Hotkey is an optional global key binding handled by the daemon,
	// e.g. "Mod4-t".
	Hotkey string `yaml:"hotkey,omitempty"`
}

// ByClass reports whether the target matches on class/instance.
func (t Target) ByClass() bool {
	return t.Class != ""
}

// Validate checks that t names exactly one kind of match.
func (t Target) Validate() error {
	switch {
	case t.Title != "" && (t.Class != "" || t.Instance != ""):
		return fmt.Errorf("set either title or class/instance, not both")
	case t.Title == "" && t.Class == "":
		return fmt.Errorf("title or class is required")
	case t.Class != "" && t.Instance == "":
		return fmt.Errorf("instance is required with class")
	}
	return nil
}

func (t Target) String() string {
	if t.ByClass() {
		return fmt.Sprintf("class=%q instance=%q", t.Class, t.Instance)
	}
	return fmt.Sprintf("title=%q", t.Title)
}

// MenuConfig configures the launcher-menu window switcher.
type MenuConfig struct {
	// Backend selects the menu program: auto, rofi, fuzzel, wofi, dmenu.
	Backend string `yaml:"backend,omitempty"`
	// FuzzyMatching enables fuzzy matching where the backend supports it.
	FuzzyMatching bool `yaml:"fuzzy_matching,omitempty"`
	// Hotkey opens the menu from the daemon.
	Hotkey string `yaml:"hotkey,omitempty"`
}

// Config is the effective xfocus configuration.
type Config struct {
	// Display overrides DISPLAY when the environment does not set it.
	Display string `yaml:"display,omitempty"`
	// XAuthority overrides XAUTHORITY when the environment does not set it.
	XAuthority string            `yaml:"xauthority,omitempty"`
	Logging    LoggingConfig     `yaml:"logging"`
	Menu       MenuConfig        `yaml:"menu"`
	Targets    map[string]Target `yaml:"targets,omitempty"`
}

const (
	DefaultLogLevel  = "warn"
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
)

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:     DefaultLogLevel,
			MaxSizeMB: DefaultMaxSizeMB,
			MaxFiles:  DefaultMaxFiles,
		},
		Menu:    MenuConfig{Backend: "auto"},
		Targets: map[string]Target{},
	}
}

// ValidationError points at the config key that failed validation and, when
// known, where it was set.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	switch strings.ToLower(strings.TrimSpace(c.Menu.Backend)) {
	case "", "auto", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "menu.backend", Err: fmt.Errorf("backend must be one of: auto, rofi, fuzzel, wofi, dmenu")}
	}

	hotkeys := make(map[string]string)
	if c.Menu.Hotkey != "" {
		key := strings.ToLower(strings.TrimSpace(c.Menu.Hotkey))
		if key == "" {
			return &ValidationError{Path: "menu.hotkey", Err: fmt.Errorf("hotkey must not be blank")}
		}
		hotkeys[key] = "menu.hotkey"
	}
	for _, name := range c.TargetNames() {
		t := c.Targets[name]
		path := "targets." + name
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "targets", Err: fmt.Errorf("targets contains an empty name")}
		}
		if err := t.Validate(); err != nil {
			if t.Title == "" && t.Class != "" && t.Instance == "" {
				path += ".instance"
			}
			return &ValidationError{Path: path, Err: err}
		}
		if t.Hotkey != "" {
			key := strings.ToLower(strings.TrimSpace(t.Hotkey))
			if key == "" {
				return &ValidationError{Path: path + ".hotkey", Err: fmt.Errorf("hotkey must not be blank")}
			}
			if other, dup := hotkeys[key]; dup {
				return &ValidationError{Path: path + ".hotkey", Err: fmt.Errorf("hotkey %q is already bound to %s", t.Hotkey, other)}
			}
			hotkeys[key] = fmt.Sprintf("target %q", name)
		}
	}
	return nil
}

// Hotkeys returns target names keyed by their hotkey.
func (c *Config) Hotkeys() map[string]string {
	out := make(map[string]string)
	for name, t := range c.Targets {
		if t.Hotkey != "" {
			out[t.Hotkey] = name
		}
	}
	return out
}

// TargetNames returns the configured target names in sorted order.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target looks up a named target.
func (c *Config) Target(name string) (Target, error) {
	t, ok := c.Targets[name]
	if !ok {
		return Target{}, fmt.Errorf("unknown target %q", name)
	}
	return t, nil
}
