package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/x11"
)

const (
	matchByClass = "class"
	matchByTitle = "title"
)

// targetForm asks for a name and match mode to save a window as a target.
type targetForm struct {
	form   *huh.Form
	window *x11.Window

	// Form-bound values
	name    string
	matchBy string
}

// newTargetForm returns nil when the window has nothing to match on.
func newTargetForm(w *x11.Window, existing map[string]config.Target, width int) *targetForm {
	var opts []huh.Option[string]
	if w.Class != "" && w.Instance != "" {
		opts = append(opts, huh.NewOption(fmt.Sprintf("class %s, instance %s", w.Class, w.Instance), matchByClass))
	}
	if w.Title != "" {
		opts = append(opts, huh.NewOption(fmt.Sprintf("title %q", w.Title), matchByTitle))
	}
	if len(opts) == 0 {
		return nil
	}

	f := &targetForm{
		window:  w,
		name:    suggestTargetName(w, existing),
		matchBy: opts[0].Value,
	}

	if width < 40 {
		width = 40
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Target name").
				Description("Focus it later with: xfocus target <name>").
				Validate(validateTargetName).
				Value(&f.name),

			huh.NewSelect[string]().
				Key("match").
				Title("Match by").
				Options(opts...).
				Value(&f.matchBy),
		),
	).WithWidth(width).WithShowHelp(true).WithShowErrors(true)

	return f
}

func (f *targetForm) target() config.Target {
	if f.matchBy == matchByClass {
		return config.Target{Class: f.window.Class, Instance: f.window.Instance}
	}
	return config.Target{Title: f.window.Title}
}

func validateTargetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(name, " \t.:") {
		return fmt.Errorf("name must not contain spaces, dots or colons")
	}
	return nil
}

// suggestTargetName derives a name from the instance or title, adding a
// numeric suffix when it is already taken.
func suggestTargetName(w *x11.Window, existing map[string]config.Target) string {
	base := strings.ToLower(w.Instance)
	if base == "" {
		base = strings.ToLower(strings.Join(strings.Fields(w.Title), "-"))
	}
	base = strings.Map(func(r rune) rune {
		if r == '.' || r == ':' {
			return '-'
		}
		return r
	}, base)
	if base == "" {
		base = "window"
	}

	name := base
	for n := 2; ; n++ {
		if _, taken := existing[name]; !taken {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, n)
	}
}
