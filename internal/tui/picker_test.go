package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/x11"
)

type fakeSource struct {
	windows []*x11.Window
	reads   int
}

func (f *fakeSource) Windows() []*x11.Window {
	f.reads++
	return f.windows
}

type fakeDesktop struct{}

func (fakeDesktop) CurrentDesktop() (uint32, bool) { return 1, true }
func (fakeDesktop) ActiveWindow() xproto.Window    { return xproto.WindowNone }

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func newTestModel(t *testing.T, windows ...*x11.Window) (model, *fakeSource) {
	t.Helper()
	src := &fakeSource{windows: windows}
	m := newModel(Options{Source: src, Desktop: fakeDesktop{}, Config: config.DefaultConfig()})
	m.saveFn = func(*config.Config, string) error { return nil }
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(model), src
}

func TestNewModel_ListsWindowsInClientOrder(t *testing.T) {
	m, src := newTestModel(t,
		&x11.Window{Title: "Terminal", Class: "XTerm", Instance: "xterm"},
		&x11.Window{Title: "Editor", Class: "Code", Instance: "code", Desktop: 1},
	)
	if src.reads != 1 {
		t.Fatalf("Windows read %d times, want 1", src.reads)
	}
	items := m.list.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if got := items[1].(windowItem).summary.Title; got != "Editor" {
		t.Fatalf("second item = %q, want Editor", got)
	}
	if !m.haveDesktop || m.currentDesktop != 1 {
		t.Fatalf("current desktop = %d/%v", m.currentDesktop, m.haveDesktop)
	}
}

func TestUpdate_EnterChoosesSelectedAndQuits(t *testing.T) {
	editor := &x11.Window{Title: "Editor"}
	m, _ := newTestModel(t, &x11.Window{Title: "Terminal"}, editor)
	m.list.Select(1)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(model).chosen; got != editor {
		t.Fatalf("chosen = %v, want editor", got)
	}
	if !isQuit(cmd) {
		t.Fatal("expected quit after choosing")
	}
}

func TestUpdate_QuitWithoutChoosing(t *testing.T) {
	m, _ := newTestModel(t, &x11.Window{Title: "Terminal"})

	next, cmd := m.Update(keyRunes("q"))
	if next.(model).chosen != nil {
		t.Fatal("q must not choose a window")
	}
	if !isQuit(cmd) {
		t.Fatal("expected quit")
	}
}

func TestUpdate_EnterOnEmptyListDoesNothing(t *testing.T) {
	m, _ := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next.(model).chosen != nil || cmd != nil {
		t.Fatalf("expected no-op, chosen=%v cmd=%v", next.(model).chosen, cmd)
	}
}

func TestUpdate_RefreshRereadsClientList(t *testing.T) {
	m, src := newTestModel(t, &x11.Window{Title: "Terminal"})
	src.windows = append(src.windows, &x11.Window{Title: "Editor"})

	next, _ := m.Update(keyRunes("r"))
	m = next.(model)
	if src.reads != 2 {
		t.Fatalf("Windows read %d times, want 2", src.reads)
	}
	if len(m.list.Items()) != 2 || m.status != "2 windows" {
		t.Fatalf("items=%d status=%q", len(m.list.Items()), m.status)
	}
}

func TestUpdate_SaveOpensFormAndEscCancels(t *testing.T) {
	m, _ := newTestModel(t, &x11.Window{Title: "Terminal", Class: "XTerm", Instance: "xterm"})

	next, _ := m.Update(keyRunes("s"))
	m = next.(model)
	if m.form == nil {
		t.Fatal("expected target form")
	}
	if m.form.name != "xterm" || m.form.matchBy != matchByClass {
		t.Fatalf("form defaults = %q/%q", m.form.name, m.form.matchBy)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	if m.form != nil {
		t.Fatal("esc should close the form")
	}
	if len(m.cfg.Targets) != 0 {
		t.Fatalf("cancel must not add targets: %v", m.cfg.Targets)
	}
}

func TestUpdate_SaveWithoutMatchableFields(t *testing.T) {
	m, _ := newTestModel(t, &x11.Window{})

	next, _ := m.Update(keyRunes("s"))
	m = next.(model)
	if m.form != nil {
		t.Fatal("form should not open for a window without title or class")
	}
	if !m.statusErr {
		t.Fatalf("expected error status, got %q", m.status)
	}
}

func TestSaveTarget(t *testing.T) {
	m, _ := newTestModel(t)
	var savedPath string
	m.configPath = "/tmp/xfocus.yaml"
	m.saveFn = func(cfg *config.Config, path string) error {
		savedPath = path
		return cfg.Validate()
	}

	m.saveTarget(" term ", config.Target{Class: "XTerm", Instance: "xterm"})
	if savedPath != "/tmp/xfocus.yaml" {
		t.Fatalf("saved to %q", savedPath)
	}
	if got := m.cfg.Targets["term"]; got.Class != "XTerm" {
		t.Fatalf("term = %+v", got)
	}
	if m.statusErr || !strings.Contains(m.status, `saved target "term"`) {
		t.Fatalf("status = %q", m.status)
	}
}

func TestSaveTarget_RollsBackOnError(t *testing.T) {
	m, _ := newTestModel(t)
	m.cfg.Targets["term"] = config.Target{Title: "Old"}
	m.saveFn = func(*config.Config, string) error { return errors.New("disk full") }

	m.saveTarget("term", config.Target{Title: "New"})
	if got := m.cfg.Targets["term"]; got.Title != "Old" {
		t.Fatalf("term = %+v, want rollback to Old", got)
	}
	m.saveTarget("fresh", config.Target{Title: "New"})
	if _, ok := m.cfg.Targets["fresh"]; ok {
		t.Fatal("failed save must not leave a new target behind")
	}
	if !m.statusErr || !strings.Contains(m.status, "disk full") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestTargetForm_Target(t *testing.T) {
	w := &x11.Window{Title: "Notes", Class: "Gedit", Instance: "gedit"}
	f := newTargetForm(w, nil, 80)
	if f == nil {
		t.Fatal("expected form")
	}
	if got := f.target(); got.Class != "Gedit" || got.Instance != "gedit" || got.Title != "" {
		t.Fatalf("class target = %+v", got)
	}
	f.matchBy = matchByTitle
	if got := f.target(); got.Title != "Notes" || got.ByClass() {
		t.Fatalf("title target = %+v", got)
	}

	titleOnly := newTargetForm(&x11.Window{Title: "Notes"}, nil, 80)
	if titleOnly.matchBy != matchByTitle {
		t.Fatalf("matchBy = %q, want title", titleOnly.matchBy)
	}
}

func TestSuggestTargetName(t *testing.T) {
	existing := map[string]config.Target{"xterm": {}, "xterm-2": {}}
	tests := []struct {
		name string
		w    *x11.Window
		want string
	}{
		{"instance", &x11.Window{Instance: "Navigator"}, "navigator"},
		{"title", &x11.Window{Title: "My Notes"}, "my-notes"},
		{"dots", &x11.Window{Instance: "org.gnome.Nautilus"}, "org-gnome-nautilus"},
		{"taken", &x11.Window{Instance: "xterm"}, "xterm-3"},
		{"nothing", &x11.Window{}, "window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := suggestTargetName(tt.w, existing); got != tt.want {
				t.Fatalf("suggestTargetName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateTargetName(t *testing.T) {
	for _, bad := range []string{"", "  ", "my term", "a.b", "a:b"} {
		if err := validateTargetName(bad); err == nil {
			t.Errorf("validateTargetName(%q) = nil, want error", bad)
		}
	}
	if err := validateTargetName("term"); err != nil {
		t.Fatalf("validateTargetName(term) = %v", err)
	}
}

func TestWindowItem(t *testing.T) {
	item := windowItem{summary: x11.Summary{ID: "0x00000201", Title: "Terminal", Class: "XTerm", Instance: "xterm", Desktop: allDesktops}}
	if !strings.Contains(item.Title(), "Terminal") {
		t.Fatalf("Title = %q", item.Title())
	}
	desc := item.Description()
	for _, want := range []string{"xterm/XTerm", "desktop all", "0x00000201"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Description %q missing %q", desc, want)
		}
	}
	if got := item.FilterValue(); got != "Terminal XTerm xterm" {
		t.Fatalf("FilterValue = %q", got)
	}
	if got := classLabel("", ""); got != "-" {
		t.Fatalf("classLabel empty = %q", got)
	}
}

func TestView_EmptyBeforeSize(t *testing.T) {
	m := newModel(Options{Source: &fakeSource{}})
	if got := m.View(); got != "" {
		t.Fatalf("View before size = %q, want empty", got)
	}
}
