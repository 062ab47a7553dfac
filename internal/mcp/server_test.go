package mcp

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/x11"
)

// fakeFocuser implements only the methods the tools call.
var _ Focuser = (*fakeFocuser)(nil)

type fakeFocuser struct {
	windows []*x11.Window
	calls   []string
}

func (f *fakeFocuser) focusByTitle(title string) *x11.Window {
	f.calls = append(f.calls, "title:"+title)
	for _, w := range f.windows {
		if w.HasTitle(title) {
			return w
		}
	}
	return nil
}

func (f *fakeFocuser) focusByClass(class, instance string) *x11.Window {
	f.calls = append(f.calls, "class:"+class+"/"+instance)
	for _, w := range f.windows {
		if w.HasClass(class, instance) {
			return w
		}
	}
	return nil
}

func (f *fakeFocuser) FocusTarget(t config.Target) *x11.Window {
	if t.ByClass() {
		return f.focusByClass(t.Class, t.Instance)
	}
	return f.focusByTitle(t.Title)
}

func (f *fakeFocuser) Windows() []*x11.Window {
	f.calls = append(f.calls, "windows")
	return f.windows
}

type fakeDesktop struct {
	current uint32
	ok      bool
	active  xproto.Window
}

func (d fakeDesktop) CurrentDesktop() (uint32, bool) { return d.current, d.ok }
func (d fakeDesktop) ActiveWindow() xproto.Window    { return d.active }

func newTestServer(cfg *config.Config, f *fakeFocuser, d DesktopState) *Server {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewServer(cfg, f, d, logger)
}

func testWindows() []*x11.Window {
	return []*x11.Window{
		{Title: "Terminal", Class: "XTerm", Instance: "xterm", Desktop: 0},
		{Title: "Editor", Class: "Code", Instance: "code", Desktop: 1},
	}
}

func TestTargetFromInput(t *testing.T) {
	tests := []struct {
		name    string
		in      FocusWindowInput
		wantErr string
	}{
		{"title", FocusWindowInput{Title: "Editor"}, ""},
		{"class", FocusWindowInput{Class: "Code", Instance: "code"}, ""},
		{"empty", FocusWindowInput{}, "title or class is required"},
		{"missing instance", FocusWindowInput{Class: "Code"}, "instance is required"},
		{"both", FocusWindowInput{Title: "Editor", Class: "Code", Instance: "code"}, "not both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := targetFromInput(tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestHandleFocusWindow_ByTitle(t *testing.T) {
	f := &fakeFocuser{windows: testWindows()}
	s := newTestServer(nil, f, nil)

	_, out, err := s.handleFocusWindow(context.Background(), nil, FocusWindowInput{Title: "Editor"})
	if err != nil {
		t.Fatalf("handleFocusWindow: %v", err)
	}
	if !out.Focused || out.Window == nil || out.Window.Title != "Editor" {
		t.Fatalf("out = %+v", out)
	}
	if len(f.calls) != 1 || f.calls[0] != "title:Editor" {
		t.Fatalf("calls = %v", f.calls)
	}
}

func TestHandleFocusWindow_ByClassNoMatch(t *testing.T) {
	f := &fakeFocuser{windows: testWindows()}
	s := newTestServer(nil, f, nil)

	_, out, err := s.handleFocusWindow(context.Background(), nil, FocusWindowInput{Class: "Firefox", Instance: "navigator"})
	if err != nil {
		t.Fatalf("handleFocusWindow: %v", err)
	}
	if out.Focused || out.Window != nil {
		t.Fatalf("expected no match, got %+v", out)
	}
	if out.Target != `class="Firefox" instance="navigator"` {
		t.Fatalf("Target = %q", out.Target)
	}
}

func TestHandleFocusWindow_InvalidInputDoesNotFocus(t *testing.T) {
	f := &fakeFocuser{windows: testWindows()}
	s := newTestServer(nil, f, nil)

	if _, _, err := s.handleFocusWindow(context.Background(), nil, FocusWindowInput{Class: "Code"}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(f.calls) != 0 {
		t.Fatalf("focuser should not be called, calls = %v", f.calls)
	}
}

func TestHandleFocusTarget(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Targets["editor"] = config.Target{Class: "Code", Instance: "code"}
	f := &fakeFocuser{windows: testWindows()}
	s := newTestServer(cfg, f, nil)

	_, out, err := s.handleFocusTarget(context.Background(), nil, FocusTargetInput{Name: "editor"})
	if err != nil {
		t.Fatalf("handleFocusTarget: %v", err)
	}
	if !out.Focused || out.Window.Class != "Code" || out.Target != "editor" {
		t.Fatalf("out = %+v", out)
	}

	_, _, err = s.handleFocusTarget(context.Background(), nil, FocusTargetInput{Name: "browser"})
	if err == nil || !strings.Contains(err.Error(), "configured: editor") {
		t.Fatalf("unknown target err = %v", err)
	}

	if _, _, err := s.handleFocusTarget(context.Background(), nil, FocusTargetInput{Name: "  "}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestHandleListWindows(t *testing.T) {
	f := &fakeFocuser{windows: testWindows()}
	s := newTestServer(nil, f, fakeDesktop{current: 1, ok: true})

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("handleListWindows: %v", err)
	}
	if out.CurrentDesktop == nil || *out.CurrentDesktop != 1 {
		t.Fatalf("CurrentDesktop = %v, want 1", out.CurrentDesktop)
	}
	if len(out.Windows) != 2 || out.Windows[0].Title != "Terminal" {
		t.Fatalf("Windows = %+v", out.Windows)
	}

	desktop := uint32(1)
	_, out, err = s.handleListWindows(context.Background(), nil, ListWindowsInput{Desktop: &desktop})
	if err != nil {
		t.Fatalf("handleListWindows: %v", err)
	}
	if len(out.Windows) != 1 || out.Windows[0].Title != "Editor" {
		t.Fatalf("filtered Windows = %+v", out.Windows)
	}
}

func TestHandleListWindows_NoDesktopState(t *testing.T) {
	s := newTestServer(nil, &fakeFocuser{}, nil)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("handleListWindows: %v", err)
	}
	if out.CurrentDesktop != nil {
		t.Fatalf("CurrentDesktop = %v, want nil", *out.CurrentDesktop)
	}
	if out.Windows == nil || len(out.Windows) != 0 {
		t.Fatalf("Windows = %#v, want empty non-nil slice", out.Windows)
	}
}
