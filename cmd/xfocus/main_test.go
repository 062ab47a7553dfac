package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/ipc"
	"github.com/1broseidon/xfocus/internal/x11"
)

type stubDesktop struct {
	current uint32
	ok      bool
}

func (d stubDesktop) CurrentDesktop() (uint32, bool) { return d.current, d.ok }
func (d stubDesktop) ActiveWindow() xproto.Window    { return xproto.WindowNone }

func testListing() windowListing {
	current := uint32(1)
	return windowListing{
		CurrentDesktop: &current,
		Windows: []x11.Summary{
			{ID: "0x00000201", Title: "Terminal", Class: "XTerm", Instance: "xterm", Desktop: 0, Active: true},
			{ID: "0x00000202", Title: "Editor", Class: "Code", Instance: "code", Desktop: 1},
			{ID: "0x00000203", Title: "Panel", Class: "Tint2", Instance: "tint2", Desktop: 0xFFFFFFFF},
		},
	}
}

func TestWriteWindowTable_TSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeWindowTable(&buf, testListing(), false); err != nil {
		t.Fatalf("writeWindowTable: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "0x00000201\t0\tXTerm\txterm\t*\tTerminal" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if lines[1] != "0x00000202\t1\tCode\tcode\t\tEditor" {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestWriteWindowTable_TTY(t *testing.T) {
	var buf bytes.Buffer
	if err := writeWindowTable(&buf, testListing(), true); err != nil {
		t.Fatalf("writeWindowTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"DESKTOP", "* 0x00000201", "1 (current)", "all", "Editor"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\t") {
		t.Fatalf("tty table should be space aligned:\n%s", out)
	}
}

func TestCollectListing(t *testing.T) {
	windows := []*x11.Window{{Title: "Terminal"}, {Title: "Editor"}}

	listing := collectListing(stubDesktop{current: 2, ok: true}, windows)
	if listing.CurrentDesktop == nil || *listing.CurrentDesktop != 2 {
		t.Fatalf("CurrentDesktop = %v", listing.CurrentDesktop)
	}
	if len(listing.Windows) != 2 || listing.Windows[1].Title != "Editor" {
		t.Fatalf("Windows = %+v", listing.Windows)
	}

	listing = collectListing(stubDesktop{}, nil)
	if listing.CurrentDesktop != nil {
		t.Fatal("CurrentDesktop should be omitted when unknown")
	}
	if listing.Windows == nil {
		t.Fatal("Windows should be an empty slice, not nil")
	}
}

func TestFocusCommands_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func([]string) int
		args []string
	}{
		{"title without args", runTitle, nil},
		{"title with extra args", runTitle, []string{"a", "b"}},
		{"class missing instance", runClass, []string{"XTerm"}},
		{"target without name", runTarget, nil},
		{"list with args", runList, []string{"extra"}},
		{"unknown flag", runTitle, []string{"--bogus", "x"}},
		{"daemon with args", runDaemon, []string{"extra"}},
		{"status with args", runStatus, []string{"extra"}},
		{"reload with args", runReload, []string{"extra"}},
		{"menu with args", runMenu, []string{"extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rc := tt.run(tt.args); rc != 2 {
				t.Fatalf("rc = %d, want 2", rc)
			}
		})
	}
}

func TestFocusCommands_Help(t *testing.T) {
	if rc := runTitle([]string{"--help"}); rc != 0 {
		t.Fatalf("runTitle --help rc = %d, want 0", rc)
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte("targets:\n  term:\n    class: XTerm\n    instance: xterm\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("targets:\n  term:\n    class: XTerm\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc = %d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc = %d, want 1", rc)
	}
	if rc := runConfig(nil); rc != 2 {
		t.Fatalf("config without subcommand rc = %d, want 2", rc)
	}
	if rc := runConfig([]string{"explain", "--path", good}); rc != 2 {
		t.Fatalf("explain without path rc = %d, want 2", rc)
	}
}

func TestFormatSource(t *testing.T) {
	sources := map[string]config.Source{
		"logging.level": {File: "/etc/xfocus.yaml", Line: 3, Column: 10},
	}
	if got := formatSource(sources, "logging.level"); got != "file:/etc/xfocus.yaml:3:10" {
		t.Fatalf("formatSource = %q", got)
	}
	if got := formatSource(sources, "display"); got != "default" {
		t.Fatalf("formatSource(display) = %q", got)
	}
}

func TestRunMCP_Usage(t *testing.T) {
	if rc := runMCP(nil); rc != 2 {
		t.Fatalf("runMCP() rc = %d, want 2", rc)
	}
	if rc := runMCP([]string{"bogus"}); rc != 2 {
		t.Fatalf("runMCP(bogus) rc = %d, want 2", rc)
	}
}

func TestPrintMainUsage(t *testing.T) {
	var buf bytes.Buffer
	printMainUsage(&buf)
	for _, cmd := range []string{"title <title>", "class <class> <instance>", "target <name>", "list", "pick", "menu", "daemon", "status", "reload", "mcp serve"} {
		if !strings.Contains(buf.String(), cmd) {
			t.Errorf("usage missing %q", cmd)
		}
	}
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	writeStatus(&buf, &ipc.StatusData{
		Display:       ":0",
		Targets:       2,
		Hotkeys:       []string{"Mod4-e", "Mod4-t"},
		UptimeSeconds: 42,
		DaemonRunning: true,
	})
	out := buf.String()
	for _, want := range []string{"daemon_running: true", "display:        :0", "targets:        2", "hotkeys:        Mod4-e, Mod4-t", "uptime_seconds: 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	writeStatus(&buf, &ipc.StatusData{})
	if !strings.Contains(buf.String(), "hotkeys:        -") {
		t.Errorf("expected placeholder for no hotkeys:\n%s", buf.String())
	}
}

func TestFocusViaDaemon_NoDaemon(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	if rc := focusViaDaemon(ipc.FocusPayload{Title: "Editor"}, `title "Editor"`); rc != 1 {
		t.Fatalf("rc = %d, want 1", rc)
	}
}
