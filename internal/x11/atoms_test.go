package x11

import (
	"errors"
	"strings"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestResolveAtom_ReturnsServerAtom(t *testing.T) {
	conn := newFakeConn()
	logger, logs := testLogger()

	if got := ResolveAtom(conn, logger, AtomNetClientList); got != 304 {
		t.Fatalf("ResolveAtom = %d, want 304", got)
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected log output: %s", logs.String())
	}
}

func TestResolveAtom_ErrorYieldsNoneAndLogs(t *testing.T) {
	conn := newFakeConn()
	conn.atomErrs[AtomWMClass] = errors.New("BadAlloc")
	logger, logs := testLogger()

	if got := ResolveAtom(conn, logger, AtomWMClass); got != xproto.AtomNone {
		t.Fatalf("ResolveAtom = %d, want AtomNone", got)
	}
	out := logs.String()
	for _, want := range []string{"intern atom failed", "atom=WM_CLASS", "BadAlloc"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestResolveAtoms_InternsEachNameOnce(t *testing.T) {
	conn := newFakeConn()
	logger, _ := testLogger()

	atoms := ResolveAtoms(conn, logger)

	if atoms.WMClass != 67 || atoms.NetWMName != 301 || atoms.NetWMDesktop != 302 ||
		atoms.NetCurrentDesktop != 303 || atoms.NetClientList != 304 {
		t.Fatalf("unexpected atoms: %+v", atoms)
	}
	if len(conn.calls) != 5 {
		t.Fatalf("expected 5 intern requests, got %v", conn.calls)
	}
}
