package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
)

// Atom names used by xfocus.
const (
	AtomWMClass           = "WM_CLASS"
	AtomNetWMName         = "_NET_WM_NAME"
	AtomNetWMDesktop      = "_NET_WM_DESKTOP"
	AtomNetCurrentDesktop = "_NET_CURRENT_DESKTOP"
	AtomNetClientList     = "_NET_CLIENT_LIST"
)

// Atoms is the fixed set of atoms resolved once per connection.
type Atoms struct {
	WMClass           xproto.Atom
	NetWMName         xproto.Atom
	NetWMDesktop      xproto.Atom
	NetCurrentDesktop xproto.Atom
	NetClientList     xproto.Atom
}

// ResolveAtom interns name on conn. Any protocol error is logged and
// reported as AtomNone, which later property reads treat as a failed read.
func ResolveAtom(conn Conn, logger *slog.Logger, name string) xproto.Atom {
	atom, err := conn.InternAtom(name)
	if err != nil {
		logger.Warn("intern atom failed", "atom", name, "error", err)
		return xproto.AtomNone
	}
	return atom
}

// ResolveAtoms resolves the full atom set.
func ResolveAtoms(conn Conn, logger *slog.Logger) Atoms {
	return Atoms{
		WMClass:           ResolveAtom(conn, logger, AtomWMClass),
		NetWMName:         ResolveAtom(conn, logger, AtomNetWMName),
		NetWMDesktop:      ResolveAtom(conn, logger, AtomNetWMDesktop),
		NetCurrentDesktop: ResolveAtom(conn, logger, AtomNetCurrentDesktop),
		NetClientList:     ResolveAtom(conn, logger, AtomNetClientList),
	}
}
