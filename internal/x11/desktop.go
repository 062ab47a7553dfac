package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

const clientListLength = 1024

// Desktop owns the X connection and enumerates the EWMH client list.
// A Desktop without a connection is inert: it reports no clients.
type Desktop struct {
	conn   Conn
	root   xproto.Window
	atoms  Atoms
	logger *slog.Logger
}

// OpenDesktop connects to display. When the server cannot be reached the
// failure is logged and an inert Desktop is returned, so callers see the
// same result as "no matching window".
func OpenDesktop(display string, logger *slog.Logger) *Desktop {
	conn, err := NewConnection(display)
	if err != nil {
		logger.Warn("display unavailable, focus operations are inert",
			"display", display,
			"degraded", true,
			"error", err)
		return &Desktop{root: xproto.WindowNone, logger: logger}
	}
	return NewDesktop(conn, logger)
}

// NewDesktop takes ownership of conn and resolves the atoms it needs.
func NewDesktop(conn Conn, logger *slog.Logger) *Desktop {
	d := &Desktop{
		conn:   conn,
		root:   conn.Root(),
		logger: logger,
	}
	d.atoms = ResolveAtoms(conn, logger)
	if d.root == xproto.WindowNone {
		logger.Warn("no root window in server setup, focus operations are inert",
			"degraded", true)
	}
	return d
}

// Inert reports whether the desktop has no usable connection or root window.
func (d *Desktop) Inert() bool {
	return d.conn == nil || d.root == xproto.WindowNone
}

// Root returns the root window, or WindowNone.
func (d *Desktop) Root() xproto.Window {
	return d.root
}

// ClientList returns one Window per entry of _NET_CLIENT_LIST, in server
// order. Read errors and empty lists both yield no windows.
func (d *Desktop) ClientList() []*Window {
	if d.conn == nil {
		return nil
	}

	reply, err := d.conn.GetProperty(d.root, d.atoms.NetClientList, xproto.AtomWindow, clientListLength)
	if err != nil {
		d.logger.Warn("get property failed",
			"atom", uint32(d.atoms.NetClientList),
			"window", fmt.Sprintf("0x%08x", uint32(d.root)),
			"error", err)
		return nil
	}
	if reply == nil {
		return nil
	}

	size := int(reply.Format / 8)
	value := propertyValue(reply)
	if size == 0 || len(value) == 0 {
		return nil
	}

	windows := make([]*Window, 0, len(value)/size)
	for off := 0; off+size <= len(value); off += size {
		windows = append(windows, newWindow(d.conn, &d.atoms, d.logger, decodeWindow(value[off:off+size]), d.root))
	}
	return windows
}

// CurrentDesktop returns _NET_CURRENT_DESKTOP. ok is false when the value
// could not be read.
func (d *Desktop) CurrentDesktop() (desktop uint32, ok bool) {
	if d.Inert() {
		return 0, false
	}
	reply, err := d.conn.GetProperty(d.root, d.atoms.NetCurrentDesktop, xproto.GetPropertyTypeAny, desktopPropertyLength)
	if err != nil {
		d.logger.Warn("get property failed",
			"atom", uint32(d.atoms.NetCurrentDesktop),
			"window", fmt.Sprintf("0x%08x", uint32(d.root)),
			"error", err)
		return 0, false
	}
	value := propertyValue(reply)
	if len(value) < 4 {
		return 0, false
	}
	return xgb.Get32(value), true
}

// ActiveWindow returns the window the window manager reports as active.
func (d *Desktop) ActiveWindow() xproto.Window {
	if d.Inert() {
		return xproto.WindowNone
	}
	return d.conn.ActiveWindow()
}

// XUtil returns the xgbutil handle behind a live connection, or nil when the
// desktop is inert or not backed by a real server.
func (d *Desktop) XUtil() *xgbutil.XUtil {
	if d.Inert() {
		return nil
	}
	c, ok := d.conn.(*Connection)
	if !ok {
		return nil
	}
	return c.XUtil()
}

// Sync blocks until all requests sent so far have been processed.
func (d *Desktop) Sync() {
	if d.conn != nil {
		d.conn.Flush()
	}
}

// Close disconnects from the X server. Windows obtained from d must not be
// used afterwards.
func (d *Desktop) Close() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

func decodeWindow(b []byte) xproto.Window {
	switch len(b) {
	case 4:
		return xproto.Window(xgb.Get32(b))
	case 2:
		return xproto.Window(xgb.Get16(b))
	default:
		return xproto.Window(b[0])
	}
}
