package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Conn is the subset of the X protocol used by xfocus. Requests without a
// return value are fire-and-forget: nothing waits for a reply or checks errors.
type Conn interface {
	// Root returns the root window of the default screen, or WindowNone when
	// the server reported no screens.
	Root() xproto.Window
	InternAtom(name string) (xproto.Atom, error)
	GetProperty(win xproto.Window, prop, typ xproto.Atom, length uint32) (*xproto.GetPropertyReply, error)
	SendEvent(dest xproto.Window, mask uint32, event []byte)
	MapWindow(win xproto.Window)
	SetInputFocus(revertTo byte, win xproto.Window, t xproto.Timestamp)
	ConfigureWindow(win xproto.Window, mask uint16, values []uint32)
	ActiveWindow() xproto.Window
	// Flush blocks until every request issued so far has been handled.
	Flush()
	Close()
}

// Connection manages the X11 connection and core X resources
type Connection struct {
	conn  *xgb.Conn
	xu    *xgbutil.XUtil
	root  xproto.Window
	setup *xproto.SetupInfo
}

var _ Conn = (*Connection)(nil)

// NewConnection connects to display (DISPLAY when empty). The connection
// stays usable when the server reports no screens; Root is WindowNone then.
func NewConnection(display string) (*Connection, error) {
	c, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	conn := &Connection{conn: c, root: xproto.WindowNone}
	conn.setup = xproto.Setup(c)
	if conn.setup == nil || len(conn.setup.Roots) == 0 || int(c.DefaultScreen) >= len(conn.setup.Roots) {
		return conn, nil
	}
	conn.root = conn.setup.DefaultScreen(c).Root

	// xgbutil gives us the atom cache, Sync and the EWMH helpers.
	xu, err := xgbutil.NewConnXgb(c)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init xgbutil: %w", err)
	}
	conn.xu = xu
	return conn, nil
}

// Root returns the root window of the default screen.
func (c *Connection) Root() xproto.Window {
	return c.root
}

// InternAtom looks up an existing atom by name. Names that the server does
// not know yet resolve to AtomNone.
func (c *Connection) InternAtom(name string) (xproto.Atom, error) {
	if c.xu != nil {
		return xprop.Atom(c.xu, name, true)
	}
	reply, err := xproto.InternAtom(c.conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone, err
	}
	return reply.Atom, nil
}

// GetProperty reads up to length 32-bit units of prop from win.
func (c *Connection) GetProperty(win xproto.Window, prop, typ xproto.Atom, length uint32) (*xproto.GetPropertyReply, error) {
	return xproto.GetProperty(c.conn, false, win, prop, typ, 0, length).Reply()
}

func (c *Connection) SendEvent(dest xproto.Window, mask uint32, event []byte) {
	xproto.SendEvent(c.conn, false, dest, mask, string(event))
}

func (c *Connection) MapWindow(win xproto.Window) {
	xproto.MapWindow(c.conn, win)
}

func (c *Connection) SetInputFocus(revertTo byte, win xproto.Window, t xproto.Timestamp) {
	xproto.SetInputFocus(c.conn, revertTo, win, t)
}

func (c *Connection) ConfigureWindow(win xproto.Window, mask uint16, values []uint32) {
	xproto.ConfigureWindow(c.conn, win, mask, values)
}

// ActiveWindow returns the window named by _NET_ACTIVE_WINDOW, or WindowNone.
func (c *Connection) ActiveWindow() xproto.Window {
	if c.xu == nil {
		return xproto.WindowNone
	}
	win, err := ewmh.ActiveWindowGet(c.xu)
	if err != nil {
		return xproto.WindowNone
	}
	return win
}

// Flush forces a round trip so all queued requests reach the server.
func (c *Connection) Flush() {
	if c.xu != nil {
		c.xu.Sync()
		return
	}
	c.conn.Sync()
}

// XUtil returns the xgbutil handle, or nil when the server reported no
// screens.
func (c *Connection) XUtil() *xgbutil.XUtil {
	return c.xu
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.conn.Close()
}
