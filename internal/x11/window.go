package x11

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Property length caps, in the protocol's 32-bit units.
const (
	textPropertyLength    = 1024
	desktopPropertyLength = 128
)

// Window describes one top-level client window. The metadata fields are
// empty until Update is called and are never refreshed on their own.
//
// A Window borrows the connection of the Desktop that produced it and must
// not be used after that Desktop is closed.
type Window struct {
	id     xproto.Window
	root   xproto.Window
	conn   Conn
	atoms  *Atoms
	logger *slog.Logger

	Title    string
	Class    string
	Instance string
	Desktop  uint32
}

func newWindow(conn Conn, atoms *Atoms, logger *slog.Logger, id, root xproto.Window) *Window {
	return &Window{
		id:     id,
		root:   root,
		conn:   conn,
		atoms:  atoms,
		logger: logger,
	}
}

// ID returns the X window id.
func (w *Window) ID() xproto.Window { return w.id }

// Root returns the root window the client list was read from.
func (w *Window) Root() xproto.Window { return w.root }

// Update reads WM_CLASS, _NET_WM_NAME and _NET_WM_DESKTOP. A read that fails
// leaves its field unchanged; the other reads still happen.
func (w *Window) Update() {
	if w.id == xproto.WindowNone {
		return
	}

	if value, ok := w.readProperty(w.atoms.WMClass, textPropertyLength); ok {
		parts := parseClassInstance(value)
		if len(parts) > 1 {
			w.Class = parts[1]
		}
		if len(parts) > 0 {
			w.Instance = parts[0]
		}
	}

	if value, ok := w.readProperty(w.atoms.NetWMName, textPropertyLength); ok {
		w.Title = cString(value)
	}

	if value, ok := w.readProperty(w.atoms.NetWMDesktop, desktopPropertyLength); ok && len(value) >= 4 {
		w.Desktop = xgb.Get32(value)
	}
}

// Focus switches to the window's desktop, maps it, gives it input focus and
// raises it. None of the requests are checked; the final Flush only makes
// sure they were sent.
func (w *Window) Focus() {
	if w.id == xproto.WindowNone {
		return
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w.root,
		Type:   w.atoms.NetCurrentDesktop,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{w.Desktop, xproto.TimeCurrentTime, 0, 0, 0}),
	}
	w.conn.SendEvent(w.root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		ev.Bytes())

	w.conn.MapWindow(w.id)
	w.conn.SetInputFocus(xproto.InputFocusParent, w.id, xproto.TimeCurrentTime)
	w.conn.ConfigureWindow(w.id, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	w.conn.Flush()
}

// HasTitle reports whether the cached title equals title exactly.
func (w *Window) HasTitle(title string) bool {
	return w.Title == title
}

// HasClass reports whether both the cached class and instance match.
func (w *Window) HasClass(class, instance string) bool {
	return w.Class == class && w.Instance == instance
}

// Summary is a serialisable snapshot of a window's cached metadata.
type Summary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Class    string `json:"class"`
	Instance string `json:"instance"`
	Desktop  uint32 `json:"desktop"`
	Active   bool   `json:"active,omitempty"`
}

// Summary snapshots the cached fields. active is the currently focused
// window, or WindowNone when unknown.
func (w *Window) Summary(active xproto.Window) Summary {
	return Summary{
		ID:       w.String(),
		Title:    w.Title,
		Class:    w.Class,
		Instance: w.Instance,
		Desktop:  w.Desktop,
		Active:   active != xproto.WindowNone && active == w.id,
	}
}

func (w *Window) String() string {
	return fmt.Sprintf("0x%08x", uint32(w.id))
}

// readProperty returns the raw value of prop on the window. ok is false when
// the read failed; the failure is logged.
func (w *Window) readProperty(prop xproto.Atom, length uint32) ([]byte, bool) {
	reply, err := w.conn.GetProperty(w.id, prop, xproto.GetPropertyTypeAny, length)
	if err != nil {
		w.logger.Warn("get property failed",
			"atom", uint32(prop),
			"window", w.String(),
			"error", err)
		return nil, false
	}
	return propertyValue(reply), true
}

// propertyValue trims the reply value to its declared byte length.
func propertyValue(reply *xproto.GetPropertyReply) []byte {
	if reply == nil {
		return nil
	}
	n := int(reply.ValueLen) * int(reply.Format/8)
	if n > len(reply.Value) {
		n = len(reply.Value)
	}
	return reply.Value[:n]
}

// parseClassInstance splits a WM_CLASS value into its NUL-terminated
// segments, instance first. A trailing segment without a terminator is kept.
func parseClassInstance(value []byte) []string {
	var parts []string
	for len(value) > 0 {
		i := bytes.IndexByte(value, 0)
		if i < 0 {
			parts = append(parts, string(value))
			break
		}
		parts = append(parts, string(value[:i]))
		value = value[i+1:]
	}
	return parts
}

func cString(value []byte) string {
	if i := bytes.IndexByte(value, 0); i >= 0 {
		return string(value[:i])
	}
	return string(value)
}
