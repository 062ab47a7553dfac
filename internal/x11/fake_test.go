package x11

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
)

const testRoot xproto.Window = 0x100

var testAtomIDs = map[string]xproto.Atom{
	AtomWMClass:           67,
	AtomNetWMName:         301,
	AtomNetWMDesktop:      302,
	AtomNetCurrentDesktop: 303,
	AtomNetClientList:     304,
}

type propKey struct {
	win  xproto.Window
	atom xproto.Atom
}

// fakeConn records every request and serves properties from memory.
type fakeConn struct {
	root       xproto.Window
	atoms      map[string]xproto.Atom
	atomErrs   map[string]error
	props      map[propKey]*xproto.GetPropertyReply
	propErrs   map[propKey]error
	active     xproto.Window
	calls      []string
	propReads  map[xproto.Window]int
	sentEvents [][]byte
	closed     bool
}

func newFakeConn() *fakeConn {
	atoms := make(map[string]xproto.Atom, len(testAtomIDs))
	for name, id := range testAtomIDs {
		atoms[name] = id
	}
	return &fakeConn{
		root:      testRoot,
		atoms:     atoms,
		atomErrs:  make(map[string]error),
		props:     make(map[propKey]*xproto.GetPropertyReply),
		propErrs:  make(map[propKey]error),
		propReads: make(map[xproto.Window]int),
	}
}

func (f *fakeConn) Root() xproto.Window { return f.root }

func (f *fakeConn) InternAtom(name string) (xproto.Atom, error) {
	f.calls = append(f.calls, "InternAtom "+name)
	if err := f.atomErrs[name]; err != nil {
		return xproto.AtomNone, err
	}
	return f.atoms[name], nil
}

func (f *fakeConn) GetProperty(win xproto.Window, prop, typ xproto.Atom, length uint32) (*xproto.GetPropertyReply, error) {
	f.calls = append(f.calls, fmt.Sprintf("GetProperty 0x%x %d", uint32(win), prop))
	f.propReads[win]++
	key := propKey{win, prop}
	if err := f.propErrs[key]; err != nil {
		return nil, err
	}
	if prop == xproto.AtomNone {
		return nil, errors.New("BadAtom")
	}
	if reply, ok := f.props[key]; ok {
		return reply, nil
	}
	return &xproto.GetPropertyReply{}, nil
}

func (f *fakeConn) SendEvent(dest xproto.Window, mask uint32, event []byte) {
	f.calls = append(f.calls, fmt.Sprintf("SendEvent 0x%x %d", uint32(dest), mask))
	f.sentEvents = append(f.sentEvents, event)
}

func (f *fakeConn) MapWindow(win xproto.Window) {
	f.calls = append(f.calls, fmt.Sprintf("MapWindow 0x%x", uint32(win)))
}

func (f *fakeConn) SetInputFocus(revertTo byte, win xproto.Window, t xproto.Timestamp) {
	f.calls = append(f.calls, fmt.Sprintf("SetInputFocus %d 0x%x %d", revertTo, uint32(win), t))
}

func (f *fakeConn) ConfigureWindow(win xproto.Window, mask uint16, values []uint32) {
	f.calls = append(f.calls, fmt.Sprintf("ConfigureWindow 0x%x %d %v", uint32(win), mask, values))
}

func (f *fakeConn) ActiveWindow() xproto.Window { return f.active }

func (f *fakeConn) Flush() { f.calls = append(f.calls, "Flush") }

func (f *fakeConn) Close() { f.closed = true }

// setString stores an 8-bit property value.
func (f *fakeConn) setString(win xproto.Window, atom string, value string) {
	f.props[propKey{win, f.atoms[atom]}] = &xproto.GetPropertyReply{
		Format:   8,
		ValueLen: uint32(len(value)),
		Value:    []byte(value),
	}
}

// setCardinals stores a 32-bit property value.
func (f *fakeConn) setCardinals(win xproto.Window, atom string, values ...uint32) {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	f.props[propKey{win, f.atoms[atom]}] = &xproto.GetPropertyReply{
		Format:   32,
		ValueLen: uint32(len(values)),
		Value:    buf,
	}
}

// addClient registers a window with its title and class on the client list.
func (f *fakeConn) addClient(win xproto.Window, title, instance, class string, desktop uint32) {
	key := propKey{f.root, f.atoms[AtomNetClientList]}
	var ids []uint32
	if reply, ok := f.props[key]; ok {
		for i := 0; i+4 <= len(reply.Value); i += 4 {
			ids = append(ids, binary.LittleEndian.Uint32(reply.Value[i:]))
		}
	}
	ids = append(ids, uint32(win))
	f.setCardinals(f.root, AtomNetClientList, ids...)

	f.setString(win, AtomNetWMName, title)
	f.setString(win, AtomWMClass, instance+"\x00"+class+"\x00")
	f.setCardinals(win, AtomNetWMDesktop, desktop)
}

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}
