package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler manages global keyboard shortcuts on the root window.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler grabbing keys on root.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *Handler {
	keybind.Initialize(xu)

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   root,
		logger: logger,
	}
}

// RegisterFunc grabs keySequence (e.g. "Mod4-t") and runs callback on
// every press.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.logger.Debug("hotkey pressed", "hotkey", keySequence)
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to bind hotkey %q: %w", keySequence, err)
	}
	return nil
}

// Reset releases every grab made by this handler and forgets its key
// strings, so a keyboard remap does not reconnect them.
func (h *Handler) Reset() {
	keybind.Detach(h.xu, h.root)

	h.xu.KeybindsLck.Lock()
	h.xu.Keystrings = dropKeyStrings(h.xu.Keystrings, h.root)
	h.xu.KeybindsLck.Unlock()
}

// dropKeyStrings removes the entries bound on win, keeping order.
func dropKeyStrings(keys []xgbutil.KeyString, win xproto.Window) []xgbutil.KeyString {
	kept := keys[:0]
	for _, k := range keys {
		if k.Win != win {
			kept = append(kept, k)
		}
	}
	return kept
}

// Main runs the X event loop until Quit is called.
func (h *Handler) Main() {
	xevent.Main(h.xu)
}

// Quit stops Main.
func (h *Handler) Quit() {
	xevent.Quit(h.xu)
}

// configureIgnoreMods makes grabs fire regardless of CapsLock, NumLock and
// ScrollLock state.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns 0 plus every non-empty OR-combination of base.
func ignoreMasks(base []uint16) []uint16 {
	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	out := make([]uint16, 0, len(unique))
	for mask := range unique {
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
