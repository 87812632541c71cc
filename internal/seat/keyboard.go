package seat

import (
	"slices"

	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/protocol"
)

// RepeatInfo is the key repeat configuration sent to clients.
type RepeatInfo struct {
	DelayMS int
	Rate    int
}

// KeysymHandle describes a key event as the filter sees it.
type KeysymHandle struct {
	Keycode uint32
	// Raw is the keysym without modifiers applied.
	Raw input.Keysym
	// Sym is the keysym after modifiers.
	Sym  input.Keysym
	Mods protocol.Modifiers
}

// Keyboard tracks modifiers and keyboard focus and forwards key events to
// the focused window.
type Keyboard struct {
	keymap  *Keymap
	targets Targets
	repeat  RepeatInfo

	focus     protocol.WindowID
	held      map[uint32]protocol.Modifiers
	capsLock  bool
	forwarded []uint32
	// intercepted holds keys whose press was swallowed by the filter, so
	// their release is swallowed too.
	intercepted map[uint32]struct{}
}

func newKeyboard(keymap *Keymap, targets Targets, repeat RepeatInfo) *Keyboard {
	return &Keyboard{
		keymap:      keymap,
		targets:     targets,
		repeat:      repeat,
		held:        make(map[uint32]protocol.Modifiers),
		intercepted: make(map[uint32]struct{}),
	}
}

// Focus returns the focused window, zero for none.
func (k *Keyboard) Focus() protocol.WindowID { return k.focus }

// RepeatInfo returns the key repeat configuration.
func (k *Keyboard) RepeatInfo() RepeatInfo { return k.repeat }

// Keymap returns the active keymap.
func (k *Keyboard) Keymap() *Keymap { return k.keymap }

// Modifiers returns the current modifier state.
func (k *Keyboard) Modifiers() protocol.Modifiers {
	var m protocol.Modifiers
	for _, mod := range k.held {
		m |= mod
	}
	if k.capsLock {
		m |= protocol.ModCapsLock
	}
	return m
}

// Pressed returns the forwarded keys currently held down.
func (k *Keyboard) Pressed() []uint32 {
	return slices.Clone(k.forwarded)
}

// SetFocus moves keyboard focus. The old window gets a leave, the new one an
// enter with the currently forwarded keys.
func (k *Keyboard) SetFocus(id protocol.WindowID, serial protocol.Serial) {
	if id == k.focus {
		return
	}
	if t, ok := k.targets.KeyboardTarget(k.focus); ok {
		t.KeyboardLeave(serial)
	}
	k.focus = id
	if t, ok := k.targets.KeyboardTarget(id); ok {
		t.KeyboardEnter(serial, k.Pressed(), k.Modifiers())
	}
}

// Input processes one key event. Modifiers are updated first, then filter
// decides whether the event is intercepted. An intercepted press is not
// forwarded and neither is its release; every other event goes to the
// focused window. It reports whether the event was forwarded.
func (k *Keyboard) Input(serial protocol.Serial, time uint32, keycode uint32, state protocol.KeyState, filter func(KeysymHandle) bool) bool {
	before := k.Modifiers()
	k.updateModifiers(keycode, state)
	mods := k.Modifiers()

	handle := KeysymHandle{
		Keycode: keycode,
		Raw:     k.keymap.RawSym(keycode),
		Sym:     k.keymap.ModifiedSym(keycode, mods),
		Mods:    mods,
	}
	intercept := filter != nil && filter(handle)

	target, hasTarget := k.targets.KeyboardTarget(k.focus)
	if hasTarget && mods != before {
		target.Modifiers(serial, mods)
	}

	switch state {
	case protocol.KeyPressed:
		if intercept {
			k.intercepted[keycode] = struct{}{}
			return false
		}
		if !slices.Contains(k.forwarded, keycode) {
			k.forwarded = append(k.forwarded, keycode)
		}
	case protocol.KeyReleased:
		if _, ok := k.intercepted[keycode]; ok {
			delete(k.intercepted, keycode)
			return false
		}
		k.forwarded = slices.DeleteFunc(k.forwarded, func(c uint32) bool { return c == keycode })
	}

	if hasTarget {
		target.Key(serial, time, keycode, state)
	}
	return true
}

func (k *Keyboard) updateModifiers(keycode uint32, state protocol.KeyState) {
	if k.keymap.IsCapsLock(keycode) {
		if state == protocol.KeyPressed {
			k.capsLock = !k.capsLock
		}
		return
	}
	mod, ok := k.keymap.Modifier(keycode)
	if !ok {
		return
	}
	if state == protocol.KeyPressed {
		k.held[keycode] = mod
	} else {
		delete(k.held, keycode)
	}
}
