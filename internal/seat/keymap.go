package seat

import (
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/protocol"
	evdev "github.com/gvalkov/golang-evdev"
)

type keyEntry struct {
	base    input.Keysym
	shifted input.Keysym
}

// Keymap translates evdev keycodes to keysyms.
type Keymap struct {
	keys      map[uint32]keyEntry
	modifiers map[uint32]protocol.Modifiers
	fkeys     map[uint32]int
}

func letter(c byte) keyEntry {
	return keyEntry{base: input.Keysym(c), shifted: input.Keysym(c - ('a' - 'A'))}
}

func pair(base, shifted byte) keyEntry {
	return keyEntry{base: input.Keysym(base), shifted: input.Keysym(shifted)}
}

func same(k input.Keysym) keyEntry {
	return keyEntry{base: k, shifted: k}
}

// USKeymap returns the US QWERTY layout.
func USKeymap() *Keymap {
	keys := map[uint32]keyEntry{
		evdev.KEY_A: letter('a'), evdev.KEY_B: letter('b'), evdev.KEY_C: letter('c'),
		evdev.KEY_D: letter('d'), evdev.KEY_E: letter('e'), evdev.KEY_F: letter('f'),
		evdev.KEY_G: letter('g'), evdev.KEY_H: letter('h'), evdev.KEY_I: letter('i'),
		evdev.KEY_J: letter('j'), evdev.KEY_K: letter('k'), evdev.KEY_L: letter('l'),
		evdev.KEY_M: letter('m'), evdev.KEY_N: letter('n'), evdev.KEY_O: letter('o'),
		evdev.KEY_P: letter('p'), evdev.KEY_Q: letter('q'), evdev.KEY_R: letter('r'),
		evdev.KEY_S: letter('s'), evdev.KEY_T: letter('t'), evdev.KEY_U: letter('u'),
		evdev.KEY_V: letter('v'), evdev.KEY_W: letter('w'), evdev.KEY_X: letter('x'),
		evdev.KEY_Y: letter('y'), evdev.KEY_Z: letter('z'),

		evdev.KEY_1: pair('1', '!'), evdev.KEY_2: pair('2', '@'), evdev.KEY_3: pair('3', '#'),
		evdev.KEY_4: pair('4', '$'), evdev.KEY_5: pair('5', '%'), evdev.KEY_6: pair('6', '^'),
		evdev.KEY_7: pair('7', '&'), evdev.KEY_8: pair('8', '*'), evdev.KEY_9: pair('9', '('),
		evdev.KEY_0: pair('0', ')'),

		evdev.KEY_MINUS:      pair('-', '_'),
		evdev.KEY_EQUAL:      pair('=', '+'),
		evdev.KEY_LEFTBRACE:  pair('[', '{'),
		evdev.KEY_RIGHTBRACE: pair(']', '}'),
		evdev.KEY_SEMICOLON:  pair(';', ':'),
		evdev.KEY_APOSTROPHE: pair('\'', '"'),
		evdev.KEY_GRAVE:      pair('`', '~'),
		evdev.KEY_BACKSLASH:  pair('\\', '|'),
		evdev.KEY_COMMA:      pair(',', '<'),
		evdev.KEY_DOT:        pair('.', '>'),
		evdev.KEY_SLASH:      pair('/', '?'),

		evdev.KEY_SPACE:     same(input.KeySpace),
		evdev.KEY_ENTER:     same(input.KeyReturn),
		evdev.KEY_ESC:       same(input.KeyEscape),
		evdev.KEY_TAB:       same(input.KeyTab),
		evdev.KEY_BACKSPACE: same(input.KeyBackSpace),
		evdev.KEY_DELETE:    same(input.KeyDelete),
		evdev.KEY_HOME:      same(input.KeyHome),
		evdev.KEY_END:       same(input.KeyEnd),
		evdev.KEY_UP:        same(input.KeyUp),
		evdev.KEY_DOWN:      same(input.KeyDown),
		evdev.KEY_LEFT:      same(input.KeyLeft),
		evdev.KEY_RIGHT:     same(input.KeyRight),

		evdev.KEY_LEFTSHIFT:  same(input.KeyShiftL),
		evdev.KEY_RIGHTSHIFT: same(input.KeyShiftR),
		evdev.KEY_LEFTCTRL:   same(input.KeyControlL),
		evdev.KEY_RIGHTCTRL:  same(input.KeyControlR),
		evdev.KEY_LEFTALT:    same(input.KeyAltL),
		evdev.KEY_RIGHTALT:   same(input.KeyAltR),
		evdev.KEY_LEFTMETA:   same(input.KeySuperL),
		evdev.KEY_RIGHTMETA:  same(input.KeySuperR),
		evdev.KEY_CAPSLOCK:   same(input.KeyCapsLock),
	}

	fkeys := map[uint32]int{
		evdev.KEY_F1: 1, evdev.KEY_F2: 2, evdev.KEY_F3: 3, evdev.KEY_F4: 4,
		evdev.KEY_F5: 5, evdev.KEY_F6: 6, evdev.KEY_F7: 7, evdev.KEY_F8: 8,
		evdev.KEY_F9: 9, evdev.KEY_F10: 10, evdev.KEY_F11: 11, evdev.KEY_F12: 12,
	}
	for code, n := range fkeys {
		keys[code] = same(input.KeyF(n))
	}

	return &Keymap{
		keys: keys,
		modifiers: map[uint32]protocol.Modifiers{
			evdev.KEY_LEFTSHIFT:  protocol.ModShift,
			evdev.KEY_RIGHTSHIFT: protocol.ModShift,
			evdev.KEY_LEFTCTRL:   protocol.ModCtrl,
			evdev.KEY_RIGHTCTRL:  protocol.ModCtrl,
			evdev.KEY_LEFTALT:    protocol.ModAlt,
			evdev.KEY_RIGHTALT:   protocol.ModAlt,
			evdev.KEY_LEFTMETA:   protocol.ModLogo,
			evdev.KEY_RIGHTMETA:  protocol.ModLogo,
		},
		fkeys: fkeys,
	}
}

// RawSym returns the unmodified keysym of code.
func (k *Keymap) RawSym(code uint32) input.Keysym {
	return k.keys[code].base
}

// ModifiedSym returns the keysym of code under mods. Shift (or caps lock,
// for letters) selects the shifted level; Ctrl+Alt turns function keys into
// XF86Switch_VT_n.
func (k *Keymap) ModifiedSym(code uint32, mods protocol.Modifiers) input.Keysym {
	entry, ok := k.keys[code]
	if !ok {
		return input.KeyNoSymbol
	}
	if n, ok := k.fkeys[code]; ok && mods.Has(protocol.ModCtrl|protocol.ModAlt) {
		return input.KeySwitchVT(n)
	}

	shift := mods.Has(protocol.ModShift)
	if entry.base.IsLetter() && mods.Has(protocol.ModCapsLock) {
		shift = !shift
	}
	if shift {
		return entry.shifted
	}
	return entry.base
}

// Modifier returns the modifier a key controls, if any.
func (k *Keymap) Modifier(code uint32) (protocol.Modifiers, bool) {
	m, ok := k.modifiers[code]
	return m, ok
}

// IsCapsLock reports whether code is the caps lock key.
func (k *Keymap) IsCapsLock(code uint32) bool {
	return code == evdev.KEY_CAPSLOCK
}

// Keycode finds the keycode producing sym and whether shift is needed. It
// is used by backends that receive characters instead of keycodes.
func (k *Keymap) Keycode(sym input.Keysym) (code uint32, shift bool, ok bool) {
	for c, e := range k.keys {
		if e.base == sym {
			return c, false, true
		}
	}
	for c, e := range k.keys {
		if e.shifted == sym && e.base != sym {
			return c, true, true
		}
	}
	return 0, false, false
}

// ModifierKeycode returns the left-hand keycode of a single modifier.
func ModifierKeycode(m protocol.Modifiers) uint32 {
	switch m {
	case protocol.ModShift:
		return evdev.KEY_LEFTSHIFT
	case protocol.ModCtrl:
		return evdev.KEY_LEFTCTRL
	case protocol.ModAlt:
		return evdev.KEY_LEFTALT
	case protocol.ModLogo:
		return evdev.KEY_LEFTMETA
	default:
		return 0
	}
}
