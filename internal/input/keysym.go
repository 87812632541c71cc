package input

import (
	"fmt"
	"strings"
)

// Keysym is an X11 keysym value.
type Keysym uint32

const (
	KeyNoSymbol  Keysym = 0
	KeySpace     Keysym = 0x0020
	KeyMinus     Keysym = 0x002d
	KeyEqual     Keysym = 0x003d
	KeyBackSpace Keysym = 0xff08
	KeyTab       Keysym = 0xff09
	KeyReturn    Keysym = 0xff0d
	KeyEscape    Keysym = 0xff1b
	KeyHome      Keysym = 0xff50
	KeyLeft      Keysym = 0xff51
	KeyUp        Keysym = 0xff52
	KeyRight     Keysym = 0xff53
	KeyDown      Keysym = 0xff54
	KeyEnd       Keysym = 0xff57
	KeyDelete    Keysym = 0xffff
	KeyF1        Keysym = 0xffbe
	KeyF12       Keysym = 0xffc9
	KeyShiftL    Keysym = 0xffe1
	KeyShiftR    Keysym = 0xffe2
	KeyControlL  Keysym = 0xffe3
	KeyControlR  Keysym = 0xffe4
	KeyCapsLock  Keysym = 0xffe5
	KeyAltL      Keysym = 0xffe9
	KeyAltR      Keysym = 0xffea
	KeySuperL    Keysym = 0xffeb
	KeySuperR    Keysym = 0xffec

	KeySwitchVT1  Keysym = 0x1008fe01
	KeySwitchVT12 Keysym = 0x1008fe0c
)

// KeyF returns the keysym of function key n (1-12).
func KeyF(n int) Keysym {
	return KeyF1 + Keysym(n-1)
}

// KeySwitchVT returns XF86Switch_VT_n.
func KeySwitchVT(n int) Keysym {
	return KeySwitchVT1 + Keysym(n-1)
}

// VT returns the terminal number of an XF86Switch_VT_n keysym.
func (k Keysym) VT() (int, bool) {
	if k < KeySwitchVT1 || k > KeySwitchVT12 {
		return 0, false
	}
	return int(k-KeySwitchVT1) + 1, true
}

// IsLetter reports whether k is an ASCII letter.
func (k Keysym) IsLetter() bool {
	return (k >= 'a' && k <= 'z') || (k >= 'A' && k <= 'Z')
}

// ToLower maps upper case letters to lower case and leaves others alone.
func (k Keysym) ToLower() Keysym {
	if k >= 'A' && k <= 'Z' {
		return k + ('a' - 'A')
	}
	return k
}

// ToUpper maps lower case letters to upper case and leaves others alone.
func (k Keysym) ToUpper() Keysym {
	if k >= 'a' && k <= 'z' {
		return k - ('a' - 'A')
	}
	return k
}

var namedKeysyms = map[string]Keysym{
	"space":     KeySpace,
	"minus":     KeyMinus,
	"equal":     KeyEqual,
	"backspace": KeyBackSpace,
	"tab":       KeyTab,
	"return":    KeyReturn,
	"enter":     KeyReturn,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"home":      KeyHome,
	"left":      KeyLeft,
	"up":        KeyUp,
	"right":     KeyRight,
	"down":      KeyDown,
	"end":       KeyEnd,
	"delete":    KeyDelete,
}

// ParseKeysym parses a key name as used in chord strings: a single printable
// ASCII character, a named key ("return", "escape") or a function key ("f1").
func ParseKeysym(name string) (Keysym, error) {
	lower := strings.ToLower(name)
	if k, ok := namedKeysyms[lower]; ok {
		return k, nil
	}
	var n int
	if _, err := fmt.Sscanf(lower, "f%d", &n); err == nil && n >= 1 && n <= 12 && lower == fmt.Sprintf("f%d", n) {
		return KeyF(n), nil
	}
	if len(name) == 1 && name[0] > 0x20 && name[0] < 0x7f {
		return Keysym(name[0]), nil
	}
	return KeyNoSymbol, fmt.Errorf("unknown key %q", name)
}

func (k Keysym) String() string {
	for name, sym := range namedKeysyms {
		if sym == k && name != "enter" && name != "esc" {
			return name
		}
	}
	switch {
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("f%d", int(k-KeyF1)+1)
	case k >= KeySwitchVT1 && k <= KeySwitchVT12:
		return fmt.Sprintf("XF86Switch_VT_%d", int(k-KeySwitchVT1)+1)
	case k > 0x20 && k < 0x7f:
		return string(rune(k))
	default:
		return fmt.Sprintf("0x%x", uint32(k))
	}
}
