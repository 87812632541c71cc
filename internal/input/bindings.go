package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/twm/internal/protocol"
)

// ActionKind is a compositor action bound to a key chord.
type ActionKind uint8

const (
	ActionQuit ActionKind = iota + 1
	ActionSpawnTerminal
	ActionCloseWindow
	ActionToggleFullscreen
	ActionSwitchVT
)

func (k ActionKind) String() string {
	switch k {
	case ActionQuit:
		return "quit"
	case ActionSpawnTerminal:
		return "spawn_terminal"
	case ActionCloseWindow:
		return "close_window"
	case ActionToggleFullscreen:
		return "toggle_fullscreen"
	case ActionSwitchVT:
		return "switch_vt"
	default:
		return "unknown"
	}
}

// Action is the result of a matched key chord.
type Action struct {
	Kind ActionKind
	// VT is the target terminal for ActionSwitchVT.
	VT int
}

// ErrInvalidChord is returned for chord strings that cannot be parsed.
var ErrInvalidChord = errors.New("invalid key chord")

// Chord is a set of modifiers plus one key.
type Chord struct {
	Mods protocol.Modifiers
	Sym  Keysym
}

// ParseChord parses strings like "alt+shift+q" or "super+return". Modifier
// names are ctrl, alt, shift and super (aliases: control, logo, mod4).
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Chord{}, fmt.Errorf("%w: %q", ErrInvalidChord, s)
	}

	var c Chord
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			c.Mods |= protocol.ModCtrl
		case "alt", "mod1":
			c.Mods |= protocol.ModAlt
		case "shift":
			c.Mods |= protocol.ModShift
		case "super", "logo", "mod4":
			c.Mods |= protocol.ModLogo
		default:
			return Chord{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidChord, p, s)
		}
	}

	sym, err := ParseKeysym(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return Chord{}, fmt.Errorf("%w: %v", ErrInvalidChord, err)
	}
	c.Sym = sym.ToLower()
	return c, nil
}

// Matches reports whether the modified keysym and modifiers trigger c.
// Letters match case-insensitively since shift is already part of the
// modifier set.
func (c Chord) Matches(sym Keysym, mods protocol.Modifiers) bool {
	return mods.Chord() == c.Mods && sym.ToLower() == c.Sym
}

func (c Chord) String() string {
	if c.Mods == 0 {
		return c.Sym.String()
	}
	return c.Mods.String() + "+" + c.Sym.String()
}

// BindingConfig is the chord configuration of one backend. An empty chord
// disables its action.
type BindingConfig struct {
	Quit             string
	SpawnTerminal    string
	CloseWindow      string
	ToggleFullscreen string
	// SwitchVT binds XF86Switch_VT_1..12 (Ctrl+Alt+F1..F12) to VT switching.
	SwitchVT bool
}

type binding struct {
	chord  Chord
	action ActionKind
}

// Bindings is a parsed chord set.
type Bindings struct {
	bindings []binding
	switchVT bool
}

// NewBindings parses a chord set.
func NewBindings(cfg BindingConfig) (*Bindings, error) {
	b := &Bindings{switchVT: cfg.SwitchVT}
	for _, entry := range []struct {
		chord  string
		action ActionKind
	}{
		{cfg.Quit, ActionQuit},
		{cfg.SpawnTerminal, ActionSpawnTerminal},
		{cfg.CloseWindow, ActionCloseWindow},
		{cfg.ToggleFullscreen, ActionToggleFullscreen},
	} {
		if strings.TrimSpace(entry.chord) == "" {
			continue
		}
		c, err := ParseChord(entry.chord)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.action, err)
		}
		b.bindings = append(b.bindings, binding{chord: c, action: entry.action})
	}
	return b, nil
}

// Filter decides whether a key event triggers an action. It only fires on
// presses; it has no side effects.
func (b *Bindings) Filter(sym Keysym, mods protocol.Modifiers, pressed bool) (Action, bool) {
	if !pressed {
		return Action{}, false
	}
	if b.switchVT {
		if vt, ok := sym.VT(); ok {
			return Action{Kind: ActionSwitchVT, VT: vt}, true
		}
	}
	for _, bd := range b.bindings {
		if bd.chord.Matches(sym, mods) {
			return Action{Kind: bd.action}, true
		}
	}
	return Action{}, false
}

// Describe lists the active bindings as "action=chord" strings.
func (b *Bindings) Describe() []string {
	out := make([]string, 0, len(b.bindings)+1)
	for _, bd := range b.bindings {
		out = append(out, fmt.Sprintf("%s=%s", bd.action, bd.chord))
	}
	if b.switchVT {
		out = append(out, "switch_vt=ctrl+alt+f1..f12")
	}
	return out
}
