package input

import (
	"testing"

	"github.com/bnema/twm/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in      string
		want    Chord
		wantErr bool
	}{
		{"alt+shift+q", Chord{Mods: protocol.ModAlt | protocol.ModShift, Sym: 'q'}, false},
		{"super+Return", Chord{Mods: protocol.ModLogo, Sym: KeyReturn}, false},
		{"ctrl+alt+f3", Chord{Mods: protocol.ModCtrl | protocol.ModAlt, Sym: KeyF(3)}, false},
		{"Shift+T", Chord{Mods: protocol.ModShift, Sym: 't'}, false},
		{"q", Chord{Sym: 'q'}, false},
		{"hyper+q", Chord{}, true},
		{"alt+", Chord{}, true},
		{"alt+nope", Chord{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChord(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindingsFilter(t *testing.T) {
	b, err := NewBindings(BindingConfig{
		Quit:             "alt+shift+q",
		SpawnTerminal:    "alt+return",
		CloseWindow:      "alt+shift+c",
		ToggleFullscreen: "",
		SwitchVT:         true,
	})
	require.NoError(t, err)

	altShift := protocol.ModAlt | protocol.ModShift

	tests := []struct {
		name    string
		sym     Keysym
		mods    protocol.Modifiers
		pressed bool
		want    Action
		match   bool
	}{
		{"quit on modified sym", 'Q', altShift, true, Action{Kind: ActionQuit}, true},
		{"caps lock does not break chords", 'Q', altShift | protocol.ModCapsLock, true, Action{Kind: ActionQuit}, true},
		{"release never matches", 'Q', altShift, false, Action{}, false},
		{"missing modifier", 'q', protocol.ModAlt, true, Action{}, false},
		{"extra modifier", 'Q', altShift | protocol.ModCtrl, true, Action{}, false},
		{"terminal", KeyReturn, protocol.ModAlt, true, Action{Kind: ActionSpawnTerminal}, true},
		{"close", 'C', altShift, true, Action{Kind: ActionCloseWindow}, true},
		{"disabled action", 'f', protocol.ModAlt, true, Action{}, false},
		{"vt 1", KeySwitchVT(1), protocol.ModCtrl | protocol.ModAlt, true, Action{Kind: ActionSwitchVT, VT: 1}, true},
		{"vt 12", KeySwitchVT(12), protocol.ModCtrl | protocol.ModAlt, true, Action{Kind: ActionSwitchVT, VT: 12}, true},
		{"plain letters are forwarded", 'a', 0, true, Action{}, false},
		{"keysyms above the vt range are forwarded", KeySwitchVT12 + 1, 0, true, Action{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.Filter(tt.sym, tt.mods, tt.pressed)
			assert.Equal(t, tt.match, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindingsSwitchVTDisabled(t *testing.T) {
	b, err := NewBindings(BindingConfig{Quit: "alt+shift+q"})
	require.NoError(t, err)

	_, ok := b.Filter(KeySwitchVT(2), protocol.ModCtrl|protocol.ModAlt, true)
	assert.False(t, ok)
}

func TestNewBindingsRejectsBadChord(t *testing.T) {
	_, err := NewBindings(BindingConfig{Quit: "alt+shift+q", CloseWindow: "meta+c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChord)
	assert.Contains(t, err.Error(), "close_window")
}

func TestBindingsDescribe(t *testing.T) {
	b, err := NewBindings(BindingConfig{Quit: "super+shift+q", SwitchVT: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"quit=shift+super+q", "switch_vt=ctrl+alt+f1..f12"}, b.Describe())
}

func TestKeysymHelpers(t *testing.T) {
	vt, ok := KeySwitchVT(5).VT()
	assert.True(t, ok)
	assert.Equal(t, 5, vt)

	_, ok = KeyF(5).VT()
	assert.False(t, ok)

	assert.Equal(t, Keysym('a'), Keysym('A').ToLower())
	assert.Equal(t, Keysym('A'), Keysym('a').ToUpper())
	assert.Equal(t, "f11", KeyF(11).String())
	assert.Equal(t, "return", KeyReturn.String())
	assert.Equal(t, "XF86Switch_VT_3", KeySwitchVT(3).String())
}
