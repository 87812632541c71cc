package seat

import (
	"testing"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/protocol"
	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTargets map[protocol.WindowID]*protocol.Loopback

func (f fakeTargets) KeyboardTarget(id protocol.WindowID) (protocol.KeyboardTarget, bool) {
	l, ok := f[id]
	return l, ok
}

func (f fakeTargets) PointerTarget(id protocol.WindowID) (protocol.PointerTarget, bool) {
	l, ok := f[id]
	return l, ok
}

func newTestSeat() (*Seat, fakeTargets) {
	targets := fakeTargets{
		1: protocol.NewLoopback(1, "one"),
		2: protocol.NewLoopback(2, "two"),
	}
	return New("seat0", targets, nil, RepeatInfo{DelayMS: 200, Rate: 25}), targets
}

func TestKeymapModifiedSym(t *testing.T) {
	km := USKeymap()

	tests := []struct {
		name string
		code uint32
		mods protocol.Modifiers
		want input.Keysym
	}{
		{"plain letter", evdev.KEY_Q, 0, 'q'},
		{"shifted letter", evdev.KEY_Q, protocol.ModShift, 'Q'},
		{"caps lock letter", evdev.KEY_Q, protocol.ModCapsLock, 'Q'},
		{"caps lock and shift cancel", evdev.KEY_Q, protocol.ModCapsLock | protocol.ModShift, 'q'},
		{"caps lock leaves digits", evdev.KEY_1, protocol.ModCapsLock, '1'},
		{"shifted digit", evdev.KEY_1, protocol.ModShift, '!'},
		{"enter", evdev.KEY_ENTER, protocol.ModAlt, input.KeyReturn},
		{"plain f2", evdev.KEY_F2, 0, input.KeyF(2)},
		{"ctrl alt f2 switches vt", evdev.KEY_F2, protocol.ModCtrl | protocol.ModAlt, input.KeySwitchVT(2)},
		{"ctrl alt f12", evdev.KEY_F12, protocol.ModCtrl | protocol.ModAlt, input.KeySwitchVT(12)},
		{"unknown code", 0xfff, 0, input.KeyNoSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, km.ModifiedSym(tt.code, tt.mods))
		})
	}
}

func TestKeymapKeycode(t *testing.T) {
	km := USKeymap()

	code, shift, ok := km.Keycode('Q')
	require.True(t, ok)
	assert.Equal(t, uint32(evdev.KEY_Q), code)
	assert.True(t, shift)

	code, shift, ok = km.Keycode(input.KeyReturn)
	require.True(t, ok)
	assert.Equal(t, uint32(evdev.KEY_ENTER), code)
	assert.False(t, shift)

	_, _, ok = km.Keycode(input.Keysym(0x20ac))
	assert.False(t, ok)
}

func TestKeyboardForwardsToFocus(t *testing.T) {
	s, targets := newTestSeat()
	kb := s.Keyboard()

	kb.SetFocus(1, 1)
	assert.True(t, targets[1].HasKeyboardFocus())

	assert.True(t, kb.Input(2, 0, evdev.KEY_A, protocol.KeyPressed, nil))
	assert.Equal(t, []uint32{evdev.KEY_A}, kb.Pressed())
	assert.True(t, kb.Input(3, 0, evdev.KEY_A, protocol.KeyReleased, nil))
	assert.Empty(t, kb.Pressed())

	assert.Len(t, targets[1].Keys(), 2)

	kb.SetFocus(2, 4)
	assert.False(t, targets[1].HasKeyboardFocus())
	assert.True(t, targets[2].HasKeyboardFocus())
}

func TestKeyboardModifiers(t *testing.T) {
	s, targets := newTestSeat()
	kb := s.Keyboard()
	kb.SetFocus(1, 1)

	kb.Input(2, 0, evdev.KEY_LEFTSHIFT, protocol.KeyPressed, nil)
	kb.Input(3, 0, evdev.KEY_RIGHTALT, protocol.KeyPressed, nil)
	assert.Equal(t, protocol.ModShift|protocol.ModAlt, kb.Modifiers())
	assert.Equal(t, protocol.ModShift|protocol.ModAlt, targets[1].CurrentModifiers())

	kb.Input(4, 0, evdev.KEY_LEFTSHIFT, protocol.KeyReleased, nil)
	assert.Equal(t, protocol.ModAlt, kb.Modifiers())

	kb.Input(5, 0, evdev.KEY_CAPSLOCK, protocol.KeyPressed, nil)
	kb.Input(6, 0, evdev.KEY_CAPSLOCK, protocol.KeyReleased, nil)
	assert.True(t, kb.Modifiers().Has(protocol.ModCapsLock))
}

func TestKeyboardInterceptSwallowsMatchingRelease(t *testing.T) {
	s, targets := newTestSeat()
	kb := s.Keyboard()
	kb.SetFocus(1, 1)

	var seen []KeysymHandle
	filter := func(h KeysymHandle) bool {
		seen = append(seen, h)
		return h.Sym == 'Q' && h.Mods.Has(protocol.ModAlt)
	}

	kb.Input(2, 0, evdev.KEY_LEFTALT, protocol.KeyPressed, filter)
	kb.Input(3, 0, evdev.KEY_LEFTSHIFT, protocol.KeyPressed, filter)
	assert.False(t, kb.Input(4, 0, evdev.KEY_Q, protocol.KeyPressed, filter), "press is intercepted")
	assert.False(t, kb.Input(5, 0, evdev.KEY_Q, protocol.KeyReleased, filter), "its release is swallowed")
	assert.True(t, kb.Input(6, 0, evdev.KEY_LEFTSHIFT, protocol.KeyReleased, filter))

	require.Len(t, seen, 5)
	assert.Equal(t, input.Keysym('Q'), seen[2].Sym)
	assert.Equal(t, input.Keysym('q'), seen[2].Raw)

	for _, k := range targets[1].Keys() {
		assert.NotEqual(t, uint32(evdev.KEY_Q), k.Keycode, "no event for the intercepted key reaches the client")
	}
}

func TestKeyboardForwardsReleaseOfForwardedPress(t *testing.T) {
	s, targets := newTestSeat()
	kb := s.Keyboard()
	kb.SetFocus(1, 1)

	kb.Input(2, 0, evdev.KEY_Q, protocol.KeyPressed, func(KeysymHandle) bool { return false })
	// Releases are forwarded even when the filter would match them.
	kb.Input(3, 0, evdev.KEY_Q, protocol.KeyReleased, func(KeysymHandle) bool { return true })

	assert.Len(t, targets[1].Keys(), 2)
}

func TestKeyboardWithoutFocus(t *testing.T) {
	s, _ := newTestSeat()
	kb := s.Keyboard()
	assert.Equal(t, protocol.WindowID(0), kb.Focus())
	assert.True(t, kb.Input(1, 0, evdev.KEY_A, protocol.KeyPressed, nil))
	assert.Equal(t, RepeatInfo{DelayMS: 200, Rate: 25}, kb.RepeatInfo())
}

func TestPointerMotionFocus(t *testing.T) {
	s, targets := newTestSeat()
	p := s.Pointer()

	p.Motion(Focus{Window: 1, Origin: geometry.Point{X: 100, Y: 100}}, MotionEvent{Location: geometry.PointF{X: 110, Y: 120}, Serial: 1})
	loc, ok := targets[1].HasPointerFocus()
	require.True(t, ok)
	assert.Equal(t, geometry.PointF{X: 10, Y: 20}, loc)

	p.Motion(Focus{Window: 1, Origin: geometry.Point{X: 100, Y: 100}}, MotionEvent{Location: geometry.PointF{X: 115, Y: 120}, Serial: 2})
	abs, _ := targets[1].Motions()
	assert.Equal(t, 1, abs)

	p.Motion(Focus{}, MotionEvent{Location: geometry.PointF{X: 5, Y: 5}, Serial: 3})
	_, ok = targets[1].HasPointerFocus()
	assert.False(t, ok)
	assert.True(t, p.Focus().IsNone())
	assert.Equal(t, geometry.PointF{X: 5, Y: 5}, p.Location())
}

func TestPointerImplicitGrab(t *testing.T) {
	s, targets := newTestSeat()
	p := s.Pointer()
	one := Focus{Window: 1}

	p.Motion(one, MotionEvent{Location: geometry.PointF{X: 10, Y: 10}, Serial: 1})
	assert.False(t, p.IsGrabbed())

	p.Button(ButtonEvent{Button: evdev.BTN_LEFT, State: protocol.ButtonPressed, Serial: 7})
	assert.True(t, p.IsGrabbed())
	assert.True(t, p.HasGrab(7))
	assert.False(t, p.HasGrab(8))

	data, ok := p.GrabStartData()
	require.True(t, ok)
	assert.Equal(t, protocol.WindowID(1), data.Focus.Window)
	assert.Equal(t, geometry.PointF{X: 10, Y: 10}, data.Location)

	t.Run("focus stays on the pressed window", func(t *testing.T) {
		p.Motion(Focus{Window: 2}, MotionEvent{Location: geometry.PointF{X: 500, Y: 500}, Serial: 8})
		assert.Equal(t, protocol.WindowID(1), p.Focus().Window)
		_, ok := targets[2].HasPointerFocus()
		assert.False(t, ok)
	})

	t.Run("second button keeps the original start data", func(t *testing.T) {
		p.Button(ButtonEvent{Button: evdev.BTN_RIGHT, State: protocol.ButtonPressed, Serial: 9})
		assert.True(t, p.HasGrab(7))
		p.Button(ButtonEvent{Button: evdev.BTN_RIGHT, State: protocol.ButtonReleased, Serial: 10})
		assert.True(t, p.IsGrabbed())
	})

	p.Button(ButtonEvent{Button: evdev.BTN_LEFT, State: protocol.ButtonReleased, Serial: 11})
	assert.False(t, p.IsGrabbed())
	assert.False(t, p.HasGrab(7))
	assert.Len(t, targets[1].Buttons(), 4)
}

type recordingGrab struct {
	start   GrabStartData
	motions int
	unset   bool
}

func (g *recordingGrab) Motion(h *PointerInnerHandle, _ Focus, ev MotionEvent) {
	g.motions++
	h.Motion(Focus{}, ev)
}
func (g *recordingGrab) RelativeMotion(h *PointerInnerHandle, _ Focus, ev protocol.RelativeMotion) {
	h.RelativeMotion(ev)
}
func (g *recordingGrab) Button(h *PointerInnerHandle, ev ButtonEvent) {
	h.Button(ev)
	if len(h.CurrentPressed()) == 0 {
		h.UnsetGrab()
	}
}
func (g *recordingGrab) Axis(h *PointerInnerHandle, f protocol.AxisFrame)        { h.Axis(f) }
func (g *recordingGrab) Frame(h *PointerInnerHandle)                             { h.Frame() }
func (g *recordingGrab) Gesture(h *PointerInnerHandle, ev protocol.GestureEvent) { h.Gesture(ev) }
func (g *recordingGrab) StartData() GrabStartData                                { return g.start }
func (g *recordingGrab) Unset()                                                  { g.unset = true }

func TestPointerExplicitGrab(t *testing.T) {
	s, _ := newTestSeat()
	p := s.Pointer()

	p.Motion(Focus{Window: 1}, MotionEvent{Location: geometry.PointF{X: 1, Y: 1}})
	p.Button(ButtonEvent{Button: evdev.BTN_LEFT, State: protocol.ButtonPressed, Serial: 3})

	data, _ := p.GrabStartData()
	g := &recordingGrab{start: data}
	p.SetGrab(g)

	assert.Panics(t, func() { p.SetGrab(&recordingGrab{}) }, "only one grab at a time")

	p.Motion(Focus{Window: 1}, MotionEvent{Location: geometry.PointF{X: 50, Y: 50}})
	assert.Equal(t, 1, g.motions)
	assert.True(t, p.Focus().IsNone(), "the grab cleared the focus")

	p.Button(ButtonEvent{Button: evdev.BTN_LEFT, State: protocol.ButtonReleased, Serial: 4})
	assert.True(t, g.unset)
	assert.Nil(t, p.Grab())
	assert.False(t, p.IsGrabbed())
}
