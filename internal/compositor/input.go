package compositor

import (
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/seat"
)

// ProcessInput dispatches one backend input event.
func (s *State) ProcessInput(ev input.Event) {
	if s.seat == nil {
		return
	}
	switch ev := ev.(type) {
	case input.KeyboardKeyEvent:
		s.onKeyboardKey(ev)
	case input.PointerMotionEvent:
		s.onPointerMotion(ev)
	case input.PointerMotionAbsoluteEvent:
		s.onPointerMotionAbsolute(ev)
	case input.PointerButtonEvent:
		s.onPointerButton(ev)
	case input.PointerAxisEvent:
		s.onPointerAxis(ev)
	case input.GestureInputEvent:
		g := ev.GestureEvent
		g.Serial = s.serials.Next()
		s.seat.Pointer().Gesture(g)
	case input.DeviceAddedEvent:
		wmLog.Infof("Input device added: %s (%s)", ev.Name, ev.Path)
	case input.DeviceRemovedEvent:
		wmLog.Warnf("Input device removed: %s (%s)", ev.Name, ev.Path)
	}
}

func (s *State) onKeyboardKey(ev input.KeyboardKeyEvent) {
	serial := s.serials.Next()

	var (
		action  input.Action
		matched bool
	)
	s.seat.Keyboard().Input(serial, ev.Time, ev.Keycode, ev.State, func(h seat.KeysymHandle) bool {
		action, matched = s.bindings.Filter(h.Sym, h.Mods, ev.State == protocol.KeyPressed)
		return matched
	})
	if matched {
		s.runAction(action)
	}
}

func (s *State) onPointerMotion(ev input.PointerMotionEvent) {
	og, ok := s.activeOutputGeometry()
	if !ok {
		return
	}
	ptr := s.seat.Pointer()
	loc := ptr.Location().Add(ev.Delta).Clamp(og.Loc.ToF(), og.Max().ToF())

	serial := s.serials.Next()
	under := s.surfaceUnder(loc)
	ptr.Motion(under, seat.MotionEvent{Location: loc, Serial: serial, Time: ev.Time})
	ptr.RelativeMotion(under, protocol.RelativeMotion{
		Delta:        ev.Delta,
		DeltaUnaccel: ev.DeltaUnaccel,
		UTime:        ev.UTime,
	})
	s.QueueRedraw()
}

func (s *State) onPointerMotionAbsolute(ev input.PointerMotionAbsoluteEvent) {
	og, ok := s.activeOutputGeometry()
	if !ok {
		return
	}
	loc := ev.PositionTransformed(og.Size).Add(og.Loc.ToF())

	ptr := s.seat.Pointer()
	serial := s.serials.Next()
	ptr.Motion(s.surfaceUnder(loc), seat.MotionEvent{Location: loc, Serial: serial, Time: ev.Time})
	ptr.Frame()
	s.QueueRedraw()
}

func (s *State) onPointerButton(ev input.PointerButtonEvent) {
	ptr := s.seat.Pointer()
	serial := s.serials.Next()

	if ev.State == protocol.ButtonPressed && !ptr.IsGrabbed() {
		s.focusAt(ptr.Location(), serial)
	}

	ptr.Button(seat.ButtonEvent{Button: ev.Button, State: ev.State, Serial: serial, Time: ev.Time})
	ptr.Frame()
}

// focusAt raises and focuses the window under p, or drops focus when there
// is none.
func (s *State) focusAt(p geometry.PointF, serial protocol.Serial) {
	if w, _, ok := s.space.ElementUnder(p); ok {
		s.space.RaiseElement(w, true)
		s.setKeyboardFocus(w.ID(), serial)
		s.sendPendingConfigures()
		return
	}
	for _, w := range s.space.Elements() {
		w.SetActivated(false)
	}
	s.sendPendingConfigures()
	s.setKeyboardFocus(0, serial)
}

func (s *State) sendPendingConfigures() {
	for _, w := range s.space.Elements() {
		w.SendPendingConfigure()
	}
}

func (s *State) onPointerAxis(ev input.PointerAxisEvent) {
	ptr := s.seat.Pointer()
	ptr.Axis(input.NormalizeAxis(ev))
	ptr.Frame()
}
