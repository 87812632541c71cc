package seat

import (
	"fmt"
	"slices"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
)

// Focus is a pointer focus: a window and the global location of its origin.
// A zero Window means no focus.
type Focus struct {
	Window protocol.WindowID
	Origin geometry.Point
}

// IsNone reports whether the focus is empty.
func (f Focus) IsNone() bool { return f.Window == 0 }

// MotionEvent is an absolute pointer motion in global coordinates.
type MotionEvent struct {
	Location geometry.PointF
	Serial   protocol.Serial
	Time     uint32
}

// ButtonEvent is a pointer button press or release.
type ButtonEvent struct {
	Button uint32
	State  protocol.ButtonState
	Serial protocol.Serial
	Time   uint32
}

// GrabStartData describes the press that started a grab.
type GrabStartData struct {
	// Focus is the pointer focus at the time of the press.
	Focus    Focus
	Button   uint32
	Serial   protocol.Serial
	Location geometry.PointF
}

// PointerGrab takes over pointer event handling while active.
type PointerGrab interface {
	Motion(h *PointerInnerHandle, focus Focus, ev MotionEvent)
	RelativeMotion(h *PointerInnerHandle, focus Focus, ev protocol.RelativeMotion)
	Button(h *PointerInnerHandle, ev ButtonEvent)
	Axis(h *PointerInnerHandle, frame protocol.AxisFrame)
	Frame(h *PointerInnerHandle)
	Gesture(h *PointerInnerHandle, ev protocol.GestureEvent)
	StartData() GrabStartData
	// Unset runs when the grab is removed.
	Unset()
}

// Pointer tracks location, focus, pressed buttons and the active grab.
type Pointer struct {
	targets Targets

	location geometry.PointF
	focus    Focus
	pressed  []uint32
	// implicit is the click grab that lives while any button is held.
	implicit *GrabStartData
	grab     PointerGrab
}

func newPointer(targets Targets) *Pointer {
	return &Pointer{targets: targets}
}

// Location returns the pointer location in global coordinates.
func (p *Pointer) Location() geometry.PointF { return p.location }

// Focus returns the current pointer focus.
func (p *Pointer) Focus() Focus { return p.focus }

// PressedButtons returns the buttons currently held.
func (p *Pointer) PressedButtons() []uint32 { return slices.Clone(p.pressed) }

// IsGrabbed reports whether an explicit grab or the implicit click grab is
// active.
func (p *Pointer) IsGrabbed() bool { return p.grab != nil || p.implicit != nil }

// HasGrab reports whether the active grab was started by the event with
// the given serial.
func (p *Pointer) HasGrab(serial protocol.Serial) bool {
	data, ok := p.GrabStartData()
	return ok && data.Serial == serial
}

// GrabStartData returns the start data of the active grab.
func (p *Pointer) GrabStartData() (GrabStartData, bool) {
	if p.grab != nil {
		return p.grab.StartData(), true
	}
	if p.implicit != nil {
		return *p.implicit, true
	}
	return GrabStartData{}, false
}

// SetGrab installs g. Installing a grab while another explicit grab is
// active is a programming error.
func (p *Pointer) SetGrab(g PointerGrab) {
	if p.grab != nil {
		panic(fmt.Sprintf("seat: pointer grab %T set while %T is active", g, p.grab))
	}
	p.grab = g
}

// UnsetGrab removes the active explicit grab.
func (p *Pointer) UnsetGrab() {
	g := p.grab
	if g == nil {
		return
	}
	p.grab = nil
	g.Unset()
}

// Grab returns the active explicit grab, if any.
func (p *Pointer) Grab() PointerGrab { return p.grab }

func (p *Pointer) handle() *PointerInnerHandle {
	return &PointerInnerHandle{p: p}
}

// Motion moves the pointer. focus is the window under the new location.
func (p *Pointer) Motion(focus Focus, ev MotionEvent) {
	if p.grab != nil {
		p.grab.Motion(p.handle(), focus, ev)
		return
	}
	p.motion(focus, ev)
}

// RelativeMotion forwards relative motion to the focus.
func (p *Pointer) RelativeMotion(focus Focus, ev protocol.RelativeMotion) {
	if p.grab != nil {
		p.grab.RelativeMotion(p.handle(), focus, ev)
		return
	}
	p.relativeMotion(ev)
}

// Button updates the pressed set and forwards the button.
func (p *Pointer) Button(ev ButtonEvent) {
	switch ev.State {
	case protocol.ButtonPressed:
		if len(p.pressed) == 0 {
			p.implicit = &GrabStartData{
				Focus:    p.focus,
				Button:   ev.Button,
				Serial:   ev.Serial,
				Location: p.location,
			}
		}
		if !slices.Contains(p.pressed, ev.Button) {
			p.pressed = append(p.pressed, ev.Button)
		}
	case protocol.ButtonReleased:
		p.pressed = slices.DeleteFunc(p.pressed, func(b uint32) bool { return b == ev.Button })
		if len(p.pressed) == 0 {
			p.implicit = nil
		}
	}

	if p.grab != nil {
		p.grab.Button(p.handle(), ev)
		return
	}
	p.button(ev)
}

// Axis forwards a scroll frame.
func (p *Pointer) Axis(frame protocol.AxisFrame) {
	if p.grab != nil {
		p.grab.Axis(p.handle(), frame)
		return
	}
	p.axis(frame)
}

// Frame terminates a group of pointer events.
func (p *Pointer) Frame() {
	if p.grab != nil {
		p.grab.Frame(p.handle())
		return
	}
	p.frame()
}

// Gesture forwards a touchpad gesture.
func (p *Pointer) Gesture(ev protocol.GestureEvent) {
	if p.grab != nil {
		p.grab.Gesture(p.handle(), ev)
		return
	}
	p.gesture(ev)
}

func (p *Pointer) target() (protocol.PointerTarget, bool) {
	if p.focus.IsNone() {
		return nil, false
	}
	return p.targets.PointerTarget(p.focus.Window)
}

func (p *Pointer) motion(focus Focus, ev MotionEvent) {
	p.location = ev.Location

	// While a button is held the window that got the press keeps the focus.
	if p.grab == nil && p.implicit != nil && !p.implicit.Focus.IsNone() {
		if focus.Window != p.implicit.Focus.Window {
			focus = p.implicit.Focus
		}
	}

	if focus.Window != p.focus.Window {
		if t, ok := p.target(); ok {
			t.PointerLeave(ev.Serial)
		}
		p.focus = focus
		if t, ok := p.target(); ok {
			t.PointerEnter(ev.Serial, ev.Location.Sub(focus.Origin.ToF()))
		}
		return
	}

	p.focus = focus
	if t, ok := p.target(); ok {
		t.Motion(ev.Time, ev.Location.Sub(focus.Origin.ToF()))
	}
}

func (p *Pointer) relativeMotion(ev protocol.RelativeMotion) {
	if t, ok := p.target(); ok {
		t.RelativeMotion(ev)
	}
}

func (p *Pointer) button(ev ButtonEvent) {
	if t, ok := p.target(); ok {
		t.Button(ev.Serial, ev.Time, ev.Button, ev.State)
	}
}

func (p *Pointer) axis(frame protocol.AxisFrame) {
	if t, ok := p.target(); ok {
		t.Axis(frame)
	}
}

func (p *Pointer) frame() {
	if t, ok := p.target(); ok {
		t.PointerFrame()
	}
}

func (p *Pointer) gesture(ev protocol.GestureEvent) {
	if t, ok := p.target(); ok {
		t.Gesture(ev)
	}
}

// PointerInnerHandle gives a grab access to the default pointer behavior.
type PointerInnerHandle struct {
	p *Pointer
}

// Motion moves the pointer and updates focus without going through the
// grab.
func (h *PointerInnerHandle) Motion(focus Focus, ev MotionEvent) {
	h.p.motion(focus, ev)
}

// RelativeMotion forwards relative motion to the current focus.
func (h *PointerInnerHandle) RelativeMotion(ev protocol.RelativeMotion) {
	h.p.relativeMotion(ev)
}

// Button forwards a button event to the current focus.
func (h *PointerInnerHandle) Button(ev ButtonEvent) {
	h.p.button(ev)
}

// Axis forwards a scroll frame to the current focus.
func (h *PointerInnerHandle) Axis(frame protocol.AxisFrame) {
	h.p.axis(frame)
}

// Frame forwards a frame event to the current focus.
func (h *PointerInnerHandle) Frame() {
	h.p.frame()
}

// Gesture forwards a gesture to the current focus.
func (h *PointerInnerHandle) Gesture(ev protocol.GestureEvent) {
	h.p.gesture(ev)
}

// CurrentPressed returns the buttons currently held.
func (h *PointerInnerHandle) CurrentPressed() []uint32 {
	return h.p.PressedButtons()
}

// Location returns the pointer location.
func (h *PointerInnerHandle) Location() geometry.PointF {
	return h.p.location
}

// UnsetGrab ends the grab that owns this handle.
func (h *PointerInnerHandle) UnsetGrab() {
	h.p.UnsetGrab()
}
