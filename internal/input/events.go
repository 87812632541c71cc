// Package input defines the backend-agnostic input events, keysyms, the key
// chord bindings and the pure helpers the dispatch pipeline is built from.
package input

import (
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
)

// Event is one input event produced by a backend. The set is closed.
type Event interface {
	isEvent()
}

// KeyboardKeyEvent is a key press or release. Keycode is an evdev code.
type KeyboardKeyEvent struct {
	Time    uint32
	Keycode uint32
	State   protocol.KeyState
}

// PointerMotionEvent is relative pointer motion.
type PointerMotionEvent struct {
	Time         uint32
	UTime        uint64
	Delta        geometry.PointF
	DeltaUnaccel geometry.PointF
}

// PointerMotionAbsoluteEvent is absolute pointer motion in normalized device
// coordinates: X and Y are in [0,1].
type PointerMotionAbsoluteEvent struct {
	Time uint32
	X    float64
	Y    float64
}

// PositionTransformed maps the normalized position onto size.
func (e PointerMotionAbsoluteEvent) PositionTransformed(size geometry.Size) geometry.PointF {
	return geometry.PointF{X: e.X * float64(size.W), Y: e.Y * float64(size.H)}
}

// PointerButtonEvent is a button press or release. Button is an evdev code.
type PointerButtonEvent struct {
	Time   uint32
	Button uint32
	State  protocol.ButtonState
}

// AxisInput is what a device reported for one scroll axis. Either value may
// be absent.
type AxisInput struct {
	Amount *float64
	V120   *float64
}

// PointerAxisEvent is a scroll event.
type PointerAxisEvent struct {
	Time       uint32
	Source     protocol.AxisSource
	Horizontal AxisInput
	Vertical   AxisInput
}

// Axis returns the input for axis a.
func (e PointerAxisEvent) Axis(a protocol.Axis) AxisInput {
	if a == protocol.AxisHorizontal {
		return e.Horizontal
	}
	return e.Vertical
}

// GestureInputEvent is a touchpad gesture.
type GestureInputEvent struct {
	protocol.GestureEvent
}

// DeviceAddedEvent and DeviceRemovedEvent report input device hot-plug.
type DeviceAddedEvent struct {
	Name string
	Path string
}

type DeviceRemovedEvent struct {
	Name string
	Path string
}

func (KeyboardKeyEvent) isEvent()           {}
func (PointerMotionEvent) isEvent()         {}
func (PointerMotionAbsoluteEvent) isEvent() {}
func (PointerButtonEvent) isEvent()         {}
func (PointerAxisEvent) isEvent()           {}
func (GestureInputEvent) isEvent()          {}
func (DeviceAddedEvent) isEvent()           {}
func (DeviceRemovedEvent) isEvent()         {}

// Float is a helper for building AxisInput values.
func Float(v float64) *float64 { return &v }
