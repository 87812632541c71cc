package protocol

import (
	"strings"
	"time"

	"github.com/bnema/twm/internal/geometry"
)

// KeyState is pressed or released.
type KeyState uint8

const (
	KeyReleased KeyState = iota
	KeyPressed
)

func (s KeyState) String() string {
	if s == KeyPressed {
		return "pressed"
	}
	return "released"
}

// ButtonState is pressed or released.
type ButtonState uint8

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

func (s ButtonState) String() string {
	if s == ButtonPressed {
		return "pressed"
	}
	return "released"
}

// Modifiers is the set of active keyboard modifiers.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModLogo
	ModCapsLock
)

// Has reports whether all bits of m are set.
func (m Modifiers) Has(f Modifiers) bool { return m&f == f }

// Chord drops lock modifiers, leaving the ones that take part in key chords.
func (m Modifiers) Chord() Modifiers { return m &^ ModCapsLock }

func (m Modifiers) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModLogo) {
		parts = append(parts, "super")
	}
	if m.Has(ModCapsLock) {
		parts = append(parts, "caps")
	}
	return strings.Join(parts, "+")
}

// Axis is a scroll axis.
type Axis uint8

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// AxisSource is the kind of device that produced a scroll.
type AxisSource uint8

const (
	AxisSourceWheel AxisSource = iota
	AxisSourceFinger
	AxisSourceContinuous
	AxisSourceWheelTilt
)

func (s AxisSource) String() string {
	switch s {
	case AxisSourceWheel:
		return "wheel"
	case AxisSourceFinger:
		return "finger"
	case AxisSourceContinuous:
		return "continuous"
	case AxisSourceWheelTilt:
		return "wheel-tilt"
	default:
		return "unknown"
	}
}

// AxisValue is one axis of an axis frame.
type AxisValue struct {
	Set    bool
	Amount float64
	// V120 is the high-resolution discrete value, 120 per wheel notch.
	V120    int32
	HasV120 bool
	Stop    bool
}

// AxisFrame groups the axis events that belong together.
type AxisFrame struct {
	Source     AxisSource
	Time       uint32
	Vertical   AxisValue
	Horizontal AxisValue
}

// Value returns the value for axis a.
func (f AxisFrame) Value(a Axis) AxisValue {
	if a == AxisHorizontal {
		return f.Horizontal
	}
	return f.Vertical
}

// RelativeMotion is an unaccelerated/accelerated delta pair.
type RelativeMotion struct {
	Delta        geometry.PointF
	DeltaUnaccel geometry.PointF
	UTime        uint64
}

// GestureKind enumerates touchpad gesture events.
type GestureKind uint8

const (
	GestureSwipeBegin GestureKind = iota
	GestureSwipeUpdate
	GestureSwipeEnd
	GesturePinchBegin
	GesturePinchUpdate
	GesturePinchEnd
	GestureHoldBegin
	GestureHoldEnd
)

func (k GestureKind) String() string {
	return [...]string{
		"swipe-begin", "swipe-update", "swipe-end",
		"pinch-begin", "pinch-update", "pinch-end",
		"hold-begin", "hold-end",
	}[k]
}

// GestureEvent is one touchpad gesture event. Fields that do not apply to
// the kind are zero.
type GestureEvent struct {
	Kind      GestureKind
	Serial    Serial
	Time      uint32
	Fingers   uint32
	Delta     geometry.PointF
	Scale     float64
	Rotation  float64
	Cancelled bool
}

// KeyboardTarget receives keyboard events.
type KeyboardTarget interface {
	KeyboardEnter(serial Serial, pressed []uint32, mods Modifiers)
	KeyboardLeave(serial Serial)
	Key(serial Serial, time uint32, keycode uint32, state KeyState)
	Modifiers(serial Serial, mods Modifiers)
}

// PointerTarget receives pointer events. Locations are surface-local.
type PointerTarget interface {
	PointerEnter(serial Serial, loc geometry.PointF)
	PointerLeave(serial Serial)
	Motion(time uint32, loc geometry.PointF)
	RelativeMotion(m RelativeMotion)
	Button(serial Serial, time uint32, button uint32, state ButtonState)
	Axis(f AxisFrame)
	PointerFrame()
	Gesture(g GestureEvent)
}

// Display is the protocol layer's global state.
type Display interface {
	// CreateOutputGlobal advertises an output to clients.
	CreateOutputGlobal(name string, size geometry.Size, refreshMHz int)
	// SetSelectionFocus moves data-device focus to client. ok=false clears it.
	SetSelectionFocus(client ClientID, ok bool)
	// FlushClients sends buffered events to every client.
	FlushClients() error
}

// NopDisplay is a Display that does nothing. It is used when no protocol
// server is attached.
type NopDisplay struct{}

func (NopDisplay) CreateOutputGlobal(string, geometry.Size, int) {}
func (NopDisplay) SetSelectionFocus(ClientID, bool)              {}
func (NopDisplay) FlushClients() error                           { return nil }

// Since is the timestamp in milliseconds used for input events.
func Since(start time.Time) uint32 {
	return uint32(time.Since(start).Milliseconds())
}
