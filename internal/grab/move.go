package grab

import (
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/seat"
)

// MoveGrab drags a window with the pointer.
type MoveGrab struct {
	passthrough

	layout  Layout
	start   seat.GrabStartData
	window  protocol.WindowID
	initial geometry.Point
}

// NewMoveGrab starts moving window from its current location.
func NewMoveGrab(layout Layout, start seat.GrabStartData, window protocol.WindowID, initial geometry.Point) *MoveGrab {
	return &MoveGrab{
		layout:  layout,
		start:   start,
		window:  window,
		initial: initial,
	}
}

// Window returns the moved window, zero once the grab ended.
func (g *MoveGrab) Window() protocol.WindowID { return g.window }

func (g *MoveGrab) StartData() seat.GrabStartData { return g.start }

// Motion clears pointer focus and places the window at its initial location
// plus the pointer delta since the press.
func (g *MoveGrab) Motion(h *seat.PointerInnerHandle, _ seat.Focus, ev seat.MotionEvent) {
	h.Motion(seat.Focus{}, ev)

	w, ok := g.layout.Window(g.window)
	if !ok {
		return
	}
	delta := ev.Location.Sub(g.start.Location)
	g.layout.MapWindow(w, g.initial.ToF().Add(delta).Round(), true)
}

func (g *MoveGrab) Button(h *seat.PointerInnerHandle, ev seat.ButtonEvent) {
	endOnRelease(h, ev)
}

func (g *MoveGrab) Unset() {
	g.window = 0
}
