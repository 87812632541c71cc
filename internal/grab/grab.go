// Package grab implements the interactive pointer grabs that move and
// resize windows.
package grab

import (
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/seat"
	"github.com/bnema/twm/internal/shell"
)

// Layout is the part of the layout model a grab works on.
type Layout interface {
	Window(id protocol.WindowID) (*shell.Window, bool)
	MapWindow(w *shell.Window, loc geometry.Point, activate bool)
}

// passthrough forwards the events a grab does not care about.
type passthrough struct{}

func (passthrough) RelativeMotion(h *seat.PointerInnerHandle, _ seat.Focus, ev protocol.RelativeMotion) {
	h.RelativeMotion(ev)
}

func (passthrough) Axis(h *seat.PointerInnerHandle, frame protocol.AxisFrame) {
	h.Axis(frame)
}

func (passthrough) Frame(h *seat.PointerInnerHandle) {
	h.Frame()
}

func (passthrough) Gesture(h *seat.PointerInnerHandle, ev protocol.GestureEvent) {
	h.Gesture(ev)
}

// endOnRelease forwards the button and ends the grab once no button is
// held anymore.
func endOnRelease(h *seat.PointerInnerHandle, ev seat.ButtonEvent) {
	h.Button(ev)
	if len(h.CurrentPressed()) == 0 {
		h.UnsetGrab()
	}
}
