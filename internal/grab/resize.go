package grab

import (
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/seat"
	"github.com/bnema/twm/internal/shell"
)

// ResizeGrab resizes a window from one edge or corner.
type ResizeGrab struct {
	passthrough

	layout  Layout
	start   seat.GrabStartData
	window  protocol.WindowID
	edges   protocol.ResizeEdge
	initial geometry.Rectangle
	last    geometry.Size
}

// NewResizeGrab starts resizing window. initial is the window's global
// geometry at the time of the press.
func NewResizeGrab(layout Layout, start seat.GrabStartData, window protocol.WindowID, edges protocol.ResizeEdge, initial geometry.Rectangle) *ResizeGrab {
	return &ResizeGrab{
		layout:  layout,
		start:   start,
		window:  window,
		edges:   edges,
		initial: initial,
		last:    initial.Size,
	}
}

// Window returns the resized window, zero once the grab ended.
func (g *ResizeGrab) Window() protocol.WindowID { return g.window }

// Edges returns the edges being dragged.
func (g *ResizeGrab) Edges() protocol.ResizeEdge { return g.edges }

func (g *ResizeGrab) StartData() seat.GrabStartData { return g.start }

// Motion computes the new size from the pointer delta, asks the client for
// it, and keeps the edge opposite to the dragged one in place.
func (g *ResizeGrab) Motion(h *seat.PointerInnerHandle, _ seat.Focus, ev seat.MotionEvent) {
	h.Motion(seat.Focus{}, ev)

	w, ok := g.layout.Window(g.window)
	if !ok {
		return
	}

	delta := ev.Location.Sub(g.start.Location).Round()
	width, height := g.initial.Size.W, g.initial.Size.H
	switch {
	case g.edges.Has(protocol.EdgeLeft):
		width -= delta.X
	case g.edges.Has(protocol.EdgeRight):
		width += delta.X
	}
	switch {
	case g.edges.Has(protocol.EdgeTop):
		height -= delta.Y
	case g.edges.Has(protocol.EdgeBottom):
		height += delta.Y
	}

	floor := w.MinSize()
	g.last = geometry.Size{W: max(width, floor.W), H: max(height, floor.H)}

	w.WithPendingState(func(s *shell.WindowState) {
		s.Size = g.last
		s.States |= protocol.StateResizing
	})
	w.SendPendingConfigure()

	loc := g.initial.Loc
	if g.edges.Has(protocol.EdgeLeft) {
		loc.X = g.initial.Loc.X + g.initial.Size.W - g.last.W
	}
	if g.edges.Has(protocol.EdgeTop) {
		loc.Y = g.initial.Loc.Y + g.initial.Size.H - g.last.H
	}
	g.layout.MapWindow(w, loc, true)
}

func (g *ResizeGrab) Button(h *seat.PointerInnerHandle, ev seat.ButtonEvent) {
	endOnRelease(h, ev)
}

// Unset drops the Resizing state and lets the client know.
func (g *ResizeGrab) Unset() {
	if w, ok := g.layout.Window(g.window); ok {
		w.WithPendingState(func(s *shell.WindowState) {
			s.States &^= protocol.StateResizing
		})
		w.SendPendingConfigure()
	}
	g.window = 0
}
