// Package shell holds the xdg-shell role state the window manager keeps per
// toplevel and popup: what was last configured, what the client acked, and
// what it committed.
package shell

import (
	"time"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/render"
)

// WindowState is a toplevel's configure state.
type WindowState struct {
	Size   geometry.Size
	States protocol.ToplevelState
}

type pendingAck struct {
	serial protocol.Serial
	state  WindowState
}

// Window is one toplevel. It is a space element.
type Window struct {
	id       protocol.WindowID
	resource protocol.Toplevel
	serials  *protocol.SerialCounter

	caps    protocol.Capabilities
	minSize geometry.Size

	// pending is what the compositor wants, lastSent what it last told the
	// client, current what the client acked.
	pending  WindowState
	lastSent WindowState
	current  WindowState
	acks     []pendingAck

	committedSize  geometry.Size
	initialSent    bool
	everConfigured bool
}

// NewWindow wraps a toplevel resource.
func NewWindow(id protocol.WindowID, resource protocol.Toplevel, serials *protocol.SerialCounter, caps protocol.Capabilities, minSize geometry.Size) *Window {
	if minSize.W < 1 {
		minSize.W = 1
	}
	if minSize.H < 1 {
		minSize.H = 1
	}
	return &Window{
		id:       id,
		resource: resource,
		serials:  serials,
		caps:     caps,
		minSize:  minSize,
	}
}

func (w *Window) ID() protocol.WindowID               { return w.id }
func (w *Window) Toplevel() protocol.Toplevel         { return w.resource }
func (w *Window) Client() protocol.ClientID           { return w.resource.Client() }
func (w *Window) Alive() bool                         { return w.resource.Alive() }
func (w *Window) Title() string                       { return w.resource.Title() }
func (w *Window) Capabilities() protocol.Capabilities { return w.caps }
func (w *Window) MinSize() geometry.Size              { return w.minSize }

// Pending returns the state the compositor wants the client to have.
func (w *Window) Pending() WindowState { return w.pending }

// Current returns the last state the client acked.
func (w *Window) Current() WindowState { return w.current }

// Size is the size the client committed. Before the first commit it falls
// back to the pending size.
func (w *Window) Size() geometry.Size {
	if !w.committedSize.IsEmpty() {
		return w.committedSize
	}
	return w.pending.Size
}

// Geometry is the window's area at origin.
func (w *Window) Geometry() geometry.Rectangle {
	return geometry.Rectangle{Size: w.Size()}
}

// WithPendingState mutates the pending configure state.
func (w *Window) WithPendingState(fn func(s *WindowState)) {
	fn(&w.pending)
}

// SetActivated updates the pending activated flag and reports whether it
// changed.
func (w *Window) SetActivated(activated bool) bool {
	was := w.pending.States.Has(protocol.StateActivated)
	w.pending.States = w.pending.States.With(protocol.StateActivated, activated)
	return was != activated
}

// SendConfigure sends the pending state unconditionally and returns the
// configure serial.
func (w *Window) SendConfigure() protocol.Serial {
	serial := w.serials.Next()
	w.resource.Configure(protocol.ToplevelConfigure{
		Serial:       serial,
		Size:         w.pending.Size,
		States:       w.pending.States,
		Capabilities: w.caps,
	})
	w.lastSent = w.pending
	w.acks = append(w.acks, pendingAck{serial: serial, state: w.pending})
	w.everConfigured = true
	return serial
}

// SendPendingConfigure sends a configure only when the pending state differs
// from the last one sent.
func (w *Window) SendPendingConfigure() (protocol.Serial, bool) {
	if w.everConfigured && w.pending == w.lastSent {
		return 0, false
	}
	return w.SendConfigure(), true
}

// AckConfigure applies the state of an acked configure. Unknown serials are
// rejected.
func (w *Window) AckConfigure(serial protocol.Serial) bool {
	for i, a := range w.acks {
		if a.serial == serial {
			w.current = a.state
			w.acks = w.acks[i+1:]
			return true
		}
	}
	return false
}

// Commit records the committed size. The first commit of a role sends the
// initial configure; it reports whether it did.
func (w *Window) Commit(size geometry.Size) bool {
	w.committedSize = size
	if w.initialSent {
		return false
	}
	w.initialSent = true
	w.SendConfigure()
	return true
}

// InitialConfigureSent reports whether the initial configure went out.
func (w *Window) InitialConfigureSent() bool { return w.initialSent }

// SendFrame fires the window's frame callbacks.
func (w *Window) SendFrame(elapsed time.Duration) {
	w.resource.FrameDone(elapsed)
}

// SendClose asks the client to close the window.
func (w *Window) SendClose() {
	w.resource.Close()
}

// RenderElement draws the window at loc.
func (w *Window) RenderElement(loc geometry.Point, scale float64) render.Element {
	return render.SurfaceElement{
		Window:     uint64(w.id),
		Geo:        geometry.Rectangle{Loc: loc, Size: w.Size()}.Scale(scale),
		Title:      w.Title(),
		Activated:  w.pending.States.Has(protocol.StateActivated),
		Fullscreen: w.current.States.Has(protocol.StateFullscreen),
	}
}
