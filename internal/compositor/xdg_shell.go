package compositor

import (
	"fmt"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/grab"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/seat"
	"github.com/bnema/twm/internal/shell"
	"github.com/bnema/twm/internal/space"
)

// NewClient allocates a client ID for an in-process or protocol client.
func (s *State) NewClient() protocol.ClientID {
	s.nextClient++
	return s.nextClient
}

// NewToplevel tracks a new toplevel and maps it at the origin without
// activating it.
func (s *State) NewToplevel(resource protocol.Toplevel) *shell.Window {
	s.nextWindow++
	w := shell.NewWindow(s.nextWindow, resource, &s.serials, s.opts.Capabilities, s.opts.MinSize)
	s.windows[w.ID()] = w
	s.space.MapElement(w, geometry.Point{}, false)
	wmLog.Debug("New toplevel", "window", w.ID(), "client", w.Client(), "title", w.Title())
	return w
}

// Commit handles a surface commit of a toplevel. The first commit sends the
// initial configure.
func (s *State) Commit(id protocol.WindowID, size geometry.Size) {
	w, ok := s.Window(id)
	if !ok {
		return
	}
	if w.Commit(size) {
		wmLog.Debugf("Sent initial configure to window %d", id)
	}
	s.QueueRedraw()
}

// AckConfigure applies an acked configure.
func (s *State) AckConfigure(id protocol.WindowID, serial protocol.Serial) {
	w, ok := s.Window(id)
	if !ok {
		return
	}
	if !w.AckConfigure(serial) {
		wmLog.Debugf("Window %d acked unknown configure serial %d", id, serial)
	}
}

// ToplevelDestroyed forgets a toplevel whose role was destroyed.
func (s *State) ToplevelDestroyed(id protocol.WindowID) {
	w, ok := s.windows[id]
	if !ok {
		return
	}
	delete(s.windows, id)
	s.space.UnmapElement(w)
	if s.seat != nil && s.seat.Keyboard().Focus() == id {
		s.setKeyboardFocus(0, s.serials.Next())
	}
	wmLog.Debug("Toplevel destroyed", "window", id)
	s.QueueRedraw()
}

// NewPopup tracks a popup of parent and places it inside the output.
func (s *State) NewPopup(resource protocol.Popup, parent protocol.WindowID, positioner protocol.Positioner, offset geometry.Point) (*shell.Popup, error) {
	if _, ok := s.Window(parent); !ok {
		return nil, fmt.Errorf("popup parent %d: %w", parent, ErrNoWindow)
	}
	p := shell.NewPopup(resource, parent, positioner, &s.serials, offset)
	s.unconstrainPopup(p)
	s.popups.Track(p)
	return p, nil
}

// PopupCommit handles a surface commit of a popup.
func (s *State) PopupCommit(resource protocol.Popup) {
	s.popups.Commit(resource)
	s.QueueRedraw()
}

// PopupDestroyed forgets a popup.
func (s *State) PopupDestroyed(resource protocol.Popup) {
	s.popups.Remove(resource)
	s.QueueRedraw()
}

// RepositionRequest applies a new positioner and answers with the token.
func (s *State) RepositionRequest(resource protocol.Popup, positioner protocol.Positioner, token uint32) {
	p, ok := s.popups.Find(resource)
	if !ok {
		return
	}
	p.SetPositioner(positioner)
	s.unconstrainPopup(p)
	p.SendRepositioned(token)
}

// Popups returns the tracked popups.
func (s *State) Popups() []*shell.Popup {
	return s.popups.Popups()
}

func (s *State) unconstrainPopup(p *shell.Popup) {
	w, ok := s.Window(p.Parent())
	if !ok || s.output == nil {
		return
	}
	loc, ok := s.space.ElementLocation(w)
	if !ok {
		return
	}
	target, ok := s.space.OutputGeometry(s.output)
	if !ok {
		return
	}
	target.Loc = target.Loc.Sub(p.Offset()).Sub(w.Geometry().Loc).Sub(loc)
	p.Unconstrain(target)
}

// checkGrab returns the start data of the implicit grab that allows id to
// start an interactive move or resize with serial.
func (s *State) checkGrab(id protocol.WindowID, serial protocol.Serial) (seat.GrabStartData, bool) {
	w, ok := s.Window(id)
	if !ok || s.seat == nil {
		return seat.GrabStartData{}, false
	}
	ptr := s.seat.Pointer()
	if ptr.Grab() != nil || !ptr.HasGrab(serial) {
		return seat.GrabStartData{}, false
	}
	start, ok := ptr.GrabStartData()
	if !ok || start.Focus.IsNone() {
		return seat.GrabStartData{}, false
	}
	focus, ok := s.Window(start.Focus.Window)
	if !ok || focus.Client() != w.Client() {
		return seat.GrabStartData{}, false
	}
	return start, true
}

// MoveRequest starts an interactive move.
func (s *State) MoveRequest(id protocol.WindowID, serial protocol.Serial) {
	start, ok := s.checkGrab(id, serial)
	if !ok {
		wmLog.Debugf("Ignoring move request of window %d with serial %d", id, serial)
		return
	}
	w, _ := s.Window(id)
	loc, ok := s.space.ElementLocation(w)
	if !ok {
		return
	}
	s.seat.Pointer().SetGrab(grab.NewMoveGrab(s, start, id, loc))
}

// ResizeRequest starts an interactive resize from edges.
func (s *State) ResizeRequest(id protocol.WindowID, serial protocol.Serial, edges protocol.ResizeEdge) {
	start, ok := s.checkGrab(id, serial)
	if !ok {
		wmLog.Debugf("Ignoring resize request of window %d with serial %d", id, serial)
		return
	}
	w, _ := s.Window(id)
	loc, ok := s.space.ElementLocation(w)
	if !ok {
		return
	}
	initial := geometry.Rectangle{Loc: loc, Size: w.Geometry().Size}

	w.WithPendingState(func(st *shell.WindowState) {
		st.States |= protocol.StateResizing
	})
	w.SendPendingConfigure()

	s.seat.Pointer().SetGrab(grab.NewResizeGrab(s, start, id, edges, initial))
}

// FullscreenRequest makes a window with the fullscreen capability cover the
// requested output, or the first output it overlaps. Other windows keep their
// geometry. A configure is always sent.
func (s *State) FullscreenRequest(id protocol.WindowID, output *space.Output) {
	w, ok := s.Window(id)
	if !ok {
		return
	}
	if w.Capabilities().Has(protocol.CapFullscreen) {
		if output == nil {
			if outputs := s.space.OutputsForElement(w); len(outputs) > 0 {
				output = outputs[0]
			}
		}
	} else {
		output = nil
	}
	s.coverOutput(w, output, protocol.StateFullscreen)
	w.SendConfigure()
}

// MaximizeRequest makes the window cover the active output when it may be
// maximized. A configure is always sent.
func (s *State) MaximizeRequest(id protocol.WindowID) {
	w, ok := s.Window(id)
	if !ok {
		return
	}
	if w.Capabilities().Has(protocol.CapMaximize) {
		s.coverOutput(w, s.output, protocol.StateMaximized)
	}
	w.SendConfigure()
}

func (s *State) coverOutput(w *shell.Window, o *space.Output, state protocol.ToplevelState) {
	if o == nil {
		return
	}
	og, ok := s.space.OutputGeometry(o)
	if !ok {
		return
	}
	w.WithPendingState(func(st *shell.WindowState) {
		st.States |= state
		st.Size = og.Size
	})
	s.space.MapElement(w, og.Loc, true)
}

// UnfullscreenRequest leaves fullscreen when the client is in it.
func (s *State) UnfullscreenRequest(id protocol.WindowID) {
	s.leaveState(id, protocol.StateFullscreen)
}

// UnmaximizeRequest leaves the maximized state when the client is in it.
func (s *State) UnmaximizeRequest(id protocol.WindowID) {
	s.leaveState(id, protocol.StateMaximized)
}

func (s *State) leaveState(id protocol.WindowID, state protocol.ToplevelState) {
	w, ok := s.Window(id)
	if !ok || !w.Current().States.Has(state) {
		return
	}
	w.WithPendingState(func(st *shell.WindowState) {
		st.States &^= state
		st.Size = geometry.Size{}
	})
	w.SendPendingConfigure()
}
