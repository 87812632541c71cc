package compositor

import (
	"time"

	"github.com/bnema/twm/internal/eventloop"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/grab"
	"github.com/bnema/twm/internal/ipc"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/shell"
)

var _ ipc.MessageHandler = (*State)(nil)

// call runs fn on the event loop and waits for it. It is how the control
// socket reaches the compositor state.
func (s *State) call(fn func() error) error {
	done := make(chan error, 1)
	if err := s.loop.Insert(func() { done <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-s.loop.Done():
		select {
		case err := <-done:
			return err
		default:
			return eventloop.ErrStopped
		}
	}
}

// HandleStatus snapshots the compositor state.
func (s *State) HandleStatus() (*ipc.Status, error) {
	var status *ipc.Status
	err := s.call(func() error {
		status = s.status()
		return nil
	})
	return status, err
}

func (s *State) HandleQuit() error {
	return s.call(func() error {
		wmLog.Info("Quit requested over IPC")
		s.Stop()
		return nil
	})
}

func (s *State) HandleSpawn(command string) error {
	if command == "" {
		command = s.opts.Terminal
	}
	return s.call(func() error { return s.Spawn(command) })
}

// HandleClose asks a window to close. Zero selects the focused window.
func (s *State) HandleClose(window uint64) error {
	return s.call(func() error {
		var (
			w  *shell.Window
			ok bool
		)
		if window == 0 {
			w, ok = s.focusedWindow()
		} else {
			w, ok = s.Window(protocol.WindowID(window))
		}
		if !ok {
			return ErrNoWindow
		}
		w.SendClose()
		return nil
	})
}

func (s *State) HandleNewWindow(title string) (uint64, error) {
	var id protocol.WindowID
	err := s.call(func() error {
		id = s.NewLoopbackWindow(title).ID()
		return nil
	})
	return uint64(id), err
}

// NewLoopbackWindow maps an in-process window. It acks every configure and
// commits the configured size, or the default size when the compositor
// leaves it to the client. A close request destroys it.
func (s *State) NewLoopbackWindow(title string) *shell.Window {
	lb := protocol.NewLoopback(s.NewClient(), title)
	w := s.NewToplevel(lb)
	id := w.ID()

	lb.OnConfigure = func(c protocol.ToplevelConfigure) {
		size := c.Size
		if size.IsEmpty() {
			size = s.opts.DefaultSize
		}
		s.loop.Post(func() {
			s.AckConfigure(id, c.Serial)
			s.Commit(id, size)
		})
	}
	lb.OnClose = func() {
		lb.Destroy()
		s.loop.Post(func() { s.ToplevelDestroyed(id) })
	}

	s.Commit(id, geometry.Size{})
	return w
}

func (s *State) status() *ipc.Status {
	st := &ipc.Status{
		Frames:   s.frames,
		Uptime:   time.Since(s.start).Round(time.Second).String(),
		Bindings: s.bindings.Describe(),
		Grab:     "none",
	}
	if s.backend != nil {
		st.Backend = s.backend.Kind().String()
	}
	if s.output != nil {
		st.Output = s.output.Name()
		if mode, ok := s.output.CurrentMode(); ok {
			st.Mode = mode.String()
		}
	}
	if s.seat != nil {
		st.Seat = s.seat.Name()
		ptr := s.seat.Pointer()
		loc := ptr.Location()
		st.PointerX, st.PointerY = loc.X, loc.Y
		st.Focus = uint64(s.seat.Keyboard().Focus())
		st.Grab = grabName(ptr.Grab(), ptr.IsGrabbed())
	}

	elements := s.space.Elements()
	for i := len(elements) - 1; i >= 0; i-- {
		w := elements[i]
		geo, _ := s.space.ElementGeometry(w)
		pending := w.Pending().States
		current := w.Current().States
		st.Windows = append(st.Windows, ipc.WindowStatus{
			ID:         uint64(w.ID()),
			Title:      w.Title(),
			X:          geo.Loc.X,
			Y:          geo.Loc.Y,
			Width:      geo.Size.W,
			Height:     geo.Size.H,
			Focused:    uint64(w.ID()) == st.Focus,
			Activated:  pending.Has(protocol.StateActivated),
			Fullscreen: current.Has(protocol.StateFullscreen),
			Maximized:  current.Has(protocol.StateMaximized),
		})
	}
	return st
}

func grabName(g any, grabbed bool) string {
	switch g.(type) {
	case *grab.MoveGrab:
		return "move"
	case *grab.ResizeGrab:
		return "resize"
	}
	if grabbed {
		return "click"
	}
	return "none"
}
