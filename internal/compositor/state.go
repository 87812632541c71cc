// Package compositor holds the window manager state and every policy that
// acts on it: input dispatch, xdg-shell requests, the redraw scheduler and
// the key-bound actions. All of it runs on the event loop.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/bnema/twm/internal/backend"
	"github.com/bnema/twm/internal/eventloop"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/logger"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/seat"
	"github.com/bnema/twm/internal/shell"
	"github.com/bnema/twm/internal/space"
)

var wmLog = logger.WithPrefix("compositor")

var (
	// ErrNoOutput is returned from Run when the last output was lost.
	ErrNoOutput = errors.New("no output left")
	// ErrNoWindow is returned by control requests naming no live window.
	ErrNoWindow = errors.New("no such window")
)

// DefaultCapabilities are advertised to every toplevel.
const DefaultCapabilities = protocol.CapFullscreen | protocol.CapMaximize | protocol.CapWindowMenu

// Options configure a State.
type Options struct {
	Bindings     input.BindingConfig
	Terminal     string
	Capabilities protocol.Capabilities
	CursorSize   int
	CursorColor  color.RGBA
	Repeat       seat.RepeatInfo
	// MinSize floors interactive resizes.
	MinSize geometry.Size
	// DefaultSize is committed by in-process windows that get no size.
	DefaultSize geometry.Size
	Keymap      *seat.Keymap
	Spawner     Spawner
}

// State is the compositor. Apart from the control handlers, its methods must
// only be called on the event loop.
type State struct {
	loop    *eventloop.Loop
	display protocol.Display
	opts    Options
	start   time.Time

	serials    protocol.SerialCounter
	space      *space.Space[*shell.Window]
	windows    map[protocol.WindowID]*shell.Window
	nextWindow protocol.WindowID
	nextClient protocol.ClientID
	popups     *shell.PopupManager
	bindings   *input.Bindings

	backend *backend.Backend
	seat    *seat.Seat
	output  *space.Output

	// redrawQueued and waitingForVBlank form the redraw state machine:
	// idle, queued, in flight. redrawPending remembers a request made while
	// a frame was in flight.
	redrawQueued     bool
	waitingForVBlank bool
	redrawPending    bool
	frames           uint64
}

// New creates the compositor state. The backend is attached separately since
// it needs the state as its host.
func New(loop *eventloop.Loop, display protocol.Display, opts Options) (*State, error) {
	bindings, err := input.NewBindings(opts.Bindings)
	if err != nil {
		return nil, fmt.Errorf("invalid key bindings: %w", err)
	}
	if display == nil {
		display = protocol.NopDisplay{}
	}
	if opts.Terminal == "" {
		opts.Terminal = "foot"
	}
	if opts.Capabilities == 0 {
		opts.Capabilities = DefaultCapabilities
	}
	if opts.CursorSize <= 0 {
		opts.CursorSize = 16
	}
	if opts.CursorColor == (color.RGBA{}) {
		opts.CursorColor = color.RGBA{R: 0xff, G: 0xcc, A: 0xff}
	}
	if opts.DefaultSize.IsEmpty() {
		opts.DefaultSize = geometry.Size{W: 400, H: 240}
	}
	if opts.Spawner == nil {
		opts.Spawner = CommandSpawner{}
	}

	return &State{
		loop:     loop,
		display:  display,
		opts:     opts,
		start:    time.Now(),
		space:    space.New[*shell.Window](),
		windows:  make(map[protocol.WindowID]*shell.Window),
		popups:   shell.NewPopupManager(),
		bindings: bindings,
	}, nil
}

// Attach creates the seat for b and lets b map its output.
func (s *State) Attach(b *backend.Backend) {
	s.backend = b
	s.seat = seat.New(b.SeatName(), s, s.opts.Keymap, s.opts.Repeat)
	b.Init(s)
	wmLog.Info("Backend attached", "kind", b.Kind(), "seat", s.seat.Name(), "bindings", s.bindings.Describe())
}

// Run dispatches the event loop until it stops.
func (s *State) Run(ctx context.Context) error {
	return s.loop.Run(ctx, s.Tail)
}

// Tail runs at the end of every loop iteration.
func (s *State) Tail() {
	for id, w := range s.windows {
		if !w.Alive() {
			s.ToplevelDestroyed(id)
		}
	}
	s.space.Refresh()
	s.popups.Cleanup(func(id protocol.WindowID) bool {
		_, ok := s.windows[id]
		return ok
	})
	if err := s.display.FlushClients(); err != nil {
		wmLog.Warnf("Failed to flush clients: %v", err)
	}
}

// Stop ends the event loop.
func (s *State) Stop() {
	s.loop.Stop()
}

func (s *State) Loop() *eventloop.Loop             { return s.loop }
func (s *State) Seat() *seat.Seat                   { return s.seat }
func (s *State) Space() *space.Space[*shell.Window] { return s.space }
func (s *State) Output() *space.Output              { return s.output }

// Window returns a live window.
func (s *State) Window(id protocol.WindowID) (*shell.Window, bool) {
	w, ok := s.windows[id]
	if !ok || !w.Alive() {
		return nil, false
	}
	return w, true
}

// MapWindow places w in the space.
func (s *State) MapWindow(w *shell.Window, loc geometry.Point, activate bool) {
	s.space.MapElement(w, loc, activate)
}

func (s *State) KeyboardTarget(id protocol.WindowID) (protocol.KeyboardTarget, bool) {
	w, ok := s.Window(id)
	if !ok {
		return nil, false
	}
	return w.Toplevel(), true
}

func (s *State) PointerTarget(id protocol.WindowID) (protocol.PointerTarget, bool) {
	w, ok := s.Window(id)
	if !ok {
		return nil, false
	}
	return w.Toplevel(), true
}

// MapOutput maps o. The first output becomes the active one.
func (s *State) MapOutput(o *space.Output, loc geometry.Point) {
	s.space.MapOutput(o, loc)
	if s.output == nil {
		s.output = o
	}
	wmLog.Infof("Mapped output %s at %s", o, loc)
}

// CreateOutputGlobal advertises o to clients.
func (s *State) CreateOutputGlobal(o *space.Output) {
	mode, _ := o.CurrentMode()
	s.display.CreateOutputGlobal(o.Name(), mode.Size, mode.RefreshMHz)
}

// OutputLost drops o. Losing the last output stops the loop with err.
func (s *State) OutputLost(o *space.Output, err error) {
	wmLog.Error("Output lost", "output", o.Name(), "err", err)
	s.space.UnmapOutput(o)
	if s.output == o {
		s.output = nil
		s.waitingForVBlank = false
		if outputs := s.space.Outputs(); len(outputs) > 0 {
			s.output = outputs[0]
		}
	}
	if s.output == nil {
		s.loop.StopWithError(fmt.Errorf("%w: %w", ErrNoOutput, err))
	}
}

// activeOutputGeometry is the geometry of the active output.
func (s *State) activeOutputGeometry() (geometry.Rectangle, bool) {
	if s.output == nil {
		return geometry.Rectangle{}, false
	}
	return s.space.OutputGeometry(s.output)
}

// surfaceUnder returns the pointer focus for p.
func (s *State) surfaceUnder(p geometry.PointF) seat.Focus {
	w, loc, ok := s.space.ElementUnder(p)
	if !ok {
		return seat.Focus{}
	}
	return seat.Focus{Window: w.ID(), Origin: loc}
}

// setKeyboardFocus moves keyboard focus and the data device focus with it.
func (s *State) setKeyboardFocus(id protocol.WindowID, serial protocol.Serial) {
	kb := s.seat.Keyboard()
	if kb.Focus() == id {
		return
	}
	kb.SetFocus(id, serial)
	if w, ok := s.Window(id); ok {
		s.display.SetSelectionFocus(w.Client(), true)
		return
	}
	s.display.SetSelectionFocus(0, false)
}

// focusedWindow returns the window with keyboard focus.
func (s *State) focusedWindow() (*shell.Window, bool) {
	if s.seat == nil {
		return nil, false
	}
	return s.Window(s.seat.Keyboard().Focus())
}
