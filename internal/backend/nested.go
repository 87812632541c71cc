package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/bnema/twm/internal/eventloop"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/logger"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/render"
	"github.com/bnema/twm/internal/seat"
	"github.com/bnema/twm/internal/space"
	"github.com/gdamore/tcell/v2"
	evdev "github.com/gvalkov/golang-evdev"
)

const (
	nestedRefreshMHz = 60_000
	nestedTick       = 16 * time.Millisecond
)

var nestedLog = logger.WithPrefix("backend/nested")

// Nested runs the compositor inside a terminal. The tcell screen is the
// output: one cell covers Cell() logical pixels.
type Nested struct {
	loop    *eventloop.Loop
	host    Host
	screen  tcell.Screen
	painter *render.CellPainter
	keymap  *seat.Keymap
	output  *space.Output
	damage  render.DamageTracker
	start   time.Time

	events  chan tcell.Event
	quit    chan struct{}
	once    sync.Once
	timer   *eventloop.Timer
	ticked  bool
	buttons tcell.ButtonMask
	lastPos geometry.Point
}

// NewNested initializes screen and creates the nested output.
func NewNested(loop *eventloop.Loop, host Host, screen tcell.Screen, cell geometry.Size, keymap *seat.Keymap) (*Nested, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	if keymap == nil {
		keymap = seat.USKeymap()
	}

	n := &Nested{
		loop:    loop,
		host:    host,
		screen:  screen,
		painter: render.NewCellPainter(screen, cell),
		keymap:  keymap,
		start:   time.Now(),
		events:  make(chan tcell.Event, 64),
		quit:    make(chan struct{}),
		lastPos: geometry.Point{X: -1, Y: -1},
	}

	n.output = space.NewOutput("nested", space.PhysicalProperties{
		Subpixel: "unknown",
		Make:     "twm",
		Model:    "Nested",
	})
	mode := n.mode()
	transform := geometry.TransformFlipped180
	n.output.ChangeCurrentState(space.StateChange{Mode: &mode, Transform: &transform})
	n.output.SetPreferred(mode)
	return n, nil
}

func (n *Nested) mode() space.Mode {
	return space.Mode{Size: n.painter.Size(), RefreshMHz: nestedRefreshMHz}
}

func (n *Nested) SeatName() string          { return "nested" }
func (n *Nested) Renderer() render.Renderer { return n.painter }
func (n *Nested) Output() *space.Output     { return n.output }
func (n *Nested) Screen() tcell.Screen      { return n.screen }

// Init maps the output and starts polling the terminal.
func (n *Nested) Init(layout OutputLayout) {
	layout.MapOutput(n.output, geometry.Point{})
	layout.CreateOutputGlobal(n.output)

	go n.poll()
	n.timer = n.loop.InsertTimer(0, n.tick)
}

// poll moves terminal events into the buffered channel drained by tick. A
// nil event means the screen was finalized.
func (n *Nested) poll() {
	for {
		ev := n.screen.PollEvent()
		if ev == nil {
			n.loop.Post(func() {
				nestedLog.Info("Terminal screen closed")
				n.host.Stop()
			})
			return
		}
		select {
		case n.events <- ev:
		case <-n.quit:
			return
		}
	}
}

func (n *Nested) tick() eventloop.TimeoutAction {
	if !n.ticked {
		n.ticked = true
		n.host.QueueRedraw()
	}
	for {
		select {
		case ev := <-n.events:
			n.handle(ev)
		case <-n.quit:
			return eventloop.Drop
		default:
			return eventloop.ToDuration(nestedTick)
		}
	}
}

func (n *Nested) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		n.resized()
	case *tcell.EventMouse:
		n.mouse(ev)
	case *tcell.EventKey:
		n.key(ev)
	}
}

func (n *Nested) resized() {
	mode := n.mode()
	n.output.ChangeCurrentState(space.StateChange{Mode: &mode})
	n.damage.Reset()
	nestedLog.Debugf("Output resized to %s", mode)
	n.host.QueueRedraw()
}

func (n *Nested) now() uint32 {
	return protocol.Since(n.start)
}

var mouseButtons = []struct {
	mask tcell.ButtonMask
	code uint32
}{
	{tcell.Button1, evdev.BTN_LEFT},
	{tcell.Button2, evdev.BTN_RIGHT},
	{tcell.Button3, evdev.BTN_MIDDLE},
}

func (n *Nested) mouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	ts := n.now()

	if pos := (geometry.Point{X: x, Y: y}); pos != n.lastPos {
		n.lastPos = pos
		cell := n.painter.Cell()
		size := n.painter.Size()
		if !size.IsEmpty() {
			n.host.ProcessInput(input.PointerMotionAbsoluteEvent{
				Time: ts,
				X:    (float64(x*cell.W) + float64(cell.W)/2) / float64(size.W),
				Y:    (float64(y*cell.H) + float64(cell.H)/2) / float64(size.H),
			})
		}
	}

	buttons := ev.Buttons()
	for _, b := range mouseButtons {
		was, is := n.buttons&b.mask != 0, buttons&b.mask != 0
		if was == is {
			continue
		}
		state := protocol.ButtonReleased
		if is {
			state = protocol.ButtonPressed
		}
		n.host.ProcessInput(input.PointerButtonEvent{Time: ts, Button: b.code, State: state})
	}
	n.buttons = buttons

	if axis, ok := wheel(buttons); ok {
		axis.Time = ts
		n.host.ProcessInput(axis)
	}
}

func wheel(buttons tcell.ButtonMask) (input.PointerAxisEvent, bool) {
	ev := input.PointerAxisEvent{Source: protocol.AxisSourceWheel}
	switch {
	case buttons&tcell.WheelUp != 0:
		ev.Vertical.V120 = input.Float(-120)
	case buttons&tcell.WheelDown != 0:
		ev.Vertical.V120 = input.Float(120)
	case buttons&tcell.WheelLeft != 0:
		ev.Horizontal.V120 = input.Float(-120)
	case buttons&tcell.WheelRight != 0:
		ev.Horizontal.V120 = input.Float(120)
	default:
		return ev, false
	}
	return ev, true
}

// key turns a terminal key into the keycodes a keyboard would have sent:
// modifier presses, the key press and release, then modifier releases.
func (n *Nested) key(ev *tcell.EventKey) {
	sym, ok := terminalKeysym(ev)
	if !ok {
		return
	}
	code, shift, ok := n.keymap.Keycode(sym)
	if !ok {
		nestedLog.Debugf("No keycode for %s", sym)
		return
	}

	mods := terminalModifiers(ev.Modifiers())
	if shift {
		mods |= protocol.ModShift
	}
	var held []uint32
	for _, m := range []protocol.Modifiers{protocol.ModCtrl, protocol.ModAlt, protocol.ModShift, protocol.ModLogo} {
		if mods.Has(m) {
			held = append(held, seat.ModifierKeycode(m))
		}
	}

	ts := n.now()
	send := func(code uint32, state protocol.KeyState) {
		n.host.ProcessInput(input.KeyboardKeyEvent{Time: ts, Keycode: code, State: state})
	}
	for _, c := range held {
		send(c, protocol.KeyPressed)
	}
	send(code, protocol.KeyPressed)
	send(code, protocol.KeyReleased)
	for i := len(held) - 1; i >= 0; i-- {
		send(held[i], protocol.KeyReleased)
	}
}

func terminalModifiers(m tcell.ModMask) protocol.Modifiers {
	var mods protocol.Modifiers
	if m&tcell.ModShift != 0 {
		mods |= protocol.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= protocol.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= protocol.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= protocol.ModLogo
	}
	return mods
}

var terminalKeys = map[tcell.Key]input.Keysym{
	tcell.KeyEnter:      input.KeyReturn,
	tcell.KeyTab:        input.KeyTab,
	tcell.KeyBackspace:  input.KeyBackSpace,
	tcell.KeyBackspace2: input.KeyBackSpace,
	tcell.KeyEscape:     input.KeyEscape,
	tcell.KeyDelete:     input.KeyDelete,
	tcell.KeyHome:       input.KeyHome,
	tcell.KeyEnd:        input.KeyEnd,
	tcell.KeyUp:         input.KeyUp,
	tcell.KeyDown:       input.KeyDown,
	tcell.KeyLeft:       input.KeyLeft,
	tcell.KeyRight:      input.KeyRight,
}

func terminalKeysym(ev *tcell.EventKey) (input.Keysym, bool) {
	k := ev.Key()
	if sym, ok := terminalKeys[k]; ok {
		return sym, true
	}
	switch {
	case k == tcell.KeyRune:
		return input.Keysym(ev.Rune()), true
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return input.KeyF(int(k-tcell.KeyF1) + 1), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return input.Keysym('a' + rune(k-tcell.KeyCtrlA)), true
	}
	return input.KeyNoSymbol, false
}

// Render paints the frame into the terminal. The terminal has no vblank, so
// the frame is complete when Render returns.
func (n *Nested) Render(elements []render.Element) (bool, error) {
	if !n.damage.Damaged(n.painter.Size(), elements) {
		return false, nil
	}
	if err := n.painter.RenderFrame(elements, clearColor); err != nil {
		n.damage.Reset()
		return false, fmt.Errorf("failed to render nested frame: %w", err)
	}
	return false, nil
}

// Close stops polling and restores the terminal.
func (n *Nested) Close() error {
	n.once.Do(func() {
		close(n.quit)
		if n.timer != nil {
			n.timer.Cancel()
		}
		n.screen.Fini()
	})
	return nil
}
