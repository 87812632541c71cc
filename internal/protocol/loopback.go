package protocol

import (
	"slices"
	"sync"
	"time"

	"github.com/bnema/twm/internal/geometry"
)

// KeyRecord is a key event received by a Loopback client.
type KeyRecord struct {
	Serial  Serial
	Keycode uint32
	State   KeyState
}

// ButtonRecord is a button event received by a Loopback client.
type ButtonRecord struct {
	Serial Serial
	Button uint32
	State  ButtonState
}

// Loopback is an in-process toplevel client. It records everything the
// compositor sends it and can react to configures and close requests through
// the OnConfigure and OnClose hooks.
//
// All methods are safe for concurrent use; the compositor calls it from the
// event loop while tests and the control socket inspect it from elsewhere.
type Loopback struct {
	// OnConfigure runs after a configure is recorded.
	OnConfigure func(c ToplevelConfigure)
	// OnClose runs after a close request is recorded.
	OnClose func()

	mu           sync.Mutex
	client       ClientID
	title        string
	dead         bool
	configures   []ToplevelConfigure
	keys         []KeyRecord
	mods         Modifiers
	keyboard     bool
	pointer      bool
	pointerLoc   geometry.PointF
	buttons      []ButtonRecord
	axes         []AxisFrame
	gestures     []GestureEvent
	motions      int
	relMotions   int
	frames       int
	frameDone    int
	lastFrameAt  time.Duration
	closeRequest bool
}

// NewLoopback creates a live loopback client.
func NewLoopback(client ClientID, title string) *Loopback {
	return &Loopback{client: client, title: title}
}

func (l *Loopback) Client() ClientID { return l.client }

func (l *Loopback) Title() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.title
}

// SetTitle changes the window title.
func (l *Loopback) SetTitle(title string) {
	l.mu.Lock()
	l.title = title
	l.mu.Unlock()
}

func (l *Loopback) Alive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.dead
}

// Destroy marks the role as destroyed.
func (l *Loopback) Destroy() {
	l.mu.Lock()
	l.dead = true
	l.mu.Unlock()
}

func (l *Loopback) Configure(c ToplevelConfigure) {
	l.mu.Lock()
	l.configures = append(l.configures, c)
	hook := l.OnConfigure
	l.mu.Unlock()

	if hook != nil {
		hook(c)
	}
}

func (l *Loopback) Close() {
	l.mu.Lock()
	l.closeRequest = true
	hook := l.OnClose
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (l *Loopback) FrameDone(elapsed time.Duration) {
	l.mu.Lock()
	l.frameDone++
	l.lastFrameAt = elapsed
	l.mu.Unlock()
}

func (l *Loopback) KeyboardEnter(_ Serial, _ []uint32, mods Modifiers) {
	l.mu.Lock()
	l.keyboard = true
	l.mods = mods
	l.mu.Unlock()
}

func (l *Loopback) KeyboardLeave(Serial) {
	l.mu.Lock()
	l.keyboard = false
	l.mu.Unlock()
}

func (l *Loopback) Key(serial Serial, _ uint32, keycode uint32, state KeyState) {
	l.mu.Lock()
	l.keys = append(l.keys, KeyRecord{Serial: serial, Keycode: keycode, State: state})
	l.mu.Unlock()
}

func (l *Loopback) Modifiers(_ Serial, mods Modifiers) {
	l.mu.Lock()
	l.mods = mods
	l.mu.Unlock()
}

func (l *Loopback) PointerEnter(_ Serial, loc geometry.PointF) {
	l.mu.Lock()
	l.pointer = true
	l.pointerLoc = loc
	l.mu.Unlock()
}

func (l *Loopback) PointerLeave(Serial) {
	l.mu.Lock()
	l.pointer = false
	l.mu.Unlock()
}

func (l *Loopback) Motion(_ uint32, loc geometry.PointF) {
	l.mu.Lock()
	l.motions++
	l.pointerLoc = loc
	l.mu.Unlock()
}

func (l *Loopback) RelativeMotion(RelativeMotion) {
	l.mu.Lock()
	l.relMotions++
	l.mu.Unlock()
}

func (l *Loopback) Button(serial Serial, _ uint32, button uint32, state ButtonState) {
	l.mu.Lock()
	l.buttons = append(l.buttons, ButtonRecord{Serial: serial, Button: button, State: state})
	l.mu.Unlock()
}

func (l *Loopback) Axis(f AxisFrame) {
	l.mu.Lock()
	l.axes = append(l.axes, f)
	l.mu.Unlock()
}

func (l *Loopback) PointerFrame() {
	l.mu.Lock()
	l.frames++
	l.mu.Unlock()
}

func (l *Loopback) Gesture(g GestureEvent) {
	l.mu.Lock()
	l.gestures = append(l.gestures, g)
	l.mu.Unlock()
}

// Configures returns every configure received so far.
func (l *Loopback) Configures() []ToplevelConfigure {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.configures)
}

// LastConfigure returns the most recent configure.
func (l *Loopback) LastConfigure() (ToplevelConfigure, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.configures) == 0 {
		return ToplevelConfigure{}, false
	}
	return l.configures[len(l.configures)-1], true
}

// Keys returns the key events received so far.
func (l *Loopback) Keys() []KeyRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.keys)
}

// Buttons returns the button events received so far.
func (l *Loopback) Buttons() []ButtonRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.buttons)
}

// Axes returns the axis frames received so far.
func (l *Loopback) Axes() []AxisFrame {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.axes)
}

// Gestures returns the gesture events received so far.
func (l *Loopback) Gestures() []GestureEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.gestures)
}

// HasKeyboardFocus reports whether the client holds keyboard focus.
func (l *Loopback) HasKeyboardFocus() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keyboard
}

// HasPointerFocus reports whether the pointer is over the client, and where.
func (l *Loopback) HasPointerFocus() (geometry.PointF, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pointerLoc, l.pointer
}

// CurrentModifiers returns the last modifier state sent to the client.
func (l *Loopback) CurrentModifiers() Modifiers {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mods
}

// Motions returns the number of absolute and relative motion events.
func (l *Loopback) Motions() (absolute, relative int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.motions, l.relMotions
}

// PointerFrames returns the number of pointer frame events.
func (l *Loopback) PointerFrames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// FramesDone returns how many frame callbacks fired and the last timestamp.
func (l *Loopback) FramesDone() (int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frameDone, l.lastFrameAt
}

// CloseRequested reports whether the compositor asked the client to close.
func (l *Loopback) CloseRequested() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeRequest
}

// LoopbackPopup is an in-process popup client.
type LoopbackPopup struct {
	client ClientID

	mu           sync.Mutex
	dead         bool
	configures   []PopupConfigure
	repositioned []uint32
}

// NewLoopbackPopup creates a live loopback popup.
func NewLoopbackPopup(client ClientID) *LoopbackPopup {
	return &LoopbackPopup{client: client}
}

func (p *LoopbackPopup) Client() ClientID { return p.client }

func (p *LoopbackPopup) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.dead
}

// Destroy marks the popup as destroyed.
func (p *LoopbackPopup) Destroy() {
	p.mu.Lock()
	p.dead = true
	p.mu.Unlock()
}

func (p *LoopbackPopup) Configure(c PopupConfigure) {
	p.mu.Lock()
	p.configures = append(p.configures, c)
	p.mu.Unlock()
}

func (p *LoopbackPopup) Repositioned(token uint32) {
	p.mu.Lock()
	p.repositioned = append(p.repositioned, token)
	p.mu.Unlock()
}

// Configures returns every configure received so far.
func (p *LoopbackPopup) Configures() []PopupConfigure {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.configures)
}

// RepositionTokens returns the tokens of repositioned events.
func (p *LoopbackPopup) RepositionTokens() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.repositioned)
}

// SlidePositioner places a popup at Geometry and slides it back inside the
// target area along each axis when it would overflow.
type SlidePositioner struct {
	Geometry geometry.Rectangle
}

func (p SlidePositioner) UnconstrainedGeometry(target geometry.Rectangle) geometry.Rectangle {
	g := p.Geometry
	slide := func(pos, size, min, extent int) int {
		if pos+size > min+extent {
			pos = min + extent - size
		}
		if pos < min {
			pos = min
		}
		return pos
	}
	g.Loc.X = slide(g.Loc.X, g.Size.W, target.Loc.X, target.Size.W)
	g.Loc.Y = slide(g.Loc.Y, g.Size.H, target.Loc.Y, target.Size.H)
	return g
}
