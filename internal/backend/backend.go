// Package backend abstracts where frames go and where input comes from. A
// Backend is either nested (a tcell terminal screen acts as the output) or
// TTY (a Linux framebuffer plus evdev input devices).
package backend

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/render"
	"github.com/bnema/twm/internal/space"
)

var (
	// ErrUnknownKind is returned for a backend kind that is not auto, nested or tty.
	ErrUnknownKind = errors.New("unknown backend kind")
	// ErrNoSession is returned by ChangeVT on backends without a session.
	ErrNoSession = errors.New("backend has no session")
	// ErrDeviceRemoved reports that the output device went away.
	ErrDeviceRemoved = errors.New("output device removed")
)

var clearColor = color.RGBA{R: 26, G: 26, B: 26, A: 255}

// Kind selects the backend variant.
type Kind int

const (
	KindNested Kind = iota + 1
	KindTTY
)

func (k Kind) String() string {
	switch k {
	case KindNested:
		return "nested"
	case KindTTY:
		return "tty"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Host is the compositor side of a backend. Every method is called on the
// event loop.
type Host interface {
	ProcessInput(ev input.Event)
	QueueRedraw()
	// OnVBlank reports that the last submitted frame is on screen.
	OnVBlank()
	// OutputLost reports that the output can no longer be driven.
	OutputLost(output *space.Output, err error)
	// Stop asks the compositor to shut down.
	Stop()
}

// OutputLayout receives the backend's output during Init.
type OutputLayout interface {
	MapOutput(o *space.Output, loc geometry.Point)
	CreateOutputGlobal(o *space.Output)
}

// Backend is the closed set of backend variants. Exactly one of the variant
// pointers is set, matching kind.
type Backend struct {
	kind   Kind
	nested *Nested
	tty    *TTY
}

// FromNested wraps a nested backend.
func FromNested(n *Nested) *Backend {
	return &Backend{kind: KindNested, nested: n}
}

// FromTTY wraps a TTY backend.
func FromTTY(t *TTY) *Backend {
	return &Backend{kind: KindTTY, tty: t}
}

func (b *Backend) Kind() Kind { return b.kind }

// Nested returns the nested variant. It panics on any other kind.
func (b *Backend) Nested() *Nested {
	if b.kind != KindNested {
		panic("backend is not nested")
	}
	return b.nested
}

// TTY returns the TTY variant. It panics on any other kind.
func (b *Backend) TTY() *TTY {
	if b.kind != KindTTY {
		panic("backend is not tty")
	}
	return b.tty
}

// Init maps the backend's output at the origin and advertises it.
func (b *Backend) Init(layout OutputLayout) {
	switch b.kind {
	case KindNested:
		b.nested.Init(layout)
	case KindTTY:
		b.tty.Init(layout)
	default:
		b.unknown()
	}
}

// SeatName is the name of the seat clients see.
func (b *Backend) SeatName() string {
	switch b.kind {
	case KindNested:
		return b.nested.SeatName()
	case KindTTY:
		return b.tty.SeatName()
	default:
		b.unknown()
		return ""
	}
}

// Renderer lends out the backend's rendering context.
func (b *Backend) Renderer() render.Renderer {
	switch b.kind {
	case KindNested:
		return b.nested.Renderer()
	case KindTTY:
		return b.tty.Renderer()
	default:
		b.unknown()
		return nil
	}
}

// Render presents one frame. waitVBlank reports that the frame completes
// out of band and the host will get an OnVBlank call.
func (b *Backend) Render(elements []render.Element) (waitVBlank bool, err error) {
	switch b.kind {
	case KindNested:
		return b.nested.Render(elements)
	case KindTTY:
		return b.tty.Render(elements)
	default:
		b.unknown()
		return false, nil
	}
}

// ChangeVT switches the virtual terminal.
func (b *Backend) ChangeVT(vt int) error {
	switch b.kind {
	case KindNested:
		return fmt.Errorf("switch to vt %d: %w", vt, ErrNoSession)
	case KindTTY:
		return b.tty.ChangeVT(vt)
	default:
		b.unknown()
		return nil
	}
}

// Close releases the backend's devices.
func (b *Backend) Close() error {
	switch b.kind {
	case KindNested:
		return b.nested.Close()
	case KindTTY:
		return b.tty.Close()
	default:
		b.unknown()
		return nil
	}
}

func (b *Backend) unknown() {
	panic(fmt.Sprintf("backend: unknown kind %v", b.kind))
}
