package protocol

import (
	"strings"
	"time"

	"github.com/bnema/twm/internal/geometry"
)

// ToplevelState is the set of xdg_toplevel states.
type ToplevelState uint8

const (
	StateActivated ToplevelState = 1 << iota
	StateFullscreen
	StateMaximized
	StateResizing
)

// Has reports whether all bits of f are set.
func (s ToplevelState) Has(f ToplevelState) bool { return s&f == f }

// With returns s with f set or cleared.
func (s ToplevelState) With(f ToplevelState, on bool) ToplevelState {
	if on {
		return s | f
	}
	return s &^ f
}

func (s ToplevelState) String() string {
	var parts []string
	for _, f := range []struct {
		flag ToplevelState
		name string
	}{
		{StateActivated, "activated"},
		{StateFullscreen, "fullscreen"},
		{StateMaximized, "maximized"},
		{StateResizing, "resizing"},
	} {
		if s.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Capabilities are the window manager capabilities advertised to a toplevel.
type Capabilities uint8

const (
	CapWindowMenu Capabilities = 1 << iota
	CapMaximize
	CapFullscreen
	CapMinimize
)

// Has reports whether all bits of c are set.
func (c Capabilities) Has(f Capabilities) bool { return c&f == f }

// ResizeEdge is the edge (or corner) a resize starts from. The values match
// xdg_toplevel.resize_edge.
type ResizeEdge uint32

const (
	EdgeNone        ResizeEdge = 0
	EdgeTop         ResizeEdge = 1
	EdgeBottom      ResizeEdge = 2
	EdgeLeft        ResizeEdge = 4
	EdgeTopLeft     ResizeEdge = 5
	EdgeBottomLeft  ResizeEdge = 6
	EdgeRight       ResizeEdge = 8
	EdgeTopRight    ResizeEdge = 9
	EdgeBottomRight ResizeEdge = 10
)

// Has reports whether the edge includes all bits of f.
func (e ResizeEdge) Has(f ResizeEdge) bool { return e&f == f }

// ToplevelConfigure is one configure event. A zero Size lets the client pick.
type ToplevelConfigure struct {
	Serial       Serial
	Size         geometry.Size
	States       ToplevelState
	Capabilities Capabilities
}

// PopupConfigure positions a popup relative to its parent.
type PopupConfigure struct {
	Serial   Serial
	Geometry geometry.Rectangle
}

// Toplevel is the client side of an xdg_toplevel, as seen by the core.
type Toplevel interface {
	KeyboardTarget
	PointerTarget

	Client() ClientID
	Alive() bool
	Title() string

	Configure(c ToplevelConfigure)
	Close()
	// FrameDone fires the pending frame callbacks with the time elapsed
	// since the compositor started.
	FrameDone(elapsed time.Duration)
}

// Popup is the client side of an xdg_popup.
type Popup interface {
	Client() ClientID
	Alive() bool
	Configure(c PopupConfigure)
	Repositioned(token uint32)
}

// Positioner solves popup placement constraints. Given the area the popup
// must stay inside (relative to the popup's parent), it returns the popup
// geometry.
type Positioner interface {
	UnconstrainedGeometry(target geometry.Rectangle) geometry.Rectangle
}
