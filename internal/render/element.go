// Package render defines the backend-agnostic drawable elements produced for
// every frame and the painters that turn them into pixels or terminal cells.
package render

import (
	"image/color"
	"slices"

	"github.com/bnema/twm/internal/geometry"
)

// Element is one drawable item of a frame. The set of element kinds is closed:
// SurfaceElement and SolidColorElement.
//
// Frames are ordered front-to-back: index 0 is the topmost element. Painters
// walk the list backwards so that earlier elements end up on top.
type Element interface {
	// Geometry is the element's area in output-local physical pixels.
	Geometry() geometry.Rectangle
	isElement()
}

// SurfaceElement draws a client window.
type SurfaceElement struct {
	Window     uint64
	Geo        geometry.Rectangle
	Title      string
	Activated  bool
	Fullscreen bool
}

func (e SurfaceElement) Geometry() geometry.Rectangle { return e.Geo }
func (SurfaceElement) isElement()                     {}

// SolidColorElement fills its geometry with a single color. The cursor is
// drawn with it.
type SolidColorElement struct {
	Geo   geometry.Rectangle
	Color color.RGBA
}

func (e SolidColorElement) Geometry() geometry.Rectangle { return e.Geo }
func (SolidColorElement) isElement()                     {}

// Renderer is the rendering context a backend lends out for one frame.
type Renderer interface {
	// Size is the drawable area in physical pixels.
	Size() geometry.Size
	// RenderFrame paints the front-to-back element list over clear.
	RenderFrame(elements []Element, clear color.RGBA) error
}

// DamageTracker remembers the last painted frame so identical frames can be
// skipped.
type DamageTracker struct {
	last  []Element
	size  geometry.Size
	valid bool
}

// Damaged reports whether the frame differs from the previously recorded one
// and records it.
func (d *DamageTracker) Damaged(size geometry.Size, elements []Element) bool {
	if d.valid && d.size == size && slices.Equal(d.last, elements) {
		return false
	}
	d.last = slices.Clone(elements)
	d.size = size
	d.valid = true
	return true
}

// Reset forces the next frame to be considered damaged.
func (d *DamageTracker) Reset() {
	d.valid = false
	d.last = nil
}
