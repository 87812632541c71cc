// Package space is the layout model: where every mapped window sits, in which
// stacking order, and which outputs cover which part of the global coordinate
// space.
package space

import (
	"slices"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/render"
)

// Element is anything that can be placed in a Space.
type Element interface {
	comparable

	// Geometry is the element's size at local origin (0,0).
	Geometry() geometry.Rectangle
	// Alive is false once the client destroyed the underlying role.
	Alive() bool
	// SetActivated toggles the activated state and reports whether it changed.
	SetActivated(activated bool) bool
	// RenderElement produces the drawable for the element placed at loc
	// (output-relative).
	RenderElement(loc geometry.Point, scale float64) render.Element
}

type mapped[E Element] struct {
	element E
	loc     geometry.Point
}

type mappedOutput struct {
	output *Output
	loc    geometry.Point
}

// Space maps elements to locations and z-order, and outputs to geometry.
// Elements are stored bottom to top: the last entry is the topmost.
//
// A Space is not safe for concurrent use; it lives on the event loop.
type Space[E Element] struct {
	elements []mapped[E]
	outputs  []mappedOutput
}

// New returns an empty space.
func New[E Element]() *Space[E] {
	return &Space[E]{}
}

func (s *Space[E]) index(e E) int {
	return slices.IndexFunc(s.elements, func(m mapped[E]) bool { return m.element == e })
}

// MapElement places e at loc. An element that is not mapped yet goes on top;
// an already mapped element keeps its z slot unless activate is set. With
// activate the element is raised and activated and every other element is
// deactivated.
func (s *Space[E]) MapElement(e E, loc geometry.Point, activate bool) {
	if i := s.index(e); i >= 0 {
		s.elements[i].loc = loc
	} else {
		s.elements = append(s.elements, mapped[E]{element: e, loc: loc})
	}
	if activate {
		s.RaiseElement(e, true)
	}
}

// RaiseElement moves e to the top of the stack without changing its location.
// Unmapped elements are ignored.
func (s *Space[E]) RaiseElement(e E, activate bool) {
	i := s.index(e)
	if i < 0 {
		return
	}
	m := s.elements[i]
	s.elements = append(slices.Delete(s.elements, i, i+1), m)

	if activate {
		for _, other := range s.elements {
			other.element.SetActivated(other.element == e)
		}
	}
}

// UnmapElement removes e from the space. Unmapped elements are ignored.
func (s *Space[E]) UnmapElement(e E) {
	if i := s.index(e); i >= 0 {
		s.elements = slices.Delete(s.elements, i, i+1)
	}
}

// Elements returns the mapped elements bottom to top.
func (s *Space[E]) Elements() []E {
	out := make([]E, 0, len(s.elements))
	for _, m := range s.elements {
		out = append(out, m.element)
	}
	return out
}

// ElementUnder returns the topmost element whose geometry contains p, and the
// element's location.
func (s *Space[E]) ElementUnder(p geometry.PointF) (E, geometry.Point, bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		m := s.elements[i]
		if m.element.Geometry().Translate(m.loc).Contains(p) {
			return m.element, m.loc, true
		}
	}
	var zero E
	return zero, geometry.Point{}, false
}

// ElementLocation returns where e is mapped.
func (s *Space[E]) ElementLocation(e E) (geometry.Point, bool) {
	i := s.index(e)
	if i < 0 {
		return geometry.Point{}, false
	}
	return s.elements[i].loc, true
}

// ElementGeometry returns e's geometry in global coordinates.
func (s *Space[E]) ElementGeometry(e E) (geometry.Rectangle, bool) {
	i := s.index(e)
	if i < 0 {
		return geometry.Rectangle{}, false
	}
	m := s.elements[i]
	return m.element.Geometry().Translate(m.loc), true
}

// Refresh drops elements that are no longer alive.
func (s *Space[E]) Refresh() {
	s.elements = slices.DeleteFunc(s.elements, func(m mapped[E]) bool {
		return !m.element.Alive()
	})
}

// MapOutput places o at loc, replacing any previous mapping of o.
func (s *Space[E]) MapOutput(o *Output, loc geometry.Point) {
	for i := range s.outputs {
		if s.outputs[i].output == o {
			s.outputs[i].loc = loc
			return
		}
	}
	s.outputs = append(s.outputs, mappedOutput{output: o, loc: loc})
}

// UnmapOutput removes o.
func (s *Space[E]) UnmapOutput(o *Output) {
	s.outputs = slices.DeleteFunc(s.outputs, func(m mappedOutput) bool { return m.output == o })
}

// Outputs returns the mapped outputs in mapping order.
func (s *Space[E]) Outputs() []*Output {
	out := make([]*Output, 0, len(s.outputs))
	for _, m := range s.outputs {
		out = append(out, m.output)
	}
	return out
}

// OutputGeometry returns the logical geometry of a mapped output: its
// location and its transformed mode size divided by its scale.
func (s *Space[E]) OutputGeometry(o *Output) (geometry.Rectangle, bool) {
	for _, m := range s.outputs {
		if m.output == o {
			return geometry.Rectangle{Loc: m.loc, Size: o.LogicalSize()}, true
		}
	}
	return geometry.Rectangle{}, false
}

// OutputsForElement returns the outputs overlapping e.
func (s *Space[E]) OutputsForElement(e E) []*Output {
	geo, ok := s.ElementGeometry(e)
	if !ok {
		return nil
	}
	var out []*Output
	for _, m := range s.outputs {
		og, _ := s.OutputGeometry(m.output)
		if og.Overlaps(geo) {
			out = append(out, m.output)
		}
	}
	return out
}

// RenderElements returns the render elements of all elements overlapping o,
// topmost first, positioned relative to the output.
func (s *Space[E]) RenderElements(o *Output, scale float64) []render.Element {
	og, ok := s.OutputGeometry(o)
	if !ok {
		return nil
	}
	var out []render.Element
	for i := len(s.elements) - 1; i >= 0; i-- {
		m := s.elements[i]
		if !m.element.Geometry().Translate(m.loc).Overlaps(og) {
			continue
		}
		out = append(out, m.element.RenderElement(m.loc.Sub(og.Loc), scale))
	}
	return out
}
