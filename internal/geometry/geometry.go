// Package geometry holds the logical coordinate types shared by the layout,
// input and render code.
package geometry

import (
	"fmt"
	"math"
)

// Point is an integer position in the global logical coordinate space.
type Point struct {
	X int
	Y int
}

// Add returns p+o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p-o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// ToF converts the point to floating point.
func (p Point) ToF() PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// PointF is a sub-pixel position, used for the pointer.
type PointF struct {
	X float64
	Y float64
}

// Add returns p+o.
func (p PointF) Add(o PointF) PointF {
	return PointF{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p-o.
func (p PointF) Sub(o PointF) PointF {
	return PointF{X: p.X - o.X, Y: p.Y - o.Y}
}

// Round rounds both coordinates to the nearest integer.
func (p PointF) Round() Point {
	return Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Clamp restricts p to the closed rectangle [min, max].
func (p PointF) Clamp(min, max PointF) PointF {
	return PointF{
		X: math.Min(math.Max(p.X, min.X), max.X),
		Y: math.Min(math.Max(p.Y, min.Y), max.Y),
	}
}

func (p PointF) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Size is a width/height pair.
type Size struct {
	W int
	H int
}

// IsEmpty reports whether either dimension is not positive.
func (s Size) IsEmpty() bool {
	return s.W <= 0 || s.H <= 0
}

// ToF converts the size to a floating point point.
func (s Size) ToF() PointF {
	return PointF{X: float64(s.W), Y: float64(s.H)}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Rectangle is a location plus a size.
type Rectangle struct {
	Loc  Point
	Size Size
}

// NewRect builds a rectangle from its components.
func NewRect(x, y, w, h int) Rectangle {
	return Rectangle{Loc: Point{X: x, Y: y}, Size: Size{W: w, H: h}}
}

// Max returns the exclusive bottom-right corner.
func (r Rectangle) Max() Point {
	return Point{X: r.Loc.X + r.Size.W, Y: r.Loc.Y + r.Size.H}
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rectangle) Contains(p PointF) bool {
	return p.X >= float64(r.Loc.X) && p.X < float64(r.Loc.X+r.Size.W) &&
		p.Y >= float64(r.Loc.Y) && p.Y < float64(r.Loc.Y+r.Size.H)
}

// Overlaps reports whether the two rectangles share any area.
func (r Rectangle) Overlaps(o Rectangle) bool {
	if r.Size.IsEmpty() || o.Size.IsEmpty() {
		return false
	}
	return r.Loc.X < o.Loc.X+o.Size.W && o.Loc.X < r.Loc.X+r.Size.W &&
		r.Loc.Y < o.Loc.Y+o.Size.H && o.Loc.Y < r.Loc.Y+r.Size.H
}

// Intersection returns the overlapping area and whether there is one.
func (r Rectangle) Intersection(o Rectangle) (Rectangle, bool) {
	if !r.Overlaps(o) {
		return Rectangle{}, false
	}
	x1 := max(r.Loc.X, o.Loc.X)
	y1 := max(r.Loc.Y, o.Loc.Y)
	x2 := min(r.Loc.X+r.Size.W, o.Loc.X+o.Size.W)
	y2 := min(r.Loc.Y+r.Size.H, o.Loc.Y+o.Size.H)
	return NewRect(x1, y1, x2-x1, y2-y1), true
}

// Translate moves the rectangle by d.
func (r Rectangle) Translate(d Point) Rectangle {
	return Rectangle{Loc: r.Loc.Add(d), Size: r.Size}
}

// Scale multiplies location and size by f, rounding to the nearest pixel.
func (r Rectangle) Scale(f float64) Rectangle {
	return Rectangle{
		Loc:  Point{X: int(math.Round(float64(r.Loc.X) * f)), Y: int(math.Round(float64(r.Loc.Y) * f))},
		Size: Size{W: int(math.Round(float64(r.Size.W) * f)), H: int(math.Round(float64(r.Size.H) * f))},
	}
}

func (r Rectangle) String() string {
	return fmt.Sprintf("%s@%s", r.Size, r.Loc)
}

// Transform is an output transform, matching wl_output.transform.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// TransformSize returns the size as seen after applying the transform.
func (t Transform) TransformSize(s Size) Size {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return Size{W: s.H, H: s.W}
	default:
		return s
	}
}

func (t Transform) String() string {
	switch t {
	case TransformNormal:
		return "normal"
	case Transform90:
		return "90"
	case Transform180:
		return "180"
	case Transform270:
		return "270"
	case TransformFlipped:
		return "flipped"
	case TransformFlipped90:
		return "flipped-90"
	case TransformFlipped180:
		return "flipped-180"
	case TransformFlipped270:
		return "flipped-270"
	default:
		return "unknown"
	}
}
