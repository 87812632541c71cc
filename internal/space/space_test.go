package space

import (
	"math/rand/v2"
	"testing"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	id        uint64
	size      geometry.Size
	activated bool
	dead      bool
}

func (w *fakeWindow) Geometry() geometry.Rectangle {
	return geometry.Rectangle{Size: w.size}
}

func (w *fakeWindow) Alive() bool { return !w.dead }

func (w *fakeWindow) SetActivated(a bool) bool {
	changed := w.activated != a
	w.activated = a
	return changed
}

func (w *fakeWindow) RenderElement(loc geometry.Point, scale float64) render.Element {
	return render.SurfaceElement{
		Window:    w.id,
		Geo:       geometry.Rectangle{Loc: loc, Size: w.size}.Scale(scale),
		Activated: w.activated,
	}
}

func newWindow(id uint64, w, h int) *fakeWindow {
	return &fakeWindow{id: id, size: geometry.Size{W: w, H: h}}
}

func newTestOutput(w, h int) *Output {
	o := NewOutput("test", PhysicalProperties{})
	mode := Mode{Size: geometry.Size{W: w, H: h}, RefreshMHz: 60_000}
	o.ChangeCurrentState(StateChange{Mode: &mode})
	return o
}

func TestMapElement(t *testing.T) {
	t.Run("new elements go on top", func(t *testing.T) {
		s := New[*fakeWindow]()
		a, b := newWindow(1, 100, 100), newWindow(2, 100, 100)
		s.MapElement(a, geometry.Point{}, false)
		s.MapElement(b, geometry.Point{}, false)

		assert.Equal(t, []*fakeWindow{a, b}, s.Elements())
	})

	t.Run("remapping keeps z order without activate", func(t *testing.T) {
		s := New[*fakeWindow]()
		a, b := newWindow(1, 100, 100), newWindow(2, 100, 100)
		s.MapElement(a, geometry.Point{}, false)
		s.MapElement(b, geometry.Point{}, false)
		s.MapElement(a, geometry.Point{X: 10, Y: 10}, false)

		assert.Equal(t, []*fakeWindow{a, b}, s.Elements())
		loc, ok := s.ElementLocation(a)
		require.True(t, ok)
		assert.Equal(t, geometry.Point{X: 10, Y: 10}, loc)
	})

	t.Run("activate raises and deactivates others", func(t *testing.T) {
		s := New[*fakeWindow]()
		a, b := newWindow(1, 100, 100), newWindow(2, 100, 100)
		s.MapElement(a, geometry.Point{}, true)
		s.MapElement(b, geometry.Point{}, true)
		assert.False(t, a.activated)
		assert.True(t, b.activated)

		s.MapElement(a, geometry.Point{}, true)
		assert.Equal(t, []*fakeWindow{b, a}, s.Elements())
		assert.True(t, a.activated)
		assert.False(t, b.activated)
	})

	t.Run("idempotent", func(t *testing.T) {
		s := New[*fakeWindow]()
		a := newWindow(1, 100, 100)
		s.MapElement(a, geometry.Point{X: 5}, true)
		s.MapElement(a, geometry.Point{X: 5}, true)
		assert.Len(t, s.Elements(), 1)
	})
}

func TestRaiseElementKeepsLocation(t *testing.T) {
	s := New[*fakeWindow]()
	a, b := newWindow(1, 50, 50), newWindow(2, 50, 50)
	s.MapElement(a, geometry.Point{X: 7, Y: 9}, false)
	s.MapElement(b, geometry.Point{}, false)

	s.RaiseElement(a, false)

	assert.Equal(t, []*fakeWindow{b, a}, s.Elements())
	loc, _ := s.ElementLocation(a)
	assert.Equal(t, geometry.Point{X: 7, Y: 9}, loc)
	assert.False(t, a.activated)
}

func TestElementUnder(t *testing.T) {
	s := New[*fakeWindow]()
	a, b := newWindow(1, 200, 150), newWindow(2, 100, 100)
	s.MapElement(a, geometry.Point{X: 50, Y: 50}, false)
	s.MapElement(b, geometry.Point{X: 100, Y: 100}, false)

	tests := []struct {
		name string
		p    geometry.PointF
		want *fakeWindow
		loc  geometry.Point
	}{
		{"only a", geometry.PointF{X: 60, Y: 60}, a, geometry.Point{X: 50, Y: 50}},
		{"overlap picks topmost", geometry.PointF{X: 120, Y: 120}, b, geometry.Point{X: 100, Y: 100}},
		{"only b", geometry.PointF{X: 190, Y: 190}, b, geometry.Point{X: 100, Y: 100}},
		{"nothing", geometry.PointF{X: 10, Y: 10}, nil, geometry.Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, loc, ok := s.ElementUnder(tt.p)
			assert.Equal(t, tt.want != nil, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.loc, loc)
		})
	}
}

func TestMissingStateReturnsNotOK(t *testing.T) {
	s := New[*fakeWindow]()
	w := newWindow(1, 10, 10)

	_, ok := s.ElementGeometry(w)
	assert.False(t, ok)
	_, ok = s.ElementLocation(w)
	assert.False(t, ok)
	_, ok = s.OutputGeometry(newTestOutput(10, 10))
	assert.False(t, ok)
	assert.Nil(t, s.OutputsForElement(w))

	assert.NotPanics(t, func() {
		s.RaiseElement(w, true)
		s.UnmapElement(w)
	})
}

func TestRefreshDropsDeadElements(t *testing.T) {
	s := New[*fakeWindow]()
	a, b := newWindow(1, 10, 10), newWindow(2, 10, 10)
	s.MapElement(a, geometry.Point{}, false)
	s.MapElement(b, geometry.Point{}, false)

	a.dead = true
	s.Refresh()

	assert.Equal(t, []*fakeWindow{b}, s.Elements())
}

func TestOutputs(t *testing.T) {
	s := New[*fakeWindow]()
	o := newTestOutput(1920, 1080)
	s.MapOutput(o, geometry.Point{})

	geo, ok := s.OutputGeometry(o)
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(0, 0, 1920, 1080), geo)

	inside, outside := newWindow(1, 100, 100), newWindow(2, 100, 100)
	s.MapElement(inside, geometry.Point{X: 1900, Y: 0}, false)
	s.MapElement(outside, geometry.Point{X: 2000, Y: 0}, false)
	assert.Equal(t, []*Output{o}, s.OutputsForElement(inside))
	assert.Empty(t, s.OutputsForElement(outside))

	s.UnmapOutput(o)
	assert.Empty(t, s.Outputs())
}

func TestOutputLogicalSize(t *testing.T) {
	o := newTestOutput(1920, 1080)
	tr := geometry.Transform90
	scale := 2.0
	o.ChangeCurrentState(StateChange{Transform: &tr, Scale: &scale})

	assert.Equal(t, geometry.Size{W: 540, H: 960}, o.LogicalSize())

	empty := NewOutput("empty", PhysicalProperties{})
	assert.True(t, empty.LogicalSize().IsEmpty())
}

func TestRenderElementsRelativeToOutput(t *testing.T) {
	s := New[*fakeWindow]()
	o := newTestOutput(800, 600)
	s.MapOutput(o, geometry.Point{X: 100, Y: 100})

	a, b, c := newWindow(1, 50, 50), newWindow(2, 50, 50), newWindow(3, 50, 50)
	s.MapElement(a, geometry.Point{X: 150, Y: 150}, false)
	s.MapElement(b, geometry.Point{X: 120, Y: 110}, false)
	s.MapElement(c, geometry.Point{X: 5000, Y: 0}, false)

	elems := s.RenderElements(o, 1)
	require.Len(t, elems, 2)
	assert.Equal(t, uint64(2), elems[0].(render.SurfaceElement).Window, "topmost first")
	assert.Equal(t, geometry.NewRect(20, 10, 50, 50), elems[0].Geometry())
	assert.Equal(t, geometry.NewRect(50, 50, 50, 50), elems[1].Geometry())
}

// Hit testing and rendering must agree on order for any sequence of map and
// raise operations.
func TestHitTestMatchesRenderOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := New[*fakeWindow]()
	o := newTestOutput(400, 400)
	s.MapOutput(o, geometry.Point{})

	windows := make([]*fakeWindow, 8)
	for i := range windows {
		windows[i] = newWindow(uint64(i+1), 20+rng.IntN(200), 20+rng.IntN(200))
	}

	for step := 0; step < 500; step++ {
		w := windows[rng.IntN(len(windows))]
		switch rng.IntN(3) {
		case 0:
			s.MapElement(w, geometry.Point{X: rng.IntN(380), Y: rng.IntN(380)}, rng.IntN(2) == 0)
		case 1:
			s.RaiseElement(w, rng.IntN(2) == 0)
		case 2:
			s.UnmapElement(w)
		}

		p := geometry.PointF{X: float64(rng.IntN(400)), Y: float64(rng.IntN(400))}
		hit, _, ok := s.ElementUnder(p)

		var first *render.SurfaceElement
		for _, e := range s.RenderElements(o, 1) {
			se := e.(render.SurfaceElement)
			if se.Geo.Contains(p) {
				first = &se
				break
			}
		}

		if !ok {
			assert.Nil(t, first, "step %d: render has an element under %s but hit test does not", step, p)
			continue
		}
		require.NotNil(t, first, "step %d", step)
		assert.Equal(t, hit.id, first.Window, "step %d", step)
	}
}
