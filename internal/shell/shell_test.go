package shell

import (
	"testing"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindow(caps protocol.Capabilities) (*Window, *protocol.Loopback) {
	lb := protocol.NewLoopback(1, "term")
	return NewWindow(1, lb, &protocol.SerialCounter{}, caps, geometry.Size{}), lb
}

func TestWindowInitialConfigureOnFirstCommit(t *testing.T) {
	w, lb := newTestWindow(protocol.CapFullscreen)

	assert.True(t, w.Commit(geometry.Size{}))
	assert.False(t, w.Commit(geometry.Size{W: 300, H: 200}), "only the first commit configures")

	require.Len(t, lb.Configures(), 1)
	assert.Equal(t, protocol.CapFullscreen, lb.Configures()[0].Capabilities)
	assert.Equal(t, geometry.Size{W: 300, H: 200}, w.Size())
}

func TestWindowSendPendingConfigureOnlyOnChange(t *testing.T) {
	w, lb := newTestWindow(0)
	w.Commit(geometry.Size{W: 10, H: 10})

	_, sent := w.SendPendingConfigure()
	assert.False(t, sent, "nothing changed since the initial configure")

	w.SetActivated(true)
	_, sent = w.SendPendingConfigure()
	assert.True(t, sent)

	_, sent = w.SendPendingConfigure()
	assert.False(t, sent)

	assert.Len(t, lb.Configures(), 2)
}

func TestWindowSendConfigureAlwaysSends(t *testing.T) {
	w, lb := newTestWindow(0)
	w.SendConfigure()
	w.SendConfigure()
	assert.Len(t, lb.Configures(), 2)
}

func TestWindowAckConfigure(t *testing.T) {
	w, _ := newTestWindow(0)

	w.WithPendingState(func(s *WindowState) {
		s.States |= protocol.StateFullscreen
		s.Size = geometry.Size{W: 800, H: 600}
	})
	first := w.SendConfigure()
	w.WithPendingState(func(s *WindowState) { s.Size = geometry.Size{W: 640, H: 480} })
	second := w.SendConfigure()

	assert.False(t, w.AckConfigure(999), "unknown serial")
	assert.True(t, w.AckConfigure(first))
	assert.Equal(t, geometry.Size{W: 800, H: 600}, w.Current().Size)
	assert.True(t, w.AckConfigure(second))
	assert.Equal(t, geometry.Size{W: 640, H: 480}, w.Current().Size)
	assert.False(t, w.AckConfigure(first), "acks are consumed")
}

func TestWindowSetActivatedReportsChange(t *testing.T) {
	w, _ := newTestWindow(0)
	assert.True(t, w.SetActivated(true))
	assert.False(t, w.SetActivated(true))
	assert.True(t, w.SetActivated(false))
}

func TestWindowRenderElement(t *testing.T) {
	w, _ := newTestWindow(0)
	w.Commit(geometry.Size{W: 100, H: 50})
	w.SetActivated(true)

	e := w.RenderElement(geometry.Point{X: 5, Y: 6}, 2)
	se, ok := e.(render.SurfaceElement)
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(10, 12, 200, 100), se.Geo)
	assert.Equal(t, "term", se.Title)
	assert.True(t, se.Activated)
}

func TestWindowMinSizeFloor(t *testing.T) {
	w := NewWindow(1, protocol.NewLoopback(1, ""), &protocol.SerialCounter{}, 0, geometry.Size{W: 0, H: -4})
	assert.Equal(t, geometry.Size{W: 1, H: 1}, w.MinSize())
}

func TestPopupManager(t *testing.T) {
	serials := &protocol.SerialCounter{}
	m := NewPopupManager()

	res := protocol.NewLoopbackPopup(1)
	pos := protocol.SlidePositioner{Geometry: geometry.NewRect(700, 10, 200, 100)}
	p := NewPopup(res, 1, pos, serials, geometry.Point{})
	m.Track(p)
	m.Track(p)
	assert.Len(t, m.Popups(), 1)

	p.Unconstrain(geometry.NewRect(0, 0, 800, 600))
	assert.True(t, m.Commit(res))
	assert.False(t, m.Commit(res))

	configures := res.Configures()
	require.Len(t, configures, 1)
	assert.Equal(t, geometry.NewRect(600, 10, 200, 100), configures[0].Geometry)

	p.SetPositioner(protocol.SlidePositioner{Geometry: geometry.NewRect(0, 0, 10, 10)})
	p.Unconstrain(geometry.NewRect(0, 0, 800, 600))
	p.SendRepositioned(42)
	assert.Equal(t, []uint32{42}, res.RepositionTokens())
	assert.Len(t, res.Configures(), 2)

	t.Run("cleanup drops dead popups and orphans", func(t *testing.T) {
		orphanRes := protocol.NewLoopbackPopup(2)
		m.Track(NewPopup(orphanRes, 9, pos, serials, geometry.Point{}))
		m.Cleanup(func(id protocol.WindowID) bool { return id == 1 })

		_, ok := m.Find(orphanRes)
		assert.False(t, ok)
		_, ok = m.Find(res)
		assert.True(t, ok)

		res.Destroy()
		m.Cleanup(func(protocol.WindowID) bool { return true })
		assert.Empty(t, m.Popups())
	})
}
