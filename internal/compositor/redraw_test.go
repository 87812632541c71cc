package compositor

import (
	"testing"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRedrawCoalesces(t *testing.T) {
	st, dev := newTestState(t, Options{})
	_, lb := mapClient(st, "term", geometry.Point{}, geometry.Size{W: 100, H: 100})

	for range 5 {
		st.QueueRedraw()
	}
	dispatch(t, st)

	assert.Equal(t, int32(1), dev.presents.Load())
	assert.Equal(t, uint64(1), st.Frames())
	frames, _ := lb.FramesDone()
	assert.Equal(t, 1, frames)
}

func TestQueueRedrawWaitsForVBlank(t *testing.T) {
	st, dev := newTestState(t, Options{})
	mapClient(st, "term", geometry.Point{}, geometry.Size{W: 100, H: 100})

	st.QueueRedraw()
	dispatch(t, st)
	require.Equal(t, int32(1), dev.presents.Load())
	require.True(t, st.waitingForVBlank)

	// Moving the cursor damages the frame but the request is held back while
	// the first frame is on its way.
	st.ProcessInput(input.PointerMotionEvent{Delta: geometry.PointF{X: 40, Y: 40}})
	assert.False(t, st.redrawQueued)
	assert.True(t, st.redrawPending)
	dispatch(t, st)
	assert.Equal(t, int32(1), dev.presents.Load())

	dev.vblank <- struct{}{}
	dispatchUntil(t, st, func() bool { return dev.presents.Load() == 2 })
	assert.False(t, st.redrawPending)
	assert.Equal(t, uint64(2), st.Frames())
}

func TestIdenticalFrameDoesNotWaitForVBlank(t *testing.T) {
	st, dev := newTestState(t, Options{})
	dev.autoVBlank = true
	mapClient(st, "term", geometry.Point{}, geometry.Size{W: 100, H: 100})

	st.QueueRedraw()
	dispatchUntil(t, st, func() bool { return !st.waitingForVBlank && dev.presents.Load() == 1 })

	st.QueueRedraw()
	dispatch(t, st)
	assert.Equal(t, int32(1), dev.presents.Load(), "unchanged frame is not presented")
	assert.False(t, st.waitingForVBlank)
	assert.Equal(t, uint64(2), st.Frames())
}

func TestRedrawOutOfOrderPanics(t *testing.T) {
	st, _ := newTestState(t, Options{})
	assert.Panics(t, func() { st.redraw() })

	st.redrawQueued = true
	st.waitingForVBlank = true
	assert.Panics(t, func() { st.redraw() })
}

func TestCursorElementFollowsPointer(t *testing.T) {
	st, _ := newTestState(t, Options{CursorSize: 4})
	moveTo(st, 64, 32)

	el, ok := st.cursorElement()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(64, 32, 4, 4), el.Geometry())
}
