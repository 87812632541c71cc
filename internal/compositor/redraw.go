package compositor

import (
	"fmt"
	"time"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/render"
)

// QueueRedraw schedules one redraw at the end of the current loop batch.
// Requests made while a redraw is queued collapse into it; requests made
// while a frame is in flight are replayed on vblank.
func (s *State) QueueRedraw() {
	if s.redrawQueued {
		return
	}
	if s.waitingForVBlank {
		s.redrawPending = true
		return
	}
	s.redrawQueued = true
	s.loop.InsertIdle(s.redraw)
}

func (s *State) redraw() {
	if !s.redrawQueued || s.waitingForVBlank {
		panic(fmt.Sprintf("compositor: redraw with queued=%v waitingForVBlank=%v", s.redrawQueued, s.waitingForVBlank))
	}
	s.redrawQueued = false

	if s.backend == nil || s.output == nil {
		return
	}

	elements := s.space.RenderElements(s.output, 1)
	if cursor, ok := s.cursorElement(); ok {
		elements = append([]render.Element{cursor}, elements...)
	}

	wait, err := s.backend.Render(elements)
	if err != nil {
		s.OutputLost(s.output, fmt.Errorf("render failed: %w", err))
		return
	}
	s.frames++
	s.waitingForVBlank = wait

	elapsed := time.Since(s.start)
	for _, w := range s.space.Elements() {
		w.SendFrame(elapsed)
	}
	s.space.Refresh()
}

// cursorElement is the pointer square, relative to the active output.
func (s *State) cursorElement() (render.Element, bool) {
	og, ok := s.activeOutputGeometry()
	if !ok || s.seat == nil {
		return nil, false
	}
	loc := s.seat.Pointer().Location().Round().Sub(og.Loc)
	return render.SolidColorElement{
		Geo:   geometry.Rectangle{Loc: loc, Size: geometry.Size{W: s.opts.CursorSize, H: s.opts.CursorSize}},
		Color: s.opts.CursorColor,
	}, true
}

// OnVBlank marks the in-flight frame as shown.
func (s *State) OnVBlank() {
	s.waitingForVBlank = false
	if s.redrawPending {
		s.redrawPending = false
		s.QueueRedraw()
	}
}

// Frames is the number of frames submitted to the backend.
func (s *State) Frames() uint64 { return s.frames }
