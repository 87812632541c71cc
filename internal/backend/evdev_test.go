package backend

import (
	"syscall"
	"testing"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/protocol"
	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawEvent(typ, code uint16, value int32) InputEvent {
	return InputEvent{Time: syscall.Timeval{Sec: 2, Usec: 500_000}, Type: typ, Code: code, Value: value}
}

func syn() InputEvent {
	return rawEvent(evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

func TestEvdevTranslator(t *testing.T) {
	tests := []struct {
		name string
		in   []InputEvent
		want []input.Event
	}{
		{
			name: "motion accumulates until report",
			in: []InputEvent{
				rawEvent(evdev.EV_REL, evdev.REL_X, 3),
				rawEvent(evdev.EV_REL, evdev.REL_X, 2),
				rawEvent(evdev.EV_REL, evdev.REL_Y, -1),
				syn(),
			},
			want: []input.Event{input.PointerMotionEvent{
				Time:         2500,
				UTime:        2_500_000,
				Delta:        geometry.PointF{X: 5, Y: -1},
				DeltaUnaccel: geometry.PointF{X: 5, Y: -1},
			}},
		},
		{
			name: "wheel up scrolls negative",
			in:   []InputEvent{rawEvent(evdev.EV_REL, evdev.REL_WHEEL, 1), syn()},
			want: []input.Event{input.PointerAxisEvent{
				Time:     2500,
				Source:   protocol.AxisSourceWheel,
				Vertical: input.AxisInput{V120: input.Float(-120)},
			}},
		},
		{
			name: "horizontal wheel keeps its sign",
			in:   []InputEvent{rawEvent(evdev.EV_REL, evdev.REL_HWHEEL, 2), syn()},
			want: []input.Event{input.PointerAxisEvent{
				Time:       2500,
				Source:     protocol.AxisSourceWheel,
				Horizontal: input.AxisInput{V120: input.Float(240)},
			}},
		},
		{
			name: "mouse button",
			in:   []InputEvent{rawEvent(evdev.EV_KEY, evdev.BTN_RIGHT, 1)},
			want: []input.Event{input.PointerButtonEvent{Time: 2500, Button: evdev.BTN_RIGHT, State: protocol.ButtonPressed}},
		},
		{
			name: "key release",
			in:   []InputEvent{rawEvent(evdev.EV_KEY, evdev.KEY_Q, 0)},
			want: []input.Event{input.KeyboardKeyEvent{Time: 2500, Keycode: evdev.KEY_Q, State: protocol.KeyReleased}},
		},
		{
			name: "kernel autorepeat is dropped",
			in:   []InputEvent{rawEvent(evdev.EV_KEY, evdev.KEY_Q, 2)},
		},
		{
			name: "empty report",
			in:   []InputEvent{syn()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr evdevTranslator
			var got []input.Event
			for _, ev := range tt.in {
				got = append(got, tr.feed(ev)...)
			}
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}
