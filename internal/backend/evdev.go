package backend

import (
	"fmt"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/protocol"
	evdev "github.com/gvalkov/golang-evdev"
)

// InputEvent is a raw kernel input event.
type InputEvent = evdev.InputEvent

const defaultInputGlob = "/dev/input/event*"

type evdevDevice struct {
	dev *evdev.InputDevice
}

func (d evdevDevice) Name() string                { return d.dev.Name }
func (d evdevDevice) Path() string                { return d.dev.Fn }
func (d evdevDevice) Read() ([]InputEvent, error) { return d.dev.Read() }
func (d evdevDevice) Close() error                { return d.dev.File.Close() }

// OpenInputDevices opens every evdev device matching glob that reports keys
// or relative motion.
func OpenInputDevices(glob string) ([]InputDevice, error) {
	if glob == "" {
		glob = defaultInputGlob
	}
	devices, err := evdev.ListInputDevices(glob)
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices %s: %w", glob, err)
	}

	var out []InputDevice
	for _, dev := range devices {
		if !usable(dev) {
			dev.File.Close()
			continue
		}
		ttyLog.Infof("Using input device %s (%s)", dev.Fn, dev.Name)
		out = append(out, evdevDevice{dev: dev})
	}
	return out, nil
}

func usable(dev *evdev.InputDevice) bool {
	for capType := range dev.Capabilities {
		switch capType.Type {
		case evdev.EV_KEY, evdev.EV_REL:
			return true
		}
	}
	return false
}

// evdevTranslator turns raw kernel events into input events. Relative
// motion and wheel steps are accumulated until the SYN_REPORT that closes
// the kernel frame.
type evdevTranslator struct {
	dx, dy        int32
	wheel, hwheel int32
}

func eventTime(ev InputEvent) (ms uint32, us uint64) {
	us = uint64(ev.Time.Sec)*1_000_000 + uint64(ev.Time.Usec)
	return uint32(us / 1000), us
}

func (tr *evdevTranslator) feed(ev InputEvent) []input.Event {
	switch ev.Type {
	case evdev.EV_REL:
		switch ev.Code {
		case evdev.REL_X:
			tr.dx += ev.Value
		case evdev.REL_Y:
			tr.dy += ev.Value
		case evdev.REL_WHEEL:
			tr.wheel += ev.Value
		case evdev.REL_HWHEEL:
			tr.hwheel += ev.Value
		}
		return nil

	case evdev.EV_KEY:
		// Value 2 is kernel autorepeat; clients repeat on their own.
		if ev.Value == 2 {
			return nil
		}
		ms, _ := eventTime(ev)
		if ev.Code >= evdev.BTN_LEFT && ev.Code <= evdev.BTN_TASK {
			state := protocol.ButtonReleased
			if ev.Value == 1 {
				state = protocol.ButtonPressed
			}
			return []input.Event{input.PointerButtonEvent{Time: ms, Button: uint32(ev.Code), State: state}}
		}
		state := protocol.KeyReleased
		if ev.Value == 1 {
			state = protocol.KeyPressed
		}
		return []input.Event{input.KeyboardKeyEvent{Time: ms, Keycode: uint32(ev.Code), State: state}}

	case evdev.EV_SYN:
		if ev.Code != evdev.SYN_REPORT {
			return nil
		}
		return tr.flush(ev)
	}
	return nil
}

func (tr *evdevTranslator) flush(ev InputEvent) []input.Event {
	ms, us := eventTime(ev)
	var out []input.Event

	if tr.dx != 0 || tr.dy != 0 {
		delta := geometry.PointF{X: float64(tr.dx), Y: float64(tr.dy)}
		out = append(out, input.PointerMotionEvent{Time: ms, UTime: us, Delta: delta, DeltaUnaccel: delta})
	}
	if tr.wheel != 0 || tr.hwheel != 0 {
		axis := input.PointerAxisEvent{Time: ms, Source: protocol.AxisSourceWheel}
		// The kernel counts wheel-up as positive, clients expect negative.
		if tr.wheel != 0 {
			axis.Vertical.V120 = input.Float(float64(-tr.wheel * 120))
		}
		if tr.hwheel != 0 {
			axis.Horizontal.V120 = input.Float(float64(tr.hwheel * 120))
		}
		out = append(out, axis)
	}

	tr.dx, tr.dy, tr.wheel, tr.hwheel = 0, 0, 0, 0
	return out
}
