package backend

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/bnema/twm/internal/eventloop"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/logger"
	"github.com/bnema/twm/internal/render"
	"github.com/bnema/twm/internal/space"
	"golang.org/x/sys/unix"
)

var ttyLog = logger.WithPrefix("backend/tty")

// deviceCheckInterval is how often the output device is checked for removal.
var deviceCheckInterval = time.Second

// Device is a display the TTY backend scans frames out to.
type Device interface {
	Path() string
	Mode() space.Mode
	PhysicalSize() geometry.Size
	// Present copies frame to the display.
	Present(frame *image.RGBA) error
	// WaitVBlank blocks until the presented frame is on screen.
	WaitVBlank() error
	// Check returns an error once the device is gone.
	Check() error
	Close() error
}

// InputDevice is an evdev event source.
type InputDevice interface {
	Name() string
	Path() string
	Read() ([]InputEvent, error)
	Close() error
}

// TTY drives a display directly from a virtual terminal.
type TTY struct {
	loop    *eventloop.Loop
	host    Host
	session *Session
	device  Device
	inputs  []InputDevice
	painter *render.ImagePainter
	output  *space.Output
	damage  render.DamageTracker

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewTTY creates the backend for device. Input devices are read once Init
// runs.
func NewTTY(loop *eventloop.Loop, host Host, session *Session, device Device, inputs []InputDevice) *TTY {
	mode := device.Mode()
	t := &TTY{
		loop:    loop,
		host:    host,
		session: session,
		device:  device,
		inputs:  inputs,
		painter: render.NewImagePainter(mode.Size),
		done:    make(chan struct{}),
	}
	t.output = space.NewOutput(device.Path(), space.PhysicalProperties{
		SizeMM:   device.PhysicalSize(),
		Subpixel: "unknown",
		Make:     "twm",
		Model:    "Framebuffer",
	})
	t.output.ChangeCurrentState(space.StateChange{Mode: &mode})
	t.output.SetPreferred(mode)
	return t
}

func (t *TTY) SeatName() string          { return t.session.Seat() }
func (t *TTY) Renderer() render.Renderer { return t.painter }
func (t *TTY) Output() *space.Output     { return t.output }
func (t *TTY) Session() *Session         { return t.session }

// Init maps the output, then starts the input readers and the device watch.
func (t *TTY) Init(layout OutputLayout) {
	layout.MapOutput(t.output, geometry.Point{})
	layout.CreateOutputGlobal(t.output)

	for _, dev := range t.inputs {
		t.wg.Add(1)
		go t.readInput(dev)
	}
	t.wg.Add(1)
	go t.watchDevice()
}

// Render paints the frame and hands it to the device. Completion arrives
// through Host.OnVBlank.
func (t *TTY) Render(elements []render.Element) (bool, error) {
	if !t.damage.Damaged(t.painter.Size(), elements) {
		return false, nil
	}
	if err := t.painter.RenderFrame(elements, clearColor); err != nil {
		t.damage.Reset()
		return false, fmt.Errorf("failed to render frame: %w", err)
	}
	if err := t.device.Present(t.painter.Frame()); err != nil {
		t.damage.Reset()
		return false, fmt.Errorf("failed to present frame on %s: %w", t.device.Path(), err)
	}

	go func() {
		err := t.device.WaitVBlank()
		t.loop.Post(func() {
			if err != nil {
				t.host.OutputLost(t.output, fmt.Errorf("vblank on %s: %w", t.device.Path(), err))
				return
			}
			t.host.OnVBlank()
		})
	}()
	return true, nil
}

// ChangeVT switches to virtual terminal vt.
func (t *TTY) ChangeVT(vt int) error {
	return t.session.ChangeVT(vt)
}

func (t *TTY) watchDevice() {
	defer t.wg.Done()
	ticker := time.NewTicker(deviceCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			if err := t.device.Check(); err != nil {
				err = fmt.Errorf("%s: %w: %w", t.device.Path(), ErrDeviceRemoved, err)
				t.loop.Post(func() { t.host.OutputLost(t.output, err) })
				return
			}
		}
	}
}

func (t *TTY) readInput(dev InputDevice) {
	defer t.wg.Done()
	ttyLog.Debugf("Reading input from %s (%s)", dev.Path(), dev.Name())

	var tr evdevTranslator
	for {
		events, err := dev.Read()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			if errors.Is(err, unix.EAGAIN) {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			ttyLog.Warnf("Input device %s stopped: %v", dev.Path(), err)
			removed := input.DeviceRemovedEvent{Name: dev.Name(), Path: dev.Path()}
			t.loop.Post(func() { t.host.ProcessInput(removed) })
			return
		}

		var out []input.Event
		for _, ev := range events {
			out = append(out, tr.feed(ev)...)
		}
		if len(out) == 0 {
			continue
		}
		t.loop.Post(func() {
			for _, ev := range out {
				t.host.ProcessInput(ev)
			}
		})
	}
}

// Close stops the readers and releases every device.
func (t *TTY) Close() error {
	var errs []error
	t.once.Do(func() {
		close(t.done)
		for _, dev := range t.inputs {
			if err := dev.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", dev.Path(), err))
			}
		}
		t.wg.Wait()
		if err := t.device.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", t.device.Path(), err))
		}
		if err := t.session.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
