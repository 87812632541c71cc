package input

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ThomasT75/uinput"
)

var (
	// ErrInjectorClosed is returned when stepping a closed injector.
	ErrInjectorClosed = errors.New("injector is closed")
	// ErrInvalidStep is returned for steps that cannot be parsed.
	ErrInvalidStep = errors.New("invalid injection step")
)

// Mouse is the part of a uinput virtual mouse the injector drives.
type Mouse interface {
	Move(x, y int32) error
	LeftPress() error
	LeftRelease() error
	RightPress() error
	RightRelease() error
	MiddlePress() error
	MiddleRelease() error
	Wheel(horizontal bool, delta int32) error
	Close() error
}

// StepKind is the action of one injection step.
type StepKind int

const (
	StepMove StepKind = iota
	StepPress
	StepRelease
	StepClick
	StepWheel
	StepHWheel
	StepSleep
)

// Step is one virtual mouse action.
type Step struct {
	Kind   StepKind
	DX, DY int32
	Button string // left, right or middle
	Delta  int32
	Sleep  time.Duration
}

// ParseSteps parses steps such as "move:10,-5", "click:left", "press:right",
// "release:right", "wheel:-1", "hwheel:2" and "sleep:50ms".
func ParseSteps(args []string) ([]Step, error) {
	steps := make([]Step, 0, len(args))
	for _, arg := range args {
		step, err := parseStep(arg)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(arg string) (Step, error) {
	name, value, ok := strings.Cut(strings.TrimSpace(arg), ":")
	if !ok {
		return Step{}, fmt.Errorf("%w: %q", ErrInvalidStep, arg)
	}

	switch strings.ToLower(name) {
	case "move":
		xs, ys, ok := strings.Cut(value, ",")
		if !ok {
			return Step{}, fmt.Errorf("%w: move needs dx,dy: %q", ErrInvalidStep, arg)
		}
		dx, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrInvalidStep, arg, err)
		}
		dy, err := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrInvalidStep, arg, err)
		}
		return Step{Kind: StepMove, DX: int32(dx), DY: int32(dy)}, nil

	case "press", "release", "click":
		switch value {
		case "left", "right", "middle":
		default:
			return Step{}, fmt.Errorf("%w: unknown button %q", ErrInvalidStep, value)
		}
		kind := map[string]StepKind{"press": StepPress, "release": StepRelease, "click": StepClick}[strings.ToLower(name)]
		return Step{Kind: kind, Button: value}, nil

	case "wheel", "hwheel":
		delta, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrInvalidStep, arg, err)
		}
		kind := StepWheel
		if strings.ToLower(name) == "hwheel" {
			kind = StepHWheel
		}
		return Step{Kind: kind, Delta: int32(delta)}, nil

	case "sleep":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return Step{}, fmt.Errorf("%w: %q", ErrInvalidStep, arg)
		}
		return Step{Kind: StepSleep, Sleep: d}, nil

	default:
		return Step{}, fmt.Errorf("%w: unknown action %q", ErrInvalidStep, name)
	}
}

// Injector replays steps on a virtual mouse. The tty backend reads the
// resulting evdev device like any physical pointer.
type Injector struct {
	mouse  Mouse
	delay  time.Duration
	closed bool
}

// NewInjector creates a virtual mouse on /dev/uinput.
func NewInjector(name string, delay time.Duration) (*Injector, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual mouse: %w", err)
	}
	return NewInjectorWithMouse(mouse, delay), nil
}

// NewInjectorWithMouse wraps an existing mouse.
func NewInjectorWithMouse(mouse Mouse, delay time.Duration) *Injector {
	return &Injector{mouse: mouse, delay: delay}
}

// Run performs steps in order, pausing delay between them.
func (i *Injector) Run(ctx context.Context, steps []Step) error {
	for n, step := range steps {
		if n > 0 && i.delay > 0 {
			if err := sleep(ctx, i.delay); err != nil {
				return err
			}
		}
		if err := i.Do(ctx, step); err != nil {
			return fmt.Errorf("step %d: %w", n+1, err)
		}
	}
	return nil
}

// Do performs a single step.
func (i *Injector) Do(ctx context.Context, step Step) error {
	if i.closed {
		return ErrInjectorClosed
	}

	switch step.Kind {
	case StepMove:
		if step.DX == 0 && step.DY == 0 {
			return nil
		}
		return i.mouse.Move(step.DX, step.DY)
	case StepPress:
		return i.button(step.Button, true)
	case StepRelease:
		return i.button(step.Button, false)
	case StepClick:
		if err := i.button(step.Button, true); err != nil {
			return err
		}
		return i.button(step.Button, false)
	case StepWheel:
		return i.mouse.Wheel(false, step.Delta)
	case StepHWheel:
		return i.mouse.Wheel(true, step.Delta)
	case StepSleep:
		return sleep(ctx, step.Sleep)
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidStep, step.Kind)
	}
}

func (i *Injector) button(name string, pressed bool) error {
	switch name {
	case "left":
		if pressed {
			return i.mouse.LeftPress()
		}
		return i.mouse.LeftRelease()
	case "right":
		if pressed {
			return i.mouse.RightPress()
		}
		return i.mouse.RightRelease()
	case "middle":
		if pressed {
			return i.mouse.MiddlePress()
		}
		return i.mouse.MiddleRelease()
	default:
		return fmt.Errorf("%w: unknown button %q", ErrInvalidStep, name)
	}
}

// Close destroys the virtual mouse.
func (i *Injector) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	return i.mouse.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
