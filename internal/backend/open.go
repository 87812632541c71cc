package backend

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/twm/internal/eventloop"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/logger"
	"github.com/bnema/twm/internal/seat"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

// Config selects and parameterizes the backend.
type Config struct {
	// Kind is auto, nested or tty.
	Kind string
	// Cell is the logical pixel size of one terminal cell (nested).
	Cell geometry.Size
	// Framebuffer is the fbdev device path (tty).
	Framebuffer string
	// InputGlob matches the evdev devices to read (tty).
	InputGlob string
	// VTPath is the console used for VT switching (tty).
	VTPath string
}

// SelectKind resolves a configured kind. auto picks nested when a display
// server is reachable and stdin is a terminal, tty otherwise.
func SelectKind(name string, getenv func(string) string, stdinIsTerminal bool) (Kind, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		hasDisplay := getenv("WAYLAND_DISPLAY") != "" || getenv("DISPLAY") != ""
		if hasDisplay && stdinIsTerminal {
			return KindNested, nil
		}
		return KindTTY, nil
	case "nested":
		return KindNested, nil
	case "tty":
		return KindTTY, nil
	default:
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownKind)
	}
}

// Open creates the configured backend. Events reach host through loop.
func Open(cfg Config, loop *eventloop.Loop, host Host, keymap *seat.Keymap) (*Backend, error) {
	kind, err := SelectKind(cfg.Kind, os.Getenv, term.IsTerminal(int(os.Stdin.Fd())))
	if err != nil {
		return nil, err
	}
	logger.Infof("Using %s backend", kind)

	switch kind {
	case KindNested:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to create terminal screen: %w", err)
		}
		n, err := NewNested(loop, host, screen, cfg.Cell, keymap)
		if err != nil {
			return nil, err
		}
		return FromNested(n), nil

	case KindTTY:
		device, err := OpenFramebuffer(cfg.Framebuffer)
		if err != nil {
			return nil, err
		}
		inputs, err := OpenInputDevices(cfg.InputGlob)
		if err != nil {
			device.Close()
			return nil, err
		}
		session := NewSession(os.Getenv("XDG_SEAT"), cfg.VTPath)
		return FromTTY(NewTTY(loop, host, session, device, inputs)), nil

	default:
		return nil, fmt.Errorf("%v: %w", kind, ErrUnknownKind)
	}
}
