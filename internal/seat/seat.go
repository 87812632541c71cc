// Package seat implements the keyboard and pointer of a seat: modifier and
// focus tracking, the implicit click grab, explicit pointer grabs, and event
// forwarding to the focused windows.
package seat

import "github.com/bnema/twm/internal/protocol"

// Targets resolves window IDs to their input targets. Focus and grabs only
// keep IDs; a window that is gone simply does not resolve.
type Targets interface {
	KeyboardTarget(id protocol.WindowID) (protocol.KeyboardTarget, bool)
	PointerTarget(id protocol.WindowID) (protocol.PointerTarget, bool)
}

// Seat groups one keyboard and one pointer.
type Seat struct {
	name     string
	keyboard *Keyboard
	pointer  *Pointer
}

// New creates a seat.
func New(name string, targets Targets, keymap *Keymap, repeat RepeatInfo) *Seat {
	if keymap == nil {
		keymap = USKeymap()
	}
	return &Seat{
		name:     name,
		keyboard: newKeyboard(keymap, targets, repeat),
		pointer:  newPointer(targets),
	}
}

func (s *Seat) Name() string        { return s.name }
func (s *Seat) Keyboard() *Keyboard { return s.keyboard }
func (s *Seat) Pointer() *Pointer   { return s.pointer }
