package backend

import (
	"fmt"
	"os"
	"sync"
)

const (
	defaultSeat   = "seat0"
	defaultVTPath = "/dev/tty"
)

// Session is the TTY backend's hold on a seat and its virtual terminals.
type Session struct {
	seat   string
	vtPath string

	mu      sync.Mutex
	console *os.File
}

// NewSession creates a session on seat (seat0 when empty). The console at
// vtPath is opened on the first VT switch.
func NewSession(seat, vtPath string) *Session {
	if seat == "" {
		seat = defaultSeat
	}
	if vtPath == "" {
		vtPath = defaultVTPath
	}
	return &Session{seat: seat, vtPath: vtPath}
}

func (s *Session) Seat() string { return s.seat }

// ChangeVT activates virtual terminal vt.
func (s *Session) ChangeVT(vt int) error {
	if vt < 1 {
		return fmt.Errorf("invalid vt %d", vt)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.console == nil {
		f, err := os.OpenFile(s.vtPath, os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("failed to open console %s: %w", s.vtPath, err)
		}
		s.console = f
	}
	if err := activateVT(s.console, vt); err != nil {
		return fmt.Errorf("switch to vt %d: %w", vt, err)
	}
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.console == nil {
		return nil
	}
	err := s.console.Close()
	s.console = nil
	return err
}
