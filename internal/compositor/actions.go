package compositor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bnema/twm/internal/backend"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/protocol"
	"github.com/bnema/twm/internal/shell"
)

// Spawner starts client programs.
type Spawner interface {
	Spawn(command string) error
}

// CommandSpawner runs commands through /bin/sh and reaps them in the
// background.
type CommandSpawner struct {
	// Env is appended to the compositor's environment.
	Env []string
}

func (c CommandSpawner) Spawn(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return errors.New("empty command")
	}
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Env = append(os.Environ(), c.Env...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %q: %w", command, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			wmLog.Debugf("Spawned command %q exited: %v", command, err)
		}
	}()
	return nil
}

// Spawn starts command with the configured spawner.
func (s *State) Spawn(command string) error {
	wmLog.Infof("Spawning %q", command)
	return s.opts.Spawner.Spawn(command)
}

func (s *State) runAction(a input.Action) {
	wmLog.Debug("Key binding", "action", a.Kind, "vt", a.VT)
	switch a.Kind {
	case input.ActionQuit:
		wmLog.Info("Quit requested")
		s.Stop()
	case input.ActionSpawnTerminal:
		if err := s.Spawn(s.opts.Terminal); err != nil {
			wmLog.Errorf("Failed to spawn terminal: %v", err)
		}
	case input.ActionCloseWindow:
		if w, ok := s.focusedWindow(); ok {
			w.SendClose()
		}
	case input.ActionToggleFullscreen:
		if w, ok := s.focusedWindow(); ok {
			s.toggleFullscreen(w)
		}
	case input.ActionSwitchVT:
		if s.backend == nil {
			return
		}
		if err := s.backend.ChangeVT(a.VT); err != nil {
			if errors.Is(err, backend.ErrNoSession) {
				wmLog.Debugf("Ignoring VT switch to %d: %v", a.VT, err)
				return
			}
			wmLog.Errorf("Failed to switch to VT %d: %v", a.VT, err)
		}
	}
}

func (s *State) toggleFullscreen(w *shell.Window) {
	if !w.Pending().States.Has(protocol.StateFullscreen) {
		s.FullscreenRequest(w.ID(), nil)
		return
	}
	w.WithPendingState(func(st *shell.WindowState) {
		st.States &^= protocol.StateFullscreen
		st.Size = geometry.Size{}
	})
	w.SendPendingConfigure()
}
