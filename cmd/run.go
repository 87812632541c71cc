package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bnema/twm/internal/backend"
	"github.com/bnema/twm/internal/compositor"
	"github.com/bnema/twm/internal/config"
	"github.com/bnema/twm/internal/eventloop"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/ipc"
	"github.com/bnema/twm/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func runCompositor(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	kind, err := backend.SelectKind(cfg.Backend.Kind, os.Getenv, term.IsTerminal(int(os.Stdin.Fd())))
	if err != nil {
		return err
	}
	opts, err := compositor.OptionsFromConfig(cfg, kind)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loop := eventloop.New()
	st, err := compositor.New(loop, nil, opts)
	if err != nil {
		return err
	}

	b, err := backend.Open(backendConfig(cfg, kind), loop, st, opts.Keymap)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", kind, err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Errorf("Failed to close backend: %v", err)
		}
	}()
	st.Attach(b)

	if command := startupCommand(args, cfg.Spawn.DefaultCommand, cfg.Spawn.Terminal); command != "" {
		loop.InsertIdle(func() {
			if err := st.Spawn(command); err != nil {
				logger.Errorf("Failed to start %q: %v", command, err)
			}
		})
	}

	return serve(cmd.Context(), st, cfg.IPC)
}

// serve runs the event loop next to the control socket until the loop stops
// or a termination signal arrives.
func serve(parent context.Context, st *compositor.State, ipcCfg config.IPCConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := st.Run(ctx)
		if errors.Is(err, context.Canceled) {
			logger.Info("Shutting down")
			return nil
		}
		return err
	})

	if ipcCfg.Enabled {
		server, err := ipc.NewSocketServer(ipcCfg.SocketPath, st)
		if err != nil {
			return err
		}
		if err := server.Start(); err != nil {
			st.Stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			server.Stop()
			return nil
		})
	}

	return g.Wait()
}

func backendConfig(cfg *config.Config, kind backend.Kind) backend.Config {
	return backend.Config{
		Kind:        kind.String(),
		Cell:        geometry.Size{W: cfg.Backend.CellWidth, H: cfg.Backend.CellHeight},
		Framebuffer: cfg.Backend.Framebuffer,
		InputGlob:   cfg.Backend.InputGlob,
		VTPath:      cfg.Backend.VTPath,
	}
}

// startupCommand picks what to run once the compositor is up: the command
// line, then the configured default command, then the terminal.
func startupCommand(args []string, defaultCommand, terminal string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	if defaultCommand != "" {
		return defaultCommand
	}
	return terminal
}
