package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"sync"

	"github.com/bnema/twm/internal/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

// SocketServer handles incoming IPC connections
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    MessageHandler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// MessageHandler defines the interface for handling IPC messages
type MessageHandler interface {
	HandleStatus() (*Status, error)
	HandleQuit() error
	HandleSpawn(command string) error
	// HandleClose closes window, or the focused window when window is zero.
	HandleClose(window uint64) error
	HandleNewWindow(title string) (uint64, error)
}

// NewSocketServer creates a new socket server listening on socketPath, or on
// the default path when it is empty.
func NewSocketServer(socketPath string, handler MessageHandler) (*SocketServer, error) {
	if socketPath == "" {
		var err error
		socketPath, err = DefaultSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
	}

	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
	}, nil
}

// Path returns the socket path.
func (s *SocketServer) Path() string { return s.socketPath }

// Start starts the socket server
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Remove existing socket file if it exists
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// Set socket permissions (user only)
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("IPC socket server started at %s", s.socketPath)
	return nil
}

// Stop stops the socket server
func (s *SocketServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()

	os.RemoveAll(s.socketPath)
	logger.Info("IPC socket server stopped")
}

func (s *SocketServer) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Errorf("Failed to accept connection: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the read below on shutdown.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger.Debug("New IPC connection established")

	for {
		msg, err := readMessage(conn)
		if err != nil {
			logger.Debugf("Connection closed or read error: %v", err)
			return
		}

		response := s.handleMessage(msg)
		if err := writeMessage(conn, response); err != nil {
			logger.Errorf("Failed to send response: %v", err)
			return
		}
	}
}

// handleMessage processes a single message and returns a response
func (s *SocketServer) handleMessage(msg *structpb.Struct) *structpb.Struct {
	cmd, err := GetCommand(msg)
	if err != nil {
		return NewErrorMessage(err.Error())
	}

	switch cmd {
	case CommandStatus:
		status, err := s.handler.HandleStatus()
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		response, err := NewStatusMessage(status)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return response

	case CommandQuit:
		return okOrError(s.handler.HandleQuit())

	case CommandSpawn:
		return okOrError(s.handler.HandleSpawn(stringField(msg, fieldExec)))

	case CommandClose:
		return okOrError(s.handler.HandleClose(GetWindow(msg)))

	case CommandNewWindow:
		id, err := s.handler.HandleNewWindow(stringField(msg, fieldTitle))
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return NewWindowMessage(id)

	default:
		return NewErrorMessage(fmt.Sprintf("unhandled command %q", cmd))
	}
}

func okOrError(err error) *structpb.Struct {
	if err != nil {
		return NewErrorMessage(err.Error())
	}
	return &structpb.Struct{}
}

// DefaultSocketPath returns $XDG_RUNTIME_DIR/twm-<user>.sock, falling back to
// /tmp when the runtime dir is unset.
func DefaultSocketPath() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("twm-%s.sock", currentUser.Username)), nil
}
