package ipc

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/bnema/twm/internal/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultTimeout = 5 * time.Second

// Client talks to a running compositor
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath, or for the default path when it
// is empty.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		var err error
		socketPath, err = DefaultSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
	}
	return &Client{socketPath: socketPath, timeout: defaultTimeout}, nil
}

// SetTimeout changes the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SendStatus queries the compositor state
func (c *Client) SendStatus() (*Status, error) {
	response, err := c.request(CommandStatus, nil)
	if err != nil {
		return nil, err
	}
	return GetStatus(response)
}

// SendQuit asks the compositor to exit
func (c *Client) SendQuit() error {
	_, err := c.request(CommandQuit, nil)
	return err
}

// SendSpawn starts command inside the compositor session
func (c *Client) SendSpawn(command string) error {
	_, err := c.request(CommandSpawn, map[string]any{fieldExec: command})
	return err
}

// SendClose asks a window to close; zero means the focused window
func (c *Client) SendClose(window uint64) error {
	_, err := c.request(CommandClose, map[string]any{fieldWindow: float64(window)})
	return err
}

// SendNewWindow maps an in-process test window and returns its ID
func (c *Client) SendNewWindow(title string) (uint64, error) {
	response, err := c.request(CommandNewWindow, map[string]any{fieldTitle: title})
	if err != nil {
		return 0, err
	}
	return GetWindow(response), nil
}

// IsRunning checks whether a compositor answers on the socket
func (c *Client) IsRunning() bool {
	_, err := c.SendStatus()
	return err == nil
}

func (c *Client) request(cmd Command, args map[string]any) (*structpb.Struct, error) {
	msg, err := NewRequest(cmd, args)
	if err != nil {
		return nil, err
	}
	response, err := c.sendMessage(msg)
	if err != nil {
		return nil, err
	}
	if errMsg, ok := GetError(response); ok {
		return nil, fmt.Errorf("server error: %s", errMsg)
	}
	return response, nil
}

// sendMessage sends a message and returns the response
func (c *Client) sendMessage(msg *structpb.Struct) (*structpb.Struct, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		if isNotListening(err) {
			return nil, fmt.Errorf("%s: %w", c.socketPath, ErrNotRunning)
		}
		return nil, fmt.Errorf("failed to connect to twm: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close IPC connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		logger.Warnf("Failed to set connection deadline: %v", err)
	}

	if err := writeMessage(conn, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	response, err := readMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return response, nil
}

func isNotListening(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENOENT)
}
