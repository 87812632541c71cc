// Package ipc implements the control socket of a running compositor. Every
// message is a google.protobuf.Struct framed by a 4-byte big endian length.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Command names a control request.
type Command string

const (
	CommandStatus    Command = "status"
	CommandQuit      Command = "quit"
	CommandSpawn     Command = "spawn"
	CommandClose     Command = "close"
	CommandNewWindow Command = "new-window"
)

const (
	fieldCommand = "command"
	fieldError   = "error"
	fieldStatus  = "status"
	fieldWindow  = "window"
	fieldTitle   = "title"
	fieldExec    = "exec"
)

var (
	// ErrUnknownCommand is returned for requests without a known command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNotRunning is returned by the client when no compositor listens.
	ErrNotRunning = errors.New("twm is not running")
)

// WindowStatus describes one mapped window.
type WindowStatus struct {
	ID         uint64 `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	X          int    `json:"x" yaml:"x"`
	Y          int    `json:"y" yaml:"y"`
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	Focused    bool   `json:"focused" yaml:"focused"`
	Activated  bool   `json:"activated" yaml:"activated"`
	Fullscreen bool   `json:"fullscreen" yaml:"fullscreen"`
	Maximized  bool   `json:"maximized" yaml:"maximized"`
}

// Status is a snapshot of the compositor state.
type Status struct {
	Backend  string         `json:"backend" yaml:"backend"`
	Seat     string         `json:"seat" yaml:"seat"`
	Output   string         `json:"output" yaml:"output"`
	Mode     string         `json:"mode" yaml:"mode"`
	PointerX float64        `json:"pointer_x" yaml:"pointer_x"`
	PointerY float64        `json:"pointer_y" yaml:"pointer_y"`
	Focus    uint64         `json:"focus" yaml:"focus"`
	Grab     string         `json:"grab" yaml:"grab"`
	Frames   uint64         `json:"frames" yaml:"frames"`
	Uptime   string         `json:"uptime" yaml:"uptime"`
	Bindings []string       `json:"bindings" yaml:"bindings"`
	Windows  []WindowStatus `json:"windows" yaml:"windows"`
}

// NewRequest creates a request for cmd with extra fields.
func NewRequest(cmd Command, args map[string]any) (*structpb.Struct, error) {
	fields := map[string]any{fieldCommand: string(cmd)}
	for k, v := range args {
		fields[k] = v
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", cmd, err)
	}
	return msg, nil
}

// GetCommand extracts the command of a request.
func GetCommand(msg *structpb.Struct) (Command, error) {
	v, ok := msg.GetFields()[fieldCommand]
	if !ok {
		return "", fmt.Errorf("%w: missing command field", ErrUnknownCommand)
	}
	cmd := Command(v.GetStringValue())
	switch cmd {
	case CommandStatus, CommandQuit, CommandSpawn, CommandClose, CommandNewWindow:
		return cmd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

// NewErrorMessage creates an error response.
func NewErrorMessage(errMsg string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldError: structpb.NewStringValue(errMsg),
	}}
}

// GetError returns the error carried by a response, if any.
func GetError(msg *structpb.Struct) (string, bool) {
	v, ok := msg.GetFields()[fieldError]
	if !ok {
		return "", false
	}
	return v.GetStringValue(), true
}

// NewWindowMessage creates the response to a new-window request.
func NewWindowMessage(id uint64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldWindow: structpb.NewNumberValue(float64(id)),
	}}
}

// GetWindow reads a window ID field, zero when absent.
func GetWindow(msg *structpb.Struct) uint64 {
	return uint64(msg.GetFields()[fieldWindow].GetNumberValue())
}

// NewStatusMessage wraps a status snapshot.
func NewStatusMessage(status *Status) (*structpb.Struct, error) {
	data, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("failed to encode status: %w", err)
	}
	var inner structpb.Struct
	if err := protojson.Unmarshal(data, &inner); err != nil {
		return nil, fmt.Errorf("failed to convert status: %w", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldStatus: structpb.NewStructValue(&inner),
	}}, nil
}

// GetStatus extracts the status snapshot of a response.
func GetStatus(msg *structpb.Struct) (*Status, error) {
	v, ok := msg.GetFields()[fieldStatus]
	if !ok {
		return nil, fmt.Errorf("message is not a status response")
	}
	data, err := protojson.Marshal(v.GetStructValue())
	if err != nil {
		return nil, fmt.Errorf("failed to encode status: %w", err)
	}
	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("invalid status payload: %w", err)
	}
	return &status, nil
}

func stringField(msg *structpb.Struct, name string) string {
	return msg.GetFields()[name].GetStringValue()
}
