package ipc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestGetCommand(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		want    Command
		wantErr bool
	}{
		{name: "status", fields: map[string]any{"command": "status"}, want: CommandStatus},
		{name: "new window", fields: map[string]any{"command": "new-window", "title": "x"}, want: CommandNewWindow},
		{name: "missing", fields: map[string]any{"title": "x"}, wantErr: true},
		{name: "unknown", fields: map[string]any{"command": "reboot"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)

			cmd, err := GetCommand(msg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestStatusMessage(t *testing.T) {
	status := &Status{
		Backend:  "tty",
		Seat:     "seat0",
		Output:   "/dev/fb0",
		Mode:     "320x200@60.00Hz",
		PointerX: 12.5,
		Focus:    3,
		Frames:   42,
		Bindings: []string{"quit=super+shift+q"},
		Windows: []WindowStatus{
			{ID: 3, Title: "foot", X: 10, Y: 20, Width: 300, Height: 150, Focused: true, Activated: true},
		},
	}

	msg, err := NewStatusMessage(status)
	require.NoError(t, err)

	got, err := GetStatus(msg)
	require.NoError(t, err)
	assert.Equal(t, status, got)

	_, err = GetStatus(NewErrorMessage("boom"))
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	msg := NewErrorMessage("no focused window")
	errMsg, ok := GetError(msg)
	assert.True(t, ok)
	assert.Equal(t, "no focused window", errMsg)

	_, ok = GetError(NewWindowMessage(7))
	assert.False(t, ok)
	assert.Equal(t, uint64(7), GetWindow(NewWindowMessage(7)))
	assert.Zero(t, GetWindow(&structpb.Struct{}))
}

func TestFraming(t *testing.T) {
	msg, err := NewRequest(CommandSpawn, map[string]any{"exec": "foot --server"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeMessage(&buf, msg))
	require.NoError(t, writeMessage(&buf, NewErrorMessage("second")))

	first, err := readMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, "foot --server", stringField(first, "exec"))

	second, err := readMessage(&buf)
	require.NoError(t, err)
	errMsg, _ := GetError(second)
	assert.Equal(t, "second", errMsg)

	_, err = readMessage(&buf)
	assert.Error(t, err)
}

func TestFramingRejectsOversizedFrame(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xff, 0xff, 0xff, 0xff})
	_, err := readMessage(buf)
	assert.ErrorContains(t, err, "exceeds limit")
}
