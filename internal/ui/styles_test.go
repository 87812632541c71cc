package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFormatControl(t *testing.T) {
	tests := []struct {
		name string
		key  string
		desc string
	}{
		{name: "basic control", key: "q", desc: "quit"},
		{name: "longer key", key: "ctrl+c", desc: "stop watching"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatControl(tt.key, tt.desc)
			assert.Contains(t, got, tt.key)
			assert.Contains(t, got, tt.desc)
		})
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name    string
		running bool
		want    string
	}{
		{name: "running", running: true, want: "●"},
		{name: "stopped", running: false, want: "○"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatStatus(tt.running, "compositor")
			assert.Contains(t, got, tt.want)
			assert.Contains(t, got, "compositor")
		})
	}
}

func TestFormatResult(t *testing.T) {
	assert.Contains(t, FormatResult(true, "done"), IconSuccess)
	assert.Contains(t, FormatResult(false, "failed"), IconError)
}

func TestFormatListItem(t *testing.T) {
	got := FormatListItem("quit=alt+shift+q", true)
	assert.True(t, strings.HasPrefix(got, "  • "))
	assert.Contains(t, got, "quit=alt+shift+q")
}

func TestCreateSeparator(t *testing.T) {
	tests := []struct {
		name  string
		width int
		char  string
		want  int
	}{
		{name: "explicit", width: 10, char: "=", want: 10},
		{name: "defaults", width: 0, char: "", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateSeparator(tt.width, tt.char)
			assert.Equal(t, tt.want, lipgloss.Width(got))
		})
	}
}
