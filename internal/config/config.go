// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Spawn       SpawnConfig       `mapstructure:"spawn"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Keybindings KeybindingsConfig `mapstructure:"keybindings"`
	Cursor      CursorConfig      `mapstructure:"cursor"`
	Seat        SeatConfig        `mapstructure:"seat"`
	Window      WindowConfig      `mapstructure:"window"`
	IPC         IPCConfig         `mapstructure:"ipc"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// SpawnConfig controls the programs the compositor starts
type SpawnConfig struct {
	DefaultCommand string `mapstructure:"default_command"` // Run once the compositor is up, empty for none
	Terminal       string `mapstructure:"terminal"`        // Started by the spawn_terminal binding
}

// BackendConfig selects and tunes the output backend
type BackendConfig struct {
	Kind        string `mapstructure:"kind"` // auto, nested or tty
	CellWidth   int    `mapstructure:"cell_width"`
	CellHeight  int    `mapstructure:"cell_height"`
	Framebuffer string `mapstructure:"framebuffer"`
	InputGlob   string `mapstructure:"input_glob"`
	VTPath      string `mapstructure:"vt_path"`
}

// KeybindingsConfig holds one chord set per backend
type KeybindingsConfig struct {
	Nested ChordConfig `mapstructure:"nested"`
	TTY    ChordConfig `mapstructure:"tty"`
}

// ChordConfig maps actions to chords such as "alt+shift+q". An empty chord
// disables the action.
type ChordConfig struct {
	Quit             string `mapstructure:"quit"`
	SpawnTerminal    string `mapstructure:"spawn_terminal"`
	CloseWindow      string `mapstructure:"close_window"`
	ToggleFullscreen string `mapstructure:"toggle_fullscreen"`
	SwitchVT         bool   `mapstructure:"switch_vt"` // Ctrl+Alt+F1..F12
}

// CursorConfig styles the software cursor
type CursorConfig struct {
	Size  int    `mapstructure:"size"`
	Color string `mapstructure:"color"` // #rrggbb or a color name
}

// SeatConfig contains keyboard settings sent to clients
type SeatConfig struct {
	RepeatDelay int `mapstructure:"repeat_delay"` // milliseconds
	RepeatRate  int `mapstructure:"repeat_rate"`  // keys per second
}

// WindowConfig contains window sizing policy
type WindowConfig struct {
	MinWidth      int `mapstructure:"min_width"`
	MinHeight     int `mapstructure:"min_height"`
	DefaultWidth  int `mapstructure:"default_width"`  // Size of in-process windows
	DefaultHeight int `mapstructure:"default_height"` // Size of in-process windows
}

// IPCConfig contains control socket settings
type IPCConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	SocketPath string `mapstructure:"socket_path"` // Empty means $XDG_RUNTIME_DIR/twm-<user>.sock
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Spawn: SpawnConfig{
			DefaultCommand: "",
			Terminal:       "foot",
		},
		Backend: BackendConfig{
			Kind:        "auto",
			CellWidth:   8,
			CellHeight:  16,
			Framebuffer: "/dev/fb0",
			InputGlob:   "/dev/input/event*",
			VTPath:      "/dev/tty",
		},
		Keybindings: KeybindingsConfig{
			Nested: ChordConfig{
				Quit:             "alt+shift+q",
				SpawnTerminal:    "alt+return",
				CloseWindow:      "alt+shift+c",
				ToggleFullscreen: "alt+f",
			},
			TTY: ChordConfig{
				Quit:          "super+shift+q",
				SpawnTerminal: "super+return",
				SwitchVT:      true,
			},
		},
		Cursor: CursorConfig{
			Size:  16,
			Color: "#ffcc00",
		},
		Seat: SeatConfig{
			RepeatDelay: 200,
			RepeatRate:  25,
		},
		Window: WindowConfig{
			MinWidth:      1,
			MinHeight:     1,
			DefaultWidth:  400,
			DefaultHeight: 240,
		},
		IPC: IPCConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	// Set config name and type
	viper.SetConfigName("twm")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// Add config paths in order of precedence
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "twm"))
		}
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "twm"))
		}
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// setDefaults registers every field individually so partial files merge
// with the defaults.
func setDefaults() {
	d := DefaultConfig

	viper.SetDefault("spawn.default_command", d.Spawn.DefaultCommand)
	viper.SetDefault("spawn.terminal", d.Spawn.Terminal)

	viper.SetDefault("backend.kind", d.Backend.Kind)
	viper.SetDefault("backend.cell_width", d.Backend.CellWidth)
	viper.SetDefault("backend.cell_height", d.Backend.CellHeight)
	viper.SetDefault("backend.framebuffer", d.Backend.Framebuffer)
	viper.SetDefault("backend.input_glob", d.Backend.InputGlob)
	viper.SetDefault("backend.vt_path", d.Backend.VTPath)

	for name, chords := range map[string]ChordConfig{"nested": d.Keybindings.Nested, "tty": d.Keybindings.TTY} {
		prefix := "keybindings." + name + "."
		viper.SetDefault(prefix+"quit", chords.Quit)
		viper.SetDefault(prefix+"spawn_terminal", chords.SpawnTerminal)
		viper.SetDefault(prefix+"close_window", chords.CloseWindow)
		viper.SetDefault(prefix+"toggle_fullscreen", chords.ToggleFullscreen)
		viper.SetDefault(prefix+"switch_vt", chords.SwitchVT)
	}

	viper.SetDefault("cursor.size", d.Cursor.Size)
	viper.SetDefault("cursor.color", d.Cursor.Color)

	viper.SetDefault("seat.repeat_delay", d.Seat.RepeatDelay)
	viper.SetDefault("seat.repeat_rate", d.Seat.RepeatRate)

	viper.SetDefault("window.min_width", d.Window.MinWidth)
	viper.SetDefault("window.min_height", d.Window.MinHeight)
	viper.SetDefault("window.default_width", d.Window.DefaultWidth)
	viper.SetDefault("window.default_height", d.Window.DefaultHeight)

	viper.SetDefault("ipc.enabled", d.IPC.Enabled)
	viper.SetDefault("ipc.socket_path", d.IPC.SocketPath)

	viper.SetDefault("logging.log_level", d.Logging.LogLevel)
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "twm", "twm.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "twm.toml"
	}

	return filepath.Join(home, ".config", "twm", "twm.toml")
}

// Chords returns the chord set for a backend kind ("nested" or "tty").
func (c *Config) Chords(kind string) ChordConfig {
	if kind == "tty" {
		return c.Keybindings.TTY
	}
	return c.Keybindings.Nested
}
