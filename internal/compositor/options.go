package compositor

import (
	"fmt"
	"image/color"

	"github.com/bnema/twm/internal/backend"
	"github.com/bnema/twm/internal/config"
	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/seat"
	"github.com/gdamore/tcell/v2"
)

// OptionsFromConfig builds the options for a backend kind from the loaded
// configuration.
func OptionsFromConfig(cfg *config.Config, kind backend.Kind) (Options, error) {
	cursor, err := ParseColor(cfg.Cursor.Color)
	if err != nil {
		return Options{}, fmt.Errorf("cursor color: %w", err)
	}
	chords := cfg.Chords(kind.String())

	return Options{
		Bindings: input.BindingConfig{
			Quit:             chords.Quit,
			SpawnTerminal:    chords.SpawnTerminal,
			CloseWindow:      chords.CloseWindow,
			ToggleFullscreen: chords.ToggleFullscreen,
			SwitchVT:         chords.SwitchVT,
		},
		Terminal:     cfg.Spawn.Terminal,
		Capabilities: DefaultCapabilities,
		CursorSize:   cfg.Cursor.Size,
		CursorColor:  cursor,
		Repeat: seat.RepeatInfo{
			DelayMS: cfg.Seat.RepeatDelay,
			Rate:    cfg.Seat.RepeatRate,
		},
		MinSize:     geometry.Size{W: cfg.Window.MinWidth, H: cfg.Window.MinHeight},
		DefaultSize: geometry.Size{W: cfg.Window.DefaultWidth, H: cfg.Window.DefaultHeight},
	}, nil
}

// ParseColor accepts "#rrggbb" or a W3C color name.
func ParseColor(s string) (color.RGBA, error) {
	c := tcell.GetColor(s)
	if !c.Valid() {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	r, g, b := c.RGB()
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
}
