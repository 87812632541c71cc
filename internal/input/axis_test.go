package input

import (
	"testing"

	"github.com/bnema/twm/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeAxis(t *testing.T) {
	t.Run("wheel notch without continuous amount scrolls 15", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{
			Source:   protocol.AxisSourceWheel,
			Vertical: AxisInput{V120: Float(120)},
		})

		assert.Equal(t, protocol.AxisValue{Set: true, Amount: 15, V120: 120, HasV120: true}, f.Vertical)
		assert.False(t, f.Horizontal.Set)
		assert.Equal(t, protocol.AxisSourceWheel, f.Source)
	})

	t.Run("high resolution wheel", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{
			Source:     protocol.AxisSourceWheel,
			Horizontal: AxisInput{V120: Float(-30)},
		})
		assert.Equal(t, -3.75, f.Horizontal.Amount)
		assert.Equal(t, int32(-30), f.Horizontal.V120)
	})

	t.Run("continuous amount wins over v120", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{
			Source:   protocol.AxisSourceWheel,
			Vertical: AxisInput{Amount: Float(7.5), V120: Float(120)},
		})
		assert.Equal(t, 7.5, f.Vertical.Amount)
		assert.True(t, f.Vertical.HasV120)
	})

	t.Run("finger with zero amount stops the axis", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{
			Source:     protocol.AxisSourceFinger,
			Horizontal: AxisInput{Amount: Float(0)},
			Vertical:   AxisInput{Amount: Float(4.2)},
		})
		assert.Equal(t, protocol.AxisValue{Stop: true}, f.Horizontal)
		assert.Equal(t, protocol.AxisValue{Set: true, Amount: 4.2}, f.Vertical)
	})

	t.Run("finger with zero amount and a notch scrolls 15", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{
			Source:     protocol.AxisSourceFinger,
			Horizontal: AxisInput{Amount: Float(0), V120: Float(120)},
		})
		assert.Equal(t, protocol.AxisValue{Set: true, Amount: 15, V120: 120, HasV120: true}, f.Horizontal)
		assert.False(t, f.Horizontal.Stop)
	})

	t.Run("wheel with zero amount and a notch scrolls 15", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{
			Source:     protocol.AxisSourceWheel,
			Horizontal: AxisInput{Amount: Float(0), V120: Float(120)},
		})
		assert.Equal(t, protocol.AxisValue{Set: true, Amount: 15, V120: 120, HasV120: true}, f.Horizontal)
	})

	t.Run("finger without amount does not stop", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{Source: protocol.AxisSourceFinger})
		assert.Equal(t, protocol.AxisValue{}, f.Horizontal)
		assert.Equal(t, protocol.AxisValue{}, f.Vertical)
	})

	t.Run("wheel with zero amount never stops", func(t *testing.T) {
		f := NormalizeAxis(PointerAxisEvent{
			Source:   protocol.AxisSourceWheel,
			Vertical: AxisInput{Amount: Float(0)},
		})
		assert.False(t, f.Vertical.Stop)
		assert.False(t, f.Vertical.Set)
	})
}
