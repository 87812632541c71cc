package input

import "github.com/bnema/twm/internal/protocol"

// NormalizeAxis turns a raw scroll event into the axis frame sent to
// clients. An axis without a non-zero continuous amount scrolls v120*15/120.
// Axes that end up at zero are left out of the frame. For finger scrolling, a
// reported continuous amount of zero with no discrete steps marks the end of
// the scroll on that axis.
func NormalizeAxis(ev PointerAxisEvent) protocol.AxisFrame {
	frame := protocol.AxisFrame{Source: ev.Source, Time: ev.Time}
	frame.Horizontal = normalizeAxisValue(ev.Source, ev.Horizontal)
	frame.Vertical = normalizeAxisValue(ev.Source, ev.Vertical)
	return frame
}

func normalizeAxisValue(source protocol.AxisSource, in AxisInput) protocol.AxisValue {
	var v protocol.AxisValue

	amount := 0.0
	if in.Amount != nil {
		amount = *in.Amount
	}
	if amount == 0 && in.V120 != nil {
		amount = *in.V120 * 15 / 120
	}

	if amount != 0 {
		v.Set = true
		v.Amount = amount
		if in.V120 != nil {
			v.HasV120 = true
			v.V120 = int32(*in.V120)
		}
	}

	if source == protocol.AxisSourceFinger && in.Amount != nil && amount == 0 {
		v.Stop = true
	}
	return v
}
