package space

import (
	"fmt"
	"math"
	"slices"

	"github.com/bnema/twm/internal/geometry"
)

// Mode is a display mode. Refresh is in millihertz.
type Mode struct {
	Size       geometry.Size
	RefreshMHz int
}

func (m Mode) String() string {
	return fmt.Sprintf("%s@%.2fHz", m.Size, float64(m.RefreshMHz)/1000)
}

// PhysicalProperties describe the monitor behind an output.
type PhysicalProperties struct {
	SizeMM   geometry.Size
	Subpixel string
	Make     string
	Model    string
}

// Output is one display the compositor renders to.
type Output struct {
	name      string
	physical  PhysicalProperties
	modes     []Mode
	current   Mode
	preferred Mode
	hasMode   bool
	transform geometry.Transform
	scale     float64
}

// NewOutput creates an output without a mode. Scale defaults to 1.
func NewOutput(name string, physical PhysicalProperties) *Output {
	return &Output{name: name, physical: physical, scale: 1}
}

// StateChange is a partial update of an output's current state. Nil fields
// are left unchanged.
type StateChange struct {
	Mode      *Mode
	Transform *geometry.Transform
	Scale     *float64
}

// ChangeCurrentState applies c. A new mode is added to the output's mode list.
func (o *Output) ChangeCurrentState(c StateChange) {
	if c.Mode != nil {
		o.current = *c.Mode
		o.hasMode = true
		if !slices.Contains(o.modes, *c.Mode) {
			o.modes = append(o.modes, *c.Mode)
		}
	}
	if c.Transform != nil {
		o.transform = *c.Transform
	}
	if c.Scale != nil && *c.Scale > 0 {
		o.scale = *c.Scale
	}
}

// SetPreferred marks m as the preferred mode.
func (o *Output) SetPreferred(m Mode) {
	o.preferred = m
	if !slices.Contains(o.modes, m) {
		o.modes = append(o.modes, m)
	}
}

func (o *Output) Name() string                  { return o.name }
func (o *Output) Physical() PhysicalProperties  { return o.physical }
func (o *Output) Transform() geometry.Transform { return o.transform }
func (o *Output) Scale() float64                { return o.scale }
func (o *Output) PreferredMode() Mode           { return o.preferred }
func (o *Output) Modes() []Mode                 { return slices.Clone(o.modes) }
func (o *Output) CurrentMode() (Mode, bool)     { return o.current, o.hasMode }

// LogicalSize is the current mode size after the transform, divided by the
// scale. Outputs without a mode have an empty size.
func (o *Output) LogicalSize() geometry.Size {
	if !o.hasMode {
		return geometry.Size{}
	}
	s := o.transform.TransformSize(o.current.Size)
	return geometry.Size{
		W: int(math.Round(float64(s.W) / o.scale)),
		H: int(math.Round(float64(s.H) / o.scale)),
	}
}

func (o *Output) String() string {
	return fmt.Sprintf("%s (%s, %s, scale %.2f)", o.name, o.current, o.transform, o.scale)
}
