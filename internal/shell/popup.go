package shell

import (
	"slices"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/protocol"
)

// Popup is an xdg_popup attached to a toplevel.
type Popup struct {
	resource   protocol.Popup
	parent     protocol.WindowID
	positioner protocol.Positioner
	serials    *protocol.SerialCounter

	// offset is the parent surface's position relative to the toplevel
	// root, non-zero for nested popups.
	offset      geometry.Point
	geometry    geometry.Rectangle
	initialSent bool
}

// NewPopup creates popup state. The geometry stays empty until Unconstrain
// runs.
func NewPopup(resource protocol.Popup, parent protocol.WindowID, positioner protocol.Positioner, serials *protocol.SerialCounter, offset geometry.Point) *Popup {
	return &Popup{
		resource:   resource,
		parent:     parent,
		positioner: positioner,
		serials:    serials,
		offset:     offset,
	}
}

func (p *Popup) Resource() protocol.Popup  { return p.resource }
func (p *Popup) Parent() protocol.WindowID { return p.parent }
func (p *Popup) Alive() bool               { return p.resource.Alive() }

// Offset is the popup parent's position relative to the owning toplevel.
func (p *Popup) Offset() geometry.Point { return p.offset }

// Geometry is the last configured geometry, relative to the parent.
func (p *Popup) Geometry() geometry.Rectangle { return p.geometry }

// Unconstrain recomputes the geometry so the popup stays inside target,
// given in parent-relative coordinates.
func (p *Popup) Unconstrain(target geometry.Rectangle) {
	p.geometry = p.positioner.UnconstrainedGeometry(target)
}

// SetPositioner replaces the positioner, used by reposition requests.
func (p *Popup) SetPositioner(pos protocol.Positioner) {
	p.positioner = pos
}

// SendConfigure sends the current geometry.
func (p *Popup) SendConfigure() protocol.Serial {
	serial := p.serials.Next()
	p.resource.Configure(protocol.PopupConfigure{Serial: serial, Geometry: p.geometry})
	return serial
}

// SendRepositioned sends the reposition token followed by a configure.
func (p *Popup) SendRepositioned(token uint32) {
	p.resource.Repositioned(token)
	p.SendConfigure()
}

// PopupManager tracks live popups.
type PopupManager struct {
	popups []*Popup
}

// NewPopupManager returns an empty manager.
func NewPopupManager() *PopupManager {
	return &PopupManager{}
}

// Track starts tracking p.
func (m *PopupManager) Track(p *Popup) {
	if !slices.Contains(m.popups, p) {
		m.popups = append(m.popups, p)
	}
}

// Find returns the popup state for resource.
func (m *PopupManager) Find(resource protocol.Popup) (*Popup, bool) {
	for _, p := range m.popups {
		if p.resource == resource {
			return p, true
		}
	}
	return nil, false
}

// Commit handles a popup surface commit. The first commit sends the initial
// configure; it reports whether it did.
func (m *PopupManager) Commit(resource protocol.Popup) bool {
	p, ok := m.Find(resource)
	if !ok || p.initialSent {
		return false
	}
	p.initialSent = true
	p.SendConfigure()
	return true
}

// Remove stops tracking resource.
func (m *PopupManager) Remove(resource protocol.Popup) {
	m.popups = slices.DeleteFunc(m.popups, func(p *Popup) bool { return p.resource == resource })
}

// Cleanup drops popups whose resource is gone or whose parent window no
// longer exists.
func (m *PopupManager) Cleanup(parentAlive func(protocol.WindowID) bool) {
	m.popups = slices.DeleteFunc(m.popups, func(p *Popup) bool {
		return !p.Alive() || !parentAlive(p.parent)
	})
}

// Popups returns the tracked popups.
func (m *PopupManager) Popups() []*Popup {
	return slices.Clone(m.popups)
}
