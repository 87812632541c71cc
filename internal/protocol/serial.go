// Package protocol is the boundary between the window manager core and the
// client protocol layer. It holds the value types exchanged with clients and
// the interfaces the core drives them through; wire encoding lives elsewhere.
package protocol

import "sync/atomic"

// Serial identifies an input event or configure sent to a client.
type Serial uint32

// SerialCounter hands out increasing serials. Zero is never returned.
type SerialCounter struct {
	last atomic.Uint32
}

// Next returns the next serial.
func (c *SerialCounter) Next() Serial {
	for {
		s := c.last.Add(1)
		if s != 0 {
			return Serial(s)
		}
	}
}

// ClientID identifies a connected client.
type ClientID uint64

// WindowID identifies a toplevel window. Zero means no window.
type WindowID uint64
