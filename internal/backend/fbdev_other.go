//go:build !linux

package backend

import (
	"errors"
	"fmt"
)

var errNoFramebuffer = errors.New("framebuffer output requires linux")

// OpenFramebuffer is only available on linux.
func OpenFramebuffer(path string) (Device, error) {
	return nil, fmt.Errorf("open %s: %w", path, errNoFramebuffer)
}
