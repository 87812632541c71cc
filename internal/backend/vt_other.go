//go:build !linux

package backend

import (
	"os"

	"golang.org/x/sys/unix"
)

func activateVT(*os.File, int) error {
	return unix.ENOTSUP
}
