//go:build linux

package backend

import (
	"os"

	"golang.org/x/sys/unix"
)

const vtActivate = 0x5606

func activateVT(console *os.File, vt int) error {
	return unix.IoctlSetInt(int(console.Fd()), vtActivate, vt)
}
