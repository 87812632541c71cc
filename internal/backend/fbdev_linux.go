//go:build linux

package backend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/bnema/twm/internal/geometry"
	"github.com/bnema/twm/internal/space"
	"golang.org/x/sys/unix"
)

const (
	defaultFramebuffer = "/dev/fb0"

	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
	fbioWaitForVSync   = 0x40044620

	fbRefreshMHz = 60_000
)

// ErrUnsupportedFormat is returned for framebuffers that are neither 16 nor
// 32 bits per pixel.
var ErrUnsupportedFormat = errors.New("unsupported framebuffer pixel format")

type fbBitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

// fbVarScreenInfo mirrors struct fb_var_screeninfo.
type fbVarScreenInfo struct {
	XRes, YRes               uint32
	XResVirtual, YResVirtual uint32
	XOffset, YOffset         uint32
	BitsPerPixel             uint32
	Grayscale                uint32
	Red, Green, Blue, Transp fbBitfield
	NonStd                   uint32
	Activate                 uint32
	HeightMM, WidthMM        uint32
	AccelFlags               uint32
	PixClock                 uint32
	LeftMargin, RightMargin  uint32
	UpperMargin, LowerMargin uint32
	HSyncLen, VSyncLen       uint32
	Sync                     uint32
	VMode                    uint32
	Rotate                   uint32
	Colorspace               uint32
	Reserved                 [4]uint32
}

// fbFixScreenInfo mirrors struct fb_fix_screeninfo.
type fbFixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// Framebuffer is a Linux fbdev display.
type Framebuffer struct {
	path   string
	file   *os.File
	vinfo  fbVarScreenInfo
	stride int
	mem    []byte

	mu        sync.Mutex
	noVSync   bool
	lastFrame time.Time
}

// OpenFramebuffer opens and maps an fbdev device.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	if path == "" {
		path = defaultFramebuffer
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer: %w", err)
	}

	fb := &Framebuffer{path: path, file: file}
	var finfo fbFixScreenInfo
	if err := fb.ioctl(fbioGetVScreenInfo, unsafe.Pointer(&fb.vinfo)); err != nil {
		file.Close()
		return nil, fmt.Errorf("FBIOGET_VSCREENINFO on %s: %w", path, err)
	}
	if err := fb.ioctl(fbioGetFScreenInfo, unsafe.Pointer(&finfo)); err != nil {
		file.Close()
		return nil, fmt.Errorf("FBIOGET_FSCREENINFO on %s: %w", path, err)
	}
	if bpp := fb.vinfo.BitsPerPixel; bpp != 16 && bpp != 32 {
		file.Close()
		return nil, fmt.Errorf("%s: %d bpp: %w", path, bpp, ErrUnsupportedFormat)
	}

	fb.stride = int(finfo.LineLength)
	fb.mem, err = unix.Mmap(int(file.Fd()), 0, int(finfo.SmemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to map framebuffer %s: %w", path, err)
	}
	return fb, nil
}

func (fb *Framebuffer) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fb.file.Fd(), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (fb *Framebuffer) Path() string { return fb.path }

func (fb *Framebuffer) Mode() space.Mode {
	return space.Mode{
		Size:       geometry.Size{W: int(fb.vinfo.XRes), H: int(fb.vinfo.YRes)},
		RefreshMHz: fbRefreshMHz,
	}
}

func (fb *Framebuffer) PhysicalSize() geometry.Size {
	return geometry.Size{W: int(fb.vinfo.WidthMM), H: int(fb.vinfo.HeightMM)}
}

// Present converts frame to the framebuffer's pixel layout.
func (fb *Framebuffer) Present(frame *image.RGBA) error {
	bytesPP := int(fb.vinfo.BitsPerPixel / 8)
	w := min(frame.Rect.Dx(), int(fb.vinfo.XRes))
	h := min(frame.Rect.Dy(), int(fb.vinfo.YRes))

	for y := 0; y < h; y++ {
		row := (y + int(fb.vinfo.YOffset)) * fb.stride
		for x := 0; x < w; x++ {
			i := frame.PixOffset(x, y)
			px := fb.pack(frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2])
			off := row + (x+int(fb.vinfo.XOffset))*bytesPP
			if off+bytesPP > len(fb.mem) {
				return nil
			}
			switch bytesPP {
			case 4:
				binary.LittleEndian.PutUint32(fb.mem[off:], px)
			case 2:
				binary.LittleEndian.PutUint16(fb.mem[off:], uint16(px))
			}
		}
	}
	return nil
}

func (fb *Framebuffer) pack(r, g, b uint8) uint32 {
	channel := func(v uint8, f fbBitfield) uint32 {
		return uint32(v) >> (8 - min(f.Length, 8)) << f.Offset
	}
	return channel(r, fb.vinfo.Red) | channel(g, fb.vinfo.Green) | channel(b, fb.vinfo.Blue)
}

// WaitVBlank waits for vertical sync. Drivers without FBIO_WAITFORVSYNC are
// paced to the nominal refresh rate instead.
func (fb *Framebuffer) WaitVBlank() error {
	fb.mu.Lock()
	noVSync := fb.noVSync
	fb.mu.Unlock()

	if !noVSync {
		var arg uint32
		err := fb.ioctl(fbioWaitForVSync, unsafe.Pointer(&arg))
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.ENOTTY) && !errors.Is(err, unix.EINVAL) {
			return err
		}
		fb.mu.Lock()
		fb.noVSync = true
		fb.mu.Unlock()
	}

	period := time.Second * 1000 / fbRefreshMHz
	fb.mu.Lock()
	next := fb.lastFrame.Add(period)
	fb.mu.Unlock()
	if d := time.Until(next); d > 0 {
		time.Sleep(d)
	}
	fb.mu.Lock()
	fb.lastFrame = time.Now()
	fb.mu.Unlock()
	return nil
}

// Check fails once the device node is gone.
func (fb *Framebuffer) Check() error {
	_, err := os.Stat(fb.path)
	return err
}

func (fb *Framebuffer) Close() error {
	var errs []error
	if fb.mem != nil {
		errs = append(errs, unix.Munmap(fb.mem))
		fb.mem = nil
	}
	errs = append(errs, fb.file.Close())
	return errors.Join(errs...)
}
