//go:build linux

package backend

import (
	"image"
	"image/color"
	"testing"

	"github.com/bnema/twm/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func TestFramebufferPresent(t *testing.T) {
	tests := []struct {
		name  string
		vinfo fbVarScreenInfo
		want  []byte
	}{
		{
			name: "xrgb8888",
			vinfo: fbVarScreenInfo{
				XRes: 2, YRes: 1, BitsPerPixel: 32,
				Red:   fbBitfield{Offset: 16, Length: 8},
				Green: fbBitfield{Offset: 8, Length: 8},
				Blue:  fbBitfield{Offset: 0, Length: 8},
			},
			want: []byte{0x30, 0x20, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "rgb565",
			vinfo: fbVarScreenInfo{
				XRes: 2, YRes: 1, BitsPerPixel: 16,
				Red:   fbBitfield{Offset: 11, Length: 5},
				Green: fbBitfield{Offset: 5, Length: 6},
				Blue:  fbBitfield{Offset: 0, Length: 5},
			},
			// 0xff,0xff,0xff packs to 0xffff.
			want: []byte{0xff, 0xff, 0x00, 0x00},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpp := int(tt.vinfo.BitsPerPixel / 8)
			fb := &Framebuffer{vinfo: tt.vinfo, stride: 2 * bpp, mem: make([]byte, 2*bpp)}

			frame := image.NewRGBA(image.Rect(0, 0, 2, 1))
			if tt.name == "rgb565" {
				frame.SetRGBA(0, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
			} else {
				frame.SetRGBA(0, 0, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
			}

			assert.NoError(t, fb.Present(frame))
			assert.Equal(t, tt.want, fb.mem)
			assert.Equal(t, geometry.Size{W: 2, H: 1}, fb.Mode().Size)
		})
	}
}
