package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/bnema/twm/internal/geometry"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	borderWidth = 2
	titleHeight = 18
)

var (
	surfaceBody    = color.RGBA{R: 0x30, G: 0x30, B: 0x3a, A: 0xff}
	titleActive    = color.RGBA{R: 0x3d, G: 0x5a, B: 0x80, A: 0xff}
	titleInactive  = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	borderActive   = color.RGBA{R: 0xff, G: 0xcc, B: 0x00, A: 0xff}
	borderInactive = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
)

// ImagePainter paints frames into an in-memory RGBA image. The tty backend
// copies the image into the framebuffer after each frame.
type ImagePainter struct {
	img *image.RGBA
}

// NewImagePainter allocates a painter for the given size.
func NewImagePainter(size geometry.Size) *ImagePainter {
	return &ImagePainter{img: image.NewRGBA(image.Rect(0, 0, size.W, size.H))}
}

// Resize reallocates the backing image when the size changed.
func (p *ImagePainter) Resize(size geometry.Size) {
	if p.Size() == size {
		return
	}
	p.img = image.NewRGBA(image.Rect(0, 0, size.W, size.H))
}

// Size is the image size in pixels.
func (p *ImagePainter) Size() geometry.Size {
	b := p.img.Bounds()
	return geometry.Size{W: b.Dx(), H: b.Dy()}
}

// Frame returns the last painted image.
func (p *ImagePainter) Frame() *image.RGBA {
	return p.img
}

// RenderFrame paints the elements back to front over clear.
func (p *ImagePainter) RenderFrame(elements []Element, clear color.RGBA) error {
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(clear), image.Point{}, draw.Src)

	for i := len(elements) - 1; i >= 0; i-- {
		switch e := elements[i].(type) {
		case SurfaceElement:
			p.drawSurface(e)
		case SolidColorElement:
			p.fill(e.Geo, e.Color)
		}
	}
	return nil
}

func (p *ImagePainter) fill(r geometry.Rectangle, c color.RGBA) {
	draw.Draw(p.img, toImageRect(r), image.NewUniform(c), image.Point{}, draw.Src)
}

func (p *ImagePainter) drawSurface(e SurfaceElement) {
	p.fill(e.Geo, surfaceBody)
	if e.Fullscreen || e.Geo.Size.W <= 2*borderWidth || e.Geo.Size.H <= titleHeight+borderWidth {
		return
	}

	border, bar := borderInactive, titleInactive
	if e.Activated {
		border, bar = borderActive, titleActive
	}

	g := e.Geo
	p.fill(geometry.NewRect(g.Loc.X, g.Loc.Y, g.Size.W, borderWidth), border)
	p.fill(geometry.NewRect(g.Loc.X, g.Loc.Y+g.Size.H-borderWidth, g.Size.W, borderWidth), border)
	p.fill(geometry.NewRect(g.Loc.X, g.Loc.Y, borderWidth, g.Size.H), border)
	p.fill(geometry.NewRect(g.Loc.X+g.Size.W-borderWidth, g.Loc.Y, borderWidth, g.Size.H), border)

	titleBar := geometry.NewRect(g.Loc.X+borderWidth, g.Loc.Y+borderWidth, g.Size.W-2*borderWidth, titleHeight-borderWidth)
	p.fill(titleBar, bar)

	if e.Title == "" {
		return
	}
	dst, ok := p.img.SubImage(toImageRect(titleBar)).(*image.RGBA)
	if !ok || dst.Bounds().Empty() {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(titleBar.Loc.X+4, titleBar.Loc.Y+basicfont.Face7x13.Ascent+1),
	}
	d.DrawString(e.Title)
}

func toImageRect(r geometry.Rectangle) image.Rectangle {
	return image.Rect(r.Loc.X, r.Loc.Y, r.Loc.X+r.Size.W, r.Loc.Y+r.Size.H)
}
