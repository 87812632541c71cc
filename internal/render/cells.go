package render

import (
	"image/color"

	"github.com/bnema/twm/internal/geometry"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var (
	cellBorderActive   = color.RGBA{R: 0xff, G: 0xcc, B: 0x00, A: 0xff}
	cellBorderInactive = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	cellSurfaceBody    = color.RGBA{R: 0x22, G: 0x22, B: 0x2a, A: 0xff}
	cellTitleText      = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
)

// CellPainter paints frames onto a tcell screen. One terminal cell covers
// Cell.W x Cell.H physical pixels.
type CellPainter struct {
	screen tcell.Screen
	cell   geometry.Size
}

// NewCellPainter wraps screen. A zero cell size defaults to 8x16.
func NewCellPainter(screen tcell.Screen, cell geometry.Size) *CellPainter {
	if cell.IsEmpty() {
		cell = geometry.Size{W: 8, H: 16}
	}
	return &CellPainter{screen: screen, cell: cell}
}

// Cell returns the pixel size of one terminal cell.
func (p *CellPainter) Cell() geometry.Size {
	return p.cell
}

// Size is the screen size in pixels.
func (p *CellPainter) Size() geometry.Size {
	w, h := p.screen.Size()
	return geometry.Size{W: w * p.cell.W, H: h * p.cell.H}
}

// RenderFrame paints the elements back to front and shows the screen.
func (p *CellPainter) RenderFrame(elements []Element, clear color.RGBA) error {
	p.screen.Fill(' ', tcell.StyleDefault.Background(tcellColor(clear)))

	for i := len(elements) - 1; i >= 0; i-- {
		switch e := elements[i].(type) {
		case SurfaceElement:
			p.drawSurface(e)
		case SolidColorElement:
			p.fill(p.toCells(e.Geo), tcell.StyleDefault.Background(tcellColor(e.Color)), ' ')
		}
	}

	p.screen.Show()
	return nil
}

// toCells converts a pixel rectangle to the covered cell rectangle, clipped to
// the screen.
func (p *CellPainter) toCells(r geometry.Rectangle) geometry.Rectangle {
	x0 := floorDiv(r.Loc.X, p.cell.W)
	y0 := floorDiv(r.Loc.Y, p.cell.H)
	x1 := ceilDiv(r.Loc.X+r.Size.W, p.cell.W)
	y1 := ceilDiv(r.Loc.Y+r.Size.H, p.cell.H)
	if x1 == x0 && r.Size.W > 0 {
		x1++
	}
	if y1 == y0 && r.Size.H > 0 {
		y1++
	}

	w, h := p.screen.Size()
	screen := geometry.NewRect(0, 0, w, h)
	clipped, ok := geometry.NewRect(x0, y0, x1-x0, y1-y0).Intersection(screen)
	if !ok {
		return geometry.Rectangle{}
	}
	return clipped
}

func (p *CellPainter) fill(r geometry.Rectangle, style tcell.Style, ch rune) {
	for y := r.Loc.Y; y < r.Loc.Y+r.Size.H; y++ {
		for x := r.Loc.X; x < r.Loc.X+r.Size.W; x++ {
			p.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

func (p *CellPainter) drawSurface(e SurfaceElement) {
	full := geometry.NewRect(
		floorDiv(e.Geo.Loc.X, p.cell.W),
		floorDiv(e.Geo.Loc.Y, p.cell.H),
		max(ceilDiv(e.Geo.Size.W, p.cell.W), 1),
		max(ceilDiv(e.Geo.Size.H, p.cell.H), 1),
	)
	cells := p.toCells(e.Geo)
	if cells.Size.IsEmpty() {
		return
	}

	body := tcell.StyleDefault.Background(tcellColor(cellSurfaceBody))
	p.fill(cells, body, ' ')

	if e.Fullscreen || full.Size.W < 2 || full.Size.H < 2 {
		return
	}

	border := cellBorderInactive
	if e.Activated {
		border = cellBorderActive
	}
	style := body.Foreground(tcellColor(border))
	right := full.Loc.X + full.Size.W - 1
	bottom := full.Loc.Y + full.Size.H - 1
	for x := full.Loc.X; x <= right; x++ {
		p.setClipped(x, full.Loc.Y, tcell.RuneHLine, style)
		p.setClipped(x, bottom, tcell.RuneHLine, style)
	}
	for y := full.Loc.Y; y <= bottom; y++ {
		p.setClipped(full.Loc.X, y, tcell.RuneVLine, style)
		p.setClipped(right, y, tcell.RuneVLine, style)
	}
	p.setClipped(full.Loc.X, full.Loc.Y, tcell.RuneULCorner, style)
	p.setClipped(right, full.Loc.Y, tcell.RuneURCorner, style)
	p.setClipped(full.Loc.X, bottom, tcell.RuneLLCorner, style)
	p.setClipped(right, bottom, tcell.RuneLRCorner, style)

	if e.Title == "" || full.Size.W <= 4 {
		return
	}
	title := runewidth.Truncate(e.Title, full.Size.W-4, "…")
	titleStyle := style.Foreground(tcellColor(cellTitleText))
	x := full.Loc.X + 2
	for _, r := range title {
		p.setClipped(x, full.Loc.Y, r, titleStyle)
		x += runewidth.RuneWidth(r)
	}
}

func (p *CellPainter) setClipped(x, y int, r rune, style tcell.Style) {
	w, h := p.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	p.screen.SetContent(x, y, r, nil, style)
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
