package raster

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/vizscene/internal/render"
)

var face = basicfont.Face7x13

const (
	textMargin  = 16
	maxMaskSide = 1 << 24
)

// MeasureText returns the advance of text at the current font size.
func (c *Canvas) MeasureText(text string) float64 {
	adv := font.MeasureString(face, text).Ceil()
	return float64(adv) * c.fontScale()
}

func (c *Canvas) FillText(text string, x, y float64) {
	st := c.State()
	mask, r := c.textMask(text, x, y)
	if mask == nil {
		return
	}
	c.textShadow(st, mask, r)
	draw.DrawMask(c.img, r, c.source(st.Fill, st.CTM), r.Min, mask, image.Point{}, draw.Over)
}

// StrokeText outlines glyphs by stamping the mask around its position at
// the line width.
func (c *Canvas) StrokeText(text string, x, y float64) {
	st := c.State()
	mask, r := c.textMask(text, x, y)
	if mask == nil {
		return
	}
	c.textShadow(st, mask, r)

	src := c.source(st.Stroke, st.CTM)
	d := int(math.Max(1, math.Round(st.LineWidth*st.CTM.Scale())))
	for _, off := range []image.Point{{-d, 0}, {d, 0}, {0, -d}, {0, d}, {-d, -d}, {d, d}, {-d, d}, {d, -d}} {
		rr := r.Add(off)
		draw.DrawMask(c.img, rr, src, rr.Min, mask, image.Point{}, draw.Over)
	}
}

func (c *Canvas) textShadow(st render.State, mask *image.Alpha, r image.Rectangle) {
	if !st.Shadow.Enabled() {
		return
	}
	col := render.MustColor(st.Shadow.Color)
	rr := r.Add(image.Pt(int(math.Round(st.Shadow.OffsetX)), int(math.Round(st.Shadow.OffsetY))))
	draw.DrawMask(c.img, rr, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

// textMask renders text into a coverage mask scaled to the font size and
// returns it with the device rectangle it is centered in.
func (c *Canvas) textMask(text string, x, y float64) (*image.Alpha, image.Rectangle) {
	adv := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	if adv <= 0 || h <= 0 {
		return nil, image.Rectangle{}
	}

	src := image.NewAlpha(image.Rect(0, 0, adv, h))
	d := font.Drawer{
		Dst:  src,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(text)

	k := c.fontScale() * c.State().CTM.Scale()
	wf := math.Min(math.Max(1, math.Round(float64(adv)*k)), maxMaskSide)
	hf := math.Min(math.Max(1, math.Round(float64(h)*k)), maxMaskSide)

	p := c.Device(x, y)
	if math.IsNaN(wf) || math.IsNaN(hf) || math.IsNaN(p.X) || math.IsNaN(p.Y) || math.Abs(p.X) > maxMaskSide || math.Abs(p.Y) > maxMaskSide {
		return nil, image.Rectangle{}
	}
	origin := image.Pt(int(math.Round(p.X-wf/2)), int(math.Round(p.Y-hf/2)))
	full := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(int(wf), int(hf)))}

	// Only the part that can reach the canvas is scaled. The margin leaves
	// room for stroke stamps and shadow offsets.
	vis := full.Intersect(c.img.Bounds().Inset(-textMargin))
	if vis.Empty() {
		return nil, image.Rectangle{}
	}
	mask := image.NewAlpha(image.Rect(0, 0, vis.Dx(), vis.Dy()))
	xdraw.ApproxBiLinear.Scale(mask, full.Sub(vis.Min), src, src.Bounds(), xdraw.Src, nil)
	return mask, vis
}

// fontScale maps the bitmap face's cell height onto the requested size.
func (c *Canvas) fontScale() float64 {
	size := c.State().Font.Size
	if size <= 0 {
		size = 10
	}
	m := face.Metrics()
	return size / float64((m.Ascent + m.Descent).Ceil())
}
