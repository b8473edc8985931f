// Package raster implements render.Surface on an in-memory RGBA image using
// golang.org/x/image/vector for anti-aliased coverage.
//
// Shadows and glows are approximated: a blurred shadow is drawn as a faint
// halo stroke of the blur width around an offset copy of the shape. Text uses
// a scaled bitmap face, so glyph shapes are coarse but positions and extents
// follow the requested font size.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/inamate/vizscene/internal/render"
)

// ErrEmptyCanvas is returned for a canvas with no pixels.
var ErrEmptyCanvas = errors.New("raster: canvas has zero area")

const haloAlpha = 0.35

// Canvas is a render.Surface backed by an *image.RGBA.
type Canvas struct {
	*render.Context2D
	img *image.RGBA
	err error
}

var _ render.Surface = (*Canvas)(nil)

// NewCanvas returns a transparent canvas of the given size.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyCanvas, width, height)
	}
	return &Canvas{
		Context2D: render.NewContext2D(),
		img:       image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Image returns the backing image. It is drawn into by later calls.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear fills the whole canvas with a CSS color, ignoring transform and
// shadow state.
func (c *Canvas) Clear(bg string) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(render.MustColor(bg)), image.Point{}, draw.Src)
}

// EncodePNG writes the canvas as a PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// FailWith makes Err report err from now on.
func (c *Canvas) FailWith(err error) {
	c.err = err
}

func (c *Canvas) Err() error {
	return c.err
}

func (c *Canvas) Fill() {
	st := c.State()
	polys := subpathPoints(c.Fillable())
	if len(polys) == 0 {
		return
	}
	c.drawShadow(st, polys, false)
	c.rasterizeWith(polys, c.source(st.Fill, st.CTM), false)
}

func (c *Canvas) Stroke() {
	st := c.State()
	width := st.LineWidth * st.CTM.Scale()
	dash := scaled(st.Dash, st.CTM.Scale())

	var polys [][]render.Pt
	for _, sp := range c.Strokable() {
		for _, run := range applyDash(sp, dash) {
			polys = append(polys, strokeOutline(run, width, st.LineCap)...)
		}
	}
	if len(polys) == 0 {
		return
	}
	c.drawShadow(st, polys, true)
	c.rasterize(polys, c.source(st.Stroke, st.CTM))
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	st := c.State()
	polys := subpathPoints([]render.Subpath{c.RectPath(x, y, w, h)})
	c.drawShadow(st, polys, false)
	c.rasterizeWith(polys, c.source(st.Fill, st.CTM), false)
}

// drawShadow paints the shadow of polys under the shape about to be drawn.
func (c *Canvas) drawShadow(st render.State, polys [][]render.Pt, oriented bool) {
	if !st.Shadow.Enabled() {
		return
	}
	col := render.MustColor(st.Shadow.Color)
	if col.A == 0 {
		return
	}
	moved := translate(polys, st.Shadow.OffsetX, st.Shadow.OffsetY)

	if st.Shadow.Blur > 0 {
		halo := col
		halo.A = uint8(float64(col.A) * haloAlpha)
		var ring [][]render.Pt
		for _, p := range moved {
			ring = append(ring, strokeOutline(render.Subpath{Points: p, Closed: true}, st.Shadow.Blur, render.CapRound)...)
		}
		c.rasterize(ring, image.NewUniform(halo))
	}
	c.rasterizeWith(moved, image.NewUniform(col), oriented)
}

func (c *Canvas) rasterize(polys [][]render.Pt, src image.Image) {
	c.rasterizeWith(polys, src, true)
}

// rasterizeWith accumulates polys into one coverage mask and composites src
// through it. The rasterizer sums absolute coverage, so overlapping pieces
// of a stroke must share an orientation or they cancel out.
func (c *Canvas) rasterizeWith(polys [][]render.Pt, src image.Image, orient bool) {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	drawn := false
	for _, p := range polys {
		if len(p) < 3 || !finitePoints(p) {
			continue
		}
		if orient && signedArea(p) > 0 {
			p = reversed(p)
		}
		z.MoveTo(float32(p[0].X), float32(p[0].Y))
		for _, pt := range p[1:] {
			z.LineTo(float32(pt.X), float32(pt.Y))
		}
		z.ClosePath()
		drawn = true
	}
	if drawn {
		z.Draw(c.img, b, src, image.Point{})
	}
}

// source returns the image that supplies colors for paint under ctm.
func (c *Canvas) source(p render.Paint, ctm render.Affine) image.Image {
	if p.Gradient == nil {
		return image.NewUniform(render.MustColor(p.Color))
	}
	return newGradientImage(*p.Gradient, ctm)
}

func subpathPoints(paths []render.Subpath) [][]render.Pt {
	out := make([][]render.Pt, 0, len(paths))
	for _, sp := range paths {
		out = append(out, sp.Points)
	}
	return out
}

func translate(polys [][]render.Pt, dx, dy float64) [][]render.Pt {
	out := make([][]render.Pt, len(polys))
	for i, p := range polys {
		q := make([]render.Pt, len(p))
		for j, pt := range p {
			q[j] = render.Pt{X: pt.X + dx, Y: pt.Y + dy}
		}
		out[i] = q
	}
	return out
}

func finitePoints(p []render.Pt) bool {
	for _, pt := range p {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			return false
		}
	}
	return true
}

func signedArea(p []render.Pt) float64 {
	var a float64
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return a / 2
}

func reversed(p []render.Pt) []render.Pt {
	out := make([]render.Pt, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

func scaled(pattern []float64, k float64) []float64 {
	if len(pattern) == 0 {
		return nil
	}
	out := make([]float64, len(pattern))
	for i, v := range pattern {
		out[i] = v * k
	}
	return out
}
