package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/inamate/vizscene/internal/render"
)

// gradientImage is an unbounded image whose color at each pixel is the
// gradient evaluated at that pixel's center, mapped back to user space.
type gradientImage struct {
	g        render.GradientPaint
	inv      render.Affine
	from, to color.NRGBA
}

func newGradientImage(g render.GradientPaint, ctm render.Affine) *gradientImage {
	return &gradientImage{
		g:    g,
		inv:  ctm.Invert(),
		from: render.MustColor(g.From),
		to:   render.MustColor(g.To),
	}
}

func (gi *gradientImage) ColorModel() color.Model {
	return color.NRGBAModel
}

func (gi *gradientImage) Bounds() image.Rectangle {
	return image.Rect(-1<<20, -1<<20, 1<<20, 1<<20)
}

func (gi *gradientImage) At(x, y int) color.Color {
	ux, uy := gi.inv.Apply(float64(x)+0.5, float64(y)+0.5)
	return render.LerpColor(gi.from, gi.to, gi.offset(ux, uy))
}

// offset returns the gradient position of a user-space point in [0, 1].
func (gi *gradientImage) offset(x, y float64) float64 {
	g := gi.g
	var t float64
	switch g.Kind {
	case render.GradientRadial:
		t = radialOffset(g, x, y)
	default:
		dx, dy := g.X1-g.X0, g.Y1-g.Y0
		l2 := dx*dx + dy*dy
		if l2 == 0 {
			return 0
		}
		t = ((x-g.X0)*dx + (y-g.Y0)*dy) / l2
	}
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(1, t))
}

// radialOffset finds the largest t for which the point lies on the circle
// interpolated between the start and end circles, as Canvas2D does.
func radialOffset(g render.GradientPaint, x, y float64) float64 {
	cdx, cdy := g.X1-g.X0, g.Y1-g.Y0
	dr := g.R1 - g.R0
	px, py := x-g.X0, y-g.Y0

	a := cdx*cdx + cdy*cdy - dr*dr
	b := -2 * (px*cdx + py*cdy + g.R0*dr)
	c := px*px + py*py - g.R0*g.R0

	if math.Abs(a) < 1e-12 {
		if b == 0 {
			return 0
		}
		return -c / b
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 1
	}
	sq := math.Sqrt(disc)
	t1, t2 := (-b+sq)/(2*a), (-b-sq)/(2*a)
	t := math.Max(t1, t2)
	if g.R0+t*dr < 0 {
		t = math.Min(t1, t2)
	}
	return t
}
