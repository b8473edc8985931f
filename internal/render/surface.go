// Package render paints resolved scene layers onto an abstract drawing
// surface. The surface mirrors the subset of the Canvas2D API the scene
// format was designed against, so the same renderers drive a raster image,
// an SVG document, or a command recorder streamed to a browser.
package render

import "math"

// Surface is the drawing capability a shape renderer needs.
//
// Path coordinates are transformed by the current transform when they are
// added, as in Canvas2D. Text is always centered horizontally and vertically
// on the anchor point.
type Surface interface {
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(radians float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticCurveTo(cx, cy, x, y float64)
	Arc(x, y, r, start, end float64)
	Ellipse(x, y, rx, ry, rotation, start, end float64)
	Rect(x, y, w, h float64)
	ClosePath()

	SetFillStyle(p Paint)
	SetStrokeStyle(p Paint)
	SetLineWidth(w float64)
	SetLineCap(c LineCap)
	SetLineDash(pattern []float64)
	SetShadow(s Shadow)

	Fill()
	Stroke()
	FillRect(x, y, w, h float64)

	SetFont(f Font)
	MeasureText(text string) float64
	FillText(text string, x, y float64)
	StrokeText(text string, x, y float64)

	// Err reports a surface-level failure, such as a target that cannot be
	// drawn on. A non-nil Err aborts the current paint pass.
	Err() error
}

// LineCap is the shape drawn at the open ends of stroked lines.
type LineCap string

const (
	CapButt  LineCap = "butt"
	CapRound LineCap = "round"
)

// GradientKind selects linear or radial color interpolation.
type GradientKind string

const (
	GradientLinear GradientKind = "linear"
	GradientRadial GradientKind = "radial"
)

// GradientPaint is a two-stop gradient in user space. Linear gradients run
// from (X0,Y0) to (X1,Y1); radial ones from the circle (X0,Y0,R0) to
// (X1,Y1,R1).
type GradientPaint struct {
	Kind GradientKind `json:"kind"`
	X0   float64      `json:"x0"`
	Y0   float64      `json:"y0"`
	R0   float64      `json:"r0,omitempty"`
	X1   float64      `json:"x1"`
	Y1   float64      `json:"y1"`
	R1   float64      `json:"r1,omitempty"`
	From string       `json:"from"`
	To   string       `json:"to"`
}

// Paint is either a solid CSS color or a gradient.
type Paint struct {
	Color    string         `json:"color,omitempty"`
	Gradient *GradientPaint `json:"gradient,omitempty"`
}

// Solid returns a single-color paint.
func Solid(color string) Paint {
	return Paint{Color: color}
}

// LinearGradient returns a paint blending from one color to another along a
// line.
func LinearGradient(x0, y0, x1, y1 float64, from, to string) Paint {
	return Paint{Gradient: &GradientPaint{
		Kind: GradientLinear,
		X0:   x0, Y0: y0,
		X1: x1, Y1: y1,
		From: from, To: to,
	}}
}

// RadialGradient returns a paint blending outward between two circles.
func RadialGradient(x0, y0, r0, x1, y1, r1 float64, from, to string) Paint {
	return Paint{Gradient: &GradientPaint{
		Kind: GradientRadial,
		X0:   x0, Y0: y0, R0: r0,
		X1: x1, Y1: y1, R1: r1,
		From: from, To: to,
	}}
}

// Shadow is a drop shadow or glow applied to subsequent fills and strokes.
// The zero value disables it.
type Shadow struct {
	Color   string  `json:"color,omitempty"`
	Blur    float64 `json:"blur,omitempty"`
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
}

// Enabled reports whether the shadow would draw anything.
func (s Shadow) Enabled() bool {
	return s.Color != "" && (s.Blur > 0 || s.OffsetX != 0 || s.OffsetY != 0)
}

// Font selects the text size in pixels and the family.
type Font struct {
	Size   float64 `json:"size"`
	Family string  `json:"family"`
}

// ApproxTextWidth estimates the advance of text for surfaces without real
// font metrics: 0.6em per rune, which matches common sans-serif faces.
func ApproxTextWidth(f Font, text string) float64 {
	n := 0
	for range text {
		n++
	}
	return math.Round(float64(n)*f.Size*0.6*100) / 100
}
