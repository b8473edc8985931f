package render

import (
	"math"
	"strconv"

	"github.com/inamate/vizscene/internal/scene"
)

const (
	defaultStrokeWidth     = 2
	defaultArrowWidth      = 3
	defaultTextStrokeWidth = 1
	defaultHeadLength      = 12
	headAngle              = math.Pi / 6

	shadowBlur       = 8
	shadowOffset     = 2
	circleGlowBlur   = 15
	arrowGlowBlur    = 8
	lineGlowBlur     = 6
	textShadowBlur   = 4
	textShadowOffset = 1

	textPadding       = 8
	defaultFontSize   = 16
	defaultFontFamily = "Arial"
	defaultInk        = "#000"
	defaultTextBg     = "rgba(255, 255, 255, 0.9)"
)

// withShadow runs draw inside Save/Restore with the shadow applied, so the
// shadow never reaches later drawing. A nil shadow just runs draw.
func withShadow(s Surface, sh *Shadow, draw func()) {
	if sh == nil {
		draw()
		return
	}
	s.Save()
	defer s.Restore()
	s.SetShadow(*sh)
	draw()
}

// dropShadow returns the standard offset shadow when color is set.
func dropShadow(color string) *Shadow {
	if color == "" {
		return nil
	}
	return &Shadow{Color: color, Blur: shadowBlur, OffsetX: shadowOffset, OffsetY: shadowOffset}
}

// glowShadow returns an unoffset halo when enabled.
func glowShadow(color string, blur float64) *Shadow {
	if color == "" {
		return nil
	}
	return &Shadow{Color: color, Blur: blur}
}

// fillAndStroke fills the current path with fill (or gradient) and strokes it
// with stroke, each only when its color is set.
func fillAndStroke(s Surface, p scene.Props, gradient func(g scene.Gradient) Paint) {
	if fill := p.String("fill"); fill != "" {
		if g, ok := p.Gradient("gradient", fill); ok && gradient != nil {
			s.SetFillStyle(gradient(g))
		} else {
			s.SetFillStyle(Solid(fill))
		}
		s.Fill()
	}

	if stroke := p.String("stroke"); stroke != "" {
		s.SetStrokeStyle(Solid(stroke))
		s.SetLineWidth(p.NumberOr("strokeWidth", defaultStrokeWidth))
		dash := p.Numbers("dash")
		if len(dash) > 0 {
			s.SetLineDash(dash)
		}
		s.Stroke()
		if len(dash) > 0 {
			s.SetLineDash(nil)
		}
	}
}

func drawCircle(s Surface, p scene.Props) []error {
	x, y, r := p.Float("x"), p.Float("y"), p.Float("r")
	shadow, glow := p.String("shadow"), p.String("glow")
	if glow == "" && p.Truthy("glow") {
		glow = p.String("fill")
		if glow == "" {
			glow = defaultInk
		}
	}

	var sh *Shadow
	if shadow != "" || glow != "" {
		sh = &Shadow{Color: shadow, Blur: shadowBlur, OffsetX: shadowOffset, OffsetY: shadowOffset}
		if shadow == "" {
			sh.Color = glow
			sh.OffsetX, sh.OffsetY = 0, 0
		}
		if glow != "" {
			sh.Blur = circleGlowBlur
		}
	}

	withShadow(s, sh, func() {
		s.BeginPath()
		s.Arc(x, y, r, 0, 2*math.Pi)
		fillAndStroke(s, p, func(g scene.Gradient) Paint {
			// Off-center inner stop gives the sphere highlight.
			return RadialGradient(x-r/3, y-r/3, 0, x, y, r, g.From, g.To)
		})
	})
	return nil
}

func drawRectangle(s Surface, p scene.Props) []error {
	x, y := p.Float("x"), p.Float("y")
	w, h := p.Float("width"), p.Float("height")

	withShadow(s, dropShadow(p.String("shadow")), func() {
		s.BeginPath()
		if r := p.Float("borderRadius"); r > 0 {
			roundedRect(s, x, y, w, h, r)
		} else {
			s.Rect(x, y, w, h)
		}
		fillAndStroke(s, p, func(g scene.Gradient) Paint {
			return LinearGradient(x, y, x+w, y+h, g.From, g.To)
		})
	})
	return nil
}

func roundedRect(s Surface, x, y, w, h, r float64) {
	s.MoveTo(x+r, y)
	s.LineTo(x+w-r, y)
	s.QuadraticCurveTo(x+w, y, x+w, y+r)
	s.LineTo(x+w, y+h-r)
	s.QuadraticCurveTo(x+w, y+h, x+w-r, y+h)
	s.LineTo(x+r, y+h)
	s.QuadraticCurveTo(x, y+h, x, y+h-r)
	s.LineTo(x, y+r)
	s.QuadraticCurveTo(x, y, x+r, y)
	s.ClosePath()
}

func drawEllipse(s Surface, p scene.Props) []error {
	x, y := p.Float("x"), p.Float("y")
	rx, ry := p.Float("rx"), p.Float("ry")

	withShadow(s, dropShadow(p.String("shadow")), func() {
		s.Save()
		defer s.Restore()

		s.Translate(x, y)
		if rot := p.Float("rotation"); rot != 0 {
			s.Rotate(rot * math.Pi / 180)
		}
		s.BeginPath()
		s.Ellipse(0, 0, rx, ry, 0, 0, 2*math.Pi)
		fillAndStroke(s, p, func(g scene.Gradient) Paint {
			return RadialGradient(0, 0, 0, 0, 0, math.Max(rx, ry), g.From, g.To)
		})
	})
	return nil
}

func drawPolygon(s Surface, p scene.Props) []error {
	pts := p.Points("points")
	if len(pts) < 3 {
		return nil
	}

	withShadow(s, dropShadow(p.String("shadow")), func() {
		s.BeginPath()
		s.MoveTo(pts[0].X, pts[0].Y)
		for _, pt := range pts[1:] {
			s.LineTo(pt.X, pt.Y)
		}
		s.ClosePath()

		minX, minY, maxX, maxY := pointBounds(pts)
		fillAndStroke(s, p, func(g scene.Gradient) Paint {
			return LinearGradient(minX, minY, maxX, maxY, g.From, g.To)
		})
	})
	return nil
}

func drawPath(s Surface, p scene.Props) []error {
	d := p.String("path")
	if d == "" {
		return nil
	}

	var errs []error
	withShadow(s, dropShadow(p.String("shadow")), func() {
		s.BeginPath()
		errs = TracePath(s, d)

		minX, minY, maxX, maxY := pathBounds(d)
		fillAndStroke(s, p, func(g scene.Gradient) Paint {
			return LinearGradient(minX, minY, maxX, maxY, g.From, g.To)
		})
	})
	return errs
}

func drawLine(s Surface, p scene.Props) []error {
	x1, y1, x2, y2 := p.Float("x1"), p.Float("y1"), p.Float("x2"), p.Float("y2")
	color := p.String("color")
	if color == "" {
		color = defaultInk
	}

	withShadow(s, glowShadow(glowColor(p, color), lineGlowBlur), func() {
		s.SetStrokeStyle(Solid(color))
		s.SetLineWidth(p.NumberOr("strokeWidth", defaultStrokeWidth))
		s.SetLineCap(CapRound)

		dash := p.Numbers("dash")
		if len(dash) > 0 {
			s.SetLineDash(dash)
		}
		if g, ok := p.Gradient("gradient", color); ok {
			s.SetStrokeStyle(LinearGradient(x1, y1, x2, y2, g.From, g.To))
		}

		s.BeginPath()
		s.MoveTo(x1, y1)
		s.LineTo(x2, y2)
		s.Stroke()

		if len(dash) > 0 {
			s.SetLineDash(nil)
		}
	})
	return nil
}

func drawArrow(s Surface, p scene.Props) []error {
	x, y, dx, dy := p.Float("x"), p.Float("y"), p.Float("dx"), p.Float("dy")
	color := p.String("color")
	if color == "" {
		color = defaultInk
	}
	head := p.NumberOr("headSize", defaultHeadLength)
	angle := math.Atan2(dy, dx)
	tipX, tipY := x+dx, y+dy

	withShadow(s, glowShadow(glowColor(p, color), arrowGlowBlur), func() {
		s.SetStrokeStyle(Solid(color))
		s.SetLineWidth(p.NumberOr("strokeWidth", defaultArrowWidth))
		s.SetLineCap(CapRound)
		if g, ok := p.Gradient("gradient", color); ok {
			s.SetStrokeStyle(LinearGradient(x, y, tipX, tipY, g.From, g.To))
		}

		s.BeginPath()
		s.MoveTo(x, y)
		s.LineTo(tipX, tipY)
		s.Stroke()

		s.BeginPath()
		s.MoveTo(tipX, tipY)
		s.LineTo(tipX-head*math.Cos(angle-headAngle), tipY-head*math.Sin(angle-headAngle))
		s.MoveTo(tipX, tipY)
		s.LineTo(tipX-head*math.Cos(angle+headAngle), tipY-head*math.Sin(angle+headAngle))
		s.Stroke()
	})
	return nil
}

// glowColor returns the halo color for lines and arrows, which glow in their
// own color whenever the glow prop is set.
func glowColor(p scene.Props, color string) string {
	if !p.Truthy("glow") {
		return ""
	}
	return color
}

func drawText(s Surface, p scene.Props) []error {
	x, y := p.Float("x"), p.Float("y")
	text := textValue(p["text"])
	size := p.NumberOr("fontSize", defaultFontSize)
	family := p.String("fontFamily")
	if family == "" {
		family = defaultFontFamily
	}
	s.SetFont(Font{Size: size, Family: family})

	if bg, ok := p.Background("background", defaultTextBg); ok {
		w := s.MeasureText(text) + textPadding*2
		h := size + textPadding*2
		s.SetFillStyle(Solid(bg))
		s.FillRect(x-w/2, y-h/2, w, h)
	}

	var sh *Shadow
	if shadow := p.String("shadow"); shadow != "" {
		sh = &Shadow{Color: shadow, Blur: textShadowBlur, OffsetX: textShadowOffset, OffsetY: textShadowOffset}
	}

	withShadow(s, sh, func() {
		// Outline first so the fill sits on top of it.
		if stroke := p.String("stroke"); stroke != "" {
			s.SetStrokeStyle(Solid(stroke))
			s.SetLineWidth(p.NumberOr("strokeWidth", defaultTextStrokeWidth))
			s.StrokeText(text, x, y)
		}

		color := p.String("color")
		if color == "" {
			color = defaultInk
		}
		s.SetFillStyle(Solid(color))
		s.FillText(text, x, y)
	})
	return nil
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}

func pointBounds(pts []scene.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = pts[0].X, pts[0].Y
	maxX, maxY = minX, minY
	for _, pt := range pts[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return
}

// pathBounds measures a path string by tracing it onto a throwaway context.
func pathBounds(d string) (minX, minY, maxX, maxY float64) {
	ctx := NewContext2D()
	_ = TracePath(ctxSurface{ctx}, d)
	minX, minY, maxX, maxY, _ = Bounds(ctx.Path())
	return
}

// ctxSurface adapts a bare Context2D to Surface for measuring. Output
// operations are no-ops.
type ctxSurface struct {
	*Context2D
}

func (ctxSurface) Fill()                               {}
func (ctxSurface) Stroke()                             {}
func (ctxSurface) FillRect(x, y, w, h float64)         {}
func (ctxSurface) MeasureText(string) float64          { return 0 }
func (ctxSurface) FillText(string, float64, float64)   {}
func (ctxSurface) StrokeText(string, float64, float64) {}
func (ctxSurface) Err() error                          { return nil }
