package render

import "math"

// Affine is a 2D affine transform laid out like Canvas2D's setTransform:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Affine [6]float64

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 1, 0, 0}
}

// Then returns m followed by other in local coordinates, i.e. m * other.
func (m Affine) Then(other Affine) Affine {
	return Affine{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Translated appends a translation.
func (m Affine) Translated(tx, ty float64) Affine {
	return m.Then(Affine{1, 0, 0, 1, tx, ty})
}

// Rotated appends a rotation in radians.
func (m Affine) Rotated(radians float64) Affine {
	cos, sin := math.Cos(radians), math.Sin(radians)
	return m.Then(Affine{cos, sin, -sin, cos, 0, 0})
}

// Apply maps a point.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Scale is the mean linear scale factor, used for line widths and radii.
func (m Affine) Scale() float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// Invert returns the inverse, or the identity when m is singular.
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return Identity()
	}
	inv := 1 / det
	return Affine{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}
}

// Pt is a point in device space.
type Pt struct {
	X, Y float64
}

// Subpath is a flattened polyline in device space.
type Subpath struct {
	Points []Pt
	Closed bool
}

// State is the graphics state saved and restored by Save/Restore.
type State struct {
	CTM       Affine
	Fill      Paint
	Stroke    Paint
	LineWidth float64
	LineCap   LineCap
	Dash      []float64
	Shadow    Shadow
	Font      Font
}

// DefaultState matches a fresh Canvas2D context.
func DefaultState() State {
	return State{
		CTM:       Identity(),
		Fill:      Solid("#000"),
		Stroke:    Solid("#000"),
		LineWidth: 1,
		LineCap:   CapButt,
		Font:      Font{Size: 10, Family: "sans-serif"},
	}
}

// Context2D implements the state and path half of Surface. Concrete surfaces
// embed it and add the operations that actually produce output.
type Context2D struct {
	state State
	stack []State

	subpaths []Subpath
	// current point and start of the open subpath, in user space of the
	// transform active when they were set
	cur, start Pt
	hasCur     bool
}

// NewContext2D returns a context in the default state.
func NewContext2D() *Context2D {
	return &Context2D{state: DefaultState()}
}

// State returns the current graphics state.
func (c *Context2D) State() State {
	return c.state
}

// Path returns the current path in device space.
func (c *Context2D) Path() []Subpath {
	return c.subpaths
}

func (c *Context2D) Save() {
	saved := c.state
	saved.Dash = append([]float64(nil), c.state.Dash...)
	c.stack = append(c.stack, saved)
}

// Restore pops the last saved state. An unbalanced Restore is ignored.
func (c *Context2D) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// Depth returns the number of saved states.
func (c *Context2D) Depth() int {
	return len(c.stack)
}

func (c *Context2D) Translate(x, y float64) {
	c.state.CTM = c.state.CTM.Translated(x, y)
}

func (c *Context2D) Rotate(radians float64) {
	c.state.CTM = c.state.CTM.Rotated(radians)
}

func (c *Context2D) SetFillStyle(p Paint)   { c.state.Fill = p }
func (c *Context2D) SetStrokeStyle(p Paint) { c.state.Stroke = p }
func (c *Context2D) SetLineCap(lc LineCap)  { c.state.LineCap = lc }
func (c *Context2D) SetShadow(s Shadow)     { c.state.Shadow = s }
func (c *Context2D) SetFont(f Font)         { c.state.Font = f }

func (c *Context2D) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		c.state.LineWidth = w
	}
}

// SetLineDash sets the dash pattern; an empty pattern draws solid lines.
// Patterns with an odd count are repeated, as in Canvas2D.
func (c *Context2D) SetLineDash(pattern []float64) {
	for _, v := range pattern {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	if len(pattern)%2 == 1 {
		pattern = append(append([]float64(nil), pattern...), pattern...)
	}
	c.state.Dash = append([]float64(nil), pattern...)
}

func (c *Context2D) BeginPath() {
	c.subpaths = nil
	c.hasCur = false
}

func (c *Context2D) MoveTo(x, y float64) {
	c.subpaths = append(c.subpaths, Subpath{Points: []Pt{c.device(x, y)}})
	c.cur = Pt{x, y}
	c.start = c.cur
	c.hasCur = true
}

func (c *Context2D) LineTo(x, y float64) {
	if !c.hasCur {
		c.MoveTo(x, y)
		return
	}
	c.appendPoint(x, y)
}

func (c *Context2D) QuadraticCurveTo(cx, cy, x, y float64) {
	if !c.hasCur {
		c.MoveTo(cx, cy)
	}
	x0, y0 := c.cur.X, c.cur.Y
	n := segmentsFor(c.state.CTM.Scale() * (math.Hypot(cx-x0, cy-y0) + math.Hypot(x-cx, y-cy)))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		c.appendPoint(u*u*x0+2*u*t*cx+t*t*x, u*u*y0+2*u*t*cy+t*t*y)
	}
}

func (c *Context2D) Arc(x, y, r, start, end float64) {
	c.Ellipse(x, y, r, r, 0, start, end)
}

// Ellipse adds an elliptical arc, connecting it to the current point if
// there is one.
func (c *Context2D) Ellipse(x, y, rx, ry, rotation, start, end float64) {
	if rx < 0 || ry < 0 {
		return
	}
	sweep := end - start
	if math.Abs(sweep) > 2*math.Pi {
		sweep = math.Copysign(2*math.Pi, sweep)
	}
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	at := func(theta float64) (float64, float64) {
		ex, ey := rx*math.Cos(theta), ry*math.Sin(theta)
		return x + ex*cos - ey*sin, y + ex*sin + ey*cos
	}

	n := segmentsFor(c.state.CTM.Scale() * math.Max(rx, ry) * math.Abs(sweep))
	px, py := at(start)
	if c.hasCur {
		c.appendPoint(px, py)
	} else {
		c.MoveTo(px, py)
	}
	for i := 1; i <= n; i++ {
		px, py = at(start + sweep*float64(i)/float64(n))
		c.appendPoint(px, py)
	}
}

func (c *Context2D) Rect(x, y, w, h float64) {
	c.MoveTo(x, y)
	c.appendPoint(x+w, y)
	c.appendPoint(x+w, y+h)
	c.appendPoint(x, y+h)
	c.ClosePath()
}

func (c *Context2D) ClosePath() {
	if len(c.subpaths) == 0 || !c.hasCur {
		return
	}
	c.subpaths[len(c.subpaths)-1].Closed = true
	// A new subpath starts at the same point.
	c.MoveTo(c.start.X, c.start.Y)
}

// Fillable returns the subpaths that enclose area.
func (c *Context2D) Fillable() []Subpath {
	out := make([]Subpath, 0, len(c.subpaths))
	for _, sp := range c.subpaths {
		if len(sp.Points) >= 3 {
			out = append(out, sp)
		}
	}
	return out
}

// Strokable returns the subpaths with at least one segment.
func (c *Context2D) Strokable() []Subpath {
	out := make([]Subpath, 0, len(c.subpaths))
	for _, sp := range c.subpaths {
		if len(sp.Points) >= 2 {
			out = append(out, sp)
		}
	}
	return out
}

// RectPath returns a closed rectangle in device space without touching the
// current path, for FillRect.
func (c *Context2D) RectPath(x, y, w, h float64) Subpath {
	pts := []Pt{c.device(x, y), c.device(x+w, y), c.device(x+w, y+h), c.device(x, y+h)}
	return Subpath{Points: pts, Closed: true}
}

// Device maps a user-space point through the current transform.
func (c *Context2D) Device(x, y float64) Pt {
	return c.device(x, y)
}

func (c *Context2D) appendPoint(x, y float64) {
	last := &c.subpaths[len(c.subpaths)-1]
	last.Points = append(last.Points, c.device(x, y))
	c.cur = Pt{x, y}
}

func (c *Context2D) device(x, y float64) Pt {
	dx, dy := c.state.CTM.Apply(x, y)
	return Pt{dx, dy}
}

// segmentsFor picks a flattening resolution for a curve of the given device
// length.
func segmentsFor(length float64) int {
	n := int(math.Ceil(length / 3))
	if n < 8 {
		return 8
	}
	if n > 360 {
		return 360
	}
	return n
}

// Bounds returns the bounding box of a set of subpaths.
func Bounds(paths []Subpath) (minX, minY, maxX, maxY float64, ok bool) {
	for _, sp := range paths {
		for _, p := range sp.Points {
			if !ok {
				minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
				ok = true
				continue
			}
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	return
}
