package scene

// ShapeType is the tag selecting how a layer is drawn.
type ShapeType string

const (
	ShapeCircle    ShapeType = "circle"
	ShapeRectangle ShapeType = "rectangle"
	ShapeEllipse   ShapeType = "ellipse"
	ShapePolygon   ShapeType = "polygon"
	ShapePath      ShapeType = "path"
	ShapeLine      ShapeType = "line"
	ShapeArrow     ShapeType = "arrow"
	ShapeText      ShapeType = "text"
)

// ShapeTypes lists the built-in shape variants.
var ShapeTypes = []ShapeType{
	ShapeCircle,
	ShapeRectangle,
	ShapeEllipse,
	ShapePolygon,
	ShapePath,
	ShapeLine,
	ShapeArrow,
	ShapeText,
}

// Known reports whether t is one of the built-in shape variants.
func (t ShapeType) Known() bool {
	for _, s := range ShapeTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Scene is a complete visualization: a timeline length, a frame rate and the
// layers to paint, back to front.
type Scene struct {
	ID         string  `json:"id"`
	DurationMs float64 `json:"duration"`
	FPS        float64 `json:"fps"`
	Layers     []Layer `json:"layers"`
}

// Layer is one drawable shape plus the animations that move it.
type Layer struct {
	ID         string      `json:"id"`
	Type       ShapeType   `json:"type"`
	Props      Props       `json:"props"`
	Animations []Animation `json:"animations"`
}

// AnimationKind distinguishes the animation variants.
type AnimationKind int

const (
	KindInterpolate AnimationKind = iota
	KindOrbit
)

// OrbitProperty is the property tag that selects an orbit animation.
const OrbitProperty = "orbit"

// Animation is either a time-bounded linear interpolation of one numeric
// property or an orbit driving x and y around a center.
type Animation struct {
	Kind     AnimationKind
	Property string

	// Interpolation
	From    float64
	To      float64
	StartMs float64
	EndMs   float64

	// Orbit
	CenterX  float64
	CenterY  float64
	Radius   float64
	PeriodMs float64
}

// Interpolate builds an interpolation animation.
func Interpolate(property string, from, to, startMs, endMs float64) Animation {
	return Animation{
		Kind:     KindInterpolate,
		Property: property,
		From:     from,
		To:       to,
		StartMs:  startMs,
		EndMs:    endMs,
	}
}

// Orbit builds an orbit animation.
func Orbit(centerX, centerY, radius, periodMs float64) Animation {
	return Animation{
		Kind:     KindOrbit,
		Property: OrbitProperty,
		CenterX:  centerX,
		CenterY:  centerY,
		Radius:   radius,
		PeriodMs: periodMs,
	}
}

// Layer returns the layer with the given ID.
func (s *Scene) Layer(id string) (Layer, bool) {
	for _, l := range s.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// FrameCount returns the number of frames needed to cover the scene at its
// frame rate, including the final frame at the scene's end.
func (s *Scene) FrameCount() int {
	if s.FPS <= 0 || s.DurationMs <= 0 {
		return 0
	}
	n := int(s.DurationMs * s.FPS / 1000)
	return n + 1
}

// FrameTime returns the time offset of frame i, clamped to the duration.
func (s *Scene) FrameTime(i int) float64 {
	t := float64(i) * 1000 / s.FPS
	if t > s.DurationMs {
		return s.DurationMs
	}
	return t
}
