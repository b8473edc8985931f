package scene

import (
	"encoding/json"
	"math"
)

// Props is a layer's property bag. Keys depend on the shape type; values are
// numbers, strings, or nested descriptors (gradients, backgrounds, point lists,
// dash arrays). Unknown keys are carried along untouched.
type Props map[string]any

// Gradient is a two-stop color transition.
type Gradient struct {
	From string
	To   string
}

// Point is a 2D coordinate from a polygon's point list.
type Point struct {
	X float64
	Y float64
}

// Clone returns a shallow copy. Nested descriptors are shared, which is fine
// because nothing mutates them.
func (p Props) Clone() Props {
	out := make(Props, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Number returns the numeric value of key.
func (p Props) Number(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return toFloat64(v)
}

// NumberOr returns the numeric value of key, or def when absent, zero or not a
// number. Zero falls back too: the generator uses 0 and "missing" alike for
// widths and sizes.
func (p Props) NumberOr(key string, def float64) float64 {
	if v, ok := p.Number(key); ok && v != 0 {
		return v
	}
	return def
}

// Float returns the numeric value of key or 0.
func (p Props) Float(key string) float64 {
	v, _ := p.Number(key)
	return v
}

// String returns the string value of key, or "" when absent or not a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Truthy reports whether key holds a value that enables an optional effect:
// a non-empty string, a non-zero number, true, or a non-empty descriptor.
func (p Props) Truthy(key string) bool {
	switch v := p[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case map[string]any:
		return true
	case []any:
		return true
	default:
		f, ok := toFloat64(v)
		return ok && f != 0
	}
}

// Gradient returns the gradient descriptor stored at key. Missing stops fall
// back to fallback.
func (p Props) Gradient(key, fallback string) (Gradient, bool) {
	m, ok := p[key].(map[string]any)
	if !ok {
		return Gradient{}, false
	}
	g := Gradient{From: fallback, To: fallback}
	if s, ok := m["from"].(string); ok && s != "" {
		g.From = s
	}
	if s, ok := m["to"].(string); ok && s != "" {
		g.To = s
	}
	return g, true
}

// Background returns the color of a `{color: ...}` descriptor at key.
func (p Props) Background(key, fallback string) (string, bool) {
	m, ok := p[key].(map[string]any)
	if !ok {
		return "", false
	}
	if s, ok := m["color"].(string); ok && s != "" {
		return s, true
	}
	return fallback, true
}

// Points returns a list of `{x, y}` descriptors stored at key.
func (p Props) Points(key string) []Point {
	raw, ok := p[key].([]any)
	if !ok {
		if pts, ok := p[key].([]Point); ok {
			return pts
		}
		return nil
	}
	pts := make([]Point, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		x, _ := toFloat64(m["x"])
		y, _ := toFloat64(m["y"])
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts
}

// Numbers returns a numeric array stored at key, such as a dash pattern.
func (p Props) Numbers(key string) []float64 {
	switch v := p[key].(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			if f, ok := toFloat64(item); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

// toFloat64 converts decoded JSON/YAML numbers to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
