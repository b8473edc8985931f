package engine

import (
	"math"

	"github.com/inamate/vizscene/internal/scene"
)

// ResolvedLayer is a layer with its properties evaluated at one instant.
type ResolvedLayer struct {
	ID    string          `json:"id"`
	Type  scene.ShapeType `json:"type"`
	Props scene.Props     `json:"props"`
}

// Resolve evaluates a layer's animations at timeMs and returns a fresh
// property map. The layer's own props are never modified, and the result
// depends only on (layer, timeMs).
//
// Animations apply in declaration order, so a later animation overrides an
// earlier one wherever both are active for the same property.
func Resolve(layer scene.Layer, timeMs float64) scene.Props {
	props := layer.Props.Clone()

	for _, anim := range layer.Animations {
		switch anim.Kind {
		case scene.KindOrbit:
			x, y := orbitPosition(anim, timeMs)
			props["x"] = x
			props["y"] = y

		case scene.KindInterpolate:
			if timeMs < anim.StartMs {
				continue
			}
			props[anim.Property] = interpolate(anim, timeMs)
		}
	}

	return props
}

// ResolveScene evaluates every layer in paint order.
func ResolveScene(s *scene.Scene, timeMs float64) []ResolvedLayer {
	if s == nil {
		return nil
	}
	out := make([]ResolvedLayer, len(s.Layers))
	for i, l := range s.Layers {
		out[i] = ResolvedLayer{
			ID:    l.ID,
			Type:  l.Type,
			Props: Resolve(l, timeMs),
		}
	}
	return out
}

// interpolate returns the animated value at t >= start. Progress clamps to
// [0, 1] so the value holds at `to` once the window has passed.
func interpolate(a scene.Animation, t float64) float64 {
	progress := (t - a.StartMs) / (a.EndMs - a.StartMs)
	progress = math.Max(0, math.Min(1, progress))

	// Exact at the end of the window regardless of rounding in from+(to-from).
	if progress == 1 {
		return a.To
	}
	return a.From + (a.To-a.From)*progress
}

// orbitPosition places a point on the orbit circle. The motion is not clamped,
// so short periods repeat for as long as the scene runs. Reducing t by whole
// periods first keeps every period boundary exactly at (cx+r, cy).
func orbitPosition(a scene.Animation, t float64) (float64, float64) {
	phase := math.Mod(t, a.PeriodMs) / a.PeriodMs
	angle := phase * 2 * math.Pi
	return a.CenterX + a.Radius*math.Cos(angle), a.CenterY + a.Radius*math.Sin(angle)
}
