package raster

import (
	"math"

	"github.com/inamate/vizscene/internal/render"
)

// joinThreshold is the turn angle below which consecutive stroke segments
// already overlap enough that no round join is needed.
const joinThreshold = math.Pi / 12

// strokeOutline expands a polyline into polygons covering a stroke of the
// given width: one quad per segment, round joins at corners and, for round
// caps, discs at the open ends.
func strokeOutline(sp render.Subpath, width float64, lineCap render.LineCap) [][]render.Pt {
	pts := dedupe(sp.Points)
	if sp.Closed && len(pts) > 2 && pts[len(pts)-1] != pts[0] {
		pts = append(pts, pts[0])
	}
	if len(pts) < 2 || width <= 0 {
		return nil
	}

	hw := width / 2
	var out [][]render.Pt
	for i := 0; i+1 < len(pts); i++ {
		p0, p1 := pts[i], pts[i+1]
		dx, dy := p1.X-p0.X, p1.Y-p0.Y
		l := math.Hypot(dx, dy)
		nx, ny := -dy/l*hw, dx/l*hw
		out = append(out, []render.Pt{
			{X: p0.X + nx, Y: p0.Y + ny},
			{X: p1.X + nx, Y: p1.Y + ny},
			{X: p1.X - nx, Y: p1.Y - ny},
			{X: p0.X - nx, Y: p0.Y - ny},
		})
	}

	for i := 1; i+1 < len(pts); i++ {
		if turn(pts[i-1], pts[i], pts[i+1]) > joinThreshold {
			out = append(out, disc(pts[i], hw))
		}
	}
	if sp.Closed && len(pts) > 3 {
		n := len(pts)
		if turn(pts[n-2], pts[0], pts[1]) > joinThreshold {
			out = append(out, disc(pts[0], hw))
		}
	}

	if lineCap == render.CapRound && !sp.Closed {
		out = append(out, disc(pts[0], hw), disc(pts[len(pts)-1], hw))
	}
	return out
}

// dedupe drops consecutive duplicate points, which have no direction.
func dedupe(pts []render.Pt) []render.Pt {
	out := make([]render.Pt, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// turn is the absolute change of direction at b, in radians.
func turn(a, b, c render.Pt) float64 {
	a1 := math.Atan2(b.Y-a.Y, b.X-a.X)
	a2 := math.Atan2(c.Y-b.Y, c.X-b.X)
	d := math.Abs(a2 - a1)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// disc returns a polygon approximating a circle.
func disc(c render.Pt, r float64) []render.Pt {
	n := int(math.Ceil(r * 2))
	if n < 12 {
		n = 12
	}
	if n > 64 {
		n = 64
	}
	pts := make([]render.Pt, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = render.Pt{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

// maxDashSteps bounds the pattern entries walked along one subpath. Patterns
// finer than that are stroked solid.
const maxDashSteps = 10000

// applyDash splits a polyline into the "on" runs of a dash pattern measured
// in device pixels. An empty pattern returns the path unchanged.
func applyDash(sp render.Subpath, pattern []float64) []render.Subpath {
	period := total(pattern)
	if len(pattern) == 0 || period <= 0 || len(sp.Points) == 0 {
		return []render.Subpath{sp}
	}

	pts := sp.Points
	if sp.Closed && len(pts) > 2 {
		pts = append(append([]render.Pt(nil), pts...), pts[0])
	}
	if polyLength(pts)/period*float64(len(pattern)) > maxDashSteps {
		return []render.Subpath{sp}
	}

	var runs []render.Subpath
	idx := 0
	left := pattern[0]
	on := true
	cur := []render.Pt{pts[0]}

	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for segLen-pos > left {
			pos += left
			t := pos / segLen
			p := render.Pt{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			if on {
				cur = append(cur, p)
				runs = append(runs, render.Subpath{Points: cur})
				cur = nil
			} else {
				cur = []render.Pt{p}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= segLen - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		runs = append(runs, render.Subpath{Points: cur})
	}
	return runs
}

func polyLength(pts []render.Pt) float64 {
	var l float64
	for i := 0; i+1 < len(pts); i++ {
		l += math.Hypot(pts[i+1].X-pts[i].X, pts[i+1].Y-pts[i].Y)
	}
	return l
}

func total(pattern []float64) float64 {
	var s float64
	for _, v := range pattern {
		s += v
	}
	return s
}
