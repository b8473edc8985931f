// Package sample holds the built-in demonstration scenes, one per topic the
// offline answer generator recognizes.
package sample

import (
	"sort"
	"strings"

	"github.com/inamate/vizscene/internal/scene"
)

const (
	NewtonFirstLaw = "newton_first_law"
	SolarSystem    = "solar_system"
	Photosynthesis = "photosynthesis"
	Default        = "default_visualization"
)

// Sample is a canned answer: a short explanation and its visualization.
type Sample struct {
	Name  string       `json:"name"`
	Text  string       `json:"text"`
	Scene *scene.Scene `json:"visualization"`
}

var builders = map[string]func() Sample{
	NewtonFirstLaw: newtonFirstLaw,
	SolarSystem:    solarSystem,
	Photosynthesis: photosynthesis,
	Default:        defaultVisualization,
}

// Names lists the built-in samples in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a fresh copy of the named sample.
func Get(name string) (Sample, bool) {
	build, ok := builders[name]
	if !ok {
		return Sample{}, false
	}
	return build(), true
}

// ForQuestion picks the sample whose topic the question mentions, falling
// back to the default visualization.
func ForQuestion(question string) Sample {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "newton") && strings.Contains(q, "first"):
		return newtonFirstLaw()
	case strings.Contains(q, "solar system") || strings.Contains(q, "planets"):
		return solarSystem()
	case strings.Contains(q, "photosynthesis"):
		return photosynthesis()
	}
	s := defaultVisualization()
	s.Text = "I understand you're asking about: " + question + ". " + s.Text
	return s
}

func gradient(from, to string) map[string]any {
	return map[string]any{"from": from, "to": to}
}

func background(color string) map[string]any {
	return map[string]any{"color": color}
}

const (
	dropShadow = "rgba(0,0,0,0.3)"
	textShadow = "rgba(0,0,0,0.2)"
	textBg     = "rgba(255,255,255,0.9)"
	outline    = "#2C3E50"
	fontStack  = "Arial, sans-serif"
)

func newtonFirstLaw() Sample {
	return Sample{
		Name: NewtonFirstLaw,
		Text: "Newton's First Law states that an object at rest stays at rest, and an object in motion stays in motion at constant velocity, unless acted upon by an external force. This is also known as the law of inertia.",
		Scene: &scene.Scene{
			ID:         NewtonFirstLaw,
			DurationMs: 4000,
			FPS:        30,
			Layers: []scene.Layer{
				{
					ID:   "ball1",
					Type: scene.ShapeCircle,
					Props: scene.Props{
						"x": 100.0, "y": 200.0, "r": 25.0,
						"fill":        "#45B7D1",
						"gradient":    gradient("#45B7D1", "#87CEEB"),
						"shadow":      dropShadow,
						"stroke":      outline,
						"strokeWidth": 2.0,
					},
					Animations: []scene.Animation{
						scene.Interpolate("x", 100, 400, 0, 3000),
					},
				},
				{
					ID:   "ball2",
					Type: scene.ShapeCircle,
					Props: scene.Props{
						"x": 100.0, "y": 300.0, "r": 25.0,
						"fill":        "#FF6B6B",
						"gradient":    gradient("#FF6B6B", "#FF8E8E"),
						"shadow":      dropShadow,
						"stroke":      outline,
						"strokeWidth": 2.0,
					},
				},
				{
					ID:   "arrow1",
					Type: scene.ShapeArrow,
					Props: scene.Props{
						"x": 90.0, "y": 200.0, "dx": 40.0, "dy": 0.0,
						"color":       "#E74C3C",
						"strokeWidth": 4.0,
						"glow":        "#E74C3C",
						"headSize":    15.0,
					},
				},
				{
					ID:   "text1",
					Type: scene.ShapeText,
					Props: scene.Props{
						"x": 250.0, "y": 150.0,
						"text":       "Moving ball continues moving",
						"fontSize":   18.0,
						"color":      outline,
						"fontFamily": fontStack,
						"background": background(textBg),
						"shadow":     textShadow,
					},
				},
				{
					ID:   "text2",
					Type: scene.ShapeText,
					Props: scene.Props{
						"x": 250.0, "y": 350.0,
						"text":       "Stationary ball stays at rest",
						"fontSize":   18.0,
						"color":      outline,
						"fontFamily": fontStack,
						"background": background(textBg),
						"shadow":     textShadow,
					},
				},
			},
		},
	}
}

func solarSystem() Sample {
	ring := func(id string, r float64) scene.Layer {
		return scene.Layer{
			ID:   id,
			Type: scene.ShapeCircle,
			Props: scene.Props{
				"x": 300.0, "y": 300.0, "r": r,
				"fill":        "transparent",
				"stroke":      "#34495e",
				"strokeWidth": 2.0,
				"dash":        []any{5.0, 5.0},
			},
		}
	}

	return Sample{
		Name: SolarSystem,
		Text: "The Solar System consists of the Sun at the center with planets orbiting around it due to gravitational pull. The inner planets orbit faster than the outer planets.",
		Scene: &scene.Scene{
			ID:         SolarSystem,
			DurationMs: 6000,
			FPS:        30,
			Layers: []scene.Layer{
				{
					ID:   "sun",
					Type: scene.ShapeCircle,
					Props: scene.Props{
						"x": 300.0, "y": 300.0, "r": 45.0,
						"fill":     "#FFD700",
						"gradient": gradient("#FFD700", "#FFA500"),
						"glow":     "#FFD700",
						"shadow":   dropShadow,
					},
				},
				{
					ID:   "earth",
					Type: scene.ShapeCircle,
					Props: scene.Props{
						"x": 200.0, "y": 300.0, "r": 18.0,
						"fill":        "#4ECDC4",
						"gradient":    gradient("#4ECDC4", "#87CEEB"),
						"shadow":      dropShadow,
						"stroke":      outline,
						"strokeWidth": 2.0,
					},
					Animations: []scene.Animation{scene.Orbit(300, 300, 100, 3000)},
				},
				{
					ID:   "mars",
					Type: scene.ShapeCircle,
					Props: scene.Props{
						"x": 150.0, "y": 300.0, "r": 15.0,
						"fill":        "#FF6B6B",
						"gradient":    gradient("#FF6B6B", "#FF8E8E"),
						"shadow":      dropShadow,
						"stroke":      outline,
						"strokeWidth": 2.0,
					},
					Animations: []scene.Animation{scene.Orbit(300, 300, 150, 6000)},
				},
				ring("orbit_earth", 100),
				ring("orbit_mars", 150),
				{
					ID:   "title",
					Type: scene.ShapeText,
					Props: scene.Props{
						"x": 300.0, "y": 50.0,
						"text":       "Solar System",
						"fontSize":   24.0,
						"color":      outline,
						"fontFamily": fontStack,
						"background": background(textBg),
						"shadow":     textShadow,
					},
				},
			},
		},
	}
}

func photosynthesis() Sample {
	label := func(id string, x, y float64, text, color string) scene.Layer {
		return scene.Layer{
			ID:    id,
			Type:  scene.ShapeText,
			Props: scene.Props{"x": x, "y": y, "text": text, "fontSize": 14.0, "color": color},
		}
	}

	return Sample{
		Name: Photosynthesis,
		Text: "Photosynthesis is the process by which plants convert sunlight, carbon dioxide, and water into glucose and oxygen. This process occurs in the chloroplasts of plant cells.",
		Scene: &scene.Scene{
			ID:         Photosynthesis,
			DurationMs: 5000,
			FPS:        30,
			Layers: []scene.Layer{
				{
					ID:    "sun",
					Type:  scene.ShapeCircle,
					Props: scene.Props{"x": 150.0, "y": 100.0, "r": 25.0, "fill": "#f1c40f"},
				},
				{
					ID:    "plant",
					Type:  scene.ShapeRectangle,
					Props: scene.Props{"x": 200.0, "y": 200.0, "width": 20.0, "height": 100.0, "fill": "#27ae60"},
				},
				{
					ID:         "co2_arrow",
					Type:       scene.ShapeArrow,
					Props:      scene.Props{"x": 300.0, "y": 250.0, "dx": -80.0, "dy": -30.0, "color": "#e74c3c", "strokeWidth": 3.0},
					Animations: []scene.Animation{scene.Interpolate("x", 300, 220, 0, 2000)},
				},
				{
					ID:         "h2o_arrow",
					Type:       scene.ShapeArrow,
					Props:      scene.Props{"x": 200.0, "y": 350.0, "dx": 0.0, "dy": -100.0, "color": "#3498db", "strokeWidth": 3.0},
					Animations: []scene.Animation{scene.Interpolate("y", 350, 250, 0, 2000)},
				},
				{
					ID:         "o2_arrow",
					Type:       scene.ShapeArrow,
					Props:      scene.Props{"x": 220.0, "y": 200.0, "dx": 80.0, "dy": -50.0, "color": "#2ecc71", "strokeWidth": 3.0},
					Animations: []scene.Animation{scene.Interpolate("x", 220, 300, 2000, 4000)},
				},
				label("text_co2", 320, 240, "CO₂", "#e74c3c"),
				label("text_h2o", 180, 360, "H₂O", "#3498db"),
				label("text_o2", 320, 140, "O₂", "#2ecc71"),
			},
		},
	}
}

func defaultVisualization() Sample {
	return Sample{
		Name: Default,
		Text: "This is a demonstration scene; no topic-specific visualization is available.",
		Scene: &scene.Scene{
			ID:         Default,
			DurationMs: 3000,
			FPS:        30,
			Layers: []scene.Layer{
				{
					ID:    "demo_circle",
					Type:  scene.ShapeCircle,
					Props: scene.Props{"x": 200.0, "y": 200.0, "r": 30.0, "fill": "#9b59b6"},
					Animations: []scene.Animation{
						scene.Interpolate("r", 30, 50, 0, 1500),
						scene.Interpolate("r", 50, 30, 1500, 3000),
					},
				},
				{
					ID:    "demo_text",
					Type:  scene.ShapeText,
					Props: scene.Props{"x": 200.0, "y": 280.0, "text": "Demo Visualization", "fontSize": 16.0, "color": "#2c3e50"},
				},
			},
		},
	}
}
