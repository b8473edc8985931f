package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFPS applies when a scene omits its frame rate.
	DefaultFPS = 30
	// defaultEndMs is the end of an interpolation that names neither end nor
	// duration.
	defaultEndMs = 1000
)

type wireScene struct {
	ID       string   `json:"id"`
	Duration *float64 `json:"duration"`
	FPS      *float64 `json:"fps"`
	Layers   []Layer  `json:"layers"`
}

type wireAnimation struct {
	Property string   `json:"property"`
	From     *float64 `json:"from,omitempty"`
	To       *float64 `json:"to,omitempty"`
	Start    *float64 `json:"start,omitempty"`
	End      *float64 `json:"end,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	CenterX  *float64 `json:"centerX,omitempty"`
	CenterY  *float64 `json:"centerY,omitempty"`
	Radius   *float64 `json:"radius,omitempty"`
}

// UnmarshalJSON decodes the generator's scene shape. A missing fps falls back
// to DefaultFPS; a missing duration is left at zero so validation rejects it.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var w wireScene
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.ID = w.ID
	s.DurationMs = deref(w.Duration, 0)
	s.FPS = deref(w.FPS, DefaultFPS)
	s.Layers = w.Layers
	return nil
}

// UnmarshalJSON decodes either animation variant. Interpolation windows use
// the same fallbacks the browser player always applied: start defaults to 0,
// end to duration and then to one second.
func (a *Animation) UnmarshalJSON(data []byte) error {
	var w wireAnimation
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.Property == OrbitProperty {
		*a = Orbit(deref(w.CenterX, 0), deref(w.CenterY, 0), deref(w.Radius, 0), deref(w.Duration, 0))
		return nil
	}

	end := deref(w.End, 0)
	if end == 0 {
		end = deref(w.Duration, 0)
	}
	if end == 0 {
		end = defaultEndMs
	}
	*a = Interpolate(w.Property, deref(w.From, 0), deref(w.To, 0), deref(w.Start, 0), end)
	return nil
}

// MarshalJSON encodes the animation in the generator's wire shape.
func (a Animation) MarshalJSON() ([]byte, error) {
	if a.Kind == KindOrbit {
		return json.Marshal(wireAnimation{
			Property: OrbitProperty,
			CenterX:  &a.CenterX,
			CenterY:  &a.CenterY,
			Radius:   &a.Radius,
			Duration: &a.PeriodMs,
		})
	}
	return json.Marshal(wireAnimation{
		Property: a.Property,
		From:     &a.From,
		To:       &a.To,
		Start:    &a.StartMs,
		End:      &a.EndMs,
	})
}

// Format is a scene file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a scene without validating it.
func Decode(data []byte, format Format) (*Scene, error) {
	if format == FormatYAML {
		var err error
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}

// Parse decodes and validates a scene.
func Parse(data []byte, format Format) (*Scene, error) {
	s, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadFile loads and validates a JSON or YAML scene file.
func ReadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatFromPath(path))
}

// Encode renders a scene as indented JSON or as YAML.
func Encode(s *Scene, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	if format != FormatYAML {
		return append(data, '\n'), nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// WriteFile stores a scene as JSON or YAML depending on the extension.
func WriteFile(path string, s *Scene) error {
	data, err := Encode(s, FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// yamlToJSON re-encodes a YAML scene so a single decoder handles both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scene yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert scene yaml: %w", err)
	}
	return out, nil
}

func deref(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
