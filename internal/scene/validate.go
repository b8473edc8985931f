package scene

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidScene is matched by every ValidationError.
var ErrInvalidScene = errors.New("invalid scene")

// FieldError is one problem found while validating a scene.
type FieldError struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

func (e FieldError) String() string {
	return e.Path + ": " + e.Problem
}

// ValidationError lists everything wrong with a rejected scene.
type ValidationError struct {
	SceneID string       `json:"sceneId,omitempty"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid scene %q: %s", e.SceneID, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidScene
}

func (e *ValidationError) add(path, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Path: path, Problem: fmt.Sprintf(format, args...)})
}

// Validate checks the structural invariants the evaluator relies on: positive
// duration and frame rate, unique layer IDs, non-empty interpolation windows
// and positive orbit radius and period. Unknown shape types are accepted here
// and reported when drawn.
func (s *Scene) Validate() error {
	verr := &ValidationError{SceneID: s.ID}

	if s.ID == "" {
		verr.add("id", "is required")
	}
	if !positive(s.DurationMs) {
		verr.add("duration", "must be > 0, got %v", s.DurationMs)
	}
	if !positive(s.FPS) {
		verr.add("fps", "must be > 0, got %v", s.FPS)
	}

	seen := make(map[string]int, len(s.Layers))
	for i, l := range s.Layers {
		path := fmt.Sprintf("layers[%d]", i)
		if l.ID == "" {
			verr.add(path+".id", "is required")
		} else if prev, dup := seen[l.ID]; dup {
			verr.add(path+".id", "duplicates layers[%d] (%q)", prev, l.ID)
		} else {
			seen[l.ID] = i
		}
		if l.Type == "" {
			verr.add(path+".type", "is required")
		}
		for j, a := range l.Animations {
			validateAnimation(verr, fmt.Sprintf("%s.animations[%d]", path, j), a)
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func validateAnimation(verr *ValidationError, path string, a Animation) {
	switch a.Kind {
	case KindOrbit:
		if !positive(a.Radius) {
			verr.add(path+".radius", "must be > 0, got %v", a.Radius)
		}
		if !positive(a.PeriodMs) {
			verr.add(path+".duration", "orbit period must be > 0, got %v", a.PeriodMs)
		}
		if !finite(a.CenterX) || !finite(a.CenterY) {
			verr.add(path, "orbit center must be finite")
		}
	case KindInterpolate:
		if a.Property == "" {
			verr.add(path+".property", "is required")
		}
		if !finite(a.StartMs) || !finite(a.EndMs) {
			verr.add(path, "window must be finite")
		} else if a.EndMs <= a.StartMs {
			verr.add(path+".end", "must be > start (%v), got %v", a.StartMs, a.EndMs)
		}
		if !finite(a.From) || !finite(a.To) {
			verr.add(path, "from/to must be finite")
		}
	default:
		verr.add(path, "unknown animation kind %d", a.Kind)
	}
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
