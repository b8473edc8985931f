package render

import (
	"errors"
	"log/slog"

	"github.com/inamate/vizscene/internal/engine"
	"github.com/inamate/vizscene/internal/scene"
)

// ShapeRenderer draws one layer. Returned errors are non-fatal: the layer
// was drawn as far as possible.
type ShapeRenderer interface {
	Render(s Surface, props scene.Props) []error
}

// ShapeFunc adapts a function to ShapeRenderer.
type ShapeFunc func(s Surface, props scene.Props) []error

func (f ShapeFunc) Render(s Surface, props scene.Props) []error {
	return f(s, props)
}

// Registry maps shape types to renderers.
type Registry struct {
	renderers map[scene.ShapeType]ShapeRenderer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[scene.ShapeType]ShapeRenderer)}
}

// DefaultRegistry returns a registry with all built-in shapes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(scene.ShapeCircle, ShapeFunc(drawCircle))
	r.Register(scene.ShapeRectangle, ShapeFunc(drawRectangle))
	r.Register(scene.ShapeEllipse, ShapeFunc(drawEllipse))
	r.Register(scene.ShapePolygon, ShapeFunc(drawPolygon))
	r.Register(scene.ShapePath, ShapeFunc(drawPath))
	r.Register(scene.ShapeLine, ShapeFunc(drawLine))
	r.Register(scene.ShapeArrow, ShapeFunc(drawArrow))
	r.Register(scene.ShapeText, ShapeFunc(drawText))
	return r
}

// Register adds or replaces the renderer for a shape type.
func (r *Registry) Register(t scene.ShapeType, sr ShapeRenderer) {
	r.renderers[t] = sr
}

func (r *Registry) Lookup(t scene.ShapeType) (ShapeRenderer, bool) {
	sr, ok := r.renderers[t]
	return sr, ok
}

// Painter draws resolved layers in order onto a surface.
type Painter struct {
	registry *Registry
	logger   *slog.Logger
}

type PainterOption func(*Painter)

func WithRegistry(r *Registry) PainterOption {
	return func(p *Painter) { p.registry = r }
}

func WithLogger(l *slog.Logger) PainterOption {
	return func(p *Painter) { p.logger = l }
}

func NewPainter(opts ...PainterOption) *Painter {
	p := &Painter{
		registry: DefaultRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Paint draws layers first to last, so later layers cover earlier ones.
// Layers that cannot be drawn are skipped and reported; a failing surface
// stops the pass. The result is nil or a *FrameErrors.
func (p *Painter) Paint(s Surface, layers []engine.ResolvedLayer) error {
	var errs []error

	if err := s.Err(); err != nil {
		return &FrameErrors{Errs: []error{&RenderTargetError{Err: err}}}
	}

	for _, layer := range layers {
		sr, ok := p.registry.Lookup(layer.Type)
		if !ok {
			p.logger.Warn("unknown shape type", "layer", layer.ID, "type", layer.Type)
			errs = append(errs, &UnknownShapeError{LayerID: layer.ID, Type: layer.Type})
			continue
		}

		s.Save()
		layerErrs := sr.Render(s, layer.Props)
		s.Restore()

		for _, err := range layerErrs {
			var pathErr *UnsupportedPathCommandError
			if errors.As(err, &pathErr) && pathErr.LayerID == "" {
				pathErr.LayerID = layer.ID
			}
			p.logger.Warn("layer drawn partially", "layer", layer.ID, "error", err)
			errs = append(errs, err)
		}

		if err := s.Err(); err != nil {
			p.logger.Error("render target failed", "layer", layer.ID, "error", err)
			errs = append(errs, &RenderTargetError{LayerID: layer.ID, Err: err})
			return &FrameErrors{Errs: errs}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &FrameErrors{Errs: errs}
}
