// Package snapshot renders a single instant of a scene to PNG, SVG or a JSON
// draw-command list. It is stateless: the frame is a pure function of the
// scene and the time offset.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/inamate/vizscene/internal/engine"
	"github.com/inamate/vizscene/internal/render"
	"github.com/inamate/vizscene/internal/render/raster"
	"github.com/inamate/vizscene/internal/render/recorder"
	"github.com/inamate/vizscene/internal/render/svgsurf"
	"github.com/inamate/vizscene/internal/scene"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown frame format")

// ParseFormat accepts png, svg and json in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatSVG, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension, defaulting to PNG.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatPNG
	}
	return f
}

func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	default:
		return "image/png"
	}
}

type Options struct {
	Width      int
	Height     int
	Background string
	Painter    *render.Painter
}

const (
	DefaultWidth      = 600
	DefaultHeight     = 600
	DefaultBackground = "#ffffff"
)

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Painter == nil {
		o.Painter = render.NewPainter()
	}
	return o
}

// Write renders s at timeMs and encodes it to w. Shapes that could not be
// drawn are returned as issues and do not stop the frame; err is set only
// when nothing usable was produced.
func Write(w io.Writer, s *scene.Scene, timeMs float64, format Format, opts Options) (issues []error, err error) {
	opts = opts.withDefaults()
	layers := engine.ResolveScene(s, timeMs)

	switch format {
	case FormatPNG:
		c, err := raster.NewCanvas(opts.Width, opts.Height)
		if err != nil {
			return nil, err
		}
		c.Clear(opts.Background)
		if issues, err = paint(opts.Painter, c, layers); err != nil {
			return issues, err
		}
		return issues, c.EncodePNG(w)

	case FormatSVG:
		d, err := svgsurf.New(opts.Width, opts.Height)
		if err != nil {
			return nil, err
		}
		d.Clear(opts.Background)
		if issues, err = paint(opts.Painter, d, layers); err != nil {
			return issues, err
		}
		if _, err := d.WriteTo(w); err != nil {
			return issues, fmt.Errorf("write svg: %w", err)
		}
		return issues, nil

	case FormatJSON:
		rec := recorder.New()
		if issues, err = paint(opts.Painter, rec, layers); err != nil {
			return issues, err
		}
		data, err := rec.JSON()
		if err != nil {
			return issues, fmt.Errorf("encode commands: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return issues, fmt.Errorf("write commands: %w", err)
		}
		return issues, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func paint(p *render.Painter, s render.Surface, layers []engine.ResolvedLayer) ([]error, error) {
	err := p.Paint(s, layers)
	if err == nil {
		return nil, nil
	}
	var frameErrs *render.FrameErrors
	if !errors.As(err, &frameErrs) {
		return nil, err
	}
	if frameErrs.Fatal() {
		return frameErrs.Errs, err
	}
	return frameErrs.Errs, nil
}
