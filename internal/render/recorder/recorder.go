// Package recorder implements a render.Surface that records Canvas2D calls
// instead of drawing them. The command list is what a browser client replays
// onto a real canvas, and what tests inspect.
package recorder

import (
	"encoding/json"

	"github.com/inamate/vizscene/internal/render"
)

// DrawCommand is one recorded canvas call. Args holds the numeric arguments
// in call order (the pattern, for setLineDash); style-setting ops carry their
// value in the matching field.
type DrawCommand struct {
	Op     string         `json:"op"`
	Args   []float64      `json:"args,omitempty"`
	Text   string         `json:"text,omitempty"`
	Paint  *render.Paint  `json:"paint,omitempty"`
	Shadow *render.Shadow `json:"shadow,omitempty"`
	Font   *render.Font   `json:"font,omitempty"`
	Cap    render.LineCap `json:"cap,omitempty"`
}

// Op names, matching the Canvas2D method they replay as.
const (
	OpSave             = "save"
	OpRestore          = "restore"
	OpTranslate        = "translate"
	OpRotate           = "rotate"
	OpBeginPath        = "beginPath"
	OpMoveTo           = "moveTo"
	OpLineTo           = "lineTo"
	OpQuadraticCurveTo = "quadraticCurveTo"
	OpArc              = "arc"
	OpEllipse          = "ellipse"
	OpRect             = "rect"
	OpClosePath        = "closePath"
	OpFillStyle        = "fillStyle"
	OpStrokeStyle      = "strokeStyle"
	OpLineWidth        = "lineWidth"
	OpLineCap          = "lineCap"
	OpLineDash         = "setLineDash"
	OpShadow           = "shadow"
	OpFill             = "fill"
	OpStroke           = "stroke"
	OpFillRect         = "fillRect"
	OpFont             = "font"
	OpFillText         = "fillText"
	OpStrokeText       = "strokeText"
)

// Recorder is a render.Surface that appends every call to a command list.
type Recorder struct {
	commands []DrawCommand
	font     render.Font
	fonts    []render.Font
	err      error
}

var _ render.Surface = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{font: render.Font{Size: 10, Family: "sans-serif"}}
}

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []DrawCommand {
	return r.commands
}

// Ops returns just the op names, which is handy for asserting call order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.commands))
	for i, c := range r.commands {
		ops[i] = c.Op
	}
	return ops
}

// Reset drops recorded commands and any injected failure.
func (r *Recorder) Reset() {
	r.commands = nil
	r.fonts = nil
	r.font = render.Font{Size: 10, Family: "sans-serif"}
	r.err = nil
}

// FailWith makes Err report err, simulating a lost drawing target.
func (r *Recorder) FailWith(err error) {
	r.err = err
}

func (r *Recorder) Err() error {
	return r.err
}

// JSON serializes the recorded commands.
func (r *Recorder) JSON() ([]byte, error) {
	if r.commands == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.commands)
}

func (r *Recorder) add(op string, args ...float64) {
	r.commands = append(r.commands, DrawCommand{Op: op, Args: args})
}

func (r *Recorder) Save() {
	r.fonts = append(r.fonts, r.font)
	r.add(OpSave)
}

func (r *Recorder) Restore() {
	if n := len(r.fonts); n > 0 {
		r.font = r.fonts[n-1]
		r.fonts = r.fonts[:n-1]
	}
	r.add(OpRestore)
}

func (r *Recorder) Translate(x, y float64) { r.add(OpTranslate, x, y) }
func (r *Recorder) Rotate(radians float64) { r.add(OpRotate, radians) }
func (r *Recorder) BeginPath()             { r.add(OpBeginPath) }
func (r *Recorder) MoveTo(x, y float64)    { r.add(OpMoveTo, x, y) }
func (r *Recorder) LineTo(x, y float64)    { r.add(OpLineTo, x, y) }
func (r *Recorder) ClosePath()             { r.add(OpClosePath) }
func (r *Recorder) Fill()                  { r.add(OpFill) }
func (r *Recorder) Stroke()                { r.add(OpStroke) }

func (r *Recorder) QuadraticCurveTo(cx, cy, x, y float64) {
	r.add(OpQuadraticCurveTo, cx, cy, x, y)
}

func (r *Recorder) Arc(x, y, radius, start, end float64) {
	r.add(OpArc, x, y, radius, start, end)
}

func (r *Recorder) Ellipse(x, y, rx, ry, rotation, start, end float64) {
	r.add(OpEllipse, x, y, rx, ry, rotation, start, end)
}

func (r *Recorder) Rect(x, y, w, h float64)     { r.add(OpRect, x, y, w, h) }
func (r *Recorder) FillRect(x, y, w, h float64) { r.add(OpFillRect, x, y, w, h) }

func (r *Recorder) SetFillStyle(p render.Paint) {
	r.commands = append(r.commands, DrawCommand{Op: OpFillStyle, Paint: &p})
}

func (r *Recorder) SetStrokeStyle(p render.Paint) {
	r.commands = append(r.commands, DrawCommand{Op: OpStrokeStyle, Paint: &p})
}

func (r *Recorder) SetLineWidth(w float64) { r.add(OpLineWidth, w) }

func (r *Recorder) SetLineCap(c render.LineCap) {
	r.commands = append(r.commands, DrawCommand{Op: OpLineCap, Cap: c})
}

// SetLineDash records the pattern as the op's args. A reset has no args and
// replays as setLineDash([]).
func (r *Recorder) SetLineDash(pattern []float64) {
	r.add(OpLineDash, append([]float64(nil), pattern...)...)
}

func (r *Recorder) SetShadow(s render.Shadow) {
	r.commands = append(r.commands, DrawCommand{Op: OpShadow, Shadow: &s})
}

func (r *Recorder) SetFont(f render.Font) {
	r.font = f
	r.commands = append(r.commands, DrawCommand{Op: OpFont, Font: &f})
}

// MeasureText uses the approximate advance since there are no real font
// metrics on the server.
func (r *Recorder) MeasureText(text string) float64 {
	return render.ApproxTextWidth(r.font, text)
}

func (r *Recorder) FillText(text string, x, y float64) {
	r.commands = append(r.commands, DrawCommand{Op: OpFillText, Text: text, Args: []float64{x, y}})
}

func (r *Recorder) StrokeText(text string, x, y float64) {
	r.commands = append(r.commands, DrawCommand{Op: OpStrokeText, Text: text, Args: []float64{x, y}})
}
