package render_test

import (
	"errors"
	"image/color"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/vizscene/internal/engine"
	"github.com/inamate/vizscene/internal/render"
	"github.com/inamate/vizscene/internal/render/recorder"
	"github.com/inamate/vizscene/internal/scene"
)

func quietPainter() *render.Painter {
	return render.NewPainter(render.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func layer(id string, t scene.ShapeType, props scene.Props) engine.ResolvedLayer {
	return engine.ResolvedLayer{ID: id, Type: t, Props: props}
}

func find(cmds []recorder.DrawCommand, op string) []recorder.DrawCommand {
	var out []recorder.DrawCommand
	for _, c := range cmds {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want []render.PathCommand
	}{
		{
			name: "spaces and commas",
			d:    "M10 20 L30,40 Z",
			want: []render.PathCommand{
				{Op: 'M', Args: []float64{10, 20}, Offset: 0},
				{Op: 'L', Args: []float64{30, 40}, Offset: 7},
				{Op: 'Z', Offset: 14},
			},
		},
		{
			name: "signs separate numbers",
			d:    "m1e2-5.5",
			want: []render.PathCommand{
				{Op: 'm', Args: []float64{100, -5.5}, Offset: 0},
			},
		},
		{
			name: "leading numbers ignored",
			d:    "5 5 M1 2",
			want: []render.PathCommand{
				{Op: 'M', Args: []float64{1, 2}, Offset: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render.ParsePath(tt.d)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePath(%q) mismatch (-want +got):\n%s", tt.d, diff)
			}
		})
	}
}

func TestTracePath(t *testing.T) {
	rec := recorder.New()
	errs := render.TracePath(rec, "M0 0 10 0 l0 10 H0 v-5 z")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []recorder.DrawCommand{
		{Op: recorder.OpMoveTo, Args: []float64{0, 0}},
		{Op: recorder.OpLineTo, Args: []float64{10, 0}},
		{Op: recorder.OpLineTo, Args: []float64{10, 10}},
		{Op: recorder.OpLineTo, Args: []float64{0, 10}},
		{Op: recorder.OpLineTo, Args: []float64{0, 5}},
		{Op: recorder.OpClosePath},
	}
	if diff := cmp.Diff(want, rec.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestTracePathSkipsUnsupported(t *testing.T) {
	rec := recorder.New()
	errs := render.TracePath(rec, "M0 0 C1 1 2 2 3 3 L10 10 L5")
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}

	var curve *render.UnsupportedPathCommandError
	if !errors.As(errs[0], &curve) || curve.Command != "C" || curve.Offset != 5 {
		t.Errorf("first error = %v, want unsupported C at 5", errs[0])
	}
	var short *render.UnsupportedPathCommandError
	if !errors.As(errs[1], &short) || short.Reason == "" {
		t.Errorf("second error = %v, want missing coordinates", errs[1])
	}

	if diff := cmp.Diff([]string{recorder.OpMoveTo, recorder.OpLineTo}, rec.Ops()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}},
		{"#0f0", color.NRGBA{0, 255, 0, 255}},
		{"#00000080", color.NRGBA{0, 0, 0, 128}},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}},
		{"rgba(255,255,255,0.9)", color.NRGBA{255, 255, 255, 230}},
		{"transparent", color.NRGBA{}},
		{"Gold", color.NRGBA{255, 215, 0, 255}},
	}

	for _, tt := range tests {
		got, err := render.ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := render.ParseColor("not-a-color"); err == nil {
		t.Error("expected error for unknown color")
	}
	if got := render.MustColor("???"); got != (color.NRGBA{A: 255}) {
		t.Errorf("MustColor fallback = %v, want opaque black", got)
	}
}

func TestPaintSkipsUnknownShape(t *testing.T) {
	rec := recorder.New()
	layers := []engine.ResolvedLayer{
		layer("a", scene.ShapeCircle, scene.Props{"x": 10.0, "y": 10.0, "r": 5.0, "fill": "red"}),
		layer("blob", "hexagon", scene.Props{}),
		layer("b", scene.ShapeRectangle, scene.Props{"x": 0.0, "y": 0.0, "width": 4.0, "height": 4.0, "fill": "blue"}),
	}

	err := quietPainter().Paint(rec, layers)

	var frameErrs *render.FrameErrors
	if !errors.As(err, &frameErrs) {
		t.Fatalf("Paint error = %v, want *FrameErrors", err)
	}
	if frameErrs.Fatal() {
		t.Error("unknown shape must not be fatal")
	}
	var unknown *render.UnknownShapeError
	if !errors.As(err, &unknown) || unknown.LayerID != "blob" || unknown.Type != "hexagon" {
		t.Errorf("want UnknownShapeError for blob, got %v", err)
	}

	if n := len(find(rec.Commands(), recorder.OpFill)); n != 2 {
		t.Errorf("got %d fills, want 2 (both known layers drawn)", n)
	}
}

func TestPaintRenderTargetFailure(t *testing.T) {
	rec := recorder.New()
	rec.FailWith(errors.New("context lost"))

	err := quietPainter().Paint(rec, []engine.ResolvedLayer{
		layer("a", scene.ShapeCircle, scene.Props{"r": 5.0, "fill": "red"}),
	})

	var frameErrs *render.FrameErrors
	if !errors.As(err, &frameErrs) || !frameErrs.Fatal() {
		t.Fatalf("Paint error = %v, want fatal FrameErrors", err)
	}
	if len(rec.Commands()) != 0 {
		t.Errorf("nothing should be drawn on a failed target, got %v", rec.Ops())
	}
}

func TestPaintAnnotatesPathErrors(t *testing.T) {
	rec := recorder.New()
	err := quietPainter().Paint(rec, []engine.ResolvedLayer{
		layer("curve", scene.ShapePath, scene.Props{"path": "M0 0 Q5 5 10 0 L10 10", "stroke": "#333"}),
	})

	var pathErr *render.UnsupportedPathCommandError
	if !errors.As(err, &pathErr) {
		t.Fatalf("want UnsupportedPathCommandError, got %v", err)
	}
	if pathErr.LayerID != "curve" || pathErr.Command != "Q" {
		t.Errorf("got layer %q command %q", pathErr.LayerID, pathErr.Command)
	}
	if n := len(find(rec.Commands(), recorder.OpStroke)); n != 1 {
		t.Errorf("path should still be stroked, got %d strokes", n)
	}
}

func TestPaintBalancesSaveRestore(t *testing.T) {
	rec := recorder.New()
	layers := []engine.ResolvedLayer{
		layer("c", scene.ShapeCircle, scene.Props{"x": 1.0, "y": 1.0, "r": 3.0, "fill": "red", "glow": "#FFD700"}),
		layer("r", scene.ShapeRectangle, scene.Props{"width": 5.0, "height": 5.0, "fill": "red", "shadow": "#000", "borderRadius": 2.0}),
		layer("e", scene.ShapeEllipse, scene.Props{"rx": 5.0, "ry": 3.0, "rotation": 45.0, "fill": "red"}),
		layer("p", scene.ShapePolygon, scene.Props{"points": []any{
			map[string]any{"x": 0.0, "y": 0.0},
			map[string]any{"x": 5.0, "y": 0.0},
			map[string]any{"x": 0.0, "y": 5.0},
		}, "fill": "red"}),
		layer("l", scene.ShapeLine, scene.Props{"x2": 10.0, "glow": true}),
		layer("a", scene.ShapeArrow, scene.Props{"dx": 10.0, "glow": true}),
		layer("t", scene.ShapeText, scene.Props{"text": "hi", "shadow": "#000"}),
	}

	if err := quietPainter().Paint(rec, layers); err != nil {
		t.Fatalf("Paint: %v", err)
	}

	depth := 0
	for _, c := range rec.Commands() {
		switch c.Op {
		case recorder.OpSave:
			depth++
		case recorder.OpRestore:
			depth--
			if depth < 0 {
				t.Fatal("restore without save")
			}
		}
	}
	if depth != 0 {
		t.Errorf("unbalanced save/restore, depth %d", depth)
	}
}

// shadowsByLayer replays the save/restore stack of a recorded frame and
// returns, per top-level layer, the shadow in effect at each paint op.
func shadowsByLayer(cmds []recorder.DrawCommand) [][]*render.Shadow {
	var (
		out   [][]*render.Shadow
		cur   *render.Shadow
		stack []*render.Shadow
	)
	for _, c := range cmds {
		switch c.Op {
		case recorder.OpSave:
			if len(stack) == 0 {
				out = append(out, nil)
			}
			stack = append(stack, cur)
		case recorder.OpRestore:
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case recorder.OpShadow:
			cur = c.Shadow
		case recorder.OpFill, recorder.OpStroke, recorder.OpFillRect, recorder.OpFillText, recorder.OpStrokeText:
			out[len(out)-1] = append(out[len(out)-1], cur)
		}
	}
	return out
}

func TestShadowsStayInTheirLayer(t *testing.T) {
	rec := recorder.New()
	layers := []engine.ResolvedLayer{
		layer("sun", scene.ShapeCircle, scene.Props{"x": 50.0, "y": 50.0, "r": 20.0, "fill": "#FFD700", "glow": "#FFD700"}),
		layer("box", scene.ShapeRectangle, scene.Props{"width": 20.0, "height": 10.0, "fill": "#4CAF50", "shadow": "rgba(0,0,0,0.3)"}),
		layer("plain", scene.ShapeRectangle, scene.Props{"x": 30.0, "width": 20.0, "height": 10.0, "fill": "#2196F3"}),
	}
	if err := quietPainter().Paint(rec, layers); err != nil {
		t.Fatalf("Paint: %v", err)
	}

	got := shadowsByLayer(rec.Commands())
	if len(got) != len(layers) {
		t.Fatalf("got %d layers, want %d", len(got), len(layers))
	}

	want := []*render.Shadow{
		{Color: "#FFD700", Blur: 15},
		{Color: "rgba(0,0,0,0.3)", Blur: 8, OffsetX: 2, OffsetY: 2},
		nil,
	}
	for i, w := range want {
		if len(got[i]) == 0 {
			t.Errorf("layer %s painted nothing", layers[i].ID)
			continue
		}
		for _, sh := range got[i] {
			if diff := cmp.Diff(w, sh); diff != "" {
				t.Errorf("layer %s shadow mismatch (-want +got):\n%s", layers[i].ID, diff)
			}
		}
	}
}

func TestLerpColor(t *testing.T) {
	a := color.NRGBA{R: 0, G: 100, B: 255, A: 0}
	b := color.NRGBA{R: 255, G: 200, B: 55, A: 255}

	tests := []struct {
		t    float64
		want color.NRGBA
	}{
		{0, a},
		{1, b},
		{0.5, color.NRGBA{R: 128, G: 150, B: 155, A: 128}},
	}
	for _, tt := range tests {
		if got := render.LerpColor(a, b, tt.t); got != tt.want {
			t.Errorf("LerpColor(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestLineDashReset(t *testing.T) {
	rec := recorder.New()
	err := quietPainter().Paint(rec, []engine.ResolvedLayer{
		layer("orbit", scene.ShapeLine, scene.Props{"x1": 0.0, "y1": 0.0, "x2": 100.0, "y2": 0.0, "dash": []any{5.0, 5.0}}),
	})
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}

	dashes := find(rec.Commands(), recorder.OpLineDash)
	if len(dashes) != 2 {
		t.Fatalf("got %d setLineDash calls, want 2", len(dashes))
	}
	if diff := cmp.Diff([]float64{5, 5}, dashes[0].Args); diff != "" {
		t.Errorf("dash pattern mismatch (-want +got):\n%s", diff)
	}
	if len(dashes[1].Args) != 0 {
		t.Errorf("dash should be reset, got %v", dashes[1].Args)
	}
}

func TestArrowHead(t *testing.T) {
	rec := recorder.New()
	err := quietPainter().Paint(rec, []engine.ResolvedLayer{
		layer("f", scene.ShapeArrow, scene.Props{"x": 0.0, "y": 0.0, "dx": 100.0, "dy": 0.0}),
	})
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}

	lines := find(rec.Commands(), recorder.OpLineTo)
	if len(lines) != 3 {
		t.Fatalf("got %d lineTo, want shaft plus two head lines", len(lines))
	}
	if diff := cmp.Diff([]float64{100, 0}, lines[0].Args); diff != "" {
		t.Errorf("shaft end mismatch (-want +got):\n%s", diff)
	}

	hx := 100 - 12*math.Cos(math.Pi/6)
	approx := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff([]float64{hx, 6}, lines[1].Args, approx); diff != "" {
		t.Errorf("first head line mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{hx, -6}, lines[2].Args, approx); diff != "" {
		t.Errorf("second head line mismatch (-want +got):\n%s", diff)
	}

	widths := find(rec.Commands(), recorder.OpLineWidth)
	if len(widths) == 0 || widths[0].Args[0] != 3 {
		t.Errorf("arrow default width should be 3, got %v", widths)
	}
}

func TestTextBackground(t *testing.T) {
	rec := recorder.New()
	err := quietPainter().Paint(rec, []engine.ResolvedLayer{
		layer("label", scene.ShapeText, scene.Props{
			"x": 100.0, "y": 50.0, "text": "Hi", "fontSize": 20.0,
			"background": map[string]any{},
		}),
	})
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}

	rects := find(rec.Commands(), recorder.OpFillRect)
	if len(rects) != 1 {
		t.Fatalf("got %d fillRect, want 1", len(rects))
	}
	// "Hi" at 20px measures 24, plus 8 padding each side.
	if diff := cmp.Diff([]float64{80, 32, 40, 36}, rects[0].Args); diff != "" {
		t.Errorf("background rect mismatch (-want +got):\n%s", diff)
	}

	texts := find(rec.Commands(), recorder.OpFillText)
	if len(texts) != 1 || texts[0].Text != "Hi" {
		t.Errorf("fillText = %v", texts)
	}
}

func TestPolygonNeedsThreePoints(t *testing.T) {
	rec := recorder.New()
	err := quietPainter().Paint(rec, []engine.ResolvedLayer{
		layer("p", scene.ShapePolygon, scene.Props{"points": []any{
			map[string]any{"x": 0.0, "y": 0.0},
			map[string]any{"x": 5.0, "y": 5.0},
		}, "fill": "red"}),
	})
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if diff := cmp.Diff([]string{recorder.OpSave, recorder.OpRestore}, rec.Ops()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestCircleGradient(t *testing.T) {
	rec := recorder.New()
	err := quietPainter().Paint(rec, []engine.ResolvedLayer{
		layer("sun", scene.ShapeCircle, scene.Props{
			"x": 30.0, "y": 30.0, "r": 30.0, "fill": "#FFD700",
			"gradient": map[string]any{"from": "#FFFF00", "to": "#FF8C00"},
		}),
	})
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}

	fills := find(rec.Commands(), recorder.OpFillStyle)
	if len(fills) != 1 || fills[0].Paint.Gradient == nil {
		t.Fatalf("want one gradient fill, got %+v", fills)
	}
	want := render.GradientPaint{
		Kind: render.GradientRadial,
		X0:   20, Y0: 20, R0: 0,
		X1: 30, Y1: 30, R1: 30,
		From: "#FFFF00", To: "#FF8C00",
	}
	if diff := cmp.Diff(want, *fills[0].Paint.Gradient); diff != "" {
		t.Errorf("gradient mismatch (-want +got):\n%s", diff)
	}
}
