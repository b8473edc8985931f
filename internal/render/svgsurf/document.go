// Package svgsurf implements render.Surface by emitting an SVG document.
package svgsurf

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/inamate/vizscene/internal/render"
)

var ErrEmptyDocument = errors.New("svgsurf: document has zero area")

// Document is a render.Surface that builds SVG markup. Paths are written in
// device coordinates; gradients and text carry the transform that was active
// when they were drawn.
type Document struct {
	*render.Context2D

	width, height int
	background    string

	body    strings.Builder
	defs    strings.Builder
	filters map[render.Shadow]string
	nextID  int
	err     error
}

var _ render.Surface = (*Document)(nil)

func New(width, height int) (*Document, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyDocument, width, height)
	}
	return &Document{
		Context2D: render.NewContext2D(),
		width:     width,
		height:    height,
		filters:   make(map[render.Shadow]string),
	}, nil
}

// Clear sets the background color drawn under everything else.
func (d *Document) Clear(bg string) {
	d.background = bg
}

func (d *Document) FailWith(err error) {
	d.err = err
}

func (d *Document) Err() error {
	return d.err
}

// String returns the complete SVG document.
func (d *Document) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, d.width, d.height, d.width, d.height))
	if d.defs.Len() > 0 {
		sb.WriteString("<defs>\n")
		sb.WriteString(d.defs.String())
		sb.WriteString("</defs>\n")
	}
	if d.background != "" {
		hex, op := svgColor(d.background)
		sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"%s/>
`, hex, opacityAttr("fill-opacity", op)))
	}
	sb.WriteString(d.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteTo writes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.String())
	return int64(n), err
}

func (d *Document) Fill() {
	paths := d.Fillable()
	if len(paths) == 0 {
		return
	}
	st := d.State()
	d.body.WriteString(fmt.Sprintf(`<path d="%s"%s%s/>
`, pathData(paths), d.paintAttrs("fill", st.Fill, st.CTM), d.filterAttr(st.Shadow)))
}

func (d *Document) Stroke() {
	paths := d.Strokable()
	if len(paths) == 0 {
		return
	}
	st := d.State()
	scale := st.CTM.Scale()

	var attrs strings.Builder
	attrs.WriteString(` fill="none"`)
	attrs.WriteString(d.paintAttrs("stroke", st.Stroke, st.CTM))
	attrs.WriteString(fmt.Sprintf(` stroke-width="%s"`, num(st.LineWidth*scale)))
	if st.LineCap == render.CapRound {
		attrs.WriteString(` stroke-linecap="round" stroke-linejoin="round"`)
	}
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, v := range st.Dash {
			parts[i] = num(v * scale)
		}
		attrs.WriteString(fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, " ")))
	}
	attrs.WriteString(d.filterAttr(st.Shadow))

	d.body.WriteString(fmt.Sprintf("<path d=\"%s\"%s/>\n", pathData(paths), attrs.String()))
}

func (d *Document) FillRect(x, y, w, h float64) {
	st := d.State()
	rect := d.RectPath(x, y, w, h)
	d.body.WriteString(fmt.Sprintf(`<path d="%s"%s%s/>
`, pathData([]render.Subpath{rect}), d.paintAttrs("fill", st.Fill, st.CTM), d.filterAttr(st.Shadow)))
}

func (d *Document) MeasureText(text string) float64 {
	return render.ApproxTextWidth(d.State().Font, text)
}

func (d *Document) FillText(text string, x, y float64) {
	st := d.State()
	d.text(text, x, y, d.paintAttrs("fill", st.Fill, st.CTM))
}

func (d *Document) StrokeText(text string, x, y float64) {
	st := d.State()
	attrs := ` fill="none"` + d.paintAttrs("stroke", st.Stroke, st.CTM) +
		fmt.Sprintf(` stroke-width="%s"`, num(st.LineWidth))
	d.text(text, x, y, attrs)
}

func (d *Document) text(text string, x, y float64, paint string) {
	st := d.State()
	var transform string
	if st.CTM != render.Identity() {
		transform = fmt.Sprintf(` transform="%s"`, matrix(st.CTM))
	}
	d.body.WriteString(fmt.Sprintf(
		`<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%s"%s%s%s>%s</text>
`,
		num(x), num(y), html.EscapeString(st.Font.Family), num(st.Font.Size),
		transform, paint, d.filterAttr(st.Shadow), html.EscapeString(text)))
}

// paintAttrs renders a fill or stroke paint, registering a gradient
// definition when needed.
func (d *Document) paintAttrs(attr string, p render.Paint, ctm render.Affine) string {
	if p.Gradient == nil {
		hex, op := svgColor(p.Color)
		return fmt.Sprintf(` %s="%s"%s`, attr, hex, opacityAttr(attr+"-opacity", op))
	}
	id := d.gradient(*p.Gradient, ctm)
	return fmt.Sprintf(` %s="url(#%s)"`, attr, id)
}

func (d *Document) gradient(g render.GradientPaint, ctm render.Affine) string {
	d.nextID++
	id := "g" + strconv.Itoa(d.nextID)

	fromHex, fromOp := svgColor(g.From)
	toHex, toOp := svgColor(g.To)
	stops := fmt.Sprintf(`<stop offset="0" stop-color="%s"%s/><stop offset="1" stop-color="%s"%s/>`,
		fromHex, opacityAttr("stop-opacity", fromOp), toHex, opacityAttr("stop-opacity", toOp))

	switch g.Kind {
	case render.GradientRadial:
		d.defs.WriteString(fmt.Sprintf(
			`<radialGradient id="%s" gradientUnits="userSpaceOnUse" gradientTransform="%s" fx="%s" fy="%s" fr="%s" cx="%s" cy="%s" r="%s">%s</radialGradient>
`,
			id, matrix(ctm), num(g.X0), num(g.Y0), num(g.R0), num(g.X1), num(g.Y1), num(g.R1), stops))
	default:
		d.defs.WriteString(fmt.Sprintf(
			`<linearGradient id="%s" gradientUnits="userSpaceOnUse" gradientTransform="%s" x1="%s" y1="%s" x2="%s" y2="%s">%s</linearGradient>
`,
			id, matrix(ctm), num(g.X0), num(g.Y0), num(g.X1), num(g.Y1), stops))
	}
	return id
}

// filterAttr returns a filter reference for an enabled shadow, defining the
// filter once per distinct shadow.
func (d *Document) filterAttr(s render.Shadow) string {
	if !s.Enabled() {
		return ""
	}
	id, ok := d.filters[s]
	if !ok {
		id = "f" + strconv.Itoa(len(d.filters)+1)
		d.filters[s] = id
		hex, op := svgColor(s.Color)
		d.defs.WriteString(fmt.Sprintf(
			`<filter id="%s" x="-50%%" y="-50%%" width="200%%" height="200%%"><feDropShadow dx="%s" dy="%s" stdDeviation="%s" flood-color="%s" flood-opacity="%s"/></filter>
`,
			id, num(s.OffsetX), num(s.OffsetY), num(s.Blur/2), hex, num(op)))
	}
	return fmt.Sprintf(` filter="url(#%s)"`, id)
}

func pathData(paths []render.Subpath) string {
	var sb strings.Builder
	for _, sp := range paths {
		for i, p := range sp.Points {
			if i == 0 {
				sb.WriteString("M")
			} else {
				sb.WriteString(" L")
			}
			sb.WriteString(num(p.X))
			sb.WriteString(",")
			sb.WriteString(num(p.Y))
		}
		if sp.Closed {
			sb.WriteString(" Z")
		}
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String())
}

func matrix(m render.Affine) string {
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)", num(m[0]), num(m[1]), num(m[2]), num(m[3]), num(m[4]), num(m[5]))
}

// svgColor splits a CSS color into a hex color and an opacity.
func svgColor(s string) (string, float64) {
	c := render.MustColor(s)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), float64(c.A) / 255
}

func opacityAttr(name string, op float64) string {
	if op >= 1 {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, num(op))
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
