package chart

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
)

// SVGRenderer emits a self-contained SVG document. It has no font or native
// library dependencies, so it serves as the fallback tier when bitmap
// rendering is unavailable.
type SVGRenderer struct {
	width  int
	height int
	theme  Theme
}

func NewSVGRenderer(width, height int, theme string) *SVGRenderer {
	return &SVGRenderer{
		width:  width,
		height: height,
		theme:  ThemeColors(theme),
	}
}

func (r *SVGRenderer) Name() string { return "svg" }

// Render produces a base64-encoded SVG document.
func (r *SVGRenderer) Render(spec *Spec) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", r.width, r.height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)

	if spec.Options.Title != "" {
		fmt.Fprintf(&b, `<text x="%d" y="35" text-anchor="middle" font-family="Arial, sans-serif" font-size="20" font-weight="bold" fill="%s">%s</text>`+"\n",
			r.width/2, r.theme.Text, escapeXML(spec.Options.Title))
	}

	if spec.Options.Legend.Display {
		r.writeLegend(&b, spec)
	}

	switch spec.Type {
	case TypePie, TypeDoughnut:
		r.writePie(&b, spec)
	case TypeLine, TypeArea:
		r.writeAxes(&b, spec)
		r.writeLines(&b, spec)
	case TypeScatter:
		r.writeAxes(&b, spec)
		r.writeScatter(&b, spec)
	default:
		r.writeAxes(&b, spec)
		r.writeBars(&b, spec)
	}

	b.WriteString("</svg>\n")
	return base64.StdEncoding.EncodeToString([]byte(b.String())), nil
}

func (r *SVGRenderer) writeLegend(b *strings.Builder, spec *Spec) {
	type entry struct {
		label string
		color string
	}
	var entries []entry
	if spec.Type == TypePie || spec.Type == TypeDoughnut {
		ds := spec.Datasets[0]
		for i, label := range spec.Labels {
			entries = append(entries, entry{label: label, color: datasetFill(ds, 0, i)})
		}
	} else {
		for di, ds := range spec.Datasets {
			color := ds.BorderColor
			if color == "" {
				color = SeriesPalette[di%len(SeriesPalette)]
			}
			entries = append(entries, entry{label: ds.Label, color: color})
		}
	}

	x := marginLeft
	y := 52.0
	for _, e := range entries {
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="12" height="12" fill="%s"/>`+"\n",
			x, y-8, svgColor(e.color))
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-family="Arial, sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			x+18, y+2, r.theme.Text, escapeXML(e.label))
		// No font metrics here; estimate label width at 7px per character.
		x += 18 + float64(len([]rune(e.label)))*7 + 24
		if x > float64(r.width)-marginRight {
			break
		}
	}
}

func (r *SVGRenderer) plotArea() (x, y, w, h float64) {
	return marginLeft, marginTop, float64(r.width) - marginLeft - marginRight, float64(r.height) - marginTop - marginBottom
}

func (r *SVGRenderer) writeAxes(b *strings.Builder, spec *Spec) {
	px, py, pw, ph := r.plotArea()
	max := dataMax(spec)
	if max == 0 {
		max = 1
	}

	for i := 0; i <= tickCount; i++ {
		frac := float64(i) / tickCount
		y := py + ph - frac*ph
		if spec.Options.Grid.Display {
			fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
				px, y, px+pw, y, r.theme.Grid)
		}
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="end" font-family="Arial, sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			px-8, y+4, r.theme.Text, FormatValue(frac*max))
	}

	n := len(spec.Labels)
	for i, label := range spec.Labels {
		slot := pw / float64(n)
		cx := px + slot*float64(i) + slot/2
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			cx, py+ph+20, r.theme.Text, escapeXML(label))
	}

	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"/>`+"\n",
		px, py, px, py+ph, r.theme.Text)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"/>`+"\n",
		px, py+ph, px+pw, py+ph, r.theme.Text)
}

func (r *SVGRenderer) writeBars(b *strings.Builder, spec *Spec) {
	px, py, pw, ph := r.plotArea()
	max := dataMax(spec)
	if max == 0 {
		max = 1
	}

	n := len(spec.Labels)
	groups := len(spec.Datasets)
	slot := pw / float64(n)
	barWidth := slot * 0.7 / float64(groups)

	for di, ds := range spec.Datasets {
		for i, v := range ds.Data {
			h := v / max * ph
			x := px + slot*float64(i) + slot*0.15 + barWidth*float64(di)
			fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				x, py+ph-h, barWidth, h, svgColor(datasetFill(ds, di, i)))
		}
	}
}

func (r *SVGRenderer) writeLines(b *strings.Builder, spec *Spec) {
	px, py, pw, ph := r.plotArea()
	max := dataMax(spec)
	if max == 0 {
		max = 1
	}
	n := len(spec.Labels)
	slot := pw / float64(n)

	for di, ds := range spec.Datasets {
		stroke := ds.BorderColor
		if stroke == "" {
			stroke = SeriesPalette[di%len(SeriesPalette)]
		}
		var points []string
		for i, v := range ds.Data {
			x := px + slot*float64(i) + slot/2
			y := py + ph - v/max*ph
			points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
		}
		if ds.Fill || spec.Type == TypeArea {
			fill := svgColor(datasetFill(ds, di, 0))
			fmt.Fprintf(b, `<polygon points="%.1f,%.1f %s %.1f,%.1f" fill="%s" fill-opacity="0.2"/>`+"\n",
				px+slot/2, py+ph, strings.Join(points, " "), px+slot*float64(n-1)+slot/2, py+ph, fill)
		}
		fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="3"/>`+"\n",
			strings.Join(points, " "), stroke)
		for _, p := range points {
			xy := strings.SplitN(p, ",", 2)
			fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="4" fill="%s"/>`+"\n", xy[0], xy[1], stroke)
		}
	}
}

func (r *SVGRenderer) writeScatter(b *strings.Builder, spec *Spec) {
	px, py, pw, ph := r.plotArea()
	max := dataMax(spec)
	if max == 0 {
		max = 1
	}
	for di, ds := range spec.Datasets {
		stroke := ds.BorderColor
		if stroke == "" {
			stroke = SeriesPalette[di%len(SeriesPalette)]
		}
		n := len(ds.Data)
		for i, v := range ds.Data {
			x := px + pw*float64(i)/float64(n)
			y := py + ph - v/max*ph
			fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="5" fill="%s"/>`+"\n", x, y, stroke)
		}
	}
}

func (r *SVGRenderer) writePie(b *strings.Builder, spec *Spec) {
	ds := spec.Datasets[0]
	total := 0.0
	for _, v := range ds.Data {
		total += v
	}
	if total == 0 {
		return
	}

	cx := float64(r.width) / 2
	cy := marginTop + (float64(r.height)-marginTop-marginBottom)/2
	radius := math.Min(float64(r.width), float64(r.height))/2 - 100

	angle := -math.Pi / 2
	for i, v := range ds.Data {
		sweep := v / total * 2 * math.Pi
		x1 := cx + radius*math.Cos(angle)
		y1 := cy + radius*math.Sin(angle)
		x2 := cx + radius*math.Cos(angle+sweep)
		y2 := cy + radius*math.Sin(angle+sweep)
		largeArc := 0
		if sweep > math.Pi {
			largeArc = 1
		}
		fmt.Fprintf(b, `<path d="M %.1f %.1f L %.1f %.1f A %.1f %.1f 0 %d 1 %.1f %.1f Z" fill="%s"/>`+"\n",
			cx, cy, x1, y1, radius, radius, largeArc, x2, y2, svgColor(datasetFill(ds, 0, i)))
		angle += sweep
	}

	if spec.Type == TypeDoughnut {
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
			cx, cy, radius*0.55, r.theme.Background)
	}
}

// svgColor strips a trailing alpha byte; SVG takes opacity separately and
// most viewers reject 8-digit hex.
func svgColor(c string) string {
	if strings.HasPrefix(c, "#") && len(c) == 9 {
		return c[:7]
	}
	return c
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
