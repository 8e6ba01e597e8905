package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	marginLeft   = 80.0
	marginRight  = 40.0
	marginTop    = 70.0
	marginBottom = 60.0
	tickCount    = 5
)

// RasterRenderer draws charts into a PNG bitmap. A TTF font may be supplied
// for nicer text; without one the built-in bitmap face is used.
type RasterRenderer struct {
	width     int
	height    int
	theme     Theme
	titleFace font.Face
	labelFace font.Face
}

func NewRasterRenderer(width, height int, theme, fontPath string) *RasterRenderer {
	r := &RasterRenderer{
		width:  width,
		height: height,
		theme:  ThemeColors(theme),
	}
	if fontPath != "" {
		titleFace, err := loadFontFace(fontPath, 20)
		if err != nil {
			return r
		}
		labelFace, err := loadFontFace(fontPath, 12)
		if err != nil {
			return r
		}
		r.titleFace = titleFace
		r.labelFace = labelFace
	}
	return r
}

func (r *RasterRenderer) Name() string { return "raster" }

// Render produces a base64-encoded PNG. Drawing panics are converted to
// errors so a missing font or degenerate geometry drops the pipeline to the
// next tier instead of crashing the request.
func (r *RasterRenderer) Render(spec *Spec) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("raster rendering panicked: %v", rec)
		}
	}()

	dc := gg.NewContext(r.width, r.height)

	dc.SetColor(parseHexColor(r.theme.Background))
	dc.Clear()

	if r.titleFace != nil {
		dc.SetFontFace(r.titleFace)
	}
	if spec.Options.Title != "" {
		dc.SetColor(parseHexColor(r.theme.Text))
		tw, _ := dc.MeasureString(spec.Options.Title)
		dc.DrawString(spec.Options.Title, (float64(r.width)-tw)/2, 35)
	}
	if r.labelFace != nil {
		dc.SetFontFace(r.labelFace)
	}

	switch spec.Type {
	case TypePie, TypeDoughnut:
		r.drawPie(dc, spec)
	case TypeBar:
		r.drawAxes(dc, spec)
		r.drawBars(dc, spec)
	case TypeLine, TypeArea:
		r.drawAxes(dc, spec)
		r.drawLines(dc, spec)
	case TypeScatter:
		r.drawAxes(dc, spec)
		r.drawScatter(dc, spec)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", spec.Type)
	}

	if spec.Options.Legend.Display {
		r.drawLegend(dc, spec)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// plotArea returns the drawing rectangle inside the margins.
func (r *RasterRenderer) plotArea() (x, y, w, h float64) {
	return marginLeft, marginTop, float64(r.width) - marginLeft - marginRight, float64(r.height) - marginTop - marginBottom
}

// dataMax returns the largest value across all datasets, never below zero.
func dataMax(spec *Spec) float64 {
	max := 0.0
	for _, ds := range spec.Datasets {
		for _, v := range ds.Data {
			if v > max {
				max = v
			}
		}
	}
	return max
}

func (r *RasterRenderer) drawAxes(dc *gg.Context, spec *Spec) {
	px, py, pw, ph := r.plotArea()
	textColor := parseHexColor(r.theme.Text)
	gridColor := parseHexColor(r.theme.Grid)
	max := dataMax(spec)
	if max == 0 {
		max = 1
	}

	// Horizontal gridlines with value ticks.
	for i := 0; i <= tickCount; i++ {
		frac := float64(i) / tickCount
		y := py + ph - frac*ph
		if spec.Options.Grid.Display {
			dc.SetColor(gridColor)
			dc.SetLineWidth(1)
			dc.DrawLine(px, y, px+pw, y)
			dc.Stroke()
		}
		dc.SetColor(textColor)
		label := FormatValue(frac * max)
		tw, th := dc.MeasureString(label)
		dc.DrawString(label, px-tw-8, y+th/2)
	}

	// X axis labels under each slot.
	dc.SetColor(textColor)
	n := len(spec.Labels)
	for i, label := range spec.Labels {
		slot := pw / float64(n)
		cx := px + slot*float64(i) + slot/2
		tw, _ := dc.MeasureString(label)
		dc.DrawString(label, cx-tw/2, py+ph+20)
	}

	// Axis lines.
	dc.SetColor(textColor)
	dc.SetLineWidth(1.5)
	dc.DrawLine(px, py, px, py+ph)
	dc.DrawLine(px, py+ph, px+pw, py+ph)
	dc.Stroke()
}

func (r *RasterRenderer) drawBars(dc *gg.Context, spec *Spec) {
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
			y := py + ph - h
			dc.SetColor(parseHexColor(datasetFill(ds, di, i)))
			dc.DrawRectangle(x, y, barWidth, h)
			dc.Fill()
			if ds.BorderColor != "" {
				dc.SetColor(parseHexColor(ds.BorderColor))
				dc.SetLineWidth(ds.BorderWidth)
				dc.DrawRectangle(x, y, barWidth, h)
				dc.Stroke()
			}
		}
	}
}

func (r *RasterRenderer) drawLines(dc *gg.Context, spec *Spec) {
	px, py, pw, ph := r.plotArea()
	max := dataMax(spec)
	if max == 0 {
		max = 1
	}
	n := len(spec.Labels)
	slot := pw / float64(n)

	pointX := func(i int) float64 { return px + slot*float64(i) + slot/2 }
	pointY := func(v float64) float64 { return py + ph - v/max*ph }

	for di, ds := range spec.Datasets {
		stroke := ds.BorderColor
		if stroke == "" {
			stroke = SeriesPalette[di%len(SeriesPalette)]
		}

		// Area fill under the series.
		if ds.Fill || spec.Type == TypeArea {
			dc.SetColor(parseHexColor(datasetFill(ds, di, 0)))
			dc.MoveTo(pointX(0), py+ph)
			for i, v := range ds.Data {
				dc.LineTo(pointX(i), pointY(v))
			}
			dc.LineTo(pointX(len(ds.Data)-1), py+ph)
			dc.ClosePath()
			dc.Fill()
		}

		dc.SetColor(parseHexColor(stroke))
		width := ds.BorderWidth
		if width == 0 {
			width = 3
		}
		dc.SetLineWidth(width)
		for i, v := range ds.Data {
			if i == 0 {
				dc.MoveTo(pointX(i), pointY(v))
			} else {
				dc.LineTo(pointX(i), pointY(v))
			}
		}
		dc.Stroke()

		// Point markers.
		for i, v := range ds.Data {
			dc.DrawCircle(pointX(i), pointY(v), 4)
			dc.Fill()
		}
	}
}

func (r *RasterRenderer) drawScatter(dc *gg.Context, spec *Spec) {
	px, py, pw, ph := r.plotArea()
	max := dataMax(spec)
	if max == 0 {
		max = 1
	}
	for di, ds := range spec.Datasets {
		color := ds.BorderColor
		if color == "" {
			color = SeriesPalette[di%len(SeriesPalette)]
		}
		dc.SetColor(parseHexColor(color))
		n := len(ds.Data)
		for i, v := range ds.Data {
			x := px + pw*float64(i)/float64(n)
			y := py + ph - v/max*ph
			dc.DrawCircle(x, y, 5)
			dc.Fill()
		}
	}
}

func (r *RasterRenderer) drawPie(dc *gg.Context, spec *Spec) {
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
		dc.SetColor(parseHexColor(datasetFill(ds, 0, i)))
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, radius, angle, angle+sweep)
		dc.ClosePath()
		dc.Fill()
		angle += sweep
	}

	if spec.Type == TypeDoughnut {
		dc.SetColor(parseHexColor(r.theme.Background))
		dc.DrawCircle(cx, cy, radius*0.55)
		dc.Fill()
	}
}

func (r *RasterRenderer) drawLegend(dc *gg.Context, spec *Spec) {
	textColor := parseHexColor(r.theme.Text)

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
		dc.SetColor(parseHexColor(e.color))
		dc.DrawRectangle(x, y-8, 12, 12)
		dc.Fill()
		dc.SetColor(textColor)
		dc.DrawString(e.label, x+18, y+2)
		tw, _ := dc.MeasureString(e.label)
		x += 18 + tw + 24
		if x > float64(r.width)-marginRight {
			break
		}
	}
}

// datasetFill resolves the fill color for one data point: the per-point
// entry when the dataset carries a palette, otherwise the single series
// color, otherwise the rotating default.
func datasetFill(ds Dataset, seriesIndex, pointIndex int) string {
	if len(ds.BackgroundColor) > 1 {
		return ds.BackgroundColor[pointIndex%len(ds.BackgroundColor)]
	}
	if len(ds.BackgroundColor) == 1 {
		return ds.BackgroundColor[0]
	}
	return SeriesPalette[seriesIndex%len(SeriesPalette)] + "20"
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
