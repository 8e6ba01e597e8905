package chart

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Type identifies the visual form of a chart.
type Type string

const (
	TypeBar      Type = "bar"
	TypeLine     Type = "line"
	TypePie      Type = "pie"
	TypeDoughnut Type = "doughnut"
	TypeArea     Type = "area"
	TypeScatter  Type = "scatter"
)

// CategoricalPalette is applied slice-by-slice to pie and doughnut charts.
var CategoricalPalette = []string{
	"#4F46E5",
	"#06B6D4",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#6B7280",
	"#EC4899",
}

// SeriesPalette rotates across datasets in multi-series charts.
var SeriesPalette = []string{
	"#4F46E5",
	"#06B6D4",
	"#10B981",
	"#F59E0B",
}

// Dataset is one series of values aligned to the chart labels.
// BackgroundColor carries either a single fill for the whole series or one
// entry per data point for segmented charts.
type Dataset struct {
	Label           string
	Data            []float64
	BackgroundColor []string
	BorderColor     string
	BorderWidth     float64
	Fill            bool
	Tension         float64
}

// Legend controls legend visibility and placement.
type Legend struct {
	Display  bool
	Position string
}

// Grid controls gridline visibility.
type Grid struct {
	Display bool
}

// Options holds presentation settings shared by all renderers.
type Options struct {
	Title  string
	Theme  string
	Legend Legend
	Grid   Grid
	Width  int
	Height int
}

// Spec is a fully resolved chart description, independent of any renderer.
type Spec struct {
	Type     Type
	Labels   []string
	Datasets []Dataset
	Options  Options
}

// Validate checks the structural invariants every renderer relies on.
// Scatter charts are exempt from the label alignment rule.
func (s *Spec) Validate() error {
	if len(s.Labels) == 0 && s.Type != TypeScatter {
		return fmt.Errorf("labels are required and cannot be empty")
	}
	if len(s.Datasets) == 0 {
		return fmt.Errorf("at least one dataset is required")
	}
	for i, ds := range s.Datasets {
		if len(ds.Data) == 0 {
			return fmt.Errorf("dataset %d data cannot be empty", i)
		}
		if s.Type != TypeScatter && len(ds.Data) != len(s.Labels) {
			return fmt.Errorf("dataset %d data length must match labels length", i)
		}
	}
	return nil
}

// Theme is a resolved set of drawing colors.
type Theme struct {
	Text       string
	Grid       string
	Background string
}

// ThemeColors resolves a theme name; anything other than "dark" yields the
// light theme.
func ThemeColors(name string) Theme {
	if name == "dark" {
		return Theme{Text: "#F3F4F6", Grid: "#374151", Background: "#1F2937"}
	}
	return Theme{Text: "#1F2937", Grid: "#E5E7EB", Background: "#ffffff"}
}

// FormatValue abbreviates large axis values, e.g. 1500 becomes "1.5K".
func FormatValue(v float64) string {
	switch {
	case v >= 1000000:
		return fmt.Sprintf("%.1fM", v/1000000)
	case v >= 1000:
		return fmt.Sprintf("%.1fK", v/1000)
	default:
		return formatThousands(int64(v + 0.5))
	}
}

func formatThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}

// parseHexColor accepts "#RRGGBB" and "#RRGGBBAA" forms. Invalid input
// falls back to opaque black.
func parseHexColor(s string) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{A: 0xFF}
	}
	switch len(raw) {
	case 3:
		return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xFF}
	case 4:
		return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: raw[3]}
	}
	return color.NRGBA{A: 0xFF}
}
