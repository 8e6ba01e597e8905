package chart

import (
	"fmt"
	"log"
)

// Renderer turns a chart spec into a base64-encoded image.
type Renderer interface {
	Name() string
	Render(spec *Spec) (string, error)
}

// TieredRenderer tries each renderer in order and returns the first
// successful result. The pipeline falls back to TextChart when every tier
// fails.
type TieredRenderer struct {
	tiers []Renderer
}

// NewTieredRenderer builds the standard raster-then-SVG chain.
func NewTieredRenderer(width, height int, theme, fontPath string) *TieredRenderer {
	return &TieredRenderer{
		tiers: []Renderer{
			NewRasterRenderer(width, height, theme, fontPath),
			NewSVGRenderer(width, height, theme),
		},
	}
}

func (t *TieredRenderer) Name() string { return "tiered" }

// Render validates the spec once, then walks the tiers.
func (t *TieredRenderer) Render(spec *Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", fmt.Errorf("invalid chart data: %w", err)
	}

	var lastErr error
	for _, r := range t.tiers {
		out, err := r.Render(spec)
		if err == nil {
			return out, nil
		}
		log.Printf("WARN: %s chart rendering failed, trying next tier: %v", r.Name(), err)
		lastErr = err
	}
	return "", fmt.Errorf("all chart renderers failed: %w", lastErr)
}
