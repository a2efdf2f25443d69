package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// golden angle in degrees; successive hues never repeat and stay spread out
const hueStep = 137.50776405003785

// Palette hands out body colours as hex tags. The zero value starts at
// hue 0.
type Palette struct {
	hue    float64
	Chroma float64
	Light  float64
}

func NewPalette(startHue float64) *Palette {
	return &Palette{hue: math.Mod(startHue, 360), Chroma: 0.6, Light: 0.75}
}

// Next returns the next colour as "#rrggbb". It has the signature of
// sim.Options.Tag.
func (p *Palette) Next() string {
	chroma, light := p.Chroma, p.Light
	if chroma == 0 && light == 0 {
		chroma, light = 0.6, 0.75
	}
	c := colorful.Hcl(p.hue, chroma, light).Clamped()
	p.hue = math.Mod(p.hue+hueStep, 360)
	return c.Hex()
}

// TagColor turns a body tag into a colour. Tags that are not hex colours
// fall back to fallback.
func TagColor(tag string, fallback colorful.Color) colorful.Color {
	c, err := colorful.Hex(tag)
	if err != nil {
		return fallback
	}
	return c
}

// TagStyle is a foreground style for a body tag.
func TagStyle(tag string) lipgloss.Style {
	c := TagColor(tag, colorful.Color{R: 0.85, G: 0.85, B: 0.85})
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// GradientText colours each rune of text along a blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	a := TagColor(string(start), white)
	b := TagColor(string(end), white)

	var out []byte
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLuv(b, t).Clamped()
		out = append(out, lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r))...)
	}
	return string(out)
}
