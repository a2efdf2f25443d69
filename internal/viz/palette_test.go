package viz

import (
	"regexp"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

var hexTag = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestPaletteNext(t *testing.T) {
	p := NewPalette(30)
	seen := make(map[string]bool)
	for i := 0; i < 24; i++ {
		tag := p.Next()
		if !hexTag.MatchString(tag) {
			t.Fatalf("tag %q is not a hex colour", tag)
		}
		if seen[tag] {
			t.Errorf("tag %q repeated after %d colours", tag, i)
		}
		seen[tag] = true
	}

	var zero Palette
	if tag := zero.Next(); !hexTag.MatchString(tag) {
		t.Errorf("zero palette produced %q", tag)
	}
}

func TestPaletteDeterministic(t *testing.T) {
	a, b := NewPalette(0), NewPalette(0)
	for i := 0; i < 5; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("colour %d differs: %s vs %s", i, x, y)
		}
	}
}

func TestTagColor(t *testing.T) {
	fallback := colorful.Color{R: 0.5, G: 0.5, B: 0.5}

	if c := TagColor("#ff0000", fallback); c.Hex() != "#ff0000" {
		t.Errorf("TagColor(#ff0000) = %s", c.Hex())
	}
	for _, tag := range []string{"", "earth", "#12", "ff0000"} {
		if c := TagColor(tag, fallback); c != fallback {
			t.Errorf("TagColor(%q) = %s, want fallback", tag, c.Hex())
		}
	}
}

func TestGradientTextEmpty(t *testing.T) {
	if s := GradientText("", "#000000", "#ffffff"); s != "" {
		t.Errorf("GradientText of empty string = %q", s)
	}
}
